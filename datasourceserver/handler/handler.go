// Package handler implements the MCP tool and resource handlers over the
// configured data sources: combined-criteria search, listing and metadata
// loading, content type guidance, and resource reads.
package handler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mark3labs/mcp-datasource-server/internal/contentscan"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/search"
)

// DatasourceHandler serves every tool and resource request against the data
// source registry. One handler serves all concurrent requests; per-request
// state stays in the call.
type DatasourceHandler struct {
	registry    *datasource.Registry
	coordinator *search.Coordinator
	log         *slog.Logger
}

// Options tunes the handler's search pipeline. Zero values fall back to
// defaults.
type Options struct {
	Scanner *contentscan.Scanner
	Ignore  *datasource.IgnoreList
	Workers int
	Logger  *slog.Logger
}

func NewDatasourceHandler(reg *datasource.Registry, opts Options) (*DatasourceHandler, error) {
	if reg == nil || len(reg.All()) == 0 {
		return nil, fmt.Errorf("no data sources configured")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &DatasourceHandler{
		registry:    reg,
		coordinator: search.NewCoordinator(opts.Scanner, opts.Ignore, opts.Workers, log),
		log:         log,
	}, nil
}

// resolveSource returns the accessor for id, or the default source when id
// is empty.
func (h *DatasourceHandler) resolveSource(id string) (datasource.Accessor, error) {
	if id == "" {
		return h.registry.Default()
	}
	return h.registry.Get(id)
}

// detectMimeType sniffs a file's MIME type from its content.
func detectMimeType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mtype.String()
}

// isTextFile reports whether a MIME type names content safe to inline as
// text.
func isTextFile(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	if strings.Contains(mimeType, "+xml") || strings.Contains(mimeType, "+json") {
		return true
	}
	switch strings.SplitN(mimeType, ";", 2)[0] {
	case "application/json", "application/javascript", "application/xml", "application/x-sh", "application/x-httpd-php":
		return true
	}
	return false
}
