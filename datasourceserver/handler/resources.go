package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/filesystem"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/googledocs"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/mcpconn"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/notion"
)

// HandleReadResource serves resource reads for every registered provider
// scheme. file:// paths resolve against the filesystem sources, notion://
// and gdocs:// ids against their workspace accessors, and any other scheme
// is offered to the connected MCP servers, which keep their native URIs.
func (h *DatasourceHandler) HandleReadResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI

	switch {
	case strings.HasPrefix(uri, "file://"):
		return h.readFileResource(uri)
	case strings.HasPrefix(uri, "notion://"):
		return h.readNotionResource(ctx, uri)
	case strings.HasPrefix(uri, "gdocs://"):
		return h.readGoogleDocsResource(ctx, uri)
	}
	return h.readRemoteResource(ctx, uri)
}

func (h *DatasourceHandler) readFileResource(uri string) ([]mcp.ResourceContents, error) {
	path := strings.TrimPrefix(uri, "file://")

	var owner *filesystem.Accessor
	for _, acc := range h.registry.All() {
		if fs, ok := acc.(*filesystem.Accessor); ok && fs.Contains(path) {
			owner = fs
			break
		}
	}
	if owner == nil {
		return nil, &datasource.NotFoundError{Path: path}
	}

	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if fileInfo.IsDir() {
		// For directories, return a listing of the contents
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}

		var content strings.Builder
		content.WriteString(fmt.Sprintf("Directory listing for: %s\n\n", path))
		for _, entry := range entries {
			entryType := "file"
			if entry.IsDir() {
				entryType = "directory"
			}
			content.WriteString(fmt.Sprintf("%s (%s)\n", entry.Name(), entryType))
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "text/plain",
				Text:     content.String(),
			},
		}, nil
	}

	mimeType := detectMimeType(path)

	if fileInfo.Size() > MAX_INLINE_SIZE {
		// File is too large to inline, return a reference instead
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "text/plain",
				Text:     fmt.Sprintf("File is too large to display inline (%d bytes). Use search_project to locate specific content.", fileInfo.Size()),
			},
		}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isTextFile(mimeType) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: mimeType,
				Text:     string(content),
			},
		}, nil
	}

	if fileInfo.Size() <= MAX_BASE64_SIZE {
		return []mcp.ResourceContents{
			mcp.BlobResourceContents{
				URI:      uri,
				MIMEType: mimeType,
				Blob:     base64.StdEncoding.EncodeToString(content),
			},
		}, nil
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Binary file (%s, %d bytes). Too large to display inline.", mimeType, fileInfo.Size()),
		},
	}, nil
}

func (h *DatasourceHandler) readNotionResource(ctx context.Context, uri string) ([]mcp.ResourceContents, error) {
	pageID := strings.TrimPrefix(uri, "notion://")

	var lastErr error
	for _, acc := range h.registry.All() {
		nt, ok := acc.(*notion.Accessor)
		if !ok {
			continue
		}
		text, err := nt.PageText(ctx, pageID)
		if err != nil {
			lastErr = err
			continue
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "text/plain",
				Text:     text,
			},
		}, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unsupported URI scheme: %s", uri)
}

func (h *DatasourceHandler) readGoogleDocsResource(ctx context.Context, uri string) ([]mcp.ResourceContents, error) {
	docID := strings.TrimPrefix(uri, "gdocs://")

	var lastErr error
	for _, acc := range h.registry.All() {
		gd, ok := acc.(*googledocs.Accessor)
		if !ok {
			continue
		}
		text, err := gd.ExportText(ctx, docID)
		if err != nil {
			lastErr = err
			continue
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "text/plain",
				Text:     text,
			},
		}, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unsupported URI scheme: %s", uri)
}

// readRemoteResource forwards a native remote URI to each connected MCP
// server in turn. Remote servers own arbitrary schemes, so routing is by
// trial rather than by prefix.
func (h *DatasourceHandler) readRemoteResource(ctx context.Context, uri string) ([]mcp.ResourceContents, error) {
	var lastErr error
	for _, acc := range h.registry.All() {
		rc, ok := acc.(*mcpconn.Accessor)
		if !ok {
			continue
		}
		res, err := rc.ReadResource(ctx, uri)
		if err != nil {
			lastErr = err
			continue
		}
		return res.Contents, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unsupported URI scheme: %s", uri)
}
