// Package mcpconn adapts a remote MCP server's resource listing to the
// datasource contract. The remote server owns the URI space and the page
// boundaries; this accessor wraps its cursors in opaque tokens and maps its
// resource records onto descriptors.
package mcpconn

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/yosida95/uritemplate/v3"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

// DefaultMetadataVisitLimit caps how many remote resources a Metadata call
// will page through before reporting truncated counts.
const DefaultMetadataVisitLimit = 2000

// ResourceClient is the slice of the MCP client surface this accessor needs.
// client.MCPClient satisfies it.
type ResourceClient interface {
	ListResourcesByPage(ctx context.Context, request mcp.ListResourcesRequest) (*mcp.ListResourcesResult, error)
	ListResourceTemplatesByPage(ctx context.Context, request mcp.ListResourceTemplatesRequest) (*mcp.ListResourceTemplatesResult, error)
	ReadResource(ctx context.Context, request mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error)
}

// Config describes one connected MCP source.
type Config struct {
	ID                 string
	ServerName         string
	MetadataVisitLimit int
}

// Accessor implements datasource.Accessor over a live MCP connection.
type Accessor struct {
	id         string
	serverName string
	cli        ResourceClient
	visitLimit int
	template   *uritemplate.Template
	log        *slog.Logger
}

// New wires an accessor over an already initialized client connection.
func New(cfg Config, cli ResourceClient, log *slog.Logger) (*Accessor, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("mcp source has no id")
	}
	if cli == nil {
		return nil, fmt.Errorf("mcp source %s has no client", cfg.ID)
	}
	if cfg.ServerName == "" {
		cfg.ServerName = cfg.ID
	}
	if cfg.MetadataVisitLimit <= 0 {
		cfg.MetadataVisitLimit = DefaultMetadataVisitLimit
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	raw := "mcp://" + hostSafe(cfg.ServerName) + "/{+uri}"
	tmpl, err := uritemplate.New(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid uri template for %s: %w", cfg.ServerName, err)
	}

	return &Accessor{
		id:         cfg.ID,
		serverName: cfg.ServerName,
		cli:        cli,
		visitLimit: cfg.MetadataVisitLimit,
		template:   tmpl,
		log:        log,
	}, nil
}

func (a *Accessor) ID() string { return a.id }

func (a *Accessor) Provider() datasource.ProviderType { return datasource.ProviderMCP }

// ServerName returns the remote server's advertised name.
func (a *Accessor) ServerName() string { return a.serverName }

// HasCapability reports read and list. Remote MCP resources are read-only
// here: the protocol offers no generic write or server-side search.
func (a *Accessor) HasCapability(c datasource.Capability) bool {
	return c == datasource.CapabilityRead || c == datasource.CapabilityList
}

// Capabilities lists the supported operations for metadata reporting.
func (a *Accessor) Capabilities() []datasource.Capability {
	return []datasource.Capability{datasource.CapabilityRead, datasource.CapabilityList}
}

func (a *Accessor) URITemplate() string { return a.template.Raw() }

// URIForResource expands the wrapper template for a remote URI.
func (a *Accessor) URIForResource(rel string) (string, error) {
	return a.template.Expand(uritemplate.Values{
		"uri": uritemplate.String(rel),
	})
}

// pageCursor wraps the remote server's opaque cursor in the token format
// shared by all providers.
type pageCursor struct {
	Native string `json:"native"`
}

// ListResources returns one remote page. The server controls page sizes, so
// ListQuery.PageSize is ignored; Depth does not apply to the flat URI space.
// A Path scopes the listing to resources whose URI or derived relative path
// starts with it.
func (a *Accessor) ListResources(ctx context.Context, q datasource.ListQuery) (*datasource.Listing, error) {
	req := mcp.ListResourcesRequest{}
	if q.PageToken != "" {
		var cur pageCursor
		if err := datasource.DecodeCursor(q.PageToken, &cur); err != nil {
			a.log.Warn("stale page token, restarting listing", "source", a.id)
		} else {
			req.Params.Cursor = mcp.Cursor(cur.Native)
		}
	}

	res, err := a.cli.ListResourcesByPage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("listing resources from %s: %w", a.serverName, err)
	}

	listing := &datasource.Listing{
		Resources:   make([]datasource.Descriptor, 0, len(res.Resources)),
		URITemplate: a.URITemplate(),
	}
	for _, r := range res.Resources {
		d := a.descriptor(r)
		if q.Path != "" && !strings.HasPrefix(d.RelativePath, q.Path) && !strings.HasPrefix(d.URI, q.Path) {
			continue
		}
		listing.Resources = append(listing.Resources, d)
	}
	if res.NextCursor != "" {
		token, err := datasource.EncodeCursor(pageCursor{Native: string(res.NextCursor)})
		if err != nil {
			return nil, err
		}
		listing.NextPageToken = token
	}
	return listing, nil
}

// descriptor maps one remote resource record. Anything with a MIME type is
// treated as a file; the rest stay opaque.
func (a *Accessor) descriptor(r mcp.Resource) datasource.Descriptor {
	d := datasource.Descriptor{
		URI:          r.URI,
		DisplayName:  r.Name,
		RelativePath: relativeURI(r.URI),
		Kind:         datasource.KindOther,
		MIMEType:     r.MIMEType,
	}
	if d.DisplayName == "" {
		d.DisplayName = r.URI
	}
	if r.MIMEType != "" {
		d.Kind = datasource.KindFile
	}
	if r.Description != "" {
		d.ProviderExtra = map[string]string{"description": r.Description}
	}
	return d
}

// ReadResource fetches the content of one remote resource by its native URI.
func (a *Accessor) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	req := mcp.ReadResourceRequest{}
	req.Params.URI = uri
	res, err := a.cli.ReadResource(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reading %s from %s: %w", uri, a.serverName, err)
	}
	return res, nil
}

// Metadata pages through the remote listing aggregating MIME counts, up to
// the visit limit. Counts are lower bounds when Truncated is set.
func (a *Accessor) Metadata(ctx context.Context) (*datasource.Summary, error) {
	stats := &datasource.MCPStats{
		ServerName:   a.serverName,
		MIMETypes:    make(map[string]int),
		Capabilities: a.Capabilities(),
		PracticalLimits: datasource.PracticalLimits{
			// The remote server decides page boundaries; no cap to report.
			RecommendedPageSize: 50,
		},
	}
	types := make(map[datasource.Kind]int)
	total := 0

	var cursor mcp.Cursor
	for {
		req := mcp.ListResourcesRequest{}
		req.Params.Cursor = cursor
		res, err := a.cli.ListResourcesByPage(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("listing resources from %s: %w", a.serverName, err)
		}
		for _, r := range res.Resources {
			total++
			if r.MIMEType != "" {
				stats.MIMETypes[r.MIMEType]++
				types[datasource.KindFile]++
			} else {
				types[datasource.KindOther]++
			}
		}
		cursor = res.NextCursor
		if cursor == "" {
			break
		}
		if total >= a.visitLimit {
			stats.Truncated = true
			break
		}
	}

	stats.ResourceTemplates = a.countTemplates(ctx)

	return &datasource.Summary{
		SourceID:       a.id,
		Provider:       datasource.ProviderMCP,
		TotalResources: total,
		ResourceTypes:  types,
		MCP:            stats,
	}, nil
}

// countTemplates counts advertised resource templates. Servers without the
// capability often reject the call; that just reads as zero templates.
func (a *Accessor) countTemplates(ctx context.Context) int {
	count := 0
	var cursor mcp.Cursor
	for pages := 0; pages < 10; pages++ {
		req := mcp.ListResourceTemplatesRequest{}
		req.Params.Cursor = cursor
		res, err := a.cli.ListResourceTemplatesByPage(ctx, req)
		if err != nil {
			a.log.Debug("resource templates unavailable", "source", a.id, "error", err)
			return count
		}
		count += len(res.ResourceTemplates)
		cursor = res.NextCursor
		if cursor == "" {
			break
		}
	}
	return count
}

// relativeURI strips the scheme and authority from a remote URI, leaving a
// path-like identifier for display and prefix scoping.
func relativeURI(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		return strings.TrimPrefix(uri[i+len("://"):], "/")
	}
	return uri
}

// hostSafe folds a server name into the character set allowed in a URI
// template literal.
func hostSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.' || r == '_' || r == '~':
			return r
		}
		return '-'
	}, name)
}
