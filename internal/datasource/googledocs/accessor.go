// Package googledocs exposes the Google Docs documents visible to a Drive
// account as a data source. Drive is the listing surface: documents are
// found with a files query pinned to the Docs MIME type, and the account's
// corpus is flat from the caller's point of view.
package googledocs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/yosida95/uritemplate/v3"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

// DocsMIMEType is the Drive MIME type of native Google Docs documents.
const DocsMIMEType = "application/vnd.google-apps.document"

const (
	// DefaultPageSize is used when a listing request carries no hint.
	DefaultPageSize = 100
	// MaxPageSize is the Drive API's own cap on pageSize.
	MaxPageSize = 1000
	// DefaultMetadataVisitLimit caps how many documents a Metadata call
	// pages through before reporting truncated counts.
	DefaultMetadataVisitLimit = 1000

	listFields = "nextPageToken, files(id, name, mimeType, modifiedTime, createdTime, size, webViewLink)"
)

// Config describes one Google Docs source. Exactly one of AccessToken or
// TokenFile provides credentials; BaseURL overrides the API endpoint for
// tests and then no credentials are required.
type Config struct {
	ID                 string
	AccessToken        string
	TokenFile          string
	BaseURL            string
	MetadataVisitLimit int
}

// Accessor implements datasource.Accessor over the Drive API.
type Accessor struct {
	id         string
	srv        *drive.Service
	visitLimit int
	template   *uritemplate.Template
	log        *slog.Logger
}

// New resolves credentials and builds the Drive service.
func New(ctx context.Context, cfg Config, log *slog.Logger) (*Accessor, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("googledocs source has no id")
	}
	if cfg.MetadataVisitLimit <= 0 {
		cfg.MetadataVisitLimit = DefaultMetadataVisitLimit
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var opts []option.ClientOption
	switch {
	case cfg.BaseURL != "":
		opts = append(opts, option.WithEndpoint(cfg.BaseURL), option.WithoutAuthentication())
	default:
		token, err := resolveToken(cfg)
		if err != nil {
			return nil, err
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		opts = append(opts, option.WithTokenSource(ts))
	}

	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	tmpl, err := uritemplate.New("gdocs://{document_id}")
	if err != nil {
		return nil, err
	}

	return &Accessor{
		id:         cfg.ID,
		srv:        srv,
		visitLimit: cfg.MetadataVisitLimit,
		template:   tmpl,
		log:        log,
	}, nil
}

// resolveToken returns the configured access token, reading the token file
// when no inline token is set. The file holds either the raw token or a
// JSON object with an access_token field.
func resolveToken(cfg Config) (string, error) {
	if cfg.AccessToken != "" {
		return cfg.AccessToken, nil
	}
	if cfg.TokenFile == "" {
		return "", fmt.Errorf("googledocs source %s has no credentials", cfg.ID)
	}
	raw, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	content := strings.TrimSpace(string(raw))
	if strings.HasPrefix(content, "{") {
		var parsed struct {
			AccessToken string `json:"access_token"`
		}
		if err := json.Unmarshal([]byte(content), &parsed); err != nil {
			return "", fmt.Errorf("failed to parse token file: %w", err)
		}
		if parsed.AccessToken == "" {
			return "", fmt.Errorf("token file %s has no access_token", cfg.TokenFile)
		}
		return parsed.AccessToken, nil
	}
	if content == "" {
		return "", fmt.Errorf("token file %s is empty", cfg.TokenFile)
	}
	return content, nil
}

func (a *Accessor) ID() string { return a.id }

func (a *Accessor) Provider() datasource.ProviderType { return datasource.ProviderGoogleDocs }

// HasCapability reports read, write, and list. Write reflects the Docs
// batchUpdate surface behind this source; full-text search stays off.
func (a *Accessor) HasCapability(c datasource.Capability) bool {
	switch c {
	case datasource.CapabilityRead, datasource.CapabilityWrite, datasource.CapabilityList:
		return true
	}
	return false
}

// Capabilities lists the supported operations for metadata reporting.
func (a *Accessor) Capabilities() []datasource.Capability {
	return []datasource.Capability{
		datasource.CapabilityRead,
		datasource.CapabilityWrite,
		datasource.CapabilityList,
	}
}

func (a *Accessor) URITemplate() string { return a.template.Raw() }

// URIForResource expands the canonical template for a document id.
func (a *Accessor) URIForResource(rel string) (string, error) {
	return a.template.Expand(uritemplate.Values{
		"document_id": uritemplate.String(rel),
	})
}

// pageCursor wraps the Drive nextPageToken in the token format shared by
// all providers.
type pageCursor struct {
	Native string `json:"native"`
}

// ListResources returns one page of documents. The corpus is flat, so Depth
// does not apply and a non-empty Path narrows by document name instead.
func (a *Accessor) ListResources(ctx context.Context, q datasource.ListQuery) (*datasource.Listing, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	call := a.srv.Files.List().Context(ctx).
		Q(docsQuery(q.Path)).
		PageSize(int64(pageSize)).
		Fields(listFields)
	if q.PageToken != "" {
		var cur pageCursor
		if err := datasource.DecodeCursor(q.PageToken, &cur); err != nil {
			a.log.Warn("stale page token, restarting listing", "source", a.id)
		} else {
			call = call.PageToken(cur.Native)
		}
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	listing := &datasource.Listing{
		Resources:   make([]datasource.Descriptor, 0, len(resp.Files)),
		URITemplate: a.URITemplate(),
	}
	for _, f := range resp.Files {
		listing.Resources = append(listing.Resources, a.descriptor(f))
	}
	if resp.NextPageToken != "" {
		token, err := datasource.EncodeCursor(pageCursor{Native: resp.NextPageToken})
		if err != nil {
			return nil, err
		}
		listing.NextPageToken = token
	}
	return listing, nil
}

// docsQuery builds the Drive files query: Docs MIME type, not trashed, and
// an optional name filter with single quotes escaped.
func docsQuery(name string) string {
	q := fmt.Sprintf("mimeType = '%s' and trashed = false", DocsMIMEType)
	if name != "" {
		q += fmt.Sprintf(" and name contains '%s'", strings.ReplaceAll(name, "'", `\'`))
	}
	return q
}

// descriptor maps one Drive file record. Native documents often report no
// size, so SizeBytes is only set when Drive reports one.
func (a *Accessor) descriptor(f *drive.File) datasource.Descriptor {
	d := datasource.Descriptor{
		URI:          "gdocs://" + f.Id,
		DisplayName:  f.Name,
		RelativePath: f.Id,
		Kind:         datasource.KindFile,
		MIMEType:     f.MimeType,
	}
	if f.Size > 0 {
		d.SizeBytes = datasource.Int64Ptr(f.Size)
	}
	if mod, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
		d.LastModified = datasource.TimePtr(mod)
	}
	extra := make(map[string]string)
	if f.WebViewLink != "" {
		extra["url"] = f.WebViewLink
	}
	if f.CreatedTime != "" {
		extra["created"] = f.CreatedTime
	}
	if len(extra) > 0 {
		d.ProviderExtra = extra
	}
	return d
}

// Metadata pages through the document corpus aggregating counts, size and
// modification extremes, up to the visit limit.
func (a *Accessor) Metadata(ctx context.Context) (*datasource.Summary, error) {
	stats := &datasource.GoogleDocsStats{
		MIMETypes:    make(map[string]int),
		Capabilities: a.Capabilities(),
		PracticalLimits: datasource.PracticalLimits{
			RecommendedPageSize: DefaultPageSize,
			MaxPageSize:         MaxPageSize,
		},
	}
	types := make(map[datasource.Kind]int)
	var oldest, newest time.Time
	total := 0

	pageToken := ""
	for {
		call := a.srv.Files.List().Context(ctx).
			Q(docsQuery("")).
			PageSize(int64(MaxPageSize)).
			Fields(listFields)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		for _, f := range resp.Files {
			total++
			stats.TotalDocuments++
			types[datasource.KindFile]++
			if f.MimeType != "" {
				stats.MIMETypes[f.MimeType]++
			}
			if f.Size > stats.LargestFileSize {
				stats.LargestFileSize = f.Size
			}
			mod, err := time.Parse(time.RFC3339, f.ModifiedTime)
			if err != nil {
				continue
			}
			if oldest.IsZero() || mod.Before(oldest) {
				oldest = mod
			}
			if newest.IsZero() || mod.After(newest) {
				newest = mod
			}
		}
		if resp.NextPageToken == "" {
			break
		}
		if total >= a.visitLimit {
			stats.Truncated = true
			break
		}
		pageToken = resp.NextPageToken
	}

	if !oldest.IsZero() {
		stats.OldestModified = datasource.TimePtr(oldest)
		stats.NewestModified = datasource.TimePtr(newest)
	}

	return &datasource.Summary{
		SourceID:       a.id,
		Provider:       datasource.ProviderGoogleDocs,
		TotalResources: total,
		ResourceTypes:  types,
		GoogleDocs:     stats,
	}, nil
}
