// Package notion exposes a Notion workspace as a data source through the
// public search API. The workspace is a flat space of pages and databases
// addressed by id, so listings map hierarchy-free: pages read as files,
// databases as directories.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yosida95/uritemplate/v3"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

// NotionVersion is the API revision every request pins.
const NotionVersion = "2022-06-28"

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.notion.com"
	// DefaultPageSize is used when a listing request carries no hint.
	DefaultPageSize = 50
	// MaxPageSize is the API's own cap on page_size.
	MaxPageSize = 100
	// DefaultMetadataVisitLimit caps how many objects a Metadata call pages
	// through before reporting truncated counts.
	DefaultMetadataVisitLimit = 1000
)

// Config describes one Notion workspace source.
type Config struct {
	ID                 string
	Token              string
	BaseURL            string
	MetadataVisitLimit int
}

// Accessor implements datasource.Accessor over the Notion REST API.
type Accessor struct {
	id         string
	token      string
	baseURL    string
	visitLimit int
	httpClient *http.Client
	template   *uritemplate.Template
	log        *slog.Logger
}

// New validates the config and builds the accessor. The token is required;
// the base URL is overridable for tests.
func New(cfg Config, log *slog.Logger) (*Accessor, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("notion source has no id")
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("notion source %s has no token", cfg.ID)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MetadataVisitLimit <= 0 {
		cfg.MetadataVisitLimit = DefaultMetadataVisitLimit
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	tmpl, err := uritemplate.New("notion://{page_id}")
	if err != nil {
		return nil, err
	}

	return &Accessor{
		id:         cfg.ID,
		token:      cfg.Token,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		visitLimit: cfg.MetadataVisitLimit,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		template:   tmpl,
		log:        log,
	}, nil
}

func (a *Accessor) ID() string { return a.id }

func (a *Accessor) Provider() datasource.ProviderType { return datasource.ProviderNotion }

// HasCapability reports read, write, and list. Write reflects the backing
// API's page editing endpoints; content search stays off because the search
// API matches titles, not body text.
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

// URIForResource expands the canonical template for a page or database id.
func (a *Accessor) URIForResource(rel string) (string, error) {
	return a.template.Expand(uritemplate.Values{
		"page_id": uritemplate.String(rel),
	})
}

// searchRequest is the Notion search API request format.
type searchRequest struct {
	Query       string        `json:"query,omitempty"`
	StartCursor string        `json:"start_cursor,omitempty"`
	PageSize    int           `json:"page_size,omitempty"`
	Filter      *searchFilter `json:"filter,omitempty"`
}

type searchFilter struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// searchResponse is the Notion search API response format. next_cursor is
// null on the last page, which decodes to the empty string.
type searchResponse struct {
	Object     string         `json:"object"`
	Results    []notionObject `json:"results"`
	NextCursor string         `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

type notionObject struct {
	Object         string                    `json:"object"`
	ID             string                    `json:"id"`
	CreatedTime    time.Time                 `json:"created_time"`
	LastEditedTime time.Time                 `json:"last_edited_time"`
	URL            string                    `json:"url"`
	Title          []richText                `json:"title"`
	Properties     map[string]notionProperty `json:"properties"`
}

type notionProperty struct {
	Type  string     `json:"type"`
	Title []richText `json:"title"`
}

type richText struct {
	PlainText string `json:"plain_text"`
}

// title extracts the display title. Databases carry it top-level; pages bury
// it in the property whose type is "title".
func (o *notionObject) title() string {
	if t := joinRichText(o.Title); t != "" {
		return t
	}
	for _, p := range o.Properties {
		if p.Type == "title" {
			if t := joinRichText(p.Title); t != "" {
				return t
			}
		}
	}
	return "Untitled"
}

func joinRichText(parts []richText) string {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.PlainText)
	}
	return sb.String()
}

// pageCursor wraps the API's start_cursor in the token format shared by all
// providers.
type pageCursor struct {
	Native string `json:"native"`
}

// ListResources returns one page of workspace objects. The workspace has no
// path hierarchy, so a non-empty Path scopes by title search instead and
// Depth does not apply.
func (a *Accessor) ListResources(ctx context.Context, q datasource.ListQuery) (*datasource.Listing, error) {
	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	req := searchRequest{Query: q.Path, PageSize: pageSize}
	if q.PageToken != "" {
		var cur pageCursor
		if err := datasource.DecodeCursor(q.PageToken, &cur); err != nil {
			a.log.Warn("stale page token, restarting listing", "source", a.id)
		} else {
			req.StartCursor = cur.Native
		}
	}

	res, err := a.search(ctx, req)
	if err != nil {
		return nil, err
	}

	listing := &datasource.Listing{
		Resources:   make([]datasource.Descriptor, 0, len(res.Results)),
		URITemplate: a.URITemplate(),
	}
	for _, obj := range res.Results {
		listing.Resources = append(listing.Resources, a.descriptor(obj))
	}
	if res.HasMore && res.NextCursor != "" {
		token, err := datasource.EncodeCursor(pageCursor{Native: res.NextCursor})
		if err != nil {
			return nil, err
		}
		listing.NextPageToken = token
	}
	return listing, nil
}

// descriptor maps one workspace object. Notion reports no content sizes, so
// SizeBytes stays nil.
func (a *Accessor) descriptor(obj notionObject) datasource.Descriptor {
	kind := datasource.KindFile
	if obj.Object == "database" {
		kind = datasource.KindDirectory
	}
	d := datasource.Descriptor{
		URI:          "notion://" + obj.ID,
		DisplayName:  obj.title(),
		RelativePath: obj.ID,
		Kind:         kind,
		LastModified: datasource.TimePtr(obj.LastEditedTime),
	}
	extra := map[string]string{"object": obj.Object}
	if obj.URL != "" {
		extra["url"] = obj.URL
	}
	if !obj.CreatedTime.IsZero() {
		extra["created"] = obj.CreatedTime.UTC().Format(time.RFC3339)
	}
	d.ProviderExtra = extra
	return d
}

// Metadata pages through the whole workspace counting pages and databases
// and tracking edit-time extremes, up to the visit limit.
func (a *Accessor) Metadata(ctx context.Context) (*datasource.Summary, error) {
	stats := &datasource.NotionStats{
		Capabilities: a.Capabilities(),
		PracticalLimits: datasource.PracticalLimits{
			RecommendedPageSize: DefaultPageSize,
			MaxPageSize:         MaxPageSize,
		},
	}
	types := make(map[datasource.Kind]int)
	var oldest, newest time.Time
	total := 0

	cursor := ""
	for {
		res, err := a.search(ctx, searchRequest{StartCursor: cursor, PageSize: MaxPageSize})
		if err != nil {
			return nil, err
		}
		for _, obj := range res.Results {
			total++
			if obj.Object == "database" {
				stats.TotalDatabases++
				types[datasource.KindDirectory]++
			} else {
				stats.TotalPages++
				types[datasource.KindFile]++
			}
			edited := obj.LastEditedTime
			if edited.IsZero() {
				continue
			}
			if oldest.IsZero() || edited.Before(oldest) {
				oldest = edited
			}
			if newest.IsZero() || edited.After(newest) {
				newest = edited
			}
		}
		if !res.HasMore || res.NextCursor == "" {
			break
		}
		if total >= a.visitLimit {
			stats.Truncated = true
			break
		}
		cursor = res.NextCursor
	}

	if !oldest.IsZero() {
		stats.OldestEditDate = datasource.TimePtr(oldest)
		stats.NewestEditDate = datasource.TimePtr(newest)
	}

	return &datasource.Summary{
		SourceID:       a.id,
		Provider:       datasource.ProviderNotion,
		TotalResources: total,
		ResourceTypes:  types,
		Notion:         stats,
	}, nil
}

// search runs one POST /v1/search call.
func (a *Accessor) search(ctx context.Context, req searchRequest) (*searchResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/v1/search", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+a.token)
	httpReq.Header.Set("Notion-Version", NotionVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("notion API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notion API error (status %d): %s", resp.StatusCode, string(body))
	}

	var res searchResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &res, nil
}
