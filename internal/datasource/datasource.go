// Package datasource defines the uniform contract every backing store
// satisfies to participate in resource listing, metadata aggregation, and
// search: local filesystem, remote MCP servers, Notion, and Google Docs all
// expose the same Accessor surface and differ only in what they put behind
// it.
package datasource

import (
	"context"
	"time"
)

// Kind classifies a resource.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
	KindOther     Kind = "other"
)

// ProviderType identifies the backing store variant. The set is closed:
// dispatch happens over these values, not over open-ended subclassing.
type ProviderType string

const (
	ProviderFilesystem ProviderType = "filesystem"
	ProviderMCP        ProviderType = "mcp"
	ProviderNotion     ProviderType = "notion"
	ProviderGoogleDocs ProviderType = "googledocs"
)

// Capability names an operation a provider may support.
type Capability string

const (
	CapabilityRead   Capability = "read"
	CapabilityWrite  Capability = "write"
	CapabilityList   Capability = "list"
	CapabilitySearch Capability = "search"
)

// Descriptor describes one resource. Identity is the URI. A descriptor is
// immutable once yielded by a listing or search.
type Descriptor struct {
	URI           string            `json:"uri"`
	DisplayName   string            `json:"displayName"`
	RelativePath  string            `json:"relativePath"`
	Kind          Kind              `json:"kind"`
	MIMEType      string            `json:"mimeType,omitempty"`
	SizeBytes     *int64            `json:"sizeBytes,omitempty"`
	LastModified  *time.Time        `json:"lastModified,omitempty"`
	ProviderExtra map[string]string `json:"providerExtra,omitempty"`
}

// ListQuery bounds one listing request. Depth counts directory levels below
// Path, with 1 meaning immediate children; the semantics are identical for
// every provider that supports hierarchy. PageSize is a hint that providers
// may cap.
type ListQuery struct {
	Path      string
	Depth     int
	PageSize  int
	PageToken string
}

// Listing is one page of resources plus the provider's URI template and the
// continuation token, empty when the listing is exhausted.
type Listing struct {
	Resources     []Descriptor `json:"resources"`
	URITemplate   string       `json:"uriTemplate"`
	NextPageToken string       `json:"nextPageToken,omitempty"`
}

// Accessor is the provider contract. Callers check HasCapability before
// invoking an operation; accessors fail fast with a CapabilityError when
// invoked without it instead of returning empty data.
type Accessor interface {
	// ID returns the configured data source id.
	ID() string

	// Provider returns the backing store variant.
	Provider() ProviderType

	// ListResources returns one page of resources under the query path.
	ListResources(ctx context.Context, q ListQuery) (*Listing, error)

	// Metadata aggregates stat-level information about the whole source.
	// It never reads resource content.
	Metadata(ctx context.Context) (*Summary, error)

	// HasCapability reports whether the provider supports the operation.
	HasCapability(c Capability) bool

	// URIForResource expands the provider's canonical URI template for a
	// relative path, so callers can build links without knowing the scheme.
	URIForResource(relativePath string) (string, error)
}

// Templated is implemented by accessors whose URI scheme is a static
// RFC 6570 template. The server registers these as MCP resource templates.
type Templated interface {
	// URITemplate returns the provider's canonical URI template, the same
	// one ListResources reports on each Listing.
	URITemplate() string
}

// RequireCapability returns a CapabilityError unless the accessor supports c.
func RequireCapability(a Accessor, c Capability) error {
	if a.HasCapability(c) {
		return nil
	}
	return &CapabilityError{Source: a.ID(), Capability: c}
}

// Ptr helpers keep descriptor construction readable at call sites.

func Int64Ptr(v int64) *int64 { return &v }

func TimePtr(t time.Time) *time.Time { return &t }
