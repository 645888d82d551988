package datasource

import "time"

// Summary is the stat-level aggregation a provider returns from Metadata.
// It is built fresh per request and never requires reading resource content.
// Exactly one provider section is set, matching the accessor that produced
// it.
type Summary struct {
	SourceID       string       `json:"sourceId"`
	Provider       ProviderType `json:"provider"`
	TotalResources int          `json:"totalResources"`
	ResourceTypes  map[Kind]int `json:"resourceTypes"`

	Filesystem *FilesystemStats `json:"filesystem,omitempty"`
	MCP        *MCPStats        `json:"mcp,omitempty"`
	Notion     *NotionStats     `json:"notion,omitempty"`
	GoogleDocs *GoogleDocsStats `json:"googleDocs,omitempty"`
}

// PracticalLimits advertises paging heuristics to callers that want a
// representative sample of a source instead of a full listing.
type PracticalLimits struct {
	RecommendedPageSize int `json:"recommendedPageSize"`
	MaxPageSize         int `json:"maxPageSize"`
}

// FilesystemStats aggregates a filesystem source. Depth counts path segments
// below the source root; the extension histogram is keyed by lowercase
// extension including the dot, with extensionless files under "".
type FilesystemStats struct {
	TotalFiles       int             `json:"totalFiles"`
	TotalDirectories int             `json:"totalDirectories"`
	DeepestPathDepth int             `json:"deepestPathDepth"`
	LargestFileSize  int64           `json:"largestFileSize"`
	OldestFileDate   *time.Time      `json:"oldestFileDate,omitempty"`
	NewestFileDate   *time.Time      `json:"newestFileDate,omitempty"`
	FileExtensions   map[string]int  `json:"fileExtensions"`
	Capabilities     []Capability    `json:"capabilities"`
	PracticalLimits  PracticalLimits `json:"practicalLimits"`
}

// MCPStats aggregates a remote MCP server's resource listing. Truncated is
// set when the aggregation walk hit its visit cap before the listing was
// exhausted, in which case the counts are lower bounds.
type MCPStats struct {
	ServerName        string          `json:"serverName"`
	MIMETypes         map[string]int  `json:"mimeTypes"`
	ResourceTemplates int             `json:"resourceTemplates"`
	Truncated         bool            `json:"truncated,omitempty"`
	Capabilities      []Capability    `json:"capabilities"`
	PracticalLimits   PracticalLimits `json:"practicalLimits"`
}

// NotionStats aggregates a Notion workspace listing.
type NotionStats struct {
	TotalPages      int             `json:"totalPages"`
	TotalDatabases  int             `json:"totalDatabases"`
	OldestEditDate  *time.Time      `json:"oldestEditDate,omitempty"`
	NewestEditDate  *time.Time      `json:"newestEditDate,omitempty"`
	Truncated       bool            `json:"truncated,omitempty"`
	Capabilities    []Capability    `json:"capabilities"`
	PracticalLimits PracticalLimits `json:"practicalLimits"`
}

// GoogleDocsStats aggregates a Google Docs source listing.
type GoogleDocsStats struct {
	TotalDocuments  int             `json:"totalDocuments"`
	LargestFileSize int64           `json:"largestFileSize,omitempty"`
	OldestModified  *time.Time      `json:"oldestModified,omitempty"`
	NewestModified  *time.Time      `json:"newestModified,omitempty"`
	MIMETypes       map[string]int  `json:"mimeTypes"`
	Truncated       bool            `json:"truncated,omitempty"`
	Capabilities    []Capability    `json:"capabilities"`
	PracticalLimits PracticalLimits `json:"practicalLimits"`
}
