package handler

import (
	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/guidance"
)

const (
	// Maximum size for inline content (5MB)
	MAX_INLINE_SIZE = 5 * 1024 * 1024
	// Maximum size for base64 encoding (1MB)
	MAX_BASE64_SIZE = 1 * 1024 * 1024
)

// loadPayload is the structured half of a load_datasource result, embedded
// as a JSON resource next to the text rendering so downstream formatters get
// plain data instead of pre-rendered strings.
type loadPayload struct {
	Source   string                  `json:"source"`
	Provider datasource.ProviderType `json:"provider"`
	Summary  *datasource.Summary     `json:"summary,omitempty"`
	Listing  *datasource.Listing     `json:"listing,omitempty"`
	Guidance *guidance.Guidance      `json:"guidance,omitempty"`
}
