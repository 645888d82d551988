package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

// HandleListDatasources lists every configured data source with its
// provider, capabilities, and URI template.
func (h *DatasourceHandler) HandleListDatasources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var result strings.Builder
	result.WriteString("Configured data sources:\n\n")
	for _, acc := range h.registry.All() {
		var caps []string
		for _, c := range []datasource.Capability{
			datasource.CapabilityRead,
			datasource.CapabilityWrite,
			datasource.CapabilityList,
			datasource.CapabilitySearch,
		} {
			if acc.HasCapability(c) {
				caps = append(caps, string(c))
			}
		}
		result.WriteString(fmt.Sprintf("%s (%s) - %s\n", acc.ID(), acc.Provider(), strings.Join(caps, ", ")))
		if t, ok := acc.(datasource.Templated); ok {
			result.WriteString(fmt.Sprintf("  URI template: %s\n", t.URITemplate()))
		}
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: result.String(),
			},
		},
	}, nil
}
