package datasourceserver

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mark3labs/mcp-datasource-server/datasourceserver/handler"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

var Version = "dev"

func NewDatasourceServer(registry *datasource.Registry, opts handler.Options) (*server.MCPServer, error) {

	h, err := handler.NewDatasourceHandler(registry, opts)
	if err != nil {
		return nil, err
	}

	s := server.NewMCPServer(
		"datasource-server",
		Version,
		server.WithResourceCapabilities(true, true),
	)

	// Register resource handlers. Every templated source contributes its URI
	// space; reads are routed back by scheme.
	for _, acc := range registry.All() {
		t, ok := acc.(datasource.Templated)
		if !ok {
			continue
		}
		s.AddResourceTemplate(mcp.NewResourceTemplate(
			t.URITemplate(),
			acc.ID(),
			mcp.WithTemplateDescription(fmt.Sprintf("Resources of the %s data source (%s)", acc.ID(), acc.Provider())),
		), h.HandleReadResource)
	}

	// Register tool handlers
	s.AddTool(mcp.NewTool(
		"search_project",
		mcp.WithDescription("Search a data source by any combination of content pattern, resource name pattern, size bounds, and modification dates. All given criteria must match."),
		mcp.WithString("content_pattern",
			mcp.Description("Regular expression matched against resource content"),
		),
		mcp.WithBoolean("case_sensitive",
			mcp.Description("Match the content pattern case-sensitively (default: false)"),
		),
		mcp.WithString("resource_pattern",
			mcp.Description("Glob matched against resource paths, e.g. \"**/*.md\" or \"*.go|*.mod\""),
		),
		mcp.WithNumber("size_min",
			mcp.Description("Minimum resource size in bytes (inclusive)"),
		),
		mcp.WithNumber("size_max",
			mcp.Description("Maximum resource size in bytes (inclusive)"),
		),
		mcp.WithString("date_after",
			mcp.Description("Only resources modified on or after this date (YYYY-MM-DD or RFC 3339)"),
		),
		mcp.WithString("date_before",
			mcp.Description("Only resources modified on or before this date (YYYY-MM-DD or RFC 3339)"),
		),
		mcp.WithString("source",
			mcp.Description("Data source id (default: the first filesystem source)"),
		),
		mcp.WithString("path",
			mcp.Description("Root-relative path to search under (default: the source root)"),
		),
	), h.HandleSearchProject)

	s.AddTool(mcp.NewTool(
		"load_datasource",
		mcp.WithDescription("Load metadata, resource listings, or usage guidance for a data source."),
		mcp.WithString("return_type",
			mcp.Description("What to return: metadata, resources, both, instructions, or combined"),
			mcp.Enum("metadata", "resources", "both", "instructions", "combined"),
			mcp.Required(),
		),
		mcp.WithString("source",
			mcp.Description("Data source id (default: the first filesystem source)"),
		),
		mcp.WithString("path",
			mcp.Description("Scope the resource listing to this path"),
		),
		mcp.WithNumber("depth",
			mcp.Description("Directory levels to list below the path (default: 1)"),
		),
		mcp.WithNumber("page_size",
			mcp.Description("Resources per listing page"),
		),
		mcp.WithString("page_token",
			mcp.Description("Continuation token from a previous listing page"),
		),
		mcp.WithString("content_types",
			mcp.Description("Comma-separated content types to keep in the guidance examples"),
		),
		mcp.WithString("operations",
			mcp.Description("Comma-separated operations to keep in the guidance examples"),
		),
		mcp.WithString("edit_types",
			mcp.Description("Comma-separated edit types to keep in the guidance examples"),
		),
		mcp.WithString("sections",
			mcp.Description("Comma-separated guidance sections to include"),
		),
		mcp.WithBoolean("include_overview",
			mcp.Description("Include the overview section of the guidance (default: true)"),
		),
	), h.HandleLoadDatasource)

	s.AddTool(mcp.NewTool(
		"list_datasources",
		mcp.WithDescription("Returns the list of configured data sources with their providers and capabilities."),
	), h.HandleListDatasources)

	return s, nil
}
