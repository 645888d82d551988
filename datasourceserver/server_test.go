package datasourceserver_test

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-datasource-server/datasourceserver"
	"github.com/mark3labs/mcp-datasource-server/datasourceserver/handler"
)

// regression test for the return_type enum landing in the published schema
func TestLoadDatasourceSchema(t *testing.T) {
	reg := newWorkspaceRegistry(t, t.TempDir())
	dss, err := datasourceserver.NewDatasourceServer(reg, handler.Options{})
	require.NoError(t, err)

	mcpClient := startTestClient(t, dss)

	tool := getTool(t, mcpClient, "load_datasource")
	require.NotNil(t, tool)

	rt, ok := tool.InputSchema.Properties["return_type"]
	assert.True(t, ok)
	rtMap, ok := rt.(map[string]any)
	assert.True(t, ok)
	assert.ElementsMatch(t, []any{"metadata", "resources", "both", "instructions", "combined"}, rtMap["enum"])
	assert.Contains(t, tool.InputSchema.Required, "return_type")
}

func TestSearchProjectSchema(t *testing.T) {
	reg := newWorkspaceRegistry(t, t.TempDir())
	dss, err := datasourceserver.NewDatasourceServer(reg, handler.Options{})
	require.NoError(t, err)

	mcpClient := startTestClient(t, dss)

	tool := getTool(t, mcpClient, "search_project")
	require.NotNil(t, tool)

	// every criterion is optional
	for _, name := range []string{
		"content_pattern", "case_sensitive", "resource_pattern",
		"size_min", "size_max", "date_after", "date_before",
		"source", "path",
	} {
		_, ok := tool.InputSchema.Properties[name]
		assert.True(t, ok, name)
	}
	assert.Empty(t, tool.InputSchema.Required)
}

func TestResourceTemplatesRegistered(t *testing.T) {
	reg := newWorkspaceRegistry(t, t.TempDir())
	dss, err := datasourceserver.NewDatasourceServer(reg, handler.Options{})
	require.NoError(t, err)

	mcpClient := startTestClient(t, dss)

	result, err := mcpClient.ListResourceTemplates(context.Background(), mcp.ListResourceTemplatesRequest{})
	require.NoError(t, err)
	require.Len(t, result.ResourceTemplates, 1)
	assert.Equal(t, "workspace", result.ResourceTemplates[0].Name)
}
