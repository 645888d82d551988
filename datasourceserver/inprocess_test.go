package datasourceserver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-datasource-server/datasourceserver"
	"github.com/mark3labs/mcp-datasource-server/datasourceserver/handler"
)

func TestInProcess(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("Hello, world!"), 0644))

	reg := newWorkspaceRegistry(t, dir)
	dss, err := datasourceserver.NewDatasourceServer(reg, handler.Options{})
	require.NoError(t, err)

	mcpClient := startTestClient(t, dss)

	t.Run("search_project finds content", func(t *testing.T) {
		request := mcp.CallToolRequest{}
		request.Params.Name = "search_project"
		request.Params.Arguments = map[string]any{
			"content_pattern": "Hello",
		}

		result, err := mcpClient.CallTool(context.Background(), request)
		require.NoError(t, err)
		require.False(t, result.IsError)
		require.NotEmpty(t, result.Content)

		textContent, ok := result.Content[0].(mcp.TextContent)
		require.True(t, ok)
		assert.Contains(t, textContent.Text, `content pattern "Hello", case-insensitive`)
		assert.Contains(t, textContent.Text, "hello.txt")
	})

	t.Run("load_datasource returns metadata", func(t *testing.T) {
		request := mcp.CallToolRequest{}
		request.Params.Name = "load_datasource"
		request.Params.Arguments = map[string]any{
			"return_type": "metadata",
		}

		result, err := mcpClient.CallTool(context.Background(), request)
		require.NoError(t, err)
		require.False(t, result.IsError)
		require.NotEmpty(t, result.Content)

		textContent, ok := result.Content[0].(mcp.TextContent)
		require.True(t, ok)
		assert.Contains(t, textContent.Text, "Metadata for workspace (filesystem):")
		assert.Contains(t, textContent.Text, "Total resources: 1")
	})

	t.Run("list_datasources names the source", func(t *testing.T) {
		request := mcp.CallToolRequest{}
		request.Params.Name = "list_datasources"

		result, err := mcpClient.CallTool(context.Background(), request)
		require.NoError(t, err)
		require.False(t, result.IsError)
		require.NotEmpty(t, result.Content)

		textContent, ok := result.Content[0].(mcp.TextContent)
		require.True(t, ok)
		assert.Contains(t, textContent.Text, "workspace (filesystem)")
	})

	t.Run("resource read round-trips", func(t *testing.T) {
		acc, err := reg.Default()
		require.NoError(t, err)
		uri, err := acc.URIForResource("hello.txt")
		require.NoError(t, err)

		request := mcp.ReadResourceRequest{}
		request.Params.URI = uri

		result, err := mcpClient.ReadResource(context.Background(), request)
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		textContents, ok := result.Contents[0].(mcp.TextResourceContents)
		require.True(t, ok)
		assert.Equal(t, "Hello, world!", textContents.Text)
	})
}
