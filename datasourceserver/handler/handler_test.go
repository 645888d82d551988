package handler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/filesystem"
)

// newFilesystemHandler builds a handler over a single filesystem source
// rooted at dir.
func newFilesystemHandler(t *testing.T, dir string) (*DatasourceHandler, *filesystem.Accessor) {
	t.Helper()
	acc, err := filesystem.New(filesystem.Config{ID: "workspace", Root: dir}, nil)
	require.NoError(t, err)
	reg := datasource.NewRegistry()
	require.NoError(t, reg.Add(acc))
	h, err := NewDatasourceHandler(reg, Options{})
	require.NoError(t, err)
	return h, acc
}

// writeFile creates name under dir, making parent directories as needed,
// and returns the absolute path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// textContent extracts the text block of a tool result.
func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

// embeddedJSON extracts the JSON text of the embedded resource block that
// accompanies the text rendering.
func embeddedJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 2)
	er, ok := result.Content[1].(mcp.EmbeddedResource)
	require.True(t, ok)
	rc, ok := er.Resource.(mcp.TextResourceContents)
	require.True(t, ok)
	require.Equal(t, "application/json", rc.MIMEType)
	return rc.Text
}

func TestNewDatasourceHandler_RequiresSources(t *testing.T) {
	_, err := NewDatasourceHandler(datasource.NewRegistry(), Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "no data sources configured")
}
