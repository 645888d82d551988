package handler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/filesystem"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource/notion"
	"github.com/mark3labs/mcp-datasource-server/internal/search"
)

func searchRequest(args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = "search_project"
	request.Params.Arguments = args
	return request
}

func TestSearchProject_ContentPattern(t *testing.T) {

	// corpus:
	// - file1.txt         "Hello, world!"
	// - file2.js          console.log("Hello")
	// - subdir/file3.txt  "Hello from subdirectory!"

	dir := t.TempDir()
	writeFile(t, dir, "file1.txt", "Hello, world!")
	writeFile(t, dir, "file2.js", `console.log("Hello")`)
	writeFile(t, dir, "subdir/file3.txt", "Hello from subdirectory!")

	h, _ := newFilesystemHandler(t, dir)

	result, err := h.HandleSearchProject(context.Background(), searchRequest(map[string]any{
		"content_pattern": "Hello",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textContent(t, result)
	assert.Contains(t, text, `Found 3 resources matching content pattern "Hello", case-insensitive`)
	assert.Contains(t, text, "file1.txt")
	assert.Contains(t, text, "file2.js")
	assert.Contains(t, text, "subdir/file3.txt")

	var res search.Result
	require.NoError(t, json.Unmarshal([]byte(embeddedJSON(t, result)), &res))
	assert.Len(t, res.Matches, 3)
	assert.Equal(t, `content pattern "Hello", case-insensitive`, res.CriteriaDescription)
	assert.Empty(t, res.ErrorsEncountered)
}

func TestSearchProject_CaseSensitivity(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "upper.txt", "Hello there")
	writeFile(t, dir, "lower.txt", "hello there")

	h, _ := newFilesystemHandler(t, dir)

	tests := []struct {
		info          string
		caseSensitive bool
		want          []string
		notWant       []string
	}{
		{
			info:          "sensitive matches exact case only",
			caseSensitive: true,
			want:          []string{"upper.txt"},
			notWant:       []string{"lower.txt"},
		},
		{
			info:          "insensitive matches a superset",
			caseSensitive: false,
			want:          []string{"upper.txt", "lower.txt"},
		},
	}

	for _, test := range tests {
		t.Run(test.info, func(t *testing.T) {
			result, err := h.HandleSearchProject(context.Background(), searchRequest(map[string]any{
				"content_pattern": "Hello",
				"case_sensitive":  test.caseSensitive,
			}))
			require.NoError(t, err)
			require.False(t, result.IsError)

			text := textContent(t, result)
			for _, want := range test.want {
				assert.Contains(t, text, want, test.info)
			}
			for _, notWant := range test.notWant {
				assert.NotContains(t, text, notWant, test.info)
			}
		})
	}
}

func TestSearchProject_ZeroByteWithSizeMax(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "empty.txt", "")
	writeFile(t, dir, "full.txt", "some content")
	writeFile(t, dir, "also-empty.md", "")

	h, _ := newFilesystemHandler(t, dir)

	result, err := h.HandleSearchProject(context.Background(), searchRequest(map[string]any{
		"resource_pattern": "*.txt",
		"size_max":         0.0,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var res search.Result
	require.NoError(t, json.Unmarshal([]byte(embeddedJSON(t, result)), &res))
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "empty.txt", res.Matches[0].RelativePath)
}

func TestSearchProject_InvalidPatternStillDescribed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.txt", "content")

	h, _ := newFilesystemHandler(t, dir)

	result, err := h.HandleSearchProject(context.Background(), searchRequest(map[string]any{
		"content_pattern": "[",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textContent(t, result)
	assert.Contains(t, text, `No resources found matching content pattern "["`)
	assert.Contains(t, text, "Errors encountered:")
	assert.Contains(t, text, "missing closing ]")

	var res search.Result
	require.NoError(t, json.Unmarshal([]byte(embeddedJSON(t, result)), &res))
	assert.Empty(t, res.Matches)
	assert.Equal(t, `content pattern "[", case-insensitive`, res.CriteriaDescription)
	require.Len(t, res.ErrorsEncountered, 1)
	assert.Contains(t, res.ErrorsEncountered[0], "invalid content pattern")
}

func TestSearchProject_ScopedPath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.txt", "Hello top")
	writeFile(t, dir, "subdir/inner.txt", "Hello inner")

	h, _ := newFilesystemHandler(t, dir)

	result, err := h.HandleSearchProject(context.Background(), searchRequest(map[string]any{
		"content_pattern": "Hello",
		"path":            "subdir",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var res search.Result
	require.NoError(t, json.Unmarshal([]byte(embeddedJSON(t, result)), &res))
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "inner.txt", res.Matches[0].RelativePath)
}

func TestSearchProject_CombinedCriteria(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "small.txt", "Hello")
	writeFile(t, dir, "large.txt", "Hello, this line pushes the file over the size bound")
	writeFile(t, dir, "small.md", "Hello")

	h, _ := newFilesystemHandler(t, dir)

	result, err := h.HandleSearchProject(context.Background(), searchRequest(map[string]any{
		"content_pattern":  "Hello",
		"resource_pattern": "*.txt",
		"size_max":         10.0,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var res search.Result
	require.NoError(t, json.Unmarshal([]byte(embeddedJSON(t, result)), &res))
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "small.txt", res.Matches[0].RelativePath)
	assert.Equal(t, `content pattern "Hello", case-insensitive, resource pattern "*.txt", maximum size 10 bytes`, res.CriteriaDescription)
}

func TestSearchProject_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.txt", "content")

	fsAcc, err := filesystem.New(filesystem.Config{ID: "workspace", Root: dir}, nil)
	require.NoError(t, err)
	wiki, err := notion.New(notion.Config{ID: "wiki", Token: "secret"}, nil)
	require.NoError(t, err)

	reg := datasource.NewRegistry()
	require.NoError(t, reg.Add(fsAcc))
	require.NoError(t, reg.Add(wiki))
	h, err := NewDatasourceHandler(reg, Options{})
	require.NoError(t, err)

	tests := []struct {
		info    string
		args    map[string]any
		wantErr string
	}{
		{
			info:    "unknown source id",
			args:    map[string]any{"source": "nope"},
			wantErr: `no data source with id "nope"`,
		},
		{
			info:    "source without search capability",
			args:    map[string]any{"source": "wiki"},
			wantErr: `data source "wiki" does not support "search"`,
		},
		{
			info:    "path escaping the root",
			args:    map[string]any{"path": "../outside"},
			wantErr: `has no resource at "../outside"`,
		},
	}

	for _, test := range tests {
		t.Run(test.info, func(t *testing.T) {
			result, err := h.HandleSearchProject(context.Background(), searchRequest(test.args))
			require.NoError(t, err)
			require.True(t, result.IsError, test.info)
			assert.Contains(t, textContent(t, result), test.wantErr, test.info)
		})
	}
}
