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
	"github.com/mark3labs/mcp-datasource-server/internal/guidance"
)

func loadRequest(args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Name = "load_datasource"
	request.Params.Arguments = args
	return request
}

type decodedPayload struct {
	Source   string              `json:"source"`
	Provider string              `json:"provider"`
	Summary  *datasource.Summary `json:"summary"`
	Listing  *datasource.Listing `json:"listing"`
	Guidance *guidance.Guidance  `json:"guidance"`
}

func decodePayload(t *testing.T, result *mcp.CallToolResult) decodedPayload {
	t.Helper()
	var payload decodedPayload
	require.NoError(t, json.Unmarshal([]byte(embeddedJSON(t, result)), &payload))
	return payload
}

func TestLoadDatasource_Metadata(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "# hi")
	writeFile(t, dir, "docs/guide.md", "guide content")

	h, _ := newFilesystemHandler(t, dir)

	result, err := h.HandleLoadDatasource(context.Background(), loadRequest(map[string]any{
		"return_type": "metadata",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textContent(t, result)
	assert.Contains(t, text, "Metadata for workspace (filesystem):")
	assert.Contains(t, text, "Total resources: 3")
	assert.Contains(t, text, "Files: 2")
	assert.Contains(t, text, "Directories: 1")
	assert.Contains(t, text, ".md: 2")
	assert.Contains(t, text, "Capabilities: read, write, list, search")

	payload := decodePayload(t, result)
	assert.Equal(t, "workspace", payload.Source)
	assert.Equal(t, "filesystem", payload.Provider)
	require.NotNil(t, payload.Summary)
	assert.Equal(t, 3, payload.Summary.TotalResources)
	assert.Nil(t, payload.Listing)
	assert.Nil(t, payload.Guidance)
}

func TestLoadDatasource_Resources(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md", "# hi")
	writeFile(t, dir, "docs/guide.md", "guide content")

	h, acc := newFilesystemHandler(t, dir)

	result, err := h.HandleLoadDatasource(context.Background(), loadRequest(map[string]any{
		"return_type": "resources",
		"depth":       2.0,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textContent(t, result)
	assert.Contains(t, text, "Resources in workspace:")
	assert.Contains(t, text, "[FILE] readme.md")
	assert.Contains(t, text, "[DIR]  docs")
	assert.Contains(t, text, "[FILE] docs/guide.md")
	assert.Contains(t, text, "URI template: "+acc.URITemplate())

	payload := decodePayload(t, result)
	require.NotNil(t, payload.Listing)
	assert.Len(t, payload.Listing.Resources, 3)
	assert.Nil(t, payload.Summary)
	assert.Nil(t, payload.Guidance)
}

func TestLoadDatasource_ResourcesPagination(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"} {
		writeFile(t, dir, name, "content")
	}

	h, _ := newFilesystemHandler(t, dir)

	// Unpaginated reference listing.
	result, err := h.HandleLoadDatasource(context.Background(), loadRequest(map[string]any{
		"return_type": "resources",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	reference := decodePayload(t, result).Listing
	require.NotNil(t, reference)
	require.Empty(t, reference.NextPageToken)

	var paths []string
	token := ""
	for page := 0; ; page++ {
		require.Less(t, page, 10, "pagination did not terminate")

		args := map[string]any{
			"return_type": "resources",
			"page_size":   2.0,
		}
		if token != "" {
			args["page_token"] = token
		}
		result, err := h.HandleLoadDatasource(context.Background(), loadRequest(args))
		require.NoError(t, err)
		require.False(t, result.IsError)

		listing := decodePayload(t, result).Listing
		require.NotNil(t, listing)
		for _, d := range listing.Resources {
			paths = append(paths, d.RelativePath)
		}
		if listing.NextPageToken == "" {
			break
		}
		assert.Contains(t, textContent(t, result), "More resources available: pass page_token")
		token = listing.NextPageToken
	}

	var want []string
	for _, d := range reference.Resources {
		want = append(want, d.RelativePath)
	}
	assert.Equal(t, want, paths)
}

func TestLoadDatasource_Instructions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.txt", "content")

	h, _ := newFilesystemHandler(t, dir)

	t.Run("unfiltered", func(t *testing.T) {
		result, err := h.HandleLoadDatasource(context.Background(), loadRequest(map[string]any{
			"return_type": "instructions",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := textContent(t, result)
		assert.Contains(t, text, "Content type guidance for filesystem sources:")
		assert.Contains(t, text, "Primary content type: text/plain")
		assert.Contains(t, text, "Accepted edit types: search-replace, line-range, block")
		assert.Contains(t, text, "Read a file as plain text")
		assert.Contains(t, text, "Replace an exact substring")

		payload := decodePayload(t, result)
		require.NotNil(t, payload.Guidance)
		assert.Nil(t, payload.Summary)
		assert.Nil(t, payload.Listing)
	})

	t.Run("section filter narrows examples", func(t *testing.T) {
		result, err := h.HandleLoadDatasource(context.Background(), loadRequest(map[string]any{
			"return_type": "instructions",
			"sections":    "editing",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := textContent(t, result)
		assert.Contains(t, text, "Replace an exact substring")
		assert.NotContains(t, text, "Read a file as plain text")
		assert.NotContains(t, text, "Find files by content")
	})

	t.Run("overview can be dropped", func(t *testing.T) {
		result, err := h.HandleLoadDatasource(context.Background(), loadRequest(map[string]any{
			"return_type":      "instructions",
			"include_overview": false,
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := textContent(t, result)
		assert.NotContains(t, text, "Read a file as plain text")
		assert.Contains(t, text, "Replace an exact substring")
	})

	t.Run("edit type filter", func(t *testing.T) {
		result, err := h.HandleLoadDatasource(context.Background(), loadRequest(map[string]any{
			"return_type": "instructions",
			"sections":    "editing",
			"edit_types":  "line-range",
		}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		text := textContent(t, result)
		assert.Contains(t, text, "Rewrite a line range")
		assert.NotContains(t, text, "Replace an exact substring")
	})
}

func TestLoadDatasource_InstructionsPerProvider(t *testing.T) {
	dir := t.TempDir()
	fsAcc, err := filesystem.New(filesystem.Config{ID: "workspace", Root: dir}, nil)
	require.NoError(t, err)
	wiki, err := notion.New(notion.Config{ID: "wiki", Token: "secret"}, nil)
	require.NoError(t, err)

	reg := datasource.NewRegistry()
	require.NoError(t, reg.Add(fsAcc))
	require.NoError(t, reg.Add(wiki))
	h, err := NewDatasourceHandler(reg, Options{})
	require.NoError(t, err)

	result, err := h.HandleLoadDatasource(context.Background(), loadRequest(map[string]any{
		"return_type": "instructions",
		"source":      "wiki",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := textContent(t, result)
	assert.Contains(t, text, "Content type guidance for notion sources:")
	assert.Contains(t, text, "Primary content type: application/vnd.notion.page+json")
}

func TestLoadDatasource_CombinedSections(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.txt", "content")

	h, _ := newFilesystemHandler(t, dir)

	tests := []struct {
		info       string
		returnType string
		want       []string
		notWant    []string
	}{
		{
			info:       "both is metadata plus resources",
			returnType: "both",
			want:       []string{"Metadata for workspace", "Resources in workspace:"},
			notWant:    []string{"Content type guidance"},
		},
		{
			info:       "combined includes guidance too",
			returnType: "combined",
			want:       []string{"Metadata for workspace", "Resources in workspace:", "Content type guidance for filesystem sources:"},
		},
	}

	for _, test := range tests {
		t.Run(test.info, func(t *testing.T) {
			result, err := h.HandleLoadDatasource(context.Background(), loadRequest(map[string]any{
				"return_type": test.returnType,
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

			payload := decodePayload(t, result)
			assert.NotNil(t, payload.Summary, test.info)
			assert.NotNil(t, payload.Listing, test.info)
			if test.returnType == "combined" {
				assert.NotNil(t, payload.Guidance, test.info)
			} else {
				assert.Nil(t, payload.Guidance, test.info)
			}
		})
	}
}

func TestLoadDatasource_Errors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.txt", "content")

	h, _ := newFilesystemHandler(t, dir)

	tests := []struct {
		info    string
		args    map[string]any
		wantErr string
	}{
		{
			info:    "missing return_type",
			args:    map[string]any{},
			wantErr: "return_type",
		},
		{
			info:    "invalid return_type",
			args:    map[string]any{"return_type": "everything"},
			wantErr: `invalid return_type "everything"`,
		},
		{
			info:    "unknown source id",
			args:    map[string]any{"return_type": "metadata", "source": "nope"},
			wantErr: `no data source with id "nope"`,
		},
		{
			info:    "listing scope outside the root",
			args:    map[string]any{"return_type": "resources", "path": "missing-dir"},
			wantErr: `has no resource at "missing-dir"`,
		},
	}

	for _, test := range tests {
		t.Run(test.info, func(t *testing.T) {
			result, err := h.HandleLoadDatasource(context.Background(), loadRequest(test.args))
			require.NoError(t, err)
			require.True(t, result.IsError, test.info)
			assert.Contains(t, textContent(t, result), test.wantErr, test.info)
		})
	}
}
