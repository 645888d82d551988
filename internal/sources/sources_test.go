package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-datasource-server/internal/config"
	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

func TestBuild_RegistersInOrder(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []config.SourceConfig{
		{ID: "wiki", Provider: "notion", Token: "secret"},
		{ID: "workspace", Provider: "filesystem", Root: t.TempDir()},
		{ID: "docs", Provider: "googledocs", Endpoint: "http://127.0.0.1:0"},
	}

	reg, closeAll, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)

	var ids []string
	for _, a := range reg.All() {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []string{"wiki", "workspace", "docs"}, ids)

	def, err := reg.Default()
	require.NoError(t, err)
	assert.Equal(t, "workspace", def.ID(), "default source prefers the first filesystem entry")

	assert.NoError(t, closeAll(), "close is a no-op without mcp sources")
}

func TestBuild_AppliesIgnorePatterns(t *testing.T) {
	cfg := config.Default()
	cfg.IgnorePatterns = []string{"*.log"}
	cfg.Sources = []config.SourceConfig{
		{ID: "workspace", Provider: "filesystem", Root: t.TempDir()},
	}

	reg, closeAll, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer closeAll()

	acc, err := reg.Get("workspace")
	require.NoError(t, err)
	assert.Equal(t, datasource.ProviderFilesystem, acc.Provider())
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		info    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			info: "missing filesystem root",
			mutate: func(c *config.Config) {
				c.Sources = []config.SourceConfig{
					{ID: "workspace", Provider: "filesystem", Root: "/nonexistent/path/for/tests"},
				}
			},
			wantErr: "data source workspace",
		},
		{
			info: "unknown provider",
			mutate: func(c *config.Config) {
				c.Sources = []config.SourceConfig{
					{ID: "mystery", Provider: "ftp"},
				}
			},
			wantErr: `unknown provider "ftp"`,
		},
		{
			info: "bad ignore pattern",
			mutate: func(c *config.Config) {
				c.IgnorePatterns = []string{"[unclosed"}
			},
			wantErr: "compiling ignore patterns",
		},
		{
			info: "notion source without token",
			mutate: func(c *config.Config) {
				c.Sources = []config.SourceConfig{
					{ID: "wiki", Provider: "notion"},
				}
			},
			wantErr: "data source wiki",
		},
	}

	for _, tc := range tests {
		cfg := config.Default()
		tc.mutate(cfg)
		_, _, err := Build(context.Background(), cfg, nil)
		require.Error(t, err, tc.info)
		assert.Contains(t, err.Error(), tc.wantErr, tc.info)
	}
}

func TestBuild_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Sources = []config.SourceConfig{
		{ID: "workspace", Provider: "filesystem", Root: dir},
		{ID: "workspace", Provider: "filesystem", Root: dir},
	}

	_, _, err := Build(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate data source id "workspace"`)
}
