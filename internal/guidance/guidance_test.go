package guidance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

func TestBuild_UnknownProvider(t *testing.T) {
	_, err := Build(datasource.ProviderType("carrier-pigeon"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "carrier-pigeon")
}

func TestBuild_AllProvidersComplete(t *testing.T) {
	providers := []datasource.ProviderType{
		datasource.ProviderFilesystem,
		datasource.ProviderMCP,
		datasource.ProviderNotion,
		datasource.ProviderGoogleDocs,
	}
	for _, p := range providers {
		t.Run(string(p), func(t *testing.T) {
			g, err := Build(p, nil)
			require.NoError(t, err)
			assert.NotEmpty(t, g.PrimaryContentType)
			assert.Equal(t, g.PrimaryContentType, g.PreferredContentType)
			assert.NotEmpty(t, g.AcceptedContentTypes)
			assert.NotEmpty(t, g.Examples)
			assert.NotEmpty(t, g.Notes)
		})
	}
}

func TestBuild_FilesystemEditTypes(t *testing.T) {
	g, err := Build(datasource.ProviderFilesystem, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{EditSearchReplace, EditLineRange, EditBlock}, g.AcceptedEditTypes)

	mcp, err := Build(datasource.ProviderMCP, nil)
	require.NoError(t, err)
	assert.Empty(t, mcp.AcceptedEditTypes)
}

func TestBuild_FiltersNarrow(t *testing.T) {
	t.Run("sections", func(t *testing.T) {
		g, err := Build(datasource.ProviderFilesystem, &InstructionFilters{Sections: []string{SectionEditing}})
		require.NoError(t, err)
		require.NotEmpty(t, g.Examples)
		for _, ex := range g.Examples {
			assert.Equal(t, SectionEditing, ex.Section)
		}
		for _, note := range g.Notes {
			assert.NotContains(t, note, "directories appear in listings")
		}
	})

	t.Run("edit types", func(t *testing.T) {
		g, err := Build(datasource.ProviderFilesystem, &InstructionFilters{EditTypes: []string{EditLineRange}})
		require.NoError(t, err)
		require.Len(t, g.Examples, 1)
		assert.Equal(t, EditLineRange, g.Examples[0].EditType)
	})

	t.Run("operations and content types", func(t *testing.T) {
		g, err := Build(datasource.ProviderMCP, &InstructionFilters{
			Operations:   []string{"list"},
			ContentTypes: []string{"application/json"},
		})
		require.NoError(t, err)
		require.Len(t, g.Examples, 1)
		assert.Equal(t, "list", g.Examples[0].Operation)
	})

	t.Run("exclude overview", func(t *testing.T) {
		no := false
		g, err := Build(datasource.ProviderNotion, &InstructionFilters{IncludeOverview: &no})
		require.NoError(t, err)
		for _, ex := range g.Examples {
			assert.NotEqual(t, SectionOverview, ex.Section)
		}
		require.Len(t, g.Notes, 1)
		assert.Contains(t, g.Notes[0], "blocks")
	})

	t.Run("accepted lists stay complete under filters", func(t *testing.T) {
		g, err := Build(datasource.ProviderFilesystem, &InstructionFilters{Sections: []string{SectionSearch}})
		require.NoError(t, err)
		assert.Len(t, g.AcceptedEditTypes, 3)
		assert.NotEmpty(t, g.AcceptedContentTypes)
	})
}

func TestBuild_ResultIsACopy(t *testing.T) {
	g1, err := Build(datasource.ProviderFilesystem, nil)
	require.NoError(t, err)
	g1.AcceptedEditTypes[0] = "clobbered"
	g1.Examples[0].Title = "clobbered"

	g2, err := Build(datasource.ProviderFilesystem, nil)
	require.NoError(t, err)
	assert.Equal(t, EditSearchReplace, g2.AcceptedEditTypes[0])
	assert.NotEqual(t, "clobbered", g2.Examples[0].Title)
}

// capAccessor is the minimal accessor used to exercise Verify.
type capAccessor struct {
	id       string
	provider datasource.ProviderType
	caps     map[datasource.Capability]bool
}

func (a *capAccessor) ID() string                                 { return a.id }
func (a *capAccessor) Provider() datasource.ProviderType          { return a.provider }
func (a *capAccessor) HasCapability(c datasource.Capability) bool { return a.caps[c] }
func (a *capAccessor) URIForResource(string) (string, error)      { return "", nil }
func (a *capAccessor) ListResources(context.Context, datasource.ListQuery) (*datasource.Listing, error) {
	return &datasource.Listing{}, nil
}
func (a *capAccessor) Metadata(context.Context) (*datasource.Summary, error) {
	return &datasource.Summary{}, nil
}

func TestVerify(t *testing.T) {
	writable := map[datasource.Capability]bool{datasource.CapabilityWrite: true}
	readOnly := map[datasource.Capability]bool{}

	t.Run("consistent registry passes", func(t *testing.T) {
		reg := datasource.NewRegistry()
		require.NoError(t, reg.Add(&capAccessor{id: "ws", provider: datasource.ProviderFilesystem, caps: writable}))
		require.NoError(t, reg.Add(&capAccessor{id: "remote", provider: datasource.ProviderMCP, caps: readOnly}))
		require.NoError(t, reg.Add(&capAccessor{id: "wiki", provider: datasource.ProviderNotion, caps: writable}))
		require.NoError(t, reg.Add(&capAccessor{id: "docs", provider: datasource.ProviderGoogleDocs, caps: writable}))

		assert.NoError(t, Verify(reg))
	})

	t.Run("edit types without write capability fail", func(t *testing.T) {
		reg := datasource.NewRegistry()
		require.NoError(t, reg.Add(&capAccessor{id: "frozen", provider: datasource.ProviderFilesystem, caps: readOnly}))

		err := Verify(reg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not writable")
	})

	t.Run("writable provider without edit types fails", func(t *testing.T) {
		reg := datasource.NewRegistry()
		require.NoError(t, reg.Add(&capAccessor{id: "odd", provider: datasource.ProviderMCP, caps: writable}))

		err := Verify(reg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no edit types")
	})
}
