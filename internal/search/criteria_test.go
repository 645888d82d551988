package search

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/glob"
)

func int64p(v int64) *int64 { return &v }

func fileDesc(rel string, size int64, modified time.Time) datasource.Descriptor {
	return datasource.Descriptor{
		URI:          "file:///" + rel,
		DisplayName:  rel,
		RelativePath: rel,
		Kind:         datasource.KindFile,
		SizeBytes:    &size,
		LastModified: &modified,
	}
}

func TestParseCriteria_InvalidContentPattern(t *testing.T) {
	_, err := ParseCriteria(Input{ContentPattern: "["})
	require.Error(t, err)

	var rerr *RegexError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "[", rerr.Pattern)
	// The engine message survives verbatim for the user.
	assert.Contains(t, err.Error(), "missing closing ]")
}

func TestParseCriteria_InvalidResourcePattern(t *testing.T) {
	_, err := ParseCriteria(Input{ResourcePattern: "src/[abc"})
	require.Error(t, err)

	var perr *glob.PatternError
	require.True(t, errors.As(err, &perr))
}

func TestParseCriteria_InvalidDates(t *testing.T) {
	_, err := ParseCriteria(Input{DateAfter: "yesterday"})
	require.Error(t, err)

	_, err = ParseCriteria(Input{DateBefore: "03/01/2024"})
	require.Error(t, err)

	_, err = ParseCriteria(Input{SizeMin: int64p(-1)})
	require.Error(t, err)
}

func TestDescribe_FixedClauseOrder(t *testing.T) {
	// Field assignment order in the literal is irrelevant: the description
	// always renders content, case, resource, after, before, min, max.
	in := Input{
		SizeMax:         int64p(4096),
		DateBefore:      "2024-06-30",
		ResourcePattern: "*.go|*.md",
		SizeMin:         int64p(10),
		ContentPattern:  "TODO",
		DateAfter:       "2024-01-01",
		CaseSensitive:   true,
	}

	want := `content pattern "TODO", case-sensitive, resource pattern "*.go|*.md", ` +
		`modified after 2024-01-01, modified before 2024-06-30, minimum size 10 bytes, maximum size 4096 bytes`
	assert.Equal(t, want, DescribeInput(in))

	c, err := ParseCriteria(in)
	require.NoError(t, err)
	assert.Equal(t, want, c.Describe())
}

func TestDescribe_PartialClauses(t *testing.T) {
	tests := []struct {
		info string
		in   Input
		want string
	}{
		{info: "empty criteria", in: Input{}, want: ""},
		{info: "content only defaults to case-insensitive", in: Input{ContentPattern: "Hello"},
			want: `content pattern "Hello", case-insensitive`},
		{info: "case clause needs a content pattern", in: Input{CaseSensitive: true, ResourcePattern: "*.txt"},
			want: `resource pattern "*.txt"`},
		{info: "size max alone", in: Input{SizeMax: int64p(0)},
			want: "maximum size 0 bytes"},
		{info: "pattern with backslash stays verbatim", in: Input{ContentPattern: `\bHello\b`},
			want: `content pattern "\bHello\b", case-insensitive`},
	}

	for _, test := range tests {
		t.Run(test.info, func(t *testing.T) {
			assert.Equal(t, test.want, DescribeInput(test.in))
		})
	}
}

func TestMetadataPass_SizeBounds(t *testing.T) {
	c, err := ParseCriteria(Input{SizeMin: int64p(10), SizeMax: int64p(100)})
	require.NoError(t, err)

	now := time.Now()
	assert.False(t, c.MetadataPass(fileDesc("a.txt", 9, now)))
	assert.True(t, c.MetadataPass(fileDesc("b.txt", 10, now)), "minimum is inclusive")
	assert.True(t, c.MetadataPass(fileDesc("c.txt", 100, now)), "maximum is inclusive")
	assert.False(t, c.MetadataPass(fileDesc("d.txt", 101, now)))

	// Directories are size-exempt.
	dir := datasource.Descriptor{RelativePath: "sub", Kind: datasource.KindDirectory, LastModified: &now}
	assert.True(t, c.MetadataPass(dir))

	// A file with unknown size cannot satisfy a size bound.
	unknown := datasource.Descriptor{RelativePath: "u", Kind: datasource.KindFile, LastModified: &now}
	assert.False(t, c.MetadataPass(unknown))
}

func TestMetadataPass_DayGranularityBounds(t *testing.T) {
	c, err := ParseCriteria(Input{DateAfter: "2024-03-10", DateBefore: "2024-03-12"})
	require.NoError(t, err)

	at := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return ts
	}

	assert.False(t, c.MetadataPass(fileDesc("a", 1, at("2024-03-09T23:59:59Z"))))
	assert.True(t, c.MetadataPass(fileDesc("b", 1, at("2024-03-10T00:00:00Z"))), "after bound starts at UTC midnight")
	assert.True(t, c.MetadataPass(fileDesc("c", 1, at("2024-03-11T12:00:00Z"))))
	assert.True(t, c.MetadataPass(fileDesc("d", 1, at("2024-03-12T23:59:59Z"))), "before bound covers the whole UTC day")
	assert.False(t, c.MetadataPass(fileDesc("e", 1, at("2024-03-13T00:00:00Z"))))
}

func TestMetadataPass_ExactInstantBounds(t *testing.T) {
	c, err := ParseCriteria(Input{DateAfter: "2024-03-10T15:04:05Z"})
	require.NoError(t, err)

	boundary := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	assert.True(t, c.MetadataPass(fileDesc("a", 1, boundary)), "timestamp bounds are inclusive")
	assert.False(t, c.MetadataPass(fileDesc("b", 1, boundary.Add(-time.Second))))
}

func TestMetadataPass_MissingTimestamp(t *testing.T) {
	c, err := ParseCriteria(Input{DateAfter: "2024-01-01"})
	require.NoError(t, err)

	d := datasource.Descriptor{RelativePath: "x", Kind: datasource.KindOther}
	assert.False(t, c.MetadataPass(d))
}

func TestMetadataPass_EmptyCriteria(t *testing.T) {
	c, err := ParseCriteria(Input{})
	require.NoError(t, err)

	assert.True(t, c.MetadataPass(datasource.Descriptor{Kind: datasource.KindOther}))
	assert.True(t, c.PathPass("anything/at/all"))
	assert.False(t, c.HasContentFilter())
}

func TestCaseFoldingCompiledIntoPattern(t *testing.T) {
	insensitive, err := ParseCriteria(Input{ContentPattern: "Hello"})
	require.NoError(t, err)
	assert.True(t, insensitive.ContentRegexp().MatchString("say HELLO"))

	sensitive, err := ParseCriteria(Input{ContentPattern: "Hello", CaseSensitive: true})
	require.NoError(t, err)
	assert.False(t, sensitive.ContentRegexp().MatchString("say HELLO"))
	assert.True(t, sensitive.ContentRegexp().MatchString("say Hello"))
}
