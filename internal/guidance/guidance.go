// Package guidance describes, per provider type, which content
// representations and edit operations downstream tools can rely on. The
// tables are static: building guidance is a pure function of the provider
// type and the caller's filters, with no I/O.
package guidance

import (
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
)

// Guidance tells an edit or rendering tool how to talk to one provider.
type Guidance struct {
	PrimaryContentType   string    `json:"primaryContentType"`
	PreferredContentType string    `json:"preferredContentType"`
	AcceptedContentTypes []string  `json:"acceptedContentTypes"`
	AcceptedEditTypes    []string  `json:"acceptedEditTypes"`
	Examples             []Example `json:"examples,omitempty"`
	Notes                []string  `json:"notes,omitempty"`
}

// Example is one worked usage snippet, tagged so filters can select it.
type Example struct {
	Section     string `json:"section"`
	Operation   string `json:"operation"`
	ContentType string `json:"contentType"`
	EditType    string `json:"editType,omitempty"`
	Title       string `json:"title"`
	Body        string `json:"body"`
}

// InstructionFilters narrow which examples and notes a Build call includes.
// A nil or empty field means no restriction on that attribute; filters that
// are present must all match. IncludeOverview set to false drops the
// overview section entirely.
type InstructionFilters struct {
	ContentTypes    []string `json:"contentTypes,omitempty"`
	Operations      []string `json:"operations,omitempty"`
	EditTypes       []string `json:"editTypes,omitempty"`
	Sections        []string `json:"sections,omitempty"`
	IncludeOverview *bool    `json:"includeOverview,omitempty"`
}

// Section names used by the static tables.
const (
	SectionOverview = "overview"
	SectionReading  = "reading"
	SectionEditing  = "editing"
	SectionSearch   = "search"
)

// Edit type vocabulary shared with downstream edit tools.
const (
	EditSearchReplace = "search-replace"
	EditLineRange     = "line-range"
	EditBlock         = "block"
)

type taggedNote struct {
	section string
	text    string
}

type providerTable struct {
	primary  string
	accepted []string
	edits    []string
	examples []Example
	notes    []taggedNote
}

var tables = map[datasource.ProviderType]providerTable{
	datasource.ProviderFilesystem: {
		primary:  "text/plain",
		accepted: []string{"text/plain", "text/markdown", "application/json"},
		edits:    []string{EditSearchReplace, EditLineRange, EditBlock},
		examples: []Example{
			{
				Section:     SectionOverview,
				Operation:   "read",
				ContentType: "text/plain",
				Title:       "Read a file as plain text",
				Body:        "Request the resource URI and consume the text content verbatim; line numbers are not part of the content.",
			},
			{
				Section:     SectionEditing,
				Operation:   "write",
				ContentType: "text/plain",
				EditType:    EditSearchReplace,
				Title:       "Replace an exact substring",
				Body:        "Provide the old text exactly as it appears in the file, including indentation, and the replacement text.",
			},
			{
				Section:     SectionEditing,
				Operation:   "write",
				ContentType: "text/plain",
				EditType:    EditLineRange,
				Title:       "Rewrite a line range",
				Body:        "Address the edit by 1-based start and end line and supply the full replacement lines.",
			},
			{
				Section:     SectionSearch,
				Operation:   "search",
				ContentType: "text/plain",
				Title:       "Find files by content",
				Body:        "Combine a content pattern with a resource pattern such as \"*.md\" to scope the scan.",
			},
		},
		notes: []taggedNote{
			{SectionOverview, "Resources are ordinary files; directories appear in listings but carry no content."},
			{SectionEditing, "Preserve the file's existing line endings and indentation when editing."},
			{SectionEditing, "Binary files are listed but not edited."},
		},
	},
	datasource.ProviderMCP: {
		primary:  "text/plain",
		accepted: []string{"text/plain", "application/json"},
		edits:    nil,
		examples: []Example{
			{
				Section:     SectionOverview,
				Operation:   "read",
				ContentType: "text/plain",
				Title:       "Read a remote resource",
				Body:        "Pass the resource's native URI through unchanged; the remote server resolves it.",
			},
			{
				Section:     SectionReading,
				Operation:   "list",
				ContentType: "application/json",
				Title:       "Page through remote resources",
				Body:        "Follow nextPageToken until it is empty; the remote server controls page boundaries.",
			},
		},
		notes: []taggedNote{
			{SectionOverview, "Resources are read-only through this connection."},
		},
	},
	datasource.ProviderNotion: {
		primary:  "application/vnd.notion.page+json",
		accepted: []string{"application/vnd.notion.page+json", "text/markdown"},
		edits:    []string{EditBlock},
		examples: []Example{
			{
				Section:     SectionOverview,
				Operation:   "read",
				ContentType: "application/vnd.notion.page+json",
				Title:       "Read a page as structured blocks",
				Body:        "Pages resolve to a block tree; render to markdown only for display, never for round-tripping.",
			},
			{
				Section:     SectionEditing,
				Operation:   "write",
				ContentType: "application/vnd.notion.page+json",
				EditType:    EditBlock,
				Title:       "Replace a block",
				Body:        "Address the edit by block id and supply the complete replacement block.",
			},
		},
		notes: []taggedNote{
			{SectionOverview, "Databases list as directories; their rows are pages."},
			{SectionEditing, "Page content is structured as blocks; replace whole blocks rather than substrings."},
		},
	},
	datasource.ProviderGoogleDocs: {
		primary:  "application/vnd.google-apps.document",
		accepted: []string{"application/vnd.google-apps.document", "text/plain"},
		edits:    []string{EditBlock},
		examples: []Example{
			{
				Section:     SectionOverview,
				Operation:   "read",
				ContentType: "application/vnd.google-apps.document",
				Title:       "Read a document",
				Body:        "Documents export to plain text for reading; structural elements such as tables flatten.",
			},
			{
				Section:     SectionEditing,
				Operation:   "write",
				ContentType: "application/vnd.google-apps.document",
				EditType:    EditBlock,
				Title:       "Replace a structural element",
				Body:        "Address the edit by element index range and supply the replacement content.",
			},
		},
		notes: []taggedNote{
			{SectionOverview, "The corpus is flat; there are no directories."},
			{SectionEditing, "Edits apply to document structure, not raw bytes."},
		},
	},
}

// Build returns the guidance for one provider type, narrowed by filters.
// It returns fresh slices on every call; callers may mutate the result.
func Build(p datasource.ProviderType, f *InstructionFilters) (*Guidance, error) {
	table, ok := tables[p]
	if !ok {
		return nil, fmt.Errorf("no guidance for provider %q", p)
	}

	g := &Guidance{
		PrimaryContentType:   table.primary,
		PreferredContentType: table.primary,
		AcceptedContentTypes: slices.Clone(table.accepted),
		AcceptedEditTypes:    slices.Clone(table.edits),
	}

	for _, ex := range table.examples {
		if !includeSection(ex.Section, f) {
			continue
		}
		if f != nil {
			if !matches(f.ContentTypes, ex.ContentType) ||
				!matches(f.Operations, ex.Operation) ||
				!matches(f.EditTypes, ex.EditType) {
				continue
			}
		}
		g.Examples = append(g.Examples, ex)
	}
	for _, n := range table.notes {
		if includeSection(n.section, f) {
			g.Notes = append(g.Notes, n.text)
		}
	}
	return g, nil
}

// includeSection applies the section filter and the overview switch.
func includeSection(section string, f *InstructionFilters) bool {
	if f == nil {
		return true
	}
	if section == SectionOverview && f.IncludeOverview != nil && !*f.IncludeOverview {
		return false
	}
	return matches(f.Sections, section)
}

// matches reports whether the value passes a filter list; an empty list
// restricts nothing.
func matches(filter []string, value string) bool {
	return len(filter) == 0 || slices.Contains(filter, value)
}

// Verify cross-checks guidance against the registry: a provider may claim
// edit types only when its accessor reports the write capability, and a
// writable accessor must have edit types to offer. Meant for test-time
// assertions while wiring new providers.
func Verify(reg *datasource.Registry) error {
	for _, acc := range reg.All() {
		g, err := Build(acc.Provider(), nil)
		if err != nil {
			return fmt.Errorf("source %s: %w", acc.ID(), err)
		}
		writable := acc.HasCapability(datasource.CapabilityWrite)
		if len(g.AcceptedEditTypes) > 0 && !writable {
			return fmt.Errorf("source %s: guidance claims edit types %v but provider %s is not writable",
				acc.ID(), g.AcceptedEditTypes, acc.Provider())
		}
		if writable && len(g.AcceptedEditTypes) == 0 {
			return fmt.Errorf("source %s: provider %s is writable but guidance offers no edit types",
				acc.ID(), acc.Provider())
		}
	}
	return nil
}
