// Package search combines content, path, size, and date criteria into one
// filter pipeline and runs it over a resource tree.
package search

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mark3labs/mcp-datasource-server/internal/datasource"
	"github.com/mark3labs/mcp-datasource-server/internal/glob"
)

// RegexError reports a content pattern the regexp engine rejected. The
// engine's message is preserved verbatim so the user can diagnose the
// pattern.
type RegexError struct {
	Pattern string
	Err     error
}

func (e *RegexError) Error() string {
	return fmt.Sprintf("invalid content pattern: %v", e.Err)
}

func (e *RegexError) Unwrap() error { return e.Err }

// Input is the tool-boundary form of search criteria. Every field is
// optional; the zero Input matches every resource. Dates accept "2006-01-02"
// or RFC 3339.
type Input struct {
	ContentPattern  string
	CaseSensitive   bool
	ResourcePattern string
	SizeMin         *int64
	SizeMax         *int64
	DateAfter       string
	DateBefore      string
}

// DateBound is a resolved date filter bound. Both directions are inclusive.
// Date-only inputs compare at day granularity using UTC midnight boundaries:
// "modified after 2024-03-01" admits anything from 2024-03-01T00:00:00Z on,
// and "modified before 2024-03-01" admits anything up to the last nanosecond
// of that UTC day. Timestamped inputs compare at their exact instant.
type DateBound struct {
	Raw     string
	Instant time.Time
}

func parseDateBound(raw string, endOfDay bool) (*DateBound, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &DateBound{Raw: raw, Instant: t}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &DateBound{Raw: raw, Instant: t}, nil
}

// Criteria is the compiled form of an Input. Compilation happens up front so
// a bad content pattern or resource pattern is rejected before any traversal
// begins.
type Criteria struct {
	in              Input
	content         *regexp.Regexp
	resourcePattern *glob.Set
	after, before   *DateBound
}

// ParseCriteria compiles an Input. A bad content pattern yields a
// *RegexError, a bad resource pattern a *glob.PatternError, and a bad date a
// plain error; all three are fatal to the request that carried them.
func ParseCriteria(in Input) (*Criteria, error) {
	c := &Criteria{in: in}

	if in.ContentPattern != "" {
		expr := in.ContentPattern
		if !in.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			// Recompile the bare pattern so the engine message names what
			// the user typed, not our (?i) wrapping.
			if _, bareErr := regexp.Compile(in.ContentPattern); bareErr != nil {
				err = bareErr
			}
			return nil, &RegexError{Pattern: in.ContentPattern, Err: err}
		}
		c.content = re
	}

	if in.ResourcePattern != "" {
		set, err := glob.Compile(in.ResourcePattern)
		if err != nil {
			return nil, err
		}
		c.resourcePattern = set
	}

	if in.SizeMin != nil && *in.SizeMin < 0 {
		return nil, fmt.Errorf("minimum size cannot be negative")
	}
	if in.SizeMax != nil && *in.SizeMax < 0 {
		return nil, fmt.Errorf("maximum size cannot be negative")
	}

	if in.DateAfter != "" {
		b, err := parseDateBound(in.DateAfter, false)
		if err != nil {
			return nil, err
		}
		c.after = b
	}
	if in.DateBefore != "" {
		b, err := parseDateBound(in.DateBefore, true)
		if err != nil {
			return nil, err
		}
		c.before = b
	}

	return c, nil
}

// HasContentFilter reports whether a content pattern is set, in which case
// directories are excluded from results and surviving files are scanned.
func (c *Criteria) HasContentFilter() bool { return c.content != nil }

// ContentRegexp returns the compiled content pattern, nil when unset. Case
// folding is compiled into the pattern, never applied to scanned bytes.
func (c *Criteria) ContentRegexp() *regexp.Regexp { return c.content }

// PathPass applies the resource pattern to a slash-separated relative path.
// No pattern means every path passes.
func (c *Criteria) PathPass(relPath string) bool {
	if c.resourcePattern == nil {
		return true
	}
	return c.resourcePattern.Matches(relPath)
}

// MetadataPass applies the size and date bounds to a descriptor. All present
// bounds are ANDed; a criteria with none passes unconditionally.
//
// Size bounds are inclusive. Directories are size-exempt. A file whose size
// is unknown fails any size bound, and a resource without a modification
// time fails any date bound: an unverifiable constraint is not a satisfied
// one.
func (c *Criteria) MetadataPass(d datasource.Descriptor) bool {
	if d.Kind != datasource.KindDirectory && (c.in.SizeMin != nil || c.in.SizeMax != nil) {
		if d.SizeBytes == nil {
			return false
		}
		if c.in.SizeMin != nil && *d.SizeBytes < *c.in.SizeMin {
			return false
		}
		if c.in.SizeMax != nil && *d.SizeBytes > *c.in.SizeMax {
			return false
		}
	}

	if c.after != nil || c.before != nil {
		if d.LastModified == nil {
			return false
		}
		ts := *d.LastModified
		if c.after != nil && ts.Before(c.after.Instant) {
			return false
		}
		if c.before != nil && ts.After(c.before.Instant) {
			return false
		}
	}

	return true
}

// Describe renders the canonical criteria description.
func (c *Criteria) Describe() string { return DescribeInput(c.in) }

// DescribeInput renders the human-readable criteria description from the raw
// input, so the description is available even when compilation failed. The
// clause order is fixed regardless of how the input was built: content
// pattern, case sensitivity, resource pattern, modified after, modified
// before, minimum size, maximum size. Clauses whose criterion is absent are
// omitted; an empty input renders as the empty string.
func DescribeInput(in Input) string {
	var clauses []string
	if in.ContentPattern != "" {
		// Patterns are embedded verbatim, not escaped: the description echoes
		// what the user typed.
		clauses = append(clauses, fmt.Sprintf("content pattern \"%s\"", in.ContentPattern))
		if in.CaseSensitive {
			clauses = append(clauses, "case-sensitive")
		} else {
			clauses = append(clauses, "case-insensitive")
		}
	}
	if in.ResourcePattern != "" {
		clauses = append(clauses, fmt.Sprintf("resource pattern \"%s\"", in.ResourcePattern))
	}
	if in.DateAfter != "" {
		clauses = append(clauses, "modified after "+in.DateAfter)
	}
	if in.DateBefore != "" {
		clauses = append(clauses, "modified before "+in.DateBefore)
	}
	if in.SizeMin != nil {
		clauses = append(clauses, fmt.Sprintf("minimum size %d bytes", *in.SizeMin))
	}
	if in.SizeMax != nil {
		clauses = append(clauses, fmt.Sprintf("maximum size %d bytes", *in.SizeMax))
	}
	return strings.Join(clauses, ", ")
}
