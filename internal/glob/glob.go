// Package glob compiles resource-path patterns into matchers for
// slash-separated relative paths.
//
// A pattern is a list of alternatives separated by unescaped '|'. Each
// alternative is either a bare name (no separator, no wildcard), which matches
// a path whose final segment equals it at any depth, or a path glob where '*'
// matches within a segment and '**' spans zero or more whole segments.
// Character classes in square brackets are passed through to the underlying
// regular expression.
package glob

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// PatternError reports a pattern that could not be compiled, identifying the
// offending alternative.
type PatternError struct {
	Alternative string
	Err         error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid resource pattern %q: %v", e.Alternative, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Set is a compiled pattern. A path matches the set if it matches any
// alternative. Matching depends only on the pattern and the path.
type Set struct {
	pattern string
	alts    []alternative
}

type alternative struct {
	source string
	re     *regexp.Regexp
}

// Compile parses and compiles a pattern string into a Set.
func Compile(pattern string) (*Set, error) {
	set := &Set{pattern: pattern}
	for _, alt := range splitAlternatives(pattern) {
		if alt == "" {
			return nil, &PatternError{Alternative: alt, Err: fmt.Errorf("empty alternative")}
		}
		expr, err := translate(alt)
		if err != nil {
			return nil, &PatternError{Alternative: alt, Err: err}
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, &PatternError{Alternative: alt, Err: err}
		}
		set.alts = append(set.alts, alternative{source: alt, re: re})
	}
	return set, nil
}

// String returns the original pattern string.
func (s *Set) String() string { return s.pattern }

// Matches reports whether the relative path matches any alternative.
// The path is normalized to forward slashes with no leading "./" or "/".
func (s *Set) Matches(relPath string) bool {
	p := normalize(relPath)
	for _, alt := range s.alts {
		if alt.re.MatchString(p) {
			return true
		}
	}
	return false
}

func normalize(relPath string) string {
	p := path.Clean(relPath)
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// splitAlternatives splits on '|' characters not preceded by a backslash.
func splitAlternatives(pattern string) []string {
	var alts []string
	var cur strings.Builder
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			cur.WriteRune('\\')
			cur.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			alts = append(alts, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if escaped {
		cur.WriteRune('\\')
	}
	alts = append(alts, cur.String())
	return alts
}

// translate converts one alternative into an anchored regular expression.
func translate(alt string) (string, error) {
	if isBareName(alt) {
		return "^(?:.*/)?" + regexp.QuoteMeta(unescape(alt)) + "$", nil
	}

	segments := strings.Split(alt, "/")
	var b strings.Builder
	b.WriteString("^")
	needSlash := false
	for i, seg := range segments {
		last := i == len(segments)-1
		if seg == "**" {
			// A ** segment absorbs zero or more whole segments. Each
			// occurrence is independent, so adjacent ** segments are fine.
			switch {
			case last && needSlash:
				b.WriteString("(?:/.*)?")
			case last:
				b.WriteString(".*")
			case needSlash:
				b.WriteString("(?:/.*)?")
			default:
				b.WriteString("(?:.*/)?")
			}
			continue
		}
		if needSlash {
			b.WriteString("/")
		}
		expr, err := translateSegment(seg)
		if err != nil {
			return "", err
		}
		b.WriteString(expr)
		needSlash = true
	}
	b.WriteString("$")
	return b.String(), nil
}

// translateSegment converts a single path segment, where '*' matches any run
// of characters except '/' and bracket expressions pass through.
func translateSegment(seg string) (string, error) {
	var b strings.Builder
	runes := []rune(seg)
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; r {
		case '*':
			b.WriteString("[^/]*")
		case '\\':
			if i+1 < len(runes) {
				i++
				b.WriteString(regexp.QuoteMeta(string(runes[i])))
			} else {
				b.WriteString(regexp.QuoteMeta("\\"))
			}
		case '[':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == ']' && j > i+1 {
					end = j
					break
				}
			}
			if end < 0 {
				return "", fmt.Errorf("unterminated character class")
			}
			b.WriteString(string(runes[i : end+1]))
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String(), nil
}

// isBareName reports whether the alternative has no separator and no wildcard
// syntax, in which case it matches by final path segment at any depth.
func isBareName(alt string) bool {
	return !strings.ContainsAny(alt, "/*[")
}

// unescape drops backslashes that protect literal characters, such as the
// escaped '|' that survives alternative splitting.
func unescape(alt string) string {
	var b strings.Builder
	escaped := false
	for _, r := range alt {
		if !escaped && r == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteRune(r)
	}
	if escaped {
		b.WriteRune('\\')
	}
	return b.String()
}
