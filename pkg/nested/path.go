// Key-path parsing and formatting. The textual form is dot-separated
// segments; backslash escapes a literal dot or backslash inside a segment.
package nested

import (
	"fmt"
	"strings"
)

// Path is an ordered sequence of keys addressing a value nested within
// maps of maps. An empty Path addresses the document root.
type Path []string

// ParsePath parses the textual key-path form. The empty string parses to an
// empty path. Segments are separated by dots; "\." is a literal dot and
// "\\" a literal backslash. Empty segments are rejected.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	var (
		path Path
		seg  strings.Builder
	)
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			if r != '.' && r != '\\' {
				return nil, fmt.Errorf("invalid escape %q in key path %q", "\\"+string(r), s)
			}
			seg.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '.':
			if seg.Len() == 0 {
				return nil, fmt.Errorf("parsing key path %q: %w", s, ErrEmptySegment)
			}
			path = append(path, seg.String())
			seg.Reset()
		default:
			seg.WriteRune(r)
		}
	}
	if escaped {
		return nil, fmt.Errorf("trailing backslash in key path %q", s)
	}
	if seg.Len() == 0 {
		return nil, fmt.Errorf("parsing key path %q: %w", s, ErrEmptySegment)
	}
	return append(path, seg.String()), nil
}

// String renders the path in its textual form, escaping dots and
// backslashes inside segments. ParsePath(p.String()) round-trips.
func (p Path) String() string {
	escaped := make([]string, len(p))
	for i, seg := range p {
		seg = strings.ReplaceAll(seg, `\`, `\\`)
		seg = strings.ReplaceAll(seg, ".", `\.`)
		escaped[i] = seg
	}
	return strings.Join(escaped, ".")
}

// Child returns a new path with key appended. The receiver is not modified.
func (p Path) Child(key string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = key
	return out
}
