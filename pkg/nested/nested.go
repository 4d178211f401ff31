// Package nested provides immutable operations over Go maps: flat
// associate/remove/merge primitives generic over map[K]V, and key-path
// operations over nested map[string]any documents. Every operation returns a
// new map and never mutates its input; unchanged subtrees are shared between
// the input and the result.
package nested

import "errors"

// Path operation errors.
var (
	ErrEmptyPath    = errors.New("key path must not be empty")
	ErrEmptySegment = errors.New("key path segment must not be empty")
	ErrPathConflict = errors.New("key path traverses a non-map value")
)

// Assoc returns a new map with key set to value. The input map is not
// modified. A nil input is treated as an empty map.
func Assoc[K comparable, V any](m map[K]V, key K, value V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[key] = value
	return out
}

// Dissoc returns a new map lacking the given keys. Keys absent from the
// input are ignored. The input map is not modified.
func Dissoc[K comparable, V any](m map[K]V, keys ...K) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Merge returns a new map containing the entries of all inputs, left to
// right. On key conflict the rightmost map wins. Nil inputs contribute
// nothing; Merge with no arguments returns an empty map.
func Merge[K comparable, V any](ms ...map[K]V) map[K]V {
	size := 0
	for _, m := range ms {
		size += len(m)
	}
	out := make(map[K]V, size)
	for _, m := range ms {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Update returns a new map with f applied to the value at key. When the key
// is absent, f receives the zero value of V. The input map is not modified.
func Update[K comparable, V any](m map[K]V, key K, f func(V) V) map[K]V {
	return Assoc(m, key, f(m[key]))
}

// GetIn returns the value reached by traversing path through nested maps.
// The second return reports whether the full path resolved. An empty path
// yields the map itself. Traversal stops with false when a segment is absent
// or an intermediate value is not a map[string]any.
func GetIn(m map[string]any, path Path) (any, bool) {
	if len(path) == 0 {
		return m, true
	}
	var cur any = m
	for _, seg := range path {
		inner, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = inner[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// AssocIn returns a new document with value set at path. Absent intermediate
// segments are created as empty maps. Maps along the path are copied;
// sibling entries are shared with the input. Returns ErrEmptyPath for an
// empty path and ErrPathConflict when an intermediate segment holds a
// non-map value.
func AssocIn(m map[string]any, path Path, value any) (map[string]any, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	return assocIn(m, path, value)
}

func assocIn(m map[string]any, path Path, value any) (map[string]any, error) {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	seg := path[0]
	if len(path) == 1 {
		out[seg] = value
		return out, nil
	}
	var child map[string]any
	if existing, ok := m[seg]; ok {
		child, ok = existing.(map[string]any)
		if !ok {
			return nil, ErrPathConflict
		}
	}
	sub, err := assocIn(child, path[1:], value)
	if err != nil {
		return nil, err
	}
	out[seg] = sub
	return out, nil
}

// UpdateIn returns a new document with the value at path replaced by f(old).
// When the path does not resolve, f receives nil, so transforms that supply
// their own default (counters, list appends) work on absent keys. Extra
// transform arguments are captured by the closure. Returns ErrEmptyPath for
// an empty path and ErrPathConflict when an intermediate segment holds a
// non-map value.
func UpdateIn(m map[string]any, path Path, f func(old any) any) (map[string]any, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	old, _ := GetIn(m, path)
	return AssocIn(m, path, f(old))
}

// DissocIn returns a new document lacking the key at path. When the path
// does not resolve the input is returned unchanged; removing an absent key
// is a no-op. Returns ErrEmptyPath for an empty path.
func DissocIn(m map[string]any, path Path) (map[string]any, error) {
	if len(path) == 0 {
		return nil, ErrEmptyPath
	}
	out, _ := dissocIn(m, path)
	return out, nil
}

// dissocIn reports whether anything was removed; when nothing was, the input
// map is returned as-is so untouched trees keep their identity.
func dissocIn(m map[string]any, path Path) (map[string]any, bool) {
	seg := path[0]
	existing, ok := m[seg]
	if !ok {
		return m, false
	}
	if len(path) == 1 {
		out := make(map[string]any, len(m))
		for k, v := range m {
			if k != seg {
				out[k] = v
			}
		}
		return out, true
	}
	child, ok := existing.(map[string]any)
	if !ok {
		// Path dead-ends in a non-map value; nothing to remove.
		return m, false
	}
	sub, changed := dissocIn(child, path[1:])
	if !changed {
		return m, false
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	out[seg] = sub
	return out, true
}

// Clone returns a deep copy of a document. Nested map[string]any and []any
// values are copied recursively; all other values are copied by assignment.
func Clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
