// Package formstate holds nested form configuration addressed by dot paths
// such as "adSet.targeting.ageMin".
package formstate

import (
	"encoding/json"
	"strings"
)

// Tree is an immutable snapshot of a nested configuration object. Every write
// returns a new Tree; earlier snapshots are never modified, so callers can
// detect changes by comparing Tree pointers.
type Tree struct {
	root map[string]any
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{root: map[string]any{}}
}

// FromMap wraps an externally supplied object without merging.
func FromMap(root map[string]any) *Tree {
	if root == nil {
		root = map[string]any{}
	}
	return &Tree{root: root}
}

// Root returns the current root object. Treat it as read-only.
func (t *Tree) Root() map[string]any {
	return t.root
}

// Lookup descends the tree key by key and reports whether the leaf exists.
func (t *Tree) Lookup(path string) (any, bool) {
	var cur any = t.root
	for _, key := range splitPath(path) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Get returns the value at path, or "" when any key along the path is missing.
// Numeric and list fields read through Get must be coerced by the caller
// because a missing field is always the empty string.
func (t *Tree) Get(path string) any {
	v, ok := t.Lookup(path)
	if !ok || v == nil {
		return ""
	}
	return v
}

// GetString is Get for input bindings that need a string.
func (t *Tree) GetString(path string) string {
	switch v := t.Get(path).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Set returns a new tree with value stored at path. Only the maps along the
// path are copied; siblings are shared with the receiver. Missing or
// non-object intermediates are replaced with empty objects.
func (t *Tree) Set(path string, value any) *Tree {
	return &Tree{root: setIn(t.root, splitPath(path), value)}
}

// Replace returns a tree whose root is the supplied object, bypassing path
// merging entirely.
func (t *Tree) Replace(root map[string]any) *Tree {
	return FromMap(root)
}

func setIn(m map[string]any, keys []string, value any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	if len(keys) == 1 {
		out[keys[0]] = value
		return out
	}
	child, _ := m[keys[0]].(map[string]any)
	out[keys[0]] = setIn(child, keys[1:], value)
	return out
}

// splitPath keeps empty segments as literal keys, so "" addresses the root's
// own "" field and "a..b" passes through an empty-named object.
func splitPath(path string) []string {
	return strings.Split(path, ".")
}

// Decode converts the tree into a typed value using its JSON field names.
func (t *Tree) Decode(out any) error {
	b, err := json.Marshal(t.root)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// Encode builds a tree from a typed value using its JSON field names.
func Encode(v any) (*Tree, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	root := map[string]any{}
	if err := json.Unmarshal(b, &root); err != nil {
		return nil, err
	}
	return FromMap(root), nil
}
