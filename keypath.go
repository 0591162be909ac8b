package kvo

import (
	"fmt"
	"strings"
	"unicode"
)

// SplitPath splits a dot-separated key path into its segments. A segment may
// not be empty nor contain whitespace or control characters.
func SplitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidKeyPath)
	}
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		if !validSegment(seg) {
			return nil, fmt.Errorf("%w: segment %d of %q", ErrInvalidKeyPath, i, path)
		}
	}
	return segments, nil
}

func validSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for _, r := range seg {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// Resolve walks segments from root and returns the value reached after each
// prefix of the path: values[0] is root and values[len(segments)] the value
// at the end of the path.
//
// A collection stands for all of its elements: the next segment is read from
// each of them and the result is a []any. Once a value is missing or not
// observable, the rest of the path resolves to nil.
func Resolve(root any, segments []string) []any {
	values := make([]any, len(segments)+1)
	values[0] = root
	v := root
	for i, seg := range segments {
		v = valueForKey(v, seg)
		if v == nil {
			break
		}
		values[i+1] = v
	}
	return values
}

func valueForKey(v any, key string) any {
	switch t := v.(type) {
	case *Object:
		val, _ := t.Get(key)
		return val
	case *Collection:
		return broadcast(t.items, key)
	case []any:
		return broadcast(t, key)
	}
	return nil
}

func broadcast(items []any, key string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = valueForKey(item, key)
	}
	return out
}

// ValueForKeyPath returns the value reached through path from root.
func ValueForKeyPath(root any, path string) (any, error) {
	segments, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	values := Resolve(root, segments)
	return values[len(segments)], nil
}

// SetAlongPath sets the last segment of path on every object reached through
// the preceding segments, fanning out over collections. The whole operation
// is a single external call: a subscriber delivers at most one notification.
func SetAlongPath(root Observable, path string, value any) error {
	segments, err := SplitPath(path)
	if err != nil {
		return err
	}
	last := len(segments) - 1
	targets := Resolve(root, segments[:last])[last]

	g := root.Graph()
	g.begin()
	defer g.end()
	forEachObject(targets, func(o *Object) {
		o.set(segments[last], value)
	})
	return nil
}

func forEachObject(v any, fn func(*Object)) {
	switch t := v.(type) {
	case *Object:
		fn(t)
	case *Collection:
		for _, item := range t.Items() {
			forEachObject(item, fn)
		}
	case []any:
		for _, item := range t {
			forEachObject(item, fn)
		}
	}
}
