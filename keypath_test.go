package kvo

import (
	"errors"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestSplitPath(t *testing.T) {
	tests := []struct {
		path    string
		want    []string
		wantErr bool
	}{
		{"a", []string{"a"}, false},
		{"a.b.c", []string{"a", "b", "c"}, false},
		{"first-name.$ref", []string{"first-name", "$ref"}, false},
		{"", nil, true},
		{".", nil, true},
		{"a.", nil, true},
		{"a..b", nil, true},
		{"a.b c", nil, true},
		{"a\tb", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := SplitPath(tt.path)
			if tt.wantErr {
				assert.Equal(t, true, errors.Is(err, ErrInvalidKeyPath))
				return
			}
			assert.Equal(t, nil, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	g := NewGraph()
	root := g.Adapt(map[string]any{
		"owner": map[string]any{"name": "ada"},
		"pets": []any{
			map[string]any{"name": "rex", "tags": []any{"a", "b"}},
			map[string]any{"name": "tom"},
			"stray",
		},
		"count": 3,
	}).(*Object)

	owner := mustObject(root, "owner")
	values := Resolve(root, []string{"owner", "name"})
	assert.Equal(t, 3, len(values))
	assert.Equal(t, true, values[0] == any(root))
	assert.Equal(t, true, values[1] == any(owner))
	assert.Equal(t, "ada", values[2])

	tests := []struct {
		path string
		want any
	}{
		{"owner.name", "ada"},
		{"pets.name", []any{"rex", "tom", nil}},
		{"count.value", nil},
		{"missing.name.again", nil},
		{"owner.missing", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ValueForKeyPath(root, tt.path)
			assert.Equal(t, nil, err)
			assert.Equal(t, tt.want, got)
		})
	}

	tags, err := root.ValueForKeyPath("pets.tags")
	assert.Equal(t, nil, err)
	l := tags.([]any)
	assert.Equal(t, 3, len(l))
	assert.Equal(t, []any{"a", "b"}, l[0].(*Collection).Items())
	assert.Equal(t, nil, l[1])

	values = Resolve(root, []string{"missing", "name"})
	assert.Equal(t, []any{nil, nil}, values[1:])

	_, err = ValueForKeyPath(root, "a..b")
	assert.Equal(t, true, errors.Is(err, ErrInvalidKeyPath))
}

func TestSetAlongPath(t *testing.T) {
	g := NewGraph()
	root := g.Adapt(map[string]any{
		"owner": map[string]any{"name": "ada"},
		"pets":  []any{map[string]any{"name": "rex"}, "stray"},
	}).(*Object)

	assert.Equal(t, nil, SetAlongPath(root, "owner.name", "grace"))
	v, _ := root.ValueForKeyPath("owner.name")
	assert.Equal(t, "grace", v)

	assert.Equal(t, nil, SetAlongPath(root, "pets.name", "max"))
	v, _ = root.ValueForKeyPath("pets.name")
	assert.Equal(t, []any{"max", nil}, v)

	assert.Equal(t, nil, SetAlongPath(root, "missing.name", "x"))
	assert.Equal(t, false, root.Has("missing"))

	assert.Equal(t, nil, SetAlongPath(root, "top", 1))
	v, _ = root.Get("top")
	assert.Equal(t, 1, v)

	err := SetAlongPath(root, "", 1)
	assert.Equal(t, true, errors.Is(err, ErrInvalidKeyPath))
}
