package kvo

import (
	"reflect"
)

// Adapt converts plain data into observables: mappings with string keys
// become Objects, slices and arrays become Collections, recursively. Objects
// and Collections are returned unchanged, as is any other value.
// Adapting cyclic data does not terminate.
func (g *Graph) Adapt(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Observable:
		return t
	case map[string]any:
		props := make(map[string]any, len(t))
		for k, val := range t {
			props[k] = g.Adapt(val)
		}
		return g.NewObject(props)
	case []any:
		items := make([]any, len(t))
		for i, val := range t {
			items[i] = g.Adapt(val)
		}
		return g.NewCollection(items...)
	case []byte:
		return t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		props := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			props[iter.Key().String()] = g.Adapt(iter.Value().Interface())
		}
		return g.NewObject(props)
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = g.Adapt(rv.Index(i).Interface())
		}
		return g.NewCollection(items...)
	}
	return v
}
