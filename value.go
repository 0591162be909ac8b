package kvo

import (
	"reflect"
)

// Observable is implemented by *Object and *Collection.
type Observable interface {
	observable()
	base() *node
	ID() string
	Graph() *Graph
}

func isObservable(v any) bool {
	_, ok := v.(Observable)
	return ok
}

// Equal is the default equality used to decide whether a Set is a no-op.
// Objects and collections compare by identity, comparable values with ==,
// anything else with reflect.DeepEqual.
func Equal(v, w any) bool {
	if v == nil || w == nil {
		return v == nil && w == nil
	}
	if isObservable(v) || isObservable(w) {
		vo, ok1 := v.(Observable)
		wo, ok2 := w.(Observable)
		return ok1 && ok2 && vo == wo
	}
	tv, tw := reflect.TypeOf(v), reflect.TypeOf(w)
	if tv != tw {
		return false
	}
	if tv.Comparable() {
		return comparableEqual(v, w)
	}
	return reflect.DeepEqual(v, w)
}

// comparableEqual falls back to reflect.DeepEqual when a comparable type holds
// a non-comparable dynamic value (a struct with an interface field holding a
// slice, for instance) and == panics.
func comparableEqual(v, w any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = reflect.DeepEqual(v, w)
		}
	}()
	return v == w
}

// Plain converts an adapted graph back into plain maps and slices.
// Values that are neither objects nor collections are returned as is.
func Plain(v any) any {
	switch t := v.(type) {
	case *Object:
		m := make(map[string]any, len(t.props))
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			m[k] = Plain(val)
		}
		return m
	case *Collection:
		l := make([]any, len(t.items))
		for i, item := range t.items {
			l[i] = Plain(item)
		}
		return l
	case []any:
		l := make([]any, len(t))
		for i, item := range t {
			l[i] = Plain(item)
		}
		return l
	}
	return v
}

// snapshot copies collections into []any so that a later mutation of the
// collection does not alter an already delivered value.
func snapshot(v any) any {
	switch t := v.(type) {
	case *Collection:
		return t.Items()
	case []any:
		l := make([]any, len(t))
		for i, item := range t {
			l[i] = snapshot(item)
		}
		return l
	}
	return v
}
