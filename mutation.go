package kvo

import (
	"golang.org/x/exp/slices"
)

// listener is a low-level callback installed on a single property of an
// Object, or on the shape of a Collection. Listeners are compared by pointer.
type listener struct {
	fn     func(Change)
	active bool
}

func newListener(fn func(Change)) *listener {
	return &listener{fn, true}
}

// listeners is an ordered list of listeners. Dispatch works on a copy so that
// listeners may be added or removed while a change is being delivered; a
// listener removed mid-dispatch is skipped.
type listeners struct {
	list []*listener
}

func (l *listeners) Add(h *listener) {
	l.list = append(l.list, h)
}

func (l *listeners) Remove(h *listener) {
	index := slices.Index(l.list, h)
	if index < 0 {
		return
	}
	h.active = false
	l.list = slices.Delete(l.list, index, index+1)
}

func (l *listeners) Len() int {
	if l == nil {
		return 0
	}
	return len(l.list)
}

func (l *listeners) Dispatch(c Change) {
	if l == nil || len(l.list) == 0 {
		return
	}
	for _, h := range slices.Clone(l.list) {
		if !h.active {
			continue
		}
		h.fn(c)
	}
}

// propertyListeners maps a property name to the listeners observing it.
type propertyListeners struct {
	byName map[string]*listeners
}

func newPropertyListeners() *propertyListeners {
	return &propertyListeners{make(map[string]*listeners)}
}

func (m *propertyListeners) Add(name string, h *listener) {
	ls, ok := m.byName[name]
	if !ok {
		ls = &listeners{}
		m.byName[name] = ls
	}
	ls.Add(h)
}

func (m *propertyListeners) Remove(name string, h *listener) {
	ls, ok := m.byName[name]
	if !ok {
		return
	}
	ls.Remove(h)
	if ls.Len() == 0 {
		delete(m.byName, name)
	}
}

func (m *propertyListeners) Count(name string) int {
	return m.byName[name].Len()
}

func (m *propertyListeners) Dispatch(name string, c Change) {
	m.byName[name].Dispatch(c)
}
