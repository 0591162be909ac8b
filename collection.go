package kvo

import (
	"golang.org/x/exp/slices"
)

// Collection is an observable ordered sequence. Every mutating call delivers
// a single change describing its whole effect to the shape listeners.
type Collection struct {
	node
	items []any
	shape listeners
}

func (c *Collection) Len() int {
	return len(c.items)
}

// At returns the element at index i.
func (c *Collection) At(i int) (any, bool) {
	if i < 0 || i >= len(c.items) {
		return nil, false
	}
	return c.items[i], true
}

// Items returns a copy of the elements.
func (c *Collection) Items() []any {
	return slices.Clone(c.items)
}

// IndexOf returns the index of the first element equal to v, or -1.
func (c *Collection) IndexOf(v any) int {
	return slices.IndexFunc(c.items, func(item any) bool {
		return c.graph.equal(item, v)
	})
}

func (c *Collection) Insert(element any, at int) error {
	return c.InsertObjects(at, element)
}

// InsertObjects inserts elements, in order, starting at index at.
func (c *Collection) InsertObjects(at int, elements ...any) error {
	if at < 0 || at > len(c.items) {
		return indexError(at, len(c.items))
	}
	if len(elements) == 0 {
		return nil
	}
	c.graph.begin()
	defer c.graph.end()
	c.insert(at, elements...)
	return nil
}

// AddObject appends element.
func (c *Collection) AddObject(element any) {
	c.graph.begin()
	defer c.graph.end()
	c.insert(len(c.items), element)
}

func (c *Collection) RemoveAt(at int) error {
	if at < 0 || at >= len(c.items) {
		return indexError(at, len(c.items))
	}
	c.graph.begin()
	defer c.graph.end()
	c.removeAt(at)
	return nil
}

// Remove removes the first element equal to element. Removing an element
// that is not in the collection does nothing.
func (c *Collection) Remove(element any) error {
	i := c.IndexOf(element)
	if i < 0 {
		return nil
	}
	return c.RemoveAt(i)
}

// Replace substitutes element for the one at index at.
func (c *Collection) Replace(at int, element any) error {
	if at < 0 || at >= len(c.items) {
		return indexError(at, len(c.items))
	}
	if c.graph.equal(c.items[at], element) {
		return nil
	}
	c.graph.begin()
	defer c.graph.end()
	old := c.items[at]
	c.items[at] = element
	c.dispatch(Change{
		Kind:     ChangeReplacement,
		OldValue: []any{old},
		NewValue: []any{element},
		Indexes:  []int{at},
	})
	return nil
}

// ReplaceAll substitutes elements for the whole content of the collection.
func (c *Collection) ReplaceAll(elements ...any) {
	if slices.EqualFunc(c.items, elements, c.graph.equal) {
		return
	}
	c.graph.begin()
	defer c.graph.end()
	old := c.items
	c.items = slices.Clone(elements)
	if c.items == nil {
		c.items = []any{}
	}
	c.dispatch(Change{
		Kind:     ChangeReplacement,
		OldValue: old,
		NewValue: slices.Clone(elements),
		Indexes:  indexRange(0, max(len(old), len(elements))),
	})
}

func (c *Collection) insert(at int, elements ...any) {
	c.items = slices.Insert(c.items, at, elements...)
	c.dispatch(Change{
		Kind:     ChangeInsertion,
		NewValue: slices.Clone(elements),
		Indexes:  indexRange(at, at+len(elements)),
	})
}

func (c *Collection) removeAt(at int) {
	removed := c.items[at]
	c.items = slices.Delete(c.items, at, at+1)
	c.dispatch(Change{
		Kind:     ChangeRemoval,
		OldValue: []any{removed},
		Indexes:  []int{at},
	})
}

func (c *Collection) dispatch(ch Change) {
	c.graph.mutations++
	c.shape.Dispatch(ch)
}

func indexRange(from, to int) []int {
	indexes := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		indexes = append(indexes, i)
	}
	return indexes
}

// observeElements calls bind for every current element and returns a
// function undoing all of the bindings. bind may return nil when it installed
// nothing.
func (c *Collection) observeElements(bind func(element any) (cancel func())) func() {
	cancels := make([]func(), 0, len(c.items))
	for _, item := range c.items {
		if cancel := bind(item); cancel != nil {
			cancels = append(cancels, cancel)
		}
	}
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}

// ListenerCount returns the number of shape listeners installed by the
// subscriptions reaching this collection.
func (c *Collection) ListenerCount() int {
	return c.shape.Len()
}

// AddObserver registers observer for path evaluated from the collection.
// The first segment is read from every element, and any change of the
// collection's shape is reported too.
func (c *Collection) AddObserver(observer any, method string, path string, context any) (*Subscription, error) {
	return c.addObserver(c, observer, method, path, context)
}

func (c *Collection) RemoveObserver(observer any, path string) {
	c.removeObserver(observer, path)
}

func (c *Collection) Watch(path string, h *Handler, context any) (*Subscription, error) {
	return c.watch(c, path, h, context)
}

func (c *Collection) Unwatch(path string, h *Handler) {
	c.unwatch(path, h)
}
