package kvo

import (
	"fmt"

	"github.com/golang/glog"
)

type SubscriptionState int

const (
	Unbound SubscriptionState = iota
	Bound
	TornDown
)

func (s SubscriptionState) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Bound:
		return "bound"
	case TornDown:
		return "torn-down"
	}
	return fmt.Sprintf("SubscriptionState(%d)", int(s))
}

// Subscription is the binding between an observer and a key path evaluated
// from a root. It owns a chain of links, one per observable currently reached
// by the path, each holding the low-level listener installed on its target.
//
// Whenever a link's target reports a change, the links downstream of it are
// rebuilt from the new value so that the listeners installed always match a
// fresh traversal of the path. The change is then queued in the graph's
// current frame and delivered, coalesced, when the external call returns.
type Subscription struct {
	id       string
	root     Observable
	graph    *Graph
	path     string
	segments []string
	context  any

	observer any
	method   string
	handler  *Handler
	fn       ObserverFunc

	state SubscriptionState
	chain *link
	last  any
}

// link binds one observable reached by the key path.
// For an object, depth is the index of the segment read from it and child
// binds the value of that property. For a collection, depth is the index of
// the segment broadcast to its elements and fanout tears down the element
// bindings; a collection at depth len(segments) ends the path and only its
// shape is observed.
type link struct {
	target Observable
	depth  int
	cancel func()
	child  *link
	fanout func()
}

func (l *link) unbind() {
	if l == nil {
		return
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.fanout != nil {
		l.fanout()
		l.fanout = nil
	}
	l.child.unbind()
	l.child = nil
}

func newSubscription(root Observable, path string, segments []string, context any) *Subscription {
	g := root.Graph()
	return &Subscription{
		id:       g.newID(),
		root:     root,
		graph:    g,
		path:     path,
		segments: segments,
		context:  context,
	}
}

func (s *Subscription) ID() string               { return s.id }
func (s *Subscription) Path() string             { return s.path }
func (s *Subscription) Root() Observable         { return s.root }
func (s *Subscription) Context() any             { return s.context }
func (s *Subscription) State() SubscriptionState { return s.state }

// Segments returns a copy of the key path segments.
func (s *Subscription) Segments() []string {
	return append([]string(nil), s.segments...)
}

// Value returns the current value reached through the key path.
// Values reached through collections are returned as []any.
func (s *Subscription) Value() any {
	values := Resolve(s.root, s.segments)
	return snapshot(values[len(values)-1])
}

func (s *Subscription) register() {
	s.state = Bound
	s.chain = s.bind(s.root, 0)
	s.last = s.Value()
	glog.V(2).Infof("kvo: subscription %s bound to %q on %s", s.id, s.path, s.root.ID())
}

// Unregister tears down every listener installed by the subscription.
// No notification is delivered afterwards, even one already queued in the
// current frame. Calling it more than once is a no-op.
func (s *Subscription) Unregister() {
	if s.state == TornDown {
		return
	}
	s.chain.unbind()
	s.chain = nil
	s.state = TornDown
	s.root.base().forget(s)
	glog.V(2).Infof("kvo: subscription %s to %q torn down", s.id, s.path)
}

func (s *Subscription) bind(v any, depth int) *link {
	switch t := v.(type) {
	case *Object:
		if depth >= len(s.segments) {
			return nil
		}
		s.checkGraph(t)
		l := &link{target: t, depth: depth}
		name := s.segments[depth]
		h := newListener(func(c Change) { s.propertyChanged(l, c) })
		t.listeners.Add(name, h)
		l.cancel = func() { t.listeners.Remove(name, h) }
		if val, ok := t.Get(name); ok {
			l.child = s.bind(val, depth+1)
		}
		return l
	case *Collection:
		s.checkGraph(t)
		l := &link{target: t, depth: depth}
		h := newListener(func(c Change) { s.collectionChanged(l, c) })
		t.shape.Add(h)
		l.cancel = func() { t.shape.Remove(h) }
		if depth < len(s.segments) {
			l.fanout = s.bindElements(t, depth)
		}
		return l
	}
	return nil
}

// bindElements continues the chain on every current element of c. The
// elements receive the same segment as the collection itself.
func (s *Subscription) bindElements(c *Collection, depth int) func() {
	return c.observeElements(func(element any) func() {
		child := s.bind(element, depth)
		if child == nil {
			return nil
		}
		return child.unbind
	})
}

func (s *Subscription) checkGraph(o Observable) {
	if o.Graph() == s.graph {
		return
	}
	s.graph.reportInconsistency(fmt.Errorf("%w: %s reached by %q from %s, its changes are not coalesced with this graph's calls", ErrForeignGraph, o.ID(), s.path, s.root.ID()))
}

func (s *Subscription) propertyChanged(l *link, c Change) {
	if s.state != Bound {
		return
	}
	if l.child == nil || any(l.child.target) != c.NewValue {
		l.child.unbind()
		l.child = s.bind(c.NewValue, l.depth+1)
		if glog.V(2) {
			glog.Infof("kvo: subscription %s rebound %q below %s", s.id, s.path, l.target.ID())
		}
	}
	s.graph.queue(s, c, false)
}

func (s *Subscription) collectionChanged(l *link, c Change) {
	if s.state != Bound {
		return
	}
	terminal := l.depth >= len(s.segments)
	if !terminal {
		if l.fanout != nil {
			l.fanout()
		}
		l.fanout = s.bindElements(l.target.(*Collection), l.depth)
		if glog.V(2) {
			glog.Infof("kvo: subscription %s rebound the elements of %s", s.id, l.target.ID())
		}
	}
	s.graph.queue(s, c, terminal)
}

// deliver hands the coalesced result of one external call to the observer.
// A lone structural change of the collection ending the path is forwarded as
// is; anything else is reported as a setting of the path value.
func (s *Subscription) deliver(p *pendingChange) {
	if s.state != Bound {
		return
	}
	current := s.Value()
	c := p.first
	if p.count > 1 || !p.terminal {
		c = Change{Kind: ChangeSetting, OldValue: s.last, NewValue: current}
	}
	s.last = current
	if s.handler != nil && s.handler.Once {
		s.Unregister()
	}
	s.graph.deliveredCount++
	s.fn(c, s.path, s.context)
}
