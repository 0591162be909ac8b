package kvo

import (
	"fmt"
	"reflect"

	"golang.org/x/exp/slices"
)

// ObserverFunc is the signature of every observer callback. keyPath is the
// path the observer registered for and context the token it supplied.
type ObserverFunc func(change Change, keyPath string, context any)

// Handler wraps an ObserverFunc. Its pointer identifies the registration,
// the way an (observer, method) pair does for AddObserver.
type Handler struct {
	Fn   ObserverFunc
	Once bool
}

func NewHandler(f ObserverFunc) *Handler {
	return &Handler{Fn: f}
}

// RunOnce makes the subscription unregister itself after its first delivery.
func (h *Handler) RunOnce() *Handler {
	h.Once = true
	return h
}

// node holds what objects and collections have in common: identity, the graph
// they belong to, and the subscriptions rooted at them.
type node struct {
	id            string
	graph         *Graph
	subscriptions []*Subscription
}

func (n *node) observable()   {}
func (n *node) base() *node   { return n }
func (n *node) ID() string    { return n.id }
func (n *node) Graph() *Graph { return n.graph }

// Subscriptions returns the subscriptions currently rooted at this node.
func (n *node) Subscriptions() []*Subscription {
	return slices.Clone(n.subscriptions)
}

func (n *node) forget(s *Subscription) {
	index := slices.Index(n.subscriptions, s)
	if index >= 0 {
		n.subscriptions = slices.Delete(n.subscriptions, index, index+1)
	}
}

func resolveMethod(observer any, method string) (ObserverFunc, error) {
	if observer == nil {
		return nil, fmt.Errorf("%w: nil observer", ErrInvalidObserver)
	}
	rv := reflect.ValueOf(observer)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface, reflect.Chan, reflect.Slice:
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %T observer", ErrInvalidObserver, observer)
		}
	}
	m := rv.MethodByName(method)
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: %T has no method %q", ErrInvalidObserver, observer, method)
	}
	fn, ok := m.Interface().(func(Change, string, any))
	if !ok {
		return nil, fmt.Errorf("%w: %T.%s has signature %s", ErrInvalidObserver, observer, method, m.Type())
	}
	return fn, nil
}

func (n *node) addObserver(root Observable, observer any, method string, path string, context any) (*Subscription, error) {
	fn, err := resolveMethod(observer, method)
	if err != nil {
		return nil, err
	}
	segments, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	for _, s := range n.subscriptions {
		if s.handler == nil && s.method == method && s.path == path && Equal(s.observer, observer) && Equal(s.context, context) {
			return s, nil
		}
	}
	s := newSubscription(root, path, segments, context)
	s.observer = observer
	s.method = method
	s.fn = fn
	n.subscriptions = append(n.subscriptions, s)
	s.register()
	return s, nil
}

func (n *node) watch(root Observable, path string, h *Handler, context any) (*Subscription, error) {
	if h == nil || h.Fn == nil {
		return nil, fmt.Errorf("%w: nil handler", ErrInvalidObserver)
	}
	segments, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	for _, s := range n.subscriptions {
		if s.handler == h && s.path == path && Equal(s.context, context) {
			return s, nil
		}
	}
	s := newSubscription(root, path, segments, context)
	s.handler = h
	s.fn = h.Fn
	n.subscriptions = append(n.subscriptions, s)
	s.register()
	return s, nil
}

func (n *node) removeObserver(observer any, path string) {
	for _, s := range slices.Clone(n.subscriptions) {
		if s.handler == nil && s.path == path && Equal(s.observer, observer) {
			s.Unregister()
		}
	}
}

func (n *node) unwatch(path string, h *Handler) {
	for _, s := range slices.Clone(n.subscriptions) {
		if s.handler == h && s.path == path {
			s.Unregister()
		}
	}
}
