package kvo

import (
	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
)

// Graph is the context shared by a set of observable objects and collections.
// It carries the configuration (equality, id generation, inconsistency
// reporting) and tracks the external mutating calls currently in flight so
// that every call delivers at most one notification per subscription.
//
// A Graph and everything created from it must be used from a single goroutine.
type Graph struct {
	equal          func(v, w any) bool
	newID          func() string
	inconsistency  func(error)
	depth          int
	current        *batch
	deliveredCount int

	// mutations numbers the elementary changes dispatched to listeners. A
	// subscription reaching the same observable twice, through an element
	// present twice in a collection, hears one change twice under one number.
	mutations uint64
}

// NewGraph returns a Graph configured by the given options.
func NewGraph(options ...func(*Graph) *Graph) *Graph {
	g := &Graph{
		equal: Equal,
		newID: NewIDgenerator(),
	}
	for _, option := range options {
		g = option(g)
	}
	return g
}

// NewIDgenerator returns the default id generator: lexicographically sortable
// ULIDs, so that ids reflect creation order.
func NewIDgenerator() func() string {
	return func() string {
		return ulid.Make().String()
	}
}

// WithEquality replaces the equality used to detect no-op sets.
func WithEquality(equal func(v, w any) bool) func(*Graph) *Graph {
	return func(g *Graph) *Graph {
		if equal != nil {
			g.equal = equal
		}
		return g
	}
}

// WithIDGenerator replaces the generator of object and collection ids.
func WithIDGenerator(newID func() string) func(*Graph) *Graph {
	return func(g *Graph) *Graph {
		if newID != nil {
			g.newID = newID
		}
		return g
	}
}

// WithInconsistencyHandler registers a function called whenever the
// observation layer could not be kept fully consistent after a mutation.
// The mutation itself is never rolled back.
func WithInconsistencyHandler(h func(error)) func(*Graph) *Graph {
	return func(g *Graph) *Graph {
		g.inconsistency = h
		return g
	}
}

// Delivered returns the number of notifications delivered to observers so far.
func (g *Graph) Delivered() int {
	return g.deliveredCount
}

func (g *Graph) reportInconsistency(err error) {
	glog.Warningf("kvo: %v", err)
	if g.inconsistency != nil {
		g.inconsistency(err)
	}
}

// batch accumulates the elementary changes queued for each subscription during
// one external mutating call.
type batch struct {
	order   []*Subscription
	pending map[*Subscription]*pendingChange
}

type pendingChange struct {
	count    int
	first    Change
	terminal bool // first was a shape change of the collection ending the key path
	seq      uint64
}

func newBatch() *batch {
	return &batch{pending: make(map[*Subscription]*pendingChange)}
}

// begin marks the start of an external mutating call. Calls made while
// another one is in progress (a computed property setter calling Set, for
// instance) join the batch of the outermost call.
func (g *Graph) begin() {
	g.depth++
	if g.depth == 1 {
		g.current = newBatch()
	}
}

// end closes the call opened by the matching begin. When the outermost call
// returns, every subscription that recorded changes receives one coalesced
// notification. Observers run once the batch is closed: a mutation they
// perform is a new external call with its own batch.
func (g *Graph) end() {
	g.depth--
	if g.depth > 0 {
		return
	}
	b := g.current
	g.current = nil
	for _, s := range b.order {
		s.deliver(b.pending[s])
	}
}

// queue records an elementary change for s in the batch of the call in
// progress.
func (g *Graph) queue(s *Subscription, c Change, terminal bool) {
	b := g.current
	if b == nil {
		s.deliver(&pendingChange{count: 1, first: c, terminal: terminal, seq: g.mutations})
		return
	}
	p, ok := b.pending[s]
	if ok {
		if p.seq != g.mutations {
			p.count++
			p.seq = g.mutations
		}
		return
	}
	b.pending[s] = &pendingChange{count: 1, first: c, terminal: terminal, seq: g.mutations}
	b.order = append(b.order, s)
}

// NewObject returns an Observable Object holding a copy of props.
// Values are stored as given; use Adapt to convert nested plain data.
func (g *Graph) NewObject(props map[string]any) *Object {
	o := &Object{
		node:      node{id: g.newID(), graph: g},
		props:     make(map[string]any, len(props)),
		listeners: newPropertyListeners(),
	}
	for k, v := range props {
		o.props[k] = v
	}
	return o
}

// NewCollection returns an Observable Collection holding items in order.
func (g *Graph) NewCollection(items ...any) *Collection {
	c := &Collection{
		node:  node{id: g.newID(), graph: g},
		items: make([]any, 0, len(items)),
	}
	c.items = append(c.items, items...)
	return c
}
