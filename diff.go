package kvo

import (
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slices"
)

// EditOp describes an operation to be performed on a collection to turn its
// content into a new sequence. Index is the position in the collection at the
// time the operation is applied, Source the position of the element in the
// sequence it comes from (the old one for a removal, the new one for an
// insertion).
type EditOp struct {
	Operation string
	Index     int
	Source    int
}

// EditScript returns the insertions and removals turning a into b while
// keeping a longest common subsequence in place. Operations are meant to be
// applied in order.
func EditScript(a, b []string) []EditOp {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var ops []EditOp
	i, j, pos := 0, 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && a[i] == b[j]:
			i, j, pos = i+1, j+1, pos+1
		case j < m && (i == n || lcs[i][j+1] >= lcs[i+1][j]):
			ops = append(ops, EditOp{"Insert", pos, j})
			j, pos = j+1, pos+1
		default:
			ops = append(ops, EditOp{"Remove", pos, i})
			i++
		}
	}
	return ops
}

// Update merges a plain document into target as a single external call.
// Mappings are merged key by key into objects (keys missing from the document
// are kept), sequences are reconciled with collections through an edit
// script, and any other value replaces the current one.
func (g *Graph) Update(target Observable, plain any) error {
	g.begin()
	defer g.end()
	return g.update(target, plain)
}

func (g *Graph) update(target Observable, plain any) error {
	switch t := target.(type) {
	case *Object:
		m, ok := plain.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: object %s, got %T", ErrShapeMismatch, t.ID(), plain)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			nv := m[k]
			cur, _ := t.Get(k)
			if co, ok := cur.(Observable); ok && sameShape(co, nv) {
				if err := g.update(co, nv); err != nil {
					return err
				}
				continue
			}
			t.set(k, g.Adapt(nv))
		}
	case *Collection:
		l, ok := plain.([]any)
		if !ok {
			return fmt.Errorf("%w: collection %s, got %T", ErrShapeMismatch, t.ID(), plain)
		}
		for _, op := range EditScript(canonicalKeys(t.items), canonicalKeys(l)) {
			switch op.Operation {
			case "Insert":
				t.insert(op.Index, g.Adapt(l[op.Source]))
			case "Remove":
				t.removeAt(op.Index)
			}
		}
	}
	return nil
}

func sameShape(o Observable, plain any) bool {
	switch o.(type) {
	case *Object:
		_, ok := plain.(map[string]any)
		return ok
	case *Collection:
		_, ok := plain.([]any)
		return ok
	}
	return false
}

// canonicalKeys encodes every element so that equal content yields equal
// keys. encoding/json sorts mapping keys, which makes the encoding stable.
func canonicalKeys(items []any) []string {
	keys := make([]string, len(items))
	for i, item := range items {
		b, err := json.Marshal(Plain(item))
		if err != nil {
			keys[i] = fmt.Sprintf("%T:%#v", item, item)
			continue
		}
		keys[i] = string(b)
	}
	return keys
}
