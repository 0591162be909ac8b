// Package kvo implements key-value observation over graphs of observable
// objects and collections.
package kvo

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidObserver = errors.New("invalid observer")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrInvalidKeyPath  = errors.New("invalid key path")
	ErrForeignGraph    = errors.New("observable belongs to another graph")
	ErrShapeMismatch   = errors.New("document does not match target")
)

func indexError(index, length int) error {
	return fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, index, length)
}

// ChangeKind tells a property change apart from the kinds of structural
// collection mutation.
type ChangeKind int

const (
	ChangeSetting ChangeKind = iota
	ChangeInsertion
	ChangeRemoval
	ChangeReplacement
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeSetting:
		return "setting"
	case ChangeInsertion:
		return "insertion"
	case ChangeRemoval:
		return "removal"
	case ChangeReplacement:
		return "replacement"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change describes a mutation as seen by an observer.
//
// For a ChangeSetting, OldValue and NewValue hold the property value (or the
// value reached through the observed key path) before and after the mutation.
// For collection mutations, Indexes lists the affected positions and
// OldValue/NewValue hold the removed and inserted elements as []any.
type Change struct {
	Kind     ChangeKind
	OldValue any
	NewValue any
	Indexes  []int
}

// IsCollectionMutation reports whether the change describes a structural
// change of a collection.
func (c Change) IsCollectionMutation() bool {
	return c.Kind != ChangeSetting
}

func (c Change) String() string {
	if c.IsCollectionMutation() {
		return fmt.Sprintf("%s at %v: %v -> %v", c.Kind, c.Indexes, c.OldValue, c.NewValue)
	}
	return fmt.Sprintf("%s: %v -> %v", c.Kind, c.OldValue, c.NewValue)
}
