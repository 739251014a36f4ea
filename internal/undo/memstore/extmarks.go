package memstore

import "github.com/dshills/vundo/internal/undo"

// ExtmarkStore is a no-op ExtmarkStore: it records the calls it
// received for test assertions but has no opinion about what an
// extmark undo object means. Extmark internals are out of scope for
// this engine (see SPEC_FULL.md §1).
type ExtmarkStore struct {
	Applied []AppliedExtmark
}

// AppliedExtmark records one Apply call for test inspection.
type AppliedExtmark struct {
	Obj       undo.ExtmarkUndoObject
	Direction undo.Direction
}

// NewExtmarkStore creates an empty ExtmarkStore.
func NewExtmarkStore() *ExtmarkStore {
	return &ExtmarkStore{}
}

// Apply implements undo.ExtmarkStore.
func (s *ExtmarkStore) Apply(obj undo.ExtmarkUndoObject, dir undo.Direction) error {
	s.Applied = append(s.Applied, AppliedExtmark{Obj: obj, Direction: dir})
	return nil
}
