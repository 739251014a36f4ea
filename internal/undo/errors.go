package undo

import "errors"

// Sentinel errors for simple, contextless conditions.
var (
	// ErrNothingToUndo is returned when undo is requested at the oldest change.
	ErrNothingToUndo = errors.New("undo: already at oldest change")
	// ErrNothingToRedo is returned when redo is requested at the newest change.
	ErrNothingToRedo = errors.New("undo: already at newest change")
	// ErrPolicyDenied is returned when save is refused by edit policy
	// (read-only buffer, sandbox, text locked).
	ErrPolicyDenied = errors.New("undo: edit denied by policy")
	// ErrCancelled is returned when line capture is aborted by
	// cooperative cancellation.
	ErrCancelled = errors.New("undo: save cancelled")
	// ErrUndojoinAfterUndo is returned when :undojoin is requested but
	// the tree has no open header to join, or the most recent tree
	// operation was itself a navigation (not a fresh edit).
	ErrUndojoinAfterUndo = errors.New("undo: undojoin is not allowed after undo")
	// ErrInvalidRange is returned when save preconditions
	// (top < bot <= line_count+1) are violated.
	ErrInvalidRange = errors.New("undo: invalid line range")
	// ErrBufferContentsChanged is returned by Persistence.Read when the
	// stored hash or line count no longer matches the live buffer.
	ErrBufferContentsChanged = errors.New("undo: buffer contents changed since undo file was written")
)

// CorruptTreeError reports an internal invariant violation discovered
// while mutating or walking the tree (missing entry, numhead mismatch,
// out-of-range line number during apply). It is never fatal to the
// process: the caller aborts the current operation and the tree is
// left in a self-consistent, if degraded, state.
type CorruptTreeError struct {
	Op  string
	Err error
}

func (e *CorruptTreeError) Error() string {
	if e.Err == nil {
		return "undo: corrupt tree during " + e.Op
	}
	return "undo: corrupt tree during " + e.Op + ": " + e.Err.Error()
}

func (e *CorruptTreeError) Unwrap() error { return e.Err }

// CorruptFileError reports a structural problem with an on-disk undo
// file: bad magic, unsupported version, hash mismatch, duplicate or
// unresolved seq pointer. Loading aborts and the in-memory tree is
// left untouched.
type CorruptFileError struct {
	Op  string
	Err error
}

func (e *CorruptFileError) Error() string {
	if e.Err == nil {
		return "undo: corrupt undo file during " + e.Op
	}
	return "undo: corrupt undo file during " + e.Op + ": " + e.Err.Error()
}

func (e *CorruptFileError) Unwrap() error { return e.Err }

// IOError reports a read/write failure during persistence.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return "undo: io error during " + e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }
