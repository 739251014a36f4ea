// Package undo implements a multi-level, branching undo engine for a
// modal text editor: a per-buffer tree of recorded line-range
// changes, a replayer that applies a step forward or backward, a
// navigator that walks the tree by sequence number, wall-clock time,
// or save count, and a binary persistence format for the whole tree.
//
// The text buffer, cursor, extmark storage, clock, hashing, and file
// system are all external collaborators (see collab.go); this package
// owns only the tree structure and the algorithms that walk it.
package undo
