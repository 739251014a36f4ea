package undo

import (
	"io"
	"io/fs"
	"time"
)

// Position is a cursor or mark location. Col and ColAdd follow the
// convention of the host editor: Col is zero-based byte offset, ColAdd
// accounts for virtual space past end-of-line (virtual column editing).
type Position struct {
	Lnum   uint32
	Col    uint32
	ColAdd uint32
}

// VisualRegion records the extent and shape of the last visual selection
// active before a change, so it can be restored across undo/redo.
type VisualRegion struct {
	Start     Position
	End       Position
	Mode      uint32
	Curswant  uint32
}

// LineStore is the text buffer collaborator. All line numbers are
// 1-based. Implementations are not required to be safe for concurrent
// use; the tree drives a single LineStore from one goroutine at a time.
// The real text buffer lives outside this module — see
// memstore.LineStore for the in-memory reference implementation used
// by tests and the CLI.
type LineStore interface {
	// LineCount returns the current number of lines in the buffer.
	LineCount() uint32
	// Get returns the text of line lnum (1-based). lnum must satisfy
	// 1 <= lnum <= LineCount().
	Get(lnum uint32) string
	// Append inserts text as a new line directly after afterLnum.
	// afterLnum == 0 inserts before the first line.
	Append(afterLnum uint32, text string)
	// Delete removes line lnum.
	Delete(lnum uint32)
	// Replace overwrites the text of line lnum.
	Replace(lnum uint32, text string)
}

// CursorState is the cursor collaborator.
type CursorState interface {
	Get() Position
	Set(pos Position)
	VirtualCol() int32
}

// ExtmarkUndoObject is an opaque extmark payload recorded on a header.
// Its internal meaning belongs to the extmark subsystem; this engine
// only stores and replays it.
type ExtmarkUndoObject struct {
	Kind    uint32
	Payload []byte
}

// ExtmarkStore applies an extmark undo object in the given direction.
// direction is DirUndo or DirRedo.
type ExtmarkStore interface {
	Apply(obj ExtmarkUndoObject, direction Direction) error
}

// Clock provides wall-clock time for header timestamps.
type Clock interface {
	NowSeconds() int64
}

// SystemClock is the production Clock, backed by time.Now.
type SystemClock struct{}

// NowSeconds returns the current Unix time in seconds.
func (SystemClock) NowSeconds() int64 { return time.Now().Unix() }

// Hasher computes the buffer-content hash stored in the undo file
// header and checked on read.
type Hasher interface {
	// HashLines hashes the given lines, each followed by a single NUL
	// terminator, and returns a fixed-size digest.
	HashLines(lines []string) [32]byte
}

// FileSystem is the persistence-layer collaborator, trimmed to the
// operations the undo file format needs.
type FileSystem interface {
	Open(path string) (io.ReadCloser, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm fs.FileMode) error
	Fsync(path string) error
	MkdirAll(path string, perm fs.FileMode) error
	Stat(path string) (fs.FileInfo, error)
	Remove(path string) error
	SetPerm(path string, perm fs.FileMode) error
	ResolveSymlink(path string) (string, error)
}

// Direction selects which way a header is replayed.
type Direction int

const (
	// DirUndo applies a header backward (undo).
	DirUndo Direction = iota
	// DirRedo applies a header forward (redo).
	DirRedo
)

func (d Direction) String() string {
	if d == DirUndo {
		return "undo"
	}
	return "redo"
}
