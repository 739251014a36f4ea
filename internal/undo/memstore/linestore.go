// Package memstore provides in-memory reference implementations of
// the undo package's collaborator interfaces, for use by tests and
// the CLI demonstrator. None of these are meant for production use —
// a real editor supplies its own LineStore, CursorState, and
// FileSystem backed by its actual buffer, window, and OS.
package memstore

import "sync"

// LineStore is a slice-backed, 1-based in-memory text buffer. It is
// safe for concurrent reads against the goroutine driving edits,
// guarded by an embedded RWMutex — the same posture the teacher
// editor's document store takes for its buffer map.
type LineStore struct {
	mu    sync.RWMutex
	lines []string
}

// NewLineStore creates a LineStore seeded with the given lines.
func NewLineStore(lines ...string) *LineStore {
	cp := append([]string(nil), lines...)
	return &LineStore{lines: cp}
}

// LineCount implements undo.LineStore.
func (s *LineStore) LineCount() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint32(len(s.lines))
}

// Get implements undo.LineStore.
func (s *LineStore) Get(lnum uint32) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if lnum < 1 || int(lnum) > len(s.lines) {
		return ""
	}
	return s.lines[lnum-1]
}

// Append implements undo.LineStore.
func (s *LineStore) Append(afterLnum uint32, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := int(afterLnum)
	if idx < 0 {
		idx = 0
	}
	if idx > len(s.lines) {
		idx = len(s.lines)
	}
	s.lines = append(s.lines[:idx], append([]string{text}, s.lines[idx:]...)...)
}

// Delete implements undo.LineStore.
func (s *LineStore) Delete(lnum uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lnum < 1 || int(lnum) > len(s.lines) {
		return
	}
	idx := lnum - 1
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
}

// Replace implements undo.LineStore.
func (s *LineStore) Replace(lnum uint32, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lnum < 1 || int(lnum) > len(s.lines) {
		return
	}
	s.lines[lnum-1] = text
}

// Snapshot returns a copy of the current lines, for building a
// SaveContext or computing a buffer hash.
func (s *LineStore) Snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.lines...)
}
