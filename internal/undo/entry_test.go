package undo

import "testing"

func TestUndoEntryFinalized(t *testing.T) {
	tests := []struct {
		name string
		bot  uint32
		want bool
	}{
		{"deferred", 0, false},
		{"resolved", 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &UndoEntry{Bot: tt.bot}
			if got := e.finalized(); got != tt.want {
				t.Errorf("finalized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUndoEntryOverlapsLine(t *testing.T) {
	tests := []struct {
		name string
		e    UndoEntry
		lnum uint32
		want bool
	}{
		{"within bounded range", UndoEntry{Top: 2, Bot: 6}, 4, true},
		{"at top boundary, excluded", UndoEntry{Top: 2, Bot: 6}, 2, false},
		{"at bot boundary, excluded", UndoEntry{Top: 2, Bot: 6}, 6, false},
		{"above top", UndoEntry{Top: 2, Bot: 6}, 1, false},
		{"deferred bot, inside", UndoEntry{Top: 2, Bot: 0}, 100, true},
		{"deferred bot, at top", UndoEntry{Top: 2, Bot: 0}, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.overlapsLine(tt.lnum); got != tt.want {
				t.Errorf("overlapsLine(%d) = %v, want %v", tt.lnum, got, tt.want)
			}
		})
	}
}
