package memstore

import "github.com/dshills/vundo/internal/undo"

// Cursor is a minimal in-memory CursorState.
type Cursor struct {
	pos  undo.Position
	vcol int32
}

// NewCursor creates a Cursor at the given position.
func NewCursor(pos undo.Position) *Cursor {
	return &Cursor{pos: pos, vcol: -1}
}

// Get implements undo.CursorState.
func (c *Cursor) Get() undo.Position { return c.pos }

// Set implements undo.CursorState.
func (c *Cursor) Set(pos undo.Position) { c.pos = pos }

// VirtualCol implements undo.CursorState.
func (c *Cursor) VirtualCol() int32 { return c.vcol }

// SetVirtualCol is a memstore-only convenience the undo.CursorState
// interface deliberately omits (it only exposes a getter); tests use
// it to stage vcol state before a save.
func (c *Cursor) SetVirtualCol(v int32) { c.vcol = v }
