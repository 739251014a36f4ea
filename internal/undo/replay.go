package undo

// Replayer applies a header forward or backward against a LineStore,
// swapping each entry's recorded content with the content currently
// in the buffer — which is what makes a header its own inverse: apply
// it again in the opposite direction and it restores exactly what was
// there before.
type Replayer struct {
	store    LineStore
	cursor   CursorState
	extmarks ExtmarkStore
}

// NewReplayer binds a Replayer to its collaborators. extmarks may be
// nil if the host has no extmark subsystem; extmark replay is then a no-op.
func NewReplayer(store LineStore, cursor CursorState, extmarks ExtmarkStore) *Replayer {
	return &Replayer{store: store, cursor: cursor, extmarks: extmarks}
}

// ApplyResult carries the bookkeeping Apply computes for the caller
// (normally Navigator) to fold back into the UndoTree's head/cursor
// state, plus the SaveContext the host should now treat as current.
type ApplyResult struct {
	RestoredCtx SaveContext
	SeqCur      uint32
	SaveNrCur   uint32
	TimeCur     int64
}

// Apply replays h against the bound LineStore in the given direction.
// cur is the buffer's current (pre-apply) flags/marks/visual snapshot,
// which is swapped into h; the previous contents of h are returned in
// ApplyResult.RestoredCtx for the host to adopt as its new state.
func (r *Replayer) Apply(h *UndoHeader, dir Direction, cur SaveContext) (ApplyResult, error) {
	for _, e := range h.Entries {
		if err := r.applyEntry(e); err != nil {
			return ApplyResult{}, err
		}
	}

	restoredFlags := h.Flags
	h.Flags = cur.Flags

	restoredMarks := h.NamedMarks
	h.NamedMarks = cur.NamedMarks

	restoredVisual := h.Visual
	h.Visual = cur.Visual

	if r.extmarks != nil {
		if dir == DirUndo {
			for i := len(h.Extmarks) - 1; i >= 0; i-- {
				if err := r.extmarks.Apply(h.Extmarks[i], dir); err != nil {
					return ApplyResult{}, &CorruptTreeError{Op: "replay-extmark", Err: err}
				}
			}
		} else {
			for i := range h.Extmarks {
				if err := r.extmarks.Apply(h.Extmarks[i], dir); err != nil {
					return ApplyResult{}, &CorruptTreeError{Op: "replay-extmark", Err: err}
				}
			}
		}
	}

	r.restoreCursor(h)

	var seqCur uint32
	if dir == DirUndo {
		seqCur = h.Next
	} else {
		seqCur = h.Seq
	}

	saveNrCur := h.SaveNr
	if dir == DirUndo && saveNrCur > 0 {
		saveNrCur--
	}

	return ApplyResult{
		RestoredCtx: SaveContext{Flags: restoredFlags, NamedMarks: restoredMarks, Visual: restoredVisual},
		SeqCur:      seqCur,
		SaveNrCur:   saveNrCur,
		TimeCur:     h.Time,
	}, nil
}

// applyEntry implements §4.2 steps 1-5 for a single entry.
func (r *Replayer) applyEntry(e *UndoEntry) error {
	lineCount := r.store.LineCount()

	botp := e.Bot
	if botp == 0 {
		botp = lineCount + 1
	}

	if e.Top+1 < 1 {
		return &CorruptTreeError{Op: "apply-entry", Err: ErrInvalidRange}
	}
	if e.Top > lineCount || e.Top >= botp || botp > lineCount+1 {
		return &CorruptTreeError{Op: "apply-entry", Err: ErrInvalidRange}
	}

	oldSize := botp - e.Top - 1
	captured := make([]string, oldSize)
	for i := int64(oldSize) - 1; i >= 0; i-- {
		lnum := e.Top + 1 + uint32(i)
		captured[i] = r.store.Get(lnum)
		r.store.Delete(lnum)
	}

	origSize := e.Size
	if r.store.LineCount() == 0 && len(e.Lines) > 0 {
		r.store.Append(e.Top, e.Lines[0])
		for i := 1; i < len(e.Lines); i++ {
			r.store.Append(e.Top+uint32(i), e.Lines[i])
		}
	} else {
		for i, ln := range e.Lines {
			r.store.Append(e.Top+uint32(i), ln)
		}
	}

	e.Lines = captured
	e.Bot = e.Top + origSize + 1
	e.Size = oldSize
	e.LCount = r.store.LineCount()
	return nil
}

// restoreCursor implements §4.2's cursor-restore rule: a one-line-up
// nudge for the common "undo right after typing a new line" case,
// otherwise an exact snap to the header's recorded position.
func (r *Replayer) restoreCursor(h *UndoHeader) {
	current := r.cursor.Get()
	if h.Cursor.Lnum+1 == current.Lnum {
		current.Lnum--
		r.cursor.Set(current)
		return
	}
	r.cursor.Set(h.Cursor)
}
