package undo

import "sync"

// SaveContext bundles the buffer state the host editor owns and this
// engine treats as opaque: flags, named marks, and the visual region.
// None of these have a named collaborator interface (spec out-of-scope
// list), so the host supplies a snapshot at Save time and receives one
// back from Replayer.Apply to restore onto its own buffer/window state.
type SaveContext struct {
	Flags      HeaderFlags
	NamedMarks [NMarks]Position
	Visual     VisualRegion
}

// UndoTree is the per-buffer branching undo history: a doubly-linked
// main spine (Prev/Next) with sibling lists of alternate branches
// (AltPrev/AltNext) for history displaced by a post-undo edit.
//
// Headers are stored in an arena keyed by Seq (already unique), per
// the indexed-arena design notes: no separate ID allocator is needed.
// UndoTree is not internally synchronized — it is driven by a single
// agent per buffer (see SPEC_FULL.md §5); callers needing concurrent
// access must serialize externally.
type UndoTree struct {
	mu sync.Mutex // guards only the cooperative-cancel flag, set from another goroutine

	headers map[uint32]*UndoHeader

	oldHead, newHead, curHead uint32

	synced   bool
	numhead  uint32
	seqLast  uint32
	seqCur   uint32

	saveNrLast, saveNrCur uint32
	timeCur               int64

	// U-command remembered line.
	linePtr   string
	lineLnum  uint32
	lineColnr uint32

	undolevels int64

	// Walk-coloring scratch state, kept out of UndoHeader per the
	// arena design notes so navigation never needs mutable header access.
	walkMarks map[uint32]uint32
	lastMark  uint32
	noMark    uint32

	undojoinPending bool
	cancelled       bool

	store  LineStore
	cursor CursorState
	clock  Clock
}

// Option configures a new UndoTree.
type Option func(*UndoTree)

// WithUndoLevels sets the 'undolevels' budget. Negative values disable
// recording of new headers while preserving existing history (see
// DESIGN.md, Open Questions).
func WithUndoLevels(n int64) Option {
	return func(t *UndoTree) { t.undolevels = n }
}

// WithClock overrides the default SystemClock, primarily for tests.
func WithClock(c Clock) Option {
	return func(t *UndoTree) { t.clock = c }
}

// NewUndoTree creates an empty tree bound to the given LineStore and
// CursorState collaborators.
func NewUndoTree(store LineStore, cursor CursorState, opts ...Option) *UndoTree {
	t := &UndoTree{
		headers:    make(map[uint32]*UndoHeader),
		synced:     true,
		undolevels: 1000,
		walkMarks:  make(map[uint32]uint32),
		store:      store,
		cursor:     cursor,
		clock:      SystemClock{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *UndoTree) header(seq uint32) *UndoHeader {
	if seq == 0 {
		return nil
	}
	return t.headers[seq]
}

// Synced reports whether the tree is at a sync boundary (no open header).
func (t *UndoTree) Synced() bool { return t.synced }

// NumHead returns the count of distinct reachable headers.
func (t *UndoTree) NumHead() uint32 { return t.numhead }

// SeqLast returns the highest seq assigned so far.
func (t *UndoTree) SeqLast() uint32 { return t.seqLast }

// SeqCur returns the seq representing the current buffer state.
func (t *UndoTree) SeqCur() uint32 { return t.seqCur }

// OldHead, NewHead, CurHead expose the three head pointers as seqs (0 = null).
func (t *UndoTree) OldHead() uint32 { return t.oldHead }
func (t *UndoTree) NewHead() uint32 { return t.newHead }
func (t *UndoTree) CurHead() uint32 { return t.curHead }

// Cancel requests cooperative cancellation of an in-progress line
// capture. Safe to call from another goroutine.
func (t *UndoTree) Cancel() {
	t.mu.Lock()
	t.cancelled = true
	t.mu.Unlock()
}

func (t *UndoTree) isCancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := t.cancelled
	t.cancelled = false
	return c
}

// Undojoin requests that the next Save not open a new sync boundary,
// instead reopening the current header — the :undojoin command.
func (t *UndoTree) Undojoin() error {
	if t.newHead == 0 || t.curHead != 0 {
		return ErrUndojoinAfterUndo
	}
	t.undojoinPending = true
	return nil
}

// MarkWritten records a successful buffer write, advancing the save
// counters consumed by the FileSaves navigation mode.
func (t *UndoTree) MarkWritten() {
	t.saveNrLast++
	t.saveNrCur = t.saveNrLast
	if h := t.header(t.newHead); h != nil {
		h.SaveNr = t.saveNrLast
	}
}

// Sync closes the current header so the next Save starts a new one.
func (t *UndoTree) Sync() {
	if !t.synced {
		t.finalizeBot(t.store.LineCount())
	}
	t.synced = true
}

// Save records a pending change to LineStore covering (top, bot) in
// the buffer's current numbering; newbot is the known new bottom line
// after the edit, or 0 if not yet known (resolved later by getbot).
// Save must be called before mutating LineStore.
func (t *UndoTree) Save(top, bot, newbot uint32, reload bool, ctx SaveContext) error {
	lineCount := t.store.LineCount()
	if !(top < bot && bot <= lineCount+1) {
		return ErrInvalidRange
	}
	size := bot - top - 1

	if top+2 == bot {
		t.lineLnum = top + 1
		t.linePtr = t.store.Get(top + 1)
		t.lineColnr = t.cursor.Get().Col
	}

	if t.synced {
		if t.undojoinPending && t.newHead != 0 {
			t.undojoinPending = false
			h := t.header(t.newHead)
			t.synced = false
			return t.captureEntryInto(h, top, newbot, size, reload)
		}
		t.undojoinPending = false
		return t.createHeader(top, newbot, size, reload, ctx)
	}

	if size == 1 {
		if t.tryCoalesce(top, newbot, lineCount) {
			return nil
		}
	}

	h := t.header(t.newHead)
	if h == nil {
		return &CorruptTreeError{Op: "save", Err: ErrNothingToUndo}
	}
	t.finalizeBot(lineCount)
	return t.captureEntryInto(h, top, newbot, size, reload)
}

// createHeader implements §4.1.1.
func (t *UndoTree) createHeader(top, newbot, size uint32, reload bool, ctx SaveContext) error {
	if t.undolevels < 0 {
		return nil
	}

	seq := t.seqLast + 1
	h := newHeader(seq, t.clock.NowSeconds())

	var detached uint32
	if t.curHead != 0 {
		curH := t.header(t.curHead)
		detached = t.curHead
		t.newHead = curH.Next
		h.AltNext = detached
		curH.AltPrev = seq
		t.curHead = 0
	}

	t.trimToUndoLevels(detached)
	if detached != 0 {
		if t.header(detached) == nil {
			// Trimming freed the detached branch.
			h.AltNext = 0
		} else if t.oldHead == detached {
			// Everything had been undone: the new header becomes the
			// root and the old history hangs off it via AltNext.
			t.oldHead = seq
		}
	}

	h.Prev = 0
	h.Next = t.newHead
	if oldNew := t.header(t.newHead); oldNew != nil {
		oldNew.Prev = seq
	}

	t.seqLast = seq
	t.seqCur = seq
	h.Cursor = t.cursor.Get()
	h.CursorVCol = t.cursor.VirtualCol()
	h.Flags = ctx.Flags
	h.NamedMarks = ctx.NamedMarks
	h.Visual = ctx.Visual

	t.headers[seq] = h
	t.newHead = seq
	if t.oldHead == 0 {
		t.oldHead = seq
	}
	t.numhead++

	return t.captureEntryInto(h, top, newbot, size, reload)
}

// trimToUndoLevels implements §4.1.1 step 3.
func (t *UndoTree) trimToUndoLevels(detached uint32) {
	for t.undolevels >= 0 && int64(t.numhead) > t.undolevels {
		candidate := t.oldHead
		if candidate == 0 {
			return
		}
		if candidate == detached {
			t.freeBranch(candidate)
			continue
		}
		ch := t.header(candidate)
		if ch.AltNext == 0 {
			t.freeHeader(candidate)
			continue
		}
		last := candidate
		for t.header(last).AltNext != 0 {
			last = t.header(last).AltNext
		}
		t.freeBranch(last)
	}
}

// tryCoalesce implements §4.1.2.
func (t *UndoTree) tryCoalesce(top, newbot, lineCount uint32) bool {
	h := t.header(t.newHead)
	if h == nil {
		return false
	}
	limit := len(h.Entries)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		e := h.Entries[i]
		if e.Top == top && e.Size == 1 {
			if i > 0 {
				h.Entries = append(h.Entries[:i], h.Entries[i+1:]...)
				h.Entries = append([]*UndoEntry{e}, h.Entries...)
				if h.GetbotIdx == i {
					h.GetbotIdx = 0
				} else if h.GetbotIdx >= 0 && h.GetbotIdx < i {
					h.GetbotIdx++
				}
			}
			e.Bot = newbot
			e.LCount = lineCount
			return true
		}
		if e.LCount != lineCount || (e.Size > 1 && e.overlapsLine(top+1)) {
			return false
		}
	}
	return false
}

// finalizeBot implements §4.1.3.
func (t *UndoTree) finalizeBot(curLineCount uint32) {
	h := t.header(t.newHead)
	if h == nil {
		return
	}
	e := h.getbotEntry()
	if e == nil || e.finalized() {
		return
	}
	bot := int64(e.Top) + int64(e.Size) + 1 + (int64(curLineCount) - int64(e.LCount))
	if bot < 1 || bot > int64(curLineCount) {
		bot = int64(e.Top) + 1
	}
	e.Bot = uint32(bot)
	h.GetbotIdx = -1
}

// captureEntryInto implements §4.1.4.
func (t *UndoTree) captureEntryInto(h *UndoHeader, top, newbot, size uint32, reload bool) error {
	lines := make([]string, size)
	for i := uint32(0); i < size; i++ {
		if t.isCancelled() {
			return ErrCancelled
		}
		lines[i] = t.store.Get(top + 1 + i)
	}
	e := &UndoEntry{Top: top, Bot: newbot, Size: size, LCount: t.store.LineCount(), Lines: lines}

	if h.GetbotIdx >= 0 {
		h.GetbotIdx++
	}
	h.Entries = append([]*UndoEntry{e}, h.Entries...)
	if newbot == 0 {
		h.GetbotIdx = 0
	}
	if reload {
		h.Flags.Reload = true
	}
	t.synced = false
	return nil
}

// SavedLine returns the line remembered for the U (restore-line) command.
func (t *UndoTree) SavedLine() (text string, lnum, col uint32, ok bool) {
	if t.lineLnum == 0 {
		return "", 0, 0, false
	}
	return t.linePtr, t.lineLnum, t.lineColnr, true
}
