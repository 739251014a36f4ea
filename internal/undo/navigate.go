package undo

// Mode selects the coordinate system used by Navigator.TimeStep.
type Mode int

const (
	// ModeSeq steps by header sequence number.
	ModeSeq Mode = iota
	// ModeSeconds steps by wall-clock time.
	ModeSeconds
	// ModeFileSaves steps by save-count boundary.
	ModeFileSaves
)

// Navigator selects a target header by seq, time, or save-count
// coordinate and drives Replayer to apply it, maintaining UndoTree's
// head pointers as it goes.
type Navigator struct {
	tree     *UndoTree
	replayer *Replayer

	// ViCompat enables the historical behavior where a second
	// consecutive Undo() call (with no intervening edit) toggles to a
	// redo, matching Vim's 'u' compatibility flag.
	ViCompat    bool
	lastWasUndo bool
}

// NewNavigator binds a Navigator to its tree and replayer.
func NewNavigator(tree *UndoTree, replayer *Replayer) *Navigator {
	return &Navigator{tree: tree, replayer: replayer}
}

// applyOne replays h in direction dir and updates the tree's head
// pointers exactly as a single linear undo/redo step would (§4.2 last
// bullets, §4.3.1).
func (nav *Navigator) applyOne(h *UndoHeader, dir Direction, ctx SaveContext) (SaveContext, error) {
	res, err := nav.replayer.Apply(h, dir, ctx)
	if err != nil {
		return ctx, err
	}
	t := nav.tree
	if dir == DirUndo {
		t.curHead = h.Seq
	} else {
		if h.Prev == 0 {
			t.newHead = h.Seq
		}
		t.curHead = h.Prev
	}
	t.seqCur = res.SeqCur
	t.saveNrCur = res.SaveNrCur
	t.timeCur = res.TimeCur
	return res.RestoredCtx, nil
}

// Undo performs n linear undo steps (§4.3.1). ctx is the buffer's
// current flags/marks/visual snapshot; the returned SaveContext is
// what the host should now treat as current.
func (nav *Navigator) Undo(n int, ctx SaveContext) (SaveContext, error) {
	t := nav.tree
	for i := 0; i < n; i++ {
		var target uint32
		if t.curHead == 0 {
			target = t.newHead
		} else {
			target = t.header(t.curHead).Next
		}
		if target == 0 {
			return ctx, ErrNothingToUndo
		}
		h := t.header(target)
		var err error
		ctx, err = nav.applyOne(h, DirUndo, ctx)
		if err != nil {
			return ctx, err
		}
		t.curHead = target
		nav.lastWasUndo = true
	}
	return ctx, nil
}

// Redo performs n linear redo steps (§4.3.1).
func (nav *Navigator) Redo(n int, ctx SaveContext) (SaveContext, error) {
	t := nav.tree
	for i := 0; i < n; i++ {
		if t.curHead == 0 {
			return ctx, ErrNothingToRedo
		}
		h := t.header(t.curHead)
		var err error
		ctx, err = nav.applyOne(h, DirRedo, ctx)
		if err != nil {
			return ctx, err
		}
		nav.lastWasUndo = false
	}
	return ctx, nil
}

// UndoCompat is the ViCompat-aware entry point: a second consecutive
// call with no intervening Redo/Save toggles to a redo, matching the
// historical 'u' flag behavior (§4.3.1).
func (nav *Navigator) UndoCompat(n int, ctx SaveContext) (SaveContext, error) {
	if nav.ViCompat && nav.lastWasUndo && nav.tree.curHead != 0 {
		return nav.Redo(n, ctx)
	}
	return nav.Undo(n, ctx)
}

// UndoAndForget implements §4.3.3.
func (nav *Navigator) UndoAndForget() error {
	return nav.tree.UndoAndForget()
}

func coordOf(h *UndoHeader, mode Mode) int64 {
	switch mode {
	case ModeSeconds:
		return h.Time
	case ModeFileSaves:
		return int64(h.SaveNr)
	default:
		return int64(h.Seq)
	}
}

// currentCoord returns the coordinate of the tree's current position
// (not necessarily a header that exists, e.g. seqCur may be 0).
func (nav *Navigator) currentCoord(mode Mode) int64 {
	t := nav.tree
	switch mode {
	case ModeSeconds:
		return t.timeCur
	case ModeFileSaves:
		return int64(t.saveNrCur)
	default:
		return int64(t.seqCur)
	}
}

// TimeStep implements §4.3.2. mode selects the coordinate; step is an
// absolute target when absolute is true, else a signed delta from the
// current position. Target selection searches the whole tree; once a
// target header is chosen, navigation walks it via repeated
// undo/redo steps along the header whose lineage the current position
// already belongs to. A target that sits on an unrelated alternate
// branch leaves the position unchanged instead of performing a full
// branch-promotion splice — see DESIGN.md.
func (nav *Navigator) TimeStep(step int64, mode Mode, absolute bool, ctx SaveContext) (SaveContext, error) {
	return nav.timeStepCtx(step, mode, absolute, ctx)
}

func (nav *Navigator) timeStepCtx(step int64, mode Mode, absolute bool, ctx SaveContext) (SaveContext, error) {
	t := nav.tree
	var target int64
	if absolute {
		target = step
	} else {
		target = nav.currentCoord(mode) + step
	}
	if mode == ModeSeq {
		if target < 0 {
			target = 0
		}
		if target > int64(t.seqLast)+1 {
			target = int64(t.seqLast) + 1
		}
	}

	all := t.allHeaders()
	if len(all) == 0 {
		return ctx, ErrNothingToUndo
	}

	var exact *UndoHeader
	var closest *UndoHeader
	var closestDist int64 = -1
	var minCoord int64 = -1
	cur := nav.currentCoord(mode)
	for _, h := range all {
		c := coordOf(h, mode)
		if minCoord == -1 || c < minCoord {
			minCoord = c
		}
		if c == target {
			if exact == nil || h.Seq > exact.Seq {
				exact = h
			}
		}
		between := (cur <= c && c <= target) || (target <= c && c <= cur)
		if between {
			dist := target - c
			if dist < 0 {
				dist = -dist
			}
			if closestDist == -1 || dist < closestDist || (dist == closestDist && h.Seq > closest.Seq) {
				closest = h
				closestDist = dist
			}
		}
	}

	// A target older than every header's own coordinate asks for a state
	// further back than the oldest recorded edit: that is the pristine,
	// fully-undone buffer, represented by seq 0 rather than any header.
	if target < minCoord {
		return nav.navigateToSeq(0, ctx)
	}

	var dest *UndoHeader
	switch {
	case exact != nil:
		dest = exact
	case closest != nil:
		dest = closest
	default:
		return ctx, ErrNothingToUndo
	}

	return nav.navigateToSeq(dest.Seq, ctx)
}

// navigateToSeq walks the current position to the header with the
// given seq, following Next (older) or Prev (newer) as appropriate.
// If destSeq is 0, this fully undoes to the sync boundary before
// old_head.
//
// Direction is decided once, up front, by checking which of the two
// reachable chains from the current position — the undo chain (Next,
// toward older) or the redo chain (Prev, toward newer) — actually
// contains destSeq, rather than comparing destSeq against the current
// seq's raw magnitude on every iteration. Seq numbers are assigned
// globally and do not increase monotonically along the current
// spine once a branch has displaced part of it (the displaced
// headers keep their seqs but leave the reachable chain); comparing
// magnitudes in that case previously made the walk alternate forever
// between undoing and redoing the same header without ever making
// progress (see DESIGN.md, bugs-found entry for this fix). If destSeq
// is on neither chain — it sits on a detached alternate branch with
// no promotion splice in this scope-reduced implementation, see
// DESIGN.md — the position is left unchanged rather than guessed at.
func (nav *Navigator) navigateToSeq(destSeq uint32, ctx SaveContext) (SaveContext, error) {
	t := nav.tree
	if t.curHead == 0 && t.newHead == 0 {
		return ctx, nil
	}
	if t.seqCur == destSeq {
		return ctx, nil
	}

	switch {
	case destSeq == 0 || t.undoChainContains(destSeq):
		for t.seqCur != destSeq {
			var target uint32
			if t.curHead == 0 {
				target = t.newHead
			} else {
				h := t.header(t.curHead)
				if h == nil {
					return ctx, &CorruptTreeError{Op: "navigate"}
				}
				target = h.Next
			}
			if target == 0 {
				return ctx, nil
			}
			h := t.header(target)
			var err error
			ctx, err = nav.applyOne(h, DirUndo, ctx)
			if err != nil {
				return ctx, err
			}
		}
		return ctx, nil

	case t.redoChainContains(destSeq):
		for t.seqCur != destSeq {
			if t.curHead == 0 {
				return ctx, nil
			}
			h := t.header(t.curHead)
			var err error
			ctx, err = nav.applyOne(h, DirRedo, ctx)
			if err != nil {
				return ctx, err
			}
		}
		return ctx, nil

	default:
		return ctx, nil
	}
}

// undoChainContains reports whether destSeq appears among the headers
// reachable from the current position by repeated undo: the Next
// chain starting at the next header not yet undone.
func (t *UndoTree) undoChainContains(destSeq uint32) bool {
	seq := t.newHead
	if t.curHead != 0 {
		h := t.header(t.curHead)
		if h == nil {
			return false
		}
		seq = h.Next
	}
	for seq != 0 {
		if seq == destSeq {
			return true
		}
		h := t.header(seq)
		if h == nil {
			return false
		}
		seq = h.Next
	}
	return false
}

// redoChainContains reports whether destSeq appears among the headers
// reachable from the current position by repeated redo: the Prev
// chain starting at curHead itself.
func (t *UndoTree) redoChainContains(destSeq uint32) bool {
	seq := t.curHead
	for seq != 0 {
		if seq == destSeq {
			return true
		}
		h := t.header(seq)
		if h == nil {
			return false
		}
		seq = h.Prev
	}
	return false
}

// allHeaders returns every header reachable from old_head by
// preferring alt_next at each spine node before continuing along the
// main spine toward newer headers — the same traversal order
// Persistence.Write uses (§4.4). old_head is the oldest header on the
// spine, so advancing toward newer means following Prev, not Next
// (Next walks toward older headers; see DESIGN.md).
func (t *UndoTree) allHeaders() []*UndoHeader {
	var out []*UndoHeader
	seen := make(map[uint32]bool)
	var visit func(seq uint32)
	visit = func(seq uint32) {
		for seq != 0 && !seen[seq] {
			seen[seq] = true
			h := t.header(seq)
			if h == nil {
				return
			}
			out = append(out, h)
			if h.AltNext != 0 {
				visit(h.AltNext)
			}
			seq = h.Prev
		}
	}
	visit(t.oldHead)
	return out
}

// TreeView mirrors the original undotree() structured dictionary
// (SPEC_FULL.md §4.6): a plain nested value suitable for
// encoding/json, not a custom pretty-printer.
type TreeView struct {
	SeqLast  uint32       `json:"seq_last"`
	SeqCur   uint32       `json:"seq_cur"`
	SaveLast uint32       `json:"save_last"`
	Synced   bool         `json:"synced"`
	Entries  []SeqEntry   `json:"entries"`
}

// SeqEntry is one node in the TreeView, with alternates nested under Alt.
type SeqEntry struct {
	Seq    uint32     `json:"seq"`
	Time   int64      `json:"time"`
	SaveNr uint32     `json:"save,omitempty"`
	Alt    []SeqEntry `json:"alt,omitempty"`
}

// Tree builds the structured view of the whole undo tree.
func (nav *Navigator) Tree() TreeView {
	t := nav.tree
	v := TreeView{SeqLast: t.seqLast, SeqCur: t.seqCur, SaveLast: t.saveNrLast, Synced: t.synced}
	v.Entries = t.buildSeqEntries(t.oldHead)
	return v
}

// buildSeqEntries walks the main spine from seq (toward newer, via
// Prev) building the nested representation; alt branches are nested
// as each node's Alt children.
func (t *UndoTree) buildSeqEntries(seq uint32) []SeqEntry {
	var out []SeqEntry
	// Walk from the oldest reachable point toward newer via Prev.
	for seq != 0 {
		h := t.header(seq)
		if h == nil {
			break
		}
		e := SeqEntry{Seq: h.Seq, Time: h.Time, SaveNr: h.SaveNr}
		if h.AltNext != 0 {
			e.Alt = t.buildAltChain(h.AltNext)
		}
		out = append(out, e)
		seq = h.Prev
	}
	return out
}

func (t *UndoTree) buildAltChain(seq uint32) []SeqEntry {
	var out []SeqEntry
	for seq != 0 {
		h := t.header(seq)
		if h == nil {
			break
		}
		e := SeqEntry{Seq: h.Seq, Time: h.Time, SaveNr: h.SaveNr}
		if h.AltNext != 0 {
			e.Alt = t.buildAltChain(h.AltNext)
		}
		out = append(out, e)
		seq = h.Prev
	}
	return out
}
