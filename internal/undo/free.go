package undo

// freeHeader detaches seq from both its spine and its sibling list and
// removes it from the arena. Any of oldHead/newHead/curHead that
// reference it are cleared (or advanced) so the tree stays
// self-consistent. Implements §4.5's single-header case.
func (t *UndoTree) freeHeader(seq uint32) {
	h := t.header(seq)
	if h == nil {
		return
	}
	if h.Prev != 0 {
		if p := t.header(h.Prev); p != nil {
			p.Next = h.Next
		}
	}
	if h.Next != 0 {
		if n := t.header(h.Next); n != nil {
			n.Prev = h.Prev
		}
	}
	if h.AltPrev != 0 {
		if p := t.header(h.AltPrev); p != nil {
			p.AltNext = h.AltNext
		}
	}
	if h.AltNext != 0 {
		if n := t.header(h.AltNext); n != nil {
			n.AltPrev = h.AltPrev
		}
	}
	if t.oldHead == seq {
		// Next points toward older headers; the oldest header's Next
		// is always 0, so the new oldest is the neighbor whose Next
		// pointed at us — that is Prev (see DESIGN.md).
		t.oldHead = h.Prev
	}
	if t.newHead == seq {
		t.newHead = h.Next
	}
	if t.curHead == seq {
		t.curHead = 0
	}
	delete(t.headers, seq)
	delete(t.walkMarks, seq)
	t.numhead--
}

// freeBranch frees an entire alternate branch. If seq sits on the main
// spine (it is, or was, old_head), the branch is unwound header by
// header via freeHeader so spine pointers stay consistent at every
// step. Otherwise it is first detached from its sibling list, then its
// own prev chain is freed, freeing any alt_next subtree hanging off
// each header first (§4.5).
func (t *UndoTree) freeBranch(seq uint32) {
	h := t.header(seq)
	if h == nil {
		return
	}
	if seq == t.oldHead {
		for {
			cur := t.oldHead
			if cur == 0 || t.header(cur) == nil {
				return
			}
			t.freeHeader(cur)
		}
	}

	if h.AltPrev != 0 {
		if p := t.header(h.AltPrev); p != nil {
			p.AltNext = h.AltNext
		}
	}
	if h.AltNext != 0 {
		if n := t.header(h.AltNext); n != nil {
			n.AltPrev = h.AltPrev
		}
	}
	h.AltPrev, h.AltNext = 0, 0
	t.freeChainFreeingAlts(seq)
}

func (t *UndoTree) freeChainFreeingAlts(seq uint32) {
	cur := seq
	for cur != 0 {
		h := t.header(cur)
		if h == nil {
			return
		}
		prev := h.Prev
		if h.AltNext != 0 {
			t.freeBranch(h.AltNext)
		}
		if t.curHead == cur {
			t.curHead = 0
		}
		if t.oldHead == cur {
			t.oldHead = h.Prev
		}
		if t.newHead == cur {
			t.newHead = h.Next
		}
		delete(t.headers, cur)
		delete(t.walkMarks, cur)
		t.numhead--
		cur = prev
	}
}

// UndoAndForget implements §4.3.3: after an undo, splice out the
// current (redo-side) header entirely, promoting any alternate branch
// into its spine position. promoted inherits h's own spine links
// (Prev/Next), not just a dangling reference, since it now occupies
// h's place; if there's nothing to promote the spine is spliced past
// h instead, same as freeHeader.
func (t *UndoTree) UndoAndForget() error {
	if t.curHead == 0 {
		return ErrNothingToRedo
	}
	h := t.header(t.curHead)
	promoted := h.AltNext

	if promoted != 0 {
		ph := t.header(promoted)
		ph.Prev = h.Prev
		ph.Next = h.Next
		ph.AltPrev = h.AltPrev
		if h.Prev != 0 {
			if p := t.header(h.Prev); p != nil {
				p.Next = promoted
			}
		}
		if h.Next != 0 {
			if n := t.header(h.Next); n != nil {
				n.Prev = promoted
			}
		}
	} else {
		if h.Prev != 0 {
			if p := t.header(h.Prev); p != nil {
				p.Next = h.Next
			}
		}
		if h.Next != 0 {
			if n := t.header(h.Next); n != nil {
				n.Prev = h.Prev
			}
		}
	}
	if h.AltPrev != 0 {
		if p := t.header(h.AltPrev); p != nil {
			p.AltNext = promoted
		}
	}

	if t.oldHead == t.curHead {
		t.oldHead = promoted
		if promoted == 0 {
			t.oldHead = h.Prev
		}
	}
	if t.newHead == t.curHead {
		t.newHead = promoted
		if promoted == 0 {
			t.newHead = h.Next
		}
	}
	if t.seqLast == h.Seq {
		t.seqLast--
	}

	delete(t.headers, t.curHead)
	delete(t.walkMarks, t.curHead)
	t.numhead--

	t.curHead = promoted
	if promoted != 0 {
		// promoted sits on the redo side; the buffer is at its Next.
		t.seqCur = h.Next
	} else if nh := t.header(t.newHead); nh != nil {
		t.seqCur = nh.Seq
	} else {
		t.seqCur = 0
	}
	return nil
}
