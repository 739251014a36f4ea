package undo

// NMarks is the fixed number of named-mark slots serialized with every
// header. Named marks are opaque to this engine beyond their storage
// shape (spec. "named marks" bookkeeping is out of scope).
const NMarks = 26

// HeaderFlags snapshots buffer state immediately before a header's
// change. Replay swaps these with a freshly captured post-edit
// snapshot, which is what makes a header its own inverse.
type HeaderFlags struct {
	Changed  bool
	EmptyBuf bool
	Reload   bool
}

// UndoHeader is one undoable step in the tree: a list of entries plus
// the cursor, marks, and graph links needed to splice it into the
// spine or a sibling list.
//
// Seq is the header's stable identity: strictly positive, unique
// within a tree, assigned monotonically from UndoTree.seqLast. The
// four graph links are stored as seq values (0 == null) rather than
// pointers, matching the on-disk pointer encoding exactly and letting
// UndoTree.headers (a map[uint32]*UndoHeader) double as the arena.
type UndoHeader struct {
	Seq    uint32
	Time   int64
	SaveNr uint32

	Cursor     Position
	CursorVCol int32
	Flags      HeaderFlags

	NamedMarks [NMarks]Position
	Visual     VisualRegion

	// Entries are ordered newest-first: new saves are pushed to the front.
	Entries []*UndoEntry
	Extmarks []ExtmarkUndoObject

	// GetbotIdx indexes into Entries for the entry whose Bot is still
	// deferred (computed later from line-count delta), or -1 if none.
	GetbotIdx int

	Prev, Next         uint32
	AltPrev, AltNext   uint32
}

// newHeader allocates a header with no entries and no graph links set.
func newHeader(seq uint32, now int64) *UndoHeader {
	return &UndoHeader{
		Seq:       seq,
		Time:      now,
		GetbotIdx: -1,
	}
}

// getbotEntry returns the entry with a deferred Bot, or nil.
func (h *UndoHeader) getbotEntry() *UndoEntry {
	if h.GetbotIdx < 0 || h.GetbotIdx >= len(h.Entries) {
		return nil
	}
	return h.Entries[h.GetbotIdx]
}
