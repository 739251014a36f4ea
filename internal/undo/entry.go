package undo

// UndoEntry is one contiguous line-range save within a header.
//
// Top is the line above the first changed line (0 permitted: the
// change starts at the top of the buffer). Bot is the line below the
// last changed line; 0 means "to end of buffer" until finalized by
// finalizeBot. Lines holds the captured content, one string per line,
// with len(Lines) == Size; Size == 0 represents a pure insertion with
// no captured content.
type UndoEntry struct {
	Top    uint32
	Bot    uint32
	Size   uint32
	LCount uint32
	Lines  []string
}

// finalized reports whether Bot has been resolved to a concrete line
// number (as opposed to the deferred-computation sentinel 0).
func (e *UndoEntry) finalized() bool { return e.Bot != 0 }

// overlapsLine reports whether lnum falls within the entry's original
// changed range, used by the coalescing scan to detect an
// intervening edit that must abort reuse.
func (e *UndoEntry) overlapsLine(lnum uint32) bool {
	return lnum > e.Top && (e.Bot == 0 || lnum < e.Bot)
}
