package undo

import (
	"testing"

	"github.com/dshills/vundo/internal/undo/memstore"
)

func TestPersistenceWriteReadRoundTrip(t *testing.T) {
	tree, store, cursor, _ := newTestTree("a", "b", "c")

	if err := tree.Save(1, 2, 3, false, SaveContext{}); err != nil {
		t.Fatalf("Save seq1: %v", err)
	}
	store.Append(1, "X")
	tree.Sync()

	if err := tree.Save(1, 2, 3, false, SaveContext{}); err != nil {
		t.Fatalf("Save seq2: %v", err)
	}
	store.Append(1, "Y")
	tree.Sync()

	nav := NewNavigator(tree, NewReplayer(store, cursor, nil))
	if _, err := nav.Undo(1, SaveContext{}); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if tree.CurHead() != 2 {
		t.Fatalf("CurHead() = %d, want 2", tree.CurHead())
	}

	lines := store.Snapshot()
	fsys := memstore.NewFileSystem()
	p := NewPersistence(fsys, SHA256Hasher{}, false)

	if err := p.Write("undofile", tree, lines); err != nil {
		t.Fatalf("Write: %v", err)
	}

	into := NewUndoTree(memstore.NewLineStore(), memstore.NewCursor(Position{}))
	if err := p.Read("undofile", into, lines); err != nil {
		t.Fatalf("Read: %v", err)
	}

	if into.OldHead() != 1 || into.NewHead() != 2 || into.CurHead() != 2 {
		t.Errorf("OldHead/NewHead/CurHead = %d/%d/%d, want 1/2/2", into.OldHead(), into.NewHead(), into.CurHead())
	}
	if into.SeqLast() != 2 {
		t.Errorf("SeqLast() = %d, want 2", into.SeqLast())
	}
	if into.NumHead() != 2 {
		t.Errorf("NumHead() = %d, want 2", into.NumHead())
	}

	h1 := into.header(1)
	h2 := into.header(2)
	if h1 == nil || h2 == nil {
		t.Fatal("expected both headers to round-trip")
	}
	if h1.Next != 0 || h1.Prev != 2 {
		t.Errorf("header(1) Next/Prev = %d/%d, want 0/2", h1.Next, h1.Prev)
	}
	if h2.Next != 1 || h2.Prev != 0 {
		t.Errorf("header(2) Next/Prev = %d/%d, want 1/0", h2.Next, h2.Prev)
	}
	if len(h1.Entries) != 1 || h1.Entries[0].Top != 1 {
		t.Errorf("header(1).Entries = %+v, want one entry with Top=1", h1.Entries)
	}
	if len(h2.Entries) != 1 || h2.Entries[0].Top != 1 {
		t.Errorf("header(2).Entries = %+v, want one entry with Top=1", h2.Entries)
	}

	// All graph links must resolve to a real header, round trip or not.
	for _, h := range []*UndoHeader{h1, h2} {
		for _, link := range []uint32{h.Next, h.Prev, h.AltNext, h.AltPrev} {
			if link != 0 && into.header(link) == nil {
				t.Errorf("header(%d) has unresolved link %d", h.Seq, link)
			}
		}
	}
}

func TestPersistenceReadRejectsChangedBuffer(t *testing.T) {
	tree, store, _, _ := newTestTree("a", "b", "c")
	if err := tree.Save(1, 2, 3, false, SaveContext{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Append(1, "X")
	tree.Sync()

	lines := store.Snapshot()
	fsys := memstore.NewFileSystem()
	p := NewPersistence(fsys, SHA256Hasher{}, false)
	if err := p.Write("undofile", tree, lines); err != nil {
		t.Fatalf("Write: %v", err)
	}

	into := NewUndoTree(memstore.NewLineStore(), memstore.NewCursor(Position{}))
	changedLines := []string{"a", "X", "different", "c"}
	err := p.Read("undofile", into, changedLines)
	if err != ErrBufferContentsChanged {
		t.Errorf("Read with changed buffer = %v, want ErrBufferContentsChanged", err)
	}
	if into.NumHead() != 0 {
		t.Error("into should be left untouched on a rejected read")
	}

	err = p.Read("undofile", into, []string{"a", "X", "b"})
	if err != ErrBufferContentsChanged {
		t.Errorf("Read with wrong line count = %v, want ErrBufferContentsChanged", err)
	}
}

func TestPersistenceReadRejectsCorruptFile(t *testing.T) {
	tree, store, _, _ := newTestTree("a", "b", "c")
	if err := tree.Save(1, 2, 3, false, SaveContext{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Append(1, "X")
	tree.Sync()

	lines := store.Snapshot()
	fsys := memstore.NewFileSystem()
	p := NewPersistence(fsys, SHA256Hasher{}, false)
	if err := p.Write("undofile", tree, lines); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := fsys.ReadFile("undofile")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	corrupt := append([]byte(nil), data...)
	corrupt[0] ^= 0xff
	if err := fsys.WriteFile("undofile", corrupt, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	into := NewUndoTree(memstore.NewLineStore(), memstore.NewCursor(Position{}))
	err = p.Read("undofile", into, lines)
	if _, ok := err.(*CorruptFileError); !ok {
		t.Errorf("Read of corrupted magic = %v (%T), want *CorruptFileError", err, err)
	}
}

func TestPersistenceReadMissingFile(t *testing.T) {
	fsys := memstore.NewFileSystem()
	p := NewPersistence(fsys, SHA256Hasher{}, false)
	into := NewUndoTree(memstore.NewLineStore(), memstore.NewCursor(Position{}))
	err := p.Read("nope", into, nil)
	if _, ok := err.(*IOError); !ok {
		t.Errorf("Read of missing file = %v (%T), want *IOError", err, err)
	}
}
