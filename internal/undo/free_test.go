package undo

import "testing"

// buildLinearChain creates n headers on a bare tree without touching
// LineStore content (entries are empty placeholders), for free.go unit
// tests that only care about graph-pointer bookkeeping.
func buildLinearChain(t *UndoTree, n int) {
	for i := 0; i < n; i++ {
		seq := t.seqLast + 1
		h := newHeader(seq, int64(i))
		if t.newHead != 0 {
			h.Next = t.newHead
			t.header(t.newHead).Prev = seq
		}
		t.headers[seq] = h
		t.newHead = seq
		if t.oldHead == 0 {
			t.oldHead = seq
		}
		t.seqLast = seq
		t.numhead++
	}
}

func TestFreeHeaderMiddleOfChain(t *testing.T) {
	tree, _, _, _ := newTestTree()
	buildLinearChain(tree, 3) // seq 1 (oldest) .. seq 3 (newest)

	tree.freeHeader(2)

	if tree.header(2) != nil {
		t.Fatal("header(2) should be freed")
	}
	h1 := tree.header(1)
	h3 := tree.header(3)
	if h1.Prev != 3 {
		t.Errorf("header(1).Prev = %d, want 3 (spliced past the freed middle header)", h1.Prev)
	}
	if h3.Next != 1 {
		t.Errorf("header(3).Next = %d, want 1 (spliced past the freed middle header)", h3.Next)
	}
	if tree.NumHead() != 2 {
		t.Errorf("NumHead() = %d, want 2", tree.NumHead())
	}
}

func TestFreeHeaderOldest(t *testing.T) {
	tree, _, _, _ := newTestTree()
	buildLinearChain(tree, 3)

	tree.freeHeader(1)

	if tree.OldHead() != 2 {
		t.Errorf("OldHead() = %d, want 2 after freeing the oldest header", tree.OldHead())
	}
	if tree.header(2).Next != 0 {
		t.Errorf("header(2).Next = %d, want 0 (now the oldest)", tree.header(2).Next)
	}
}

func TestFreeHeaderNewest(t *testing.T) {
	tree, _, _, _ := newTestTree()
	buildLinearChain(tree, 3)

	tree.freeHeader(3)

	if tree.NewHead() != 2 {
		t.Errorf("NewHead() = %d, want 2 after freeing the newest header", tree.NewHead())
	}
	if tree.header(2).Prev != 0 {
		t.Errorf("header(2).Prev = %d, want 0 (now the newest)", tree.header(2).Prev)
	}
}

func TestFreeHeaderClearsCurHead(t *testing.T) {
	tree, _, _, _ := newTestTree()
	buildLinearChain(tree, 2)
	tree.curHead = 1

	tree.freeHeader(1)

	if tree.CurHead() != 0 {
		t.Errorf("CurHead() = %d, want 0 after freeing the referenced header", tree.CurHead())
	}
}

func TestUndoAndForgetPromotesAltBranch(t *testing.T) {
	tree, store, _, _ := newTestTree("a", "b", "c")

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

	nav := NewNavigator(tree, NewReplayer(store, tree.cursor, nil))
	if _, err := nav.Undo(1, SaveContext{}); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	// Edit again to detach seq 2 as an alt branch off a new seq 3.
	if err := tree.Save(1, 2, 3, false, SaveContext{}); err != nil {
		t.Fatalf("Save seq3: %v", err)
	}
	store.Append(1, "Z")
	tree.Sync()

	// Undo back behind seq 3 so curHead points at it again.
	if _, err := nav.Undo(1, SaveContext{}); err != nil {
		t.Fatalf("Undo to seq3: %v", err)
	}
	if tree.CurHead() != 3 {
		t.Fatalf("CurHead() = %d, want 3", tree.CurHead())
	}

	if err := tree.UndoAndForget(); err != nil {
		t.Fatalf("UndoAndForget: %v", err)
	}

	if tree.header(3) != nil {
		t.Error("header(3) should have been spliced out by UndoAndForget")
	}
	// seq 2 (the alt branch hanging off seq 3) should have been
	// promoted into seq 3's old position.
	if tree.CurHead() != 2 {
		t.Errorf("CurHead() = %d, want 2 (promoted alt branch)", tree.CurHead())
	}
	if tree.header(1).Prev != 2 {
		t.Errorf("header(1).Prev = %d, want 2", tree.header(1).Prev)
	}
}

func TestUndoAndForgetNothingToRedo(t *testing.T) {
	tree, _, _, _ := newTestTree("a", "b")
	if err := tree.UndoAndForget(); err != ErrNothingToRedo {
		t.Errorf("UndoAndForget() on synced tree = %v, want ErrNothingToRedo", err)
	}
}
