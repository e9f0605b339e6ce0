package timeline

import "testing"

func seqOfIDs(ids ...string) Sequence {
	seq := make(Sequence, len(ids))
	for i, id := range ids {
		seq[i] = Segment{ID: id, Range: TimeRange{Start: 0, End: 1}}
	}
	return seq
}

func sameIDs(t *testing.T, got Sequence, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d segments, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("segment %d = %s, want %s", i, got[i].ID, want[i])
		}
	}
}

func TestHistory_UndoRedoRoundTrip(t *testing.T) {
	h := NewHistory(seqOfIDs())

	states := []Sequence{seqOfIDs("a"), seqOfIDs("a", "b"), seqOfIDs("a", "b", "c")}
	for _, s := range states {
		h.Set(s)
	}

	// N undos return to the initial state.
	for range states {
		if _, ok := h.Undo(); !ok {
			t.Fatal("Undo() = false with history remaining")
		}
	}
	sameIDs(t, h.Present())

	if _, ok := h.Undo(); ok {
		t.Error("Undo() on empty past should report false")
	}

	// N redos reproduce the final state.
	for range states {
		if _, ok := h.Redo(); !ok {
			t.Fatal("Redo() = false with future remaining")
		}
	}
	sameIDs(t, h.Present(), "a", "b", "c")

	if _, ok := h.Redo(); ok {
		t.Error("Redo() on empty future should report false")
	}
}

func TestHistory_SetClearsFuture(t *testing.T) {
	h := NewHistory(seqOfIDs("a"))
	h.Set(seqOfIDs("a", "b"))
	h.Set(seqOfIDs("a", "b", "c"))

	h.Undo()
	h.Undo()
	if !h.CanRedo() {
		t.Fatal("expected redo entries after undo")
	}

	h.Set(seqOfIDs("x"))
	if h.CanRedo() {
		t.Error("Set must discard the redo stack")
	}
	sameIDs(t, h.Present(), "x")

	got, ok := h.Undo()
	if !ok {
		t.Fatal("Undo() after Set failed")
	}
	sameIDs(t, got, "a")
}

func TestHistory_SnapshotsStayUntouched(t *testing.T) {
	first := seqOfIDs("a")
	h := NewHistory(first.Clone())

	second := h.Present().Clone()
	second = append(second, Segment{ID: "b", Range: TimeRange{Start: 0, End: 1}})
	h.Set(second)

	got, _ := h.Undo()
	sameIDs(t, got, "a")
}

func TestHistory_CanUndoCanRedo(t *testing.T) {
	h := NewHistory(seqOfIDs())
	if h.CanUndo() || h.CanRedo() {
		t.Error("fresh history should have no undo or redo")
	}

	h.Set(seqOfIDs("a"))
	if !h.CanUndo() || h.CanRedo() {
		t.Error("after Set: want undo available, redo not")
	}

	h.Undo()
	if h.CanUndo() || !h.CanRedo() {
		t.Error("after Undo: want redo available, undo not")
	}
}
