package timeline

import (
	"math"
	"testing"
)

func testSequence() Sequence {
	return Sequence{
		{ID: "s1", ClipID: "c1", Range: TimeRange{Start: 0, End: 5}, GroupID: "g1", Color: "#5B8DEF"},
		{ID: "s2", ClipID: "c1", Range: TimeRange{Start: 5, End: 8}, GroupID: "g1", Color: "#5B8DEF"},
		{ID: "s3", ClipID: "c2", Range: TimeRange{Start: 2, End: 6}, GroupID: "g2", Color: "#EF8354"},
	}
}

func TestLoad_AssignsIDsAndColors(t *testing.T) {
	batches := []LoadBatch{
		{
			ClipID:   "c1",
			ClipName: "Interview",
			Segments: []AnalyzedSegment{
				{Text: "take one", Start: 0, End: 3, GroupID: "g1", Score: 60},
				{Text: "take two", Start: 3, End: 7, GroupID: "g2", Score: 80},
				{Text: "take three", Start: 7, End: 9, GroupID: "g1", Score: 40},
			},
		},
	}

	seq := Load(nil, batches)

	if len(seq) != 3 {
		t.Fatalf("got %d segments, want 3", len(seq))
	}

	ids := make(map[string]bool)
	for _, seg := range seq {
		if seg.ID == "" {
			t.Fatal("segment with empty ID")
		}
		ids[seg.ID] = true
	}
	if len(ids) != 3 {
		t.Errorf("IDs are not unique: %v", ids)
	}

	// First-seen group gets the first palette entry.
	if seq[0].Color != groupPalette[0] {
		t.Errorf("g1 color = %s, want %s", seq[0].Color, groupPalette[0])
	}
	if seq[1].Color != groupPalette[1] {
		t.Errorf("g2 color = %s, want %s", seq[1].Color, groupPalette[1])
	}
	if seq[2].Color != seq[0].Color {
		t.Errorf("same group should share a color: %s vs %s", seq[2].Color, seq[0].Color)
	}

	if seq[0].Name != "Interview #1" {
		t.Errorf("Name = %q, want Interview #1", seq[0].Name)
	}
	if seq[0].Transcript != "take one" {
		t.Errorf("Transcript = %q", seq[0].Transcript)
	}
}

func TestLoad_PaletteWraps(t *testing.T) {
	segs := make([]AnalyzedSegment, len(groupPalette)+1)
	for i := range segs {
		segs[i] = AnalyzedSegment{Start: float64(i), End: float64(i) + 1, GroupID: string(rune('a' + i))}
	}

	seq := Load(nil, []LoadBatch{{ClipID: "c1", Segments: segs}})

	if seq[len(segs)-1].Color != groupPalette[0] {
		t.Errorf("palette did not wrap: %s", seq[len(segs)-1].Color)
	}
}

func TestLoad_ExistingGroupsKeepColors(t *testing.T) {
	seq := testSequence()
	out := Load(seq, []LoadBatch{{
		ClipID:   "c3",
		Segments: []AnalyzedSegment{{Start: 0, End: 2, GroupID: "g1"}},
	}})

	if out[len(out)-1].Color != seq[0].Color {
		t.Errorf("existing group color changed: %s vs %s", out[len(out)-1].Color, seq[0].Color)
	}
}

func TestDelete(t *testing.T) {
	seq := testSequence()

	out := Delete(seq, "s2")
	if len(out) != 2 {
		t.Fatalf("got %d segments, want 2", len(out))
	}
	if out[0].ID != "s1" || out[1].ID != "s3" {
		t.Errorf("wrong survivors: %s, %s", out[0].ID, out[1].ID)
	}

	same := Delete(seq, "nope")
	if len(same) != 3 {
		t.Errorf("unknown id should be a no-op")
	}
	if &same[0] != &seq[0] {
		t.Error("no-op delete should return the same sequence")
	}
}

func TestSplit_PreservesTotalDuration(t *testing.T) {
	seq := testSequence()
	total := seq.TotalDuration()

	out, secondID, err := Split(seq, 2.5)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}

	if len(out) != 4 {
		t.Fatalf("got %d segments, want 4", len(out))
	}
	if math.Abs(out.TotalDuration()-total) > 1e-9 {
		t.Errorf("total duration changed: %f -> %f", total, out.TotalDuration())
	}

	if out[0].Range.End != 2.5 || out[1].Range.Start != 2.5 {
		t.Errorf("split point wrong: %+v %+v", out[0].Range, out[1].Range)
	}
	if math.Abs(out[0].Duration()+out[1].Duration()-5) > 1e-9 {
		t.Errorf("piece durations do not sum to original")
	}
	if out[1].ID != secondID {
		t.Errorf("returned ID should be the later piece")
	}
	if out[0].ID == "s1" || out[1].ID == "s1" || out[0].ID == out[1].ID {
		t.Error("split pieces must get fresh, distinct IDs")
	}
	if out[0].ClipID != "c1" || out[1].GroupID != "g1" {
		t.Error("split pieces must inherit clip and group")
	}
}

func TestSplit_MiddleSegment(t *testing.T) {
	// Global 6.0 falls 1s into s2 (global 5..8), which is clip-local 5..8.
	out, _, err := Split(testSequence(), 6.0)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if out[1].Range.End != 6 || out[2].Range.Start != 6 {
		t.Errorf("split landed wrong: %+v %+v", out[1].Range, out[2].Range)
	}
}

func TestSplit_RejectsNearBoundary(t *testing.T) {
	seq := testSequence()

	tests := []struct {
		name string
		at   float64
	}{
		{"at segment start", 5.0},
		{"just after start", 5.05},
		{"just before end", 7.95},
		{"negative", -1},
		{"past end", 100},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := Split(seq, tc.at)
			if err == nil {
				t.Fatal("expected an error")
			}
			if len(out) != len(seq) {
				t.Error("sequence must be unchanged on rejection")
			}
		})
	}
}

func TestReorder_IsAMove(t *testing.T) {
	seq := testSequence()
	total := seq.TotalDuration()

	out, err := Reorder(seq, 0, 2)
	if err != nil {
		t.Fatalf("Reorder() error = %v", err)
	}

	got := []string{out[0].ID, out[1].ID, out[2].ID}
	want := []string{"s2", "s3", "s1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if out.TotalDuration() != total {
		t.Error("reorder changed total duration")
	}

	// The inverse move restores the original order.
	back, err := Reorder(out, 2, 0)
	if err != nil {
		t.Fatalf("inverse Reorder() error = %v", err)
	}
	for i := range seq {
		if back[i].ID != seq[i].ID {
			t.Fatalf("inverse reorder did not restore order: %v", back)
		}
	}
}

func TestReorder_Invalid(t *testing.T) {
	seq := testSequence()
	for _, idx := range [][2]int{{-1, 0}, {0, 3}, {3, 0}} {
		if _, err := Reorder(seq, idx[0], idx[1]); err != ErrIndexOutOfRange {
			t.Errorf("Reorder(%d, %d) error = %v, want ErrIndexOutOfRange", idx[0], idx[1], err)
		}
	}

	out, err := Reorder(seq, 1, 1)
	if err != nil || out[1].ID != "s2" {
		t.Errorf("same-index reorder should be a clean no-op")
	}
}

func TestResize(t *testing.T) {
	seq := testSequence()

	out, err := Resize(seq, "s1", 1, 4)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if out[0].Range != (TimeRange{Start: 1, End: 4}) {
		t.Errorf("range = %+v, want [1, 4]", out[0].Range)
	}
	if seq[0].Range.Start != 0 {
		t.Error("input sequence was mutated")
	}

	// Neighbors are left alone even though this opens a gap.
	if out[1].Range != seq[1].Range {
		t.Error("resize must not adjust neighbors")
	}
}

func TestResize_Defensive(t *testing.T) {
	seq := testSequence()

	out, err := Resize(seq, "s1", -3, 4)
	if err != nil {
		t.Fatalf("Resize() error = %v", err)
	}
	if out[0].Range.Start != 0 {
		t.Errorf("negative start not clamped: %f", out[0].Range.Start)
	}

	if _, err := Resize(seq, "s1", 2, 2.05); err != ErrRangeTooSmall {
		t.Errorf("sub-minimum resize error = %v, want ErrRangeTooSmall", err)
	}
	if _, err := Resize(seq, "ghost", 0, 1); err != ErrSegmentNotFound {
		t.Errorf("unknown id error = %v, want ErrSegmentNotFound", err)
	}
}

func TestCutList(t *testing.T) {
	cuts := testSequence().CutList()
	want := []CutRange{
		{ClipID: "c1", Start: 0, End: 5},
		{ClipID: "c1", Start: 5, End: 8},
		{ClipID: "c2", Start: 2, End: 6},
	}
	if len(cuts) != len(want) {
		t.Fatalf("got %d cuts, want %d", len(cuts), len(want))
	}
	for i := range want {
		if cuts[i] != want[i] {
			t.Errorf("cut %d = %+v, want %+v", i, cuts[i], want[i])
		}
	}
}

func TestSequenceClone_IsDeep(t *testing.T) {
	seq := Sequence{{ID: "s1", Words: []TranscriptWord{{ID: "w1", Text: "hello"}}}}
	clone := seq.Clone()
	clone[0].Words[0].IsDeleted = true

	if seq[0].Words[0].IsDeleted {
		t.Error("clone shares word storage with the original")
	}
}
