package timeline

import (
	"encoding/json"
	"testing"
)

func TestNormalize_ClampsAndSorts(t *testing.T) {
	raw := []AnalyzedSegment{
		{Text: "b", Start: 5, End: 12, GroupID: "g2", Score: 70},
		{Text: "a", Start: -2, End: 4, GroupID: "g1", Score: 60},
	}

	got := Normalize(raw, 10)

	if len(got) != 2 {
		t.Fatalf("got %d segments, want 2", len(got))
	}
	if got[0].Text != "a" || got[1].Text != "b" {
		t.Fatalf("not sorted by start: %+v", got)
	}
	if got[0].Start != 0 {
		t.Errorf("start not clamped to 0: %f", got[0].Start)
	}
	if got[1].End != 10 {
		t.Errorf("end not clamped to duration: %f", got[1].End)
	}
}

func TestNormalize_SwapsInvertedRange(t *testing.T) {
	got := Normalize([]AnalyzedSegment{{Start: 8, End: 2}}, 10)

	if len(got) != 1 {
		t.Fatalf("got %d segments, want 1", len(got))
	}
	if got[0].Start != 2 || got[0].End != 8 {
		t.Errorf("range = [%f, %f], want [2, 8]", got[0].Start, got[0].End)
	}
}

func TestNormalize_DropsDegenerate(t *testing.T) {
	raw := []AnalyzedSegment{
		{Start: 0, End: 0.05},
		{Start: 3, End: 3},
		{Start: 11, End: 14}, // fully outside: clamps to [10, 10]
		{Start: 1, End: 2},
	}

	got := Normalize(raw, 10)

	if len(got) != 1 {
		t.Fatalf("got %d segments, want 1: %+v", len(got), got)
	}
	if got[0].Start != 1 || got[0].End != 2 {
		t.Errorf("survivor = [%f, %f], want [1, 2]", got[0].Start, got[0].End)
	}
}

func TestNormalize_OverlapLaterWins(t *testing.T) {
	raw := []AnalyzedSegment{
		{Start: 0, End: 5, GroupID: "g1", Score: 40, IsBest: false},
		{Start: 3, End: 9, GroupID: "g1", Score: 90, IsBest: true},
	}

	got := Normalize(raw, 9)

	if len(got) != 2 {
		t.Fatalf("got %d segments, want 2", len(got))
	}
	if got[0].End != 3 {
		t.Errorf("previous segment end = %f, want 3", got[0].End)
	}
	if got[1].Start != 3 || got[1].End != 9 {
		t.Errorf("later segment = [%f, %f], want [3, 9]", got[1].Start, got[1].End)
	}
	if got[0].IsBest {
		t.Error("score-40 segment should not be best")
	}
	if !got[1].IsBest {
		t.Error("score-90 segment should be best")
	}
}

func TestNormalize_OverlapCanEmptyASegment(t *testing.T) {
	// Second segment is fully contained from the front: the fix shrinks the
	// first one to zero length, which gets dropped in the final sweep.
	raw := []AnalyzedSegment{
		{Text: "swallowed", Start: 2, End: 4},
		{Text: "winner", Start: 2, End: 8},
	}

	got := Normalize(raw, 10)

	if len(got) != 1 {
		t.Fatalf("got %d segments, want 1: %+v", len(got), got)
	}
	if got[0].Text != "winner" {
		t.Errorf("survivor = %q, want winner", got[0].Text)
	}
}

func TestNormalize_NoOverlapAfterPass(t *testing.T) {
	raw := []AnalyzedSegment{
		{Start: 0, End: 6},
		{Start: 2, End: 5},
		{Start: 4, End: 9},
		{Start: 8.5, End: 10},
	}

	got := Normalize(raw, 10)

	for i := 1; i < len(got); i++ {
		if got[i].Start < got[i-1].End {
			t.Errorf("segments %d and %d overlap: %+v", i-1, i, got)
		}
	}
	for _, seg := range got {
		if seg.Start < 0 || seg.End > 10 {
			t.Errorf("segment outside clip: %+v", seg)
		}
	}
}

func TestNormalize_OneBestPerGroup(t *testing.T) {
	raw := []AnalyzedSegment{
		{Start: 0, End: 1, GroupID: "g1", Score: 80, IsBest: true},
		{Start: 2, End: 3, GroupID: "g1", Score: 80, IsBest: true},
		{Start: 4, End: 5, GroupID: "g1", Score: 30, IsBest: true},
		{Start: 6, End: 7, GroupID: "g2", Score: 10, IsBest: false},
		{Start: 8, End: 9, GroupID: "g2", Score: 20, IsBest: false},
	}

	got := Normalize(raw, 10)

	bestByGroup := make(map[string][]int)
	for i, seg := range got {
		if seg.IsBest {
			bestByGroup[seg.GroupID] = append(bestByGroup[seg.GroupID], i)
		}
	}

	if len(bestByGroup["g1"]) != 1 {
		t.Fatalf("g1 has %d best takes, want 1", len(bestByGroup["g1"]))
	}
	// First occurrence wins the score tie.
	if got[bestByGroup["g1"][0]].Start != 0 {
		t.Errorf("g1 best is not the first max-score member: %+v", got)
	}
	if len(bestByGroup["g2"]) != 1 || got[bestByGroup["g2"][0]].Score != 20 {
		t.Errorf("g2 best should be the score-20 member: %+v", got)
	}
}

func TestNormalize_SingleMemberGroupKeepsFlag(t *testing.T) {
	got := Normalize([]AnalyzedSegment{{Start: 0, End: 1, GroupID: "solo", IsBest: false}}, 10)
	if len(got) != 1 || got[0].IsBest {
		t.Errorf("single-member group should keep its flag: %+v", got)
	}
}

func TestNormalize_Defaults(t *testing.T) {
	got := Normalize([]AnalyzedSegment{{Start: 0, End: 1, Score: 250}, {Start: 2, End: 3, Score: -5}}, 10)

	if got[0].GroupID != DefaultGroupID {
		t.Errorf("GroupID = %q, want %q", got[0].GroupID, DefaultGroupID)
	}
	if got[0].Score != 100 || got[1].Score != 0 {
		t.Errorf("scores not clamped: %d, %d", got[0].Score, got[1].Score)
	}
}

func TestNormalize_EmptyAndGarbage(t *testing.T) {
	if got := Normalize(nil, 10); len(got) != 0 {
		t.Errorf("nil input should yield empty, got %+v", got)
	}
	if got := Normalize([]AnalyzedSegment{{Start: 5, End: 6}}, -1); len(got) != 0 {
		t.Errorf("negative duration should yield empty, got %+v", got)
	}
}

func TestAnalyzedSegment_LenientDecoding(t *testing.T) {
	tests := []struct {
		name string
		json string
		want AnalyzedSegment
	}{
		{
			name: "clean",
			json: `{"text":"hi","start":1.5,"end":3,"group_id":"g1","score":80,"is_best":true}`,
			want: AnalyzedSegment{Text: "hi", Start: 1.5, End: 3, GroupID: "g1", Score: 80, IsBest: true},
		},
		{
			name: "numbers as strings",
			json: `{"start":"2.5","end":"4","score":"90"}`,
			want: AnalyzedSegment{Start: 2.5, End: 4, Score: 90},
		},
		{
			name: "camelCase keys",
			json: `{"start":0,"end":1,"groupId":"g2","isBest":"true"}`,
			want: AnalyzedSegment{End: 1, GroupID: "g2", Score: 50, IsBest: true},
		},
		{
			name: "missing everything",
			json: `{}`,
			want: AnalyzedSegment{Score: 50},
		},
		{
			name: "score garbage",
			json: `{"start":0,"end":1,"score":"high"}`,
			want: AnalyzedSegment{End: 1, Score: 50},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got AnalyzedSegment
			if err := json.Unmarshal([]byte(tc.json), &got); err != nil {
				t.Fatalf("unmarshal error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
