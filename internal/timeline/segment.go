// Package timeline implements the in-memory segment engine behind the
// Cutdesk editor: an ordered sequence of time segments cut from source
// clips, the normalization pass that cleans AI-proposed segments, pure
// edit operations (split, reorder, resize, delete), playhead resolution,
// and snapshot-based undo/redo history.
//
// All times are clip-local seconds unless a function says otherwise. The
// position of a segment in the global (concatenated) timeline is implied
// by its index: segment i starts at the sum of durations of segments 0..i-1.
package timeline

import "github.com/google/uuid"

// TimeRange is a half-open range of clip-local seconds.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r TimeRange) Duration() float64 {
	return r.End - r.Start
}

func (r TimeRange) IsValid() bool {
	return r.End > r.Start
}

// TranscriptWord is one word of a segment transcript. Deleting a word is a
// soft flag so "restore all" stays possible.
type TranscriptWord struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	IsDeleted bool    `json:"is_deleted"`
	IsFiller  bool    `json:"is_filler"`
}

// Segment is one atomic unit of the edited sequence: a bounded range of a
// source clip plus the take metadata the analysis pass attached to it.
// Clips are referenced by ID only, never embedded, so a clip can be removed
// or rebound without touching segments.
type Segment struct {
	ID         string           `json:"id"`
	ClipID     string           `json:"clip_id"`
	Range      TimeRange        `json:"range"`
	GroupID    string           `json:"group_id"`
	IsBest     bool             `json:"is_best"`
	Score      int              `json:"score"`
	Color      string           `json:"color"`
	Name       string           `json:"name"`
	Transcript string           `json:"transcript,omitempty"`
	Words      []TranscriptWord `json:"words,omitempty"`
}

func (s Segment) Duration() float64 {
	return s.Range.Duration()
}

// Sequence is the edited timeline: slice order is playback order. The
// sequence exclusively owns its segments; operations on it are pure and
// return new values, so snapshots held by a History stay untouched.
type Sequence []Segment

// Clone returns a deep copy. Word slices are copied too, so mutating a
// clone's words never leaks into history snapshots.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	out := make(Sequence, len(s))
	copy(out, s)
	for i := range out {
		if out[i].Words != nil {
			words := make([]TranscriptWord, len(out[i].Words))
			copy(words, out[i].Words)
			out[i].Words = words
		}
	}
	return out
}

// TotalDuration is the length of the concatenated timeline in seconds.
func (s Sequence) TotalDuration() float64 {
	total := 0.0
	for _, seg := range s {
		total += seg.Duration()
	}
	return total
}

// IndexOf returns the position of the segment with the given ID, or -1.
func (s Sequence) IndexOf(id string) int {
	for i, seg := range s {
		if seg.ID == id {
			return i
		}
	}
	return -1
}

// CutRange is one entry of the ordered cut list handed to render/export:
// a clip reference and a clip-local range.
type CutRange struct {
	ClipID string  `json:"clip_id"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
}

// CutList flattens the sequence into the ordered ranges an exporter must
// concatenate.
func (s Sequence) CutList() []CutRange {
	cuts := make([]CutRange, len(s))
	for i, seg := range s {
		cuts[i] = CutRange{ClipID: seg.ClipID, Start: seg.Range.Start, End: seg.Range.End}
	}
	return cuts
}

// NewSegmentID returns a fresh unique segment identifier.
func NewSegmentID() string {
	return uuid.NewString()
}
