package timeline

import (
	"errors"
	"fmt"
)

var (
	ErrSegmentNotFound = errors.New("segment not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrOutOfSequence   = errors.New("time outside sequence")
	ErrSplitTooClose   = errors.New("split point too close to a segment boundary")
	ErrRangeTooSmall   = errors.New("resulting range below minimum duration")
)

// groupPalette is the cycle of colors assigned to take groups, in
// first-seen order.
var groupPalette = []string{
	"#5B8DEF",
	"#EF8354",
	"#4FB286",
	"#C06C84",
	"#F2C14E",
	"#6C5B7B",
	"#46B5D1",
	"#D1495B",
}

// LoadBatch is one clip's worth of normalized analysis output waiting to
// become segments.
type LoadBatch struct {
	ClipID   string
	ClipName string
	Segments []AnalyzedSegment
}

// Load appends one segment per analyzed record, preserving batch order.
// Every segment gets a fresh ID. Colors are assigned per group: the first
// group ever seen in the sequence gets the first palette entry, the next
// unseen group the second, wrapping when the palette runs out. Groups
// already present in seq keep their color.
func Load(seq Sequence, batches []LoadBatch) Sequence {
	out := seq.Clone()

	colors := make(map[string]string)
	for _, seg := range out {
		if _, ok := colors[seg.GroupID]; !ok {
			colors[seg.GroupID] = seg.Color
		}
	}

	for _, batch := range batches {
		for i, rec := range batch.Segments {
			color, ok := colors[rec.GroupID]
			if !ok {
				color = groupPalette[len(colors)%len(groupPalette)]
				colors[rec.GroupID] = color
			}

			name := batch.ClipName
			if name == "" {
				name = batch.ClipID
			}

			out = append(out, Segment{
				ID:         NewSegmentID(),
				ClipID:     batch.ClipID,
				Range:      TimeRange{Start: rec.Start, End: rec.End},
				GroupID:    rec.GroupID,
				IsBest:     rec.IsBest,
				Score:      rec.Score,
				Color:      color,
				Name:       fmt.Sprintf("%s #%d", name, i+1),
				Transcript: rec.Text,
			})
		}
	}
	return out
}

// Delete removes the segment with the given ID. Unknown IDs are a no-op
// returning the sequence unchanged; remaining segments keep their IDs.
func Delete(seq Sequence, segmentID string) Sequence {
	idx := seq.IndexOf(segmentID)
	if idx < 0 {
		return seq
	}
	out := seq.Clone()
	return append(out[:idx], out[idx+1:]...)
}

// Split cuts the segment under globalTime into two pieces at that point.
// Both pieces get fresh IDs and share every other field; the returned ID is
// the later piece, so callers can select it. Splitting within
// MinSegmentDuration of either boundary is rejected with the sequence
// unchanged, as is a time outside the sequence.
func Split(seq Sequence, globalTime float64) (Sequence, string, error) {
	pos := Resolve(seq, globalTime)
	if pos == nil {
		return seq, "", ErrOutOfSequence
	}

	seg := pos.Segment
	if pos.LocalOffset < MinSegmentDuration || seg.Duration()-pos.LocalOffset < MinSegmentDuration {
		return seq, "", ErrSplitTooClose
	}

	cut := seg.Range.Start + pos.LocalOffset

	first := seg
	first.ID = NewSegmentID()
	first.Range.End = cut
	first.Words = nil

	second := seg
	second.ID = NewSegmentID()
	second.Range.Start = cut
	second.Words = nil

	out := seq.Clone()
	out = append(out[:pos.Index], append(Sequence{first, second}, out[pos.Index+1:]...)...)
	return out, second.ID, nil
}

// Reorder moves the segment at fromIndex to toIndex: remove then reinsert,
// not a swap. Both indices address the current sequence.
func Reorder(seq Sequence, fromIndex, toIndex int) (Sequence, error) {
	if fromIndex < 0 || fromIndex >= len(seq) || toIndex < 0 || toIndex >= len(seq) {
		return seq, ErrIndexOutOfRange
	}
	if fromIndex == toIndex {
		return seq, nil
	}

	out := seq.Clone()
	moved := out[fromIndex]
	out = append(out[:fromIndex], out[fromIndex+1:]...)
	out = append(out[:toIndex], append(Sequence{moved}, out[toIndex:]...)...)
	return out, nil
}

// Resize replaces a segment's range. UI drag logic is supposed to keep the
// range sane, but callers are not trusted: the start is clamped to zero and
// a range below the minimum duration is rejected unchanged. Neighbors are
// never adjusted; an interactive timeline is a free-form edit list and may
// carry gaps or overlaps.
func Resize(seq Sequence, segmentID string, newStart, newEnd float64) (Sequence, error) {
	idx := seq.IndexOf(segmentID)
	if idx < 0 {
		return seq, ErrSegmentNotFound
	}

	if newStart < 0 {
		newStart = 0
	}
	if newEnd-newStart < MinSegmentDuration {
		return seq, ErrRangeTooSmall
	}

	out := seq.Clone()
	changed := out[idx].Range.Start != newStart || out[idx].Range.End != newEnd
	out[idx].Range = TimeRange{Start: newStart, End: newEnd}
	if changed {
		// The word layout was derived from the old range.
		out[idx].Words = nil
	}
	return out, nil
}
