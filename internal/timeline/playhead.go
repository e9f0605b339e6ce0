package timeline

// PlayheadPosition locates a global playback time inside the sequence.
type PlayheadPosition struct {
	// Index is the segment's position in the sequence.
	Index int
	// Segment is the active segment.
	Segment Segment
	// LocalOffset is seconds into the segment's range.
	LocalOffset float64
	// SourceOffset is the absolute clip-local position for media seeking:
	// Segment.Range.Start + LocalOffset.
	SourceOffset float64
}

// Resolve maps an elapsed global time to the active segment and the offset
// within it. A segment owns the half-open interval [accumulated start,
// accumulated end), so the exact boundary time belongs to the following
// segment. Returns nil for negative times, times at or past the total
// duration, and empty sequences.
//
// The walk is O(n); it runs once per playback tick, not per sample, so
// that is fine.
func Resolve(seq Sequence, globalTime float64) *PlayheadPosition {
	if globalTime < 0 {
		return nil
	}

	elapsed := 0.0
	for i, seg := range seq {
		d := seg.Duration()
		if globalTime < elapsed+d {
			offset := globalTime - elapsed
			return &PlayheadPosition{
				Index:        i,
				Segment:      seg,
				LocalOffset:  offset,
				SourceOffset: seg.Range.Start + offset,
			}
		}
		elapsed += d
	}
	return nil
}
