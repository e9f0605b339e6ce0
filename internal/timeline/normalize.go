package timeline

import (
	"encoding/json"
	"sort"
	"strconv"
)

const (
	// MinSegmentDuration is the shortest segment the engine accepts, in
	// seconds. Anything shorter is editing noise.
	MinSegmentDuration = 0.1

	// DefaultGroupID is assigned when the analysis output carries no group.
	DefaultGroupID = "default"

	// DefaultScore is assigned when the analysis output carries no usable
	// score.
	DefaultScore = 50
)

// AnalyzedSegment is the untrusted per-clip segment proposal returned by
// the analysis collaborator. Nothing about it is guaranteed: ranges may be
// inverted, overlapping, or outside the clip, and groups may claim several
// best takes. Run Normalize before anything touches a Sequence.
type AnalyzedSegment struct {
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	GroupID string  `json:"group_id"`
	Score   int     `json:"score"`
	IsBest  bool    `json:"is_best"`
}

// UnmarshalJSON decodes leniently: numbers may arrive as strings, booleans
// as strings or numbers, and any field may be missing. Model output drifts;
// a malformed field must never fail the whole batch.
func (s *AnalyzedSegment) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Text, _ = raw["text"].(string)
	s.Start = coerceFloat(firstPresent(raw, "start", "start_s"), 0)
	s.End = coerceFloat(firstPresent(raw, "end", "end_s"), 0)
	s.GroupID = coerceString(firstPresent(raw, "group_id", "groupId"))
	s.Score = int(coerceFloat(raw["score"], DefaultScore))
	s.IsBest = coerceBool(firstPresent(raw, "is_best", "isBest"))
	return nil
}

func firstPresent(raw map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			return v
		}
	}
	return nil
}

func coerceFloat(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return fallback
}

func coerceString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func coerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true" || b == "1" || b == "yes"
	case float64:
		return b != 0
	}
	return false
}

// Normalize converts a raw analysis batch into a clean, ordered,
// non-overlapping segment set for one clip of the given duration.
//
// The pass clamps every range into [0, clipDuration] (swapping inverted
// bounds), drops segments shorter than MinSegmentDuration, stable-sorts by
// start, then resolves overlaps left to right by shrinking the earlier
// segment's end to the later segment's start. A segment emptied out by the
// overlap fix is dropped; a positive remnant below the minimum duration is
// kept. Finally each group with more than one member gets exactly one best
// take: the highest score, first occurrence winning ties, overriding
// whatever the collaborator claimed.
//
// Normalize is pure and never fails; the worst input yields an empty slice.
func Normalize(raw []AnalyzedSegment, clipDuration float64) []AnalyzedSegment {
	if clipDuration < 0 {
		clipDuration = 0
	}

	cleaned := make([]AnalyzedSegment, 0, len(raw))
	for _, seg := range raw {
		if seg.Start > seg.End {
			seg.Start, seg.End = seg.End, seg.Start
		}
		seg.Start = clamp(seg.Start, 0, clipDuration)
		seg.End = clamp(seg.End, 0, clipDuration)
		if seg.End-seg.Start < MinSegmentDuration {
			continue
		}
		if seg.GroupID == "" {
			seg.GroupID = DefaultGroupID
		}
		seg.Score = clampInt(seg.Score, 0, 100)
		cleaned = append(cleaned, seg)
	}

	sort.SliceStable(cleaned, func(i, j int) bool {
		return cleaned[i].Start < cleaned[j].Start
	})

	// Later segment wins the boundary: shrink the earlier one.
	for i := 1; i < len(cleaned); i++ {
		if cleaned[i].Start < cleaned[i-1].End {
			cleaned[i-1].End = cleaned[i].Start
		}
	}

	// The overlap fix can empty a segment out entirely; drop those.
	survivors := cleaned[:0]
	for _, seg := range cleaned {
		if seg.End > seg.Start {
			survivors = append(survivors, seg)
		}
	}
	cleaned = survivors

	enforceOneBestPerGroup(cleaned)
	return cleaned
}

func enforceOneBestPerGroup(segs []AnalyzedSegment) {
	members := make(map[string][]int)
	for i, seg := range segs {
		members[seg.GroupID] = append(members[seg.GroupID], i)
	}

	for _, idxs := range members {
		if len(idxs) < 2 {
			continue
		}
		best := idxs[0]
		for _, i := range idxs[1:] {
			if segs[i].Score > segs[best].Score {
				best = i
			}
		}
		for _, i := range idxs {
			segs[i].IsBest = i == best
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
