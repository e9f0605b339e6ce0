package timeline

import (
	"fmt"
	"strings"
)

// fillers are hesitation markers eligible for bulk removal. Matched against
// lowercased words with surrounding punctuation stripped.
var fillers = map[string]bool{
	"um":       true,
	"uh":       true,
	"uhm":      true,
	"er":       true,
	"ah":       true,
	"hmm":      true,
	"like":     true,
	"y'know":   true,
	"basically": true,
	"actually": true,
}

// IsFiller reports whether a single word counts as disfluent speech.
func IsFiller(word string) bool {
	return fillers[strings.ToLower(strings.Trim(word, ".,!?;:"))]
}

// DeriveWords splits a transcript into words spread evenly across the
// range. Used when the analysis collaborator returned plain text without
// per-word timing; the layout is approximate but stable. Word IDs are
// deterministic per segment and index so a re-derivation after an edit
// yields the same IDs.
func DeriveWords(text string, r TimeRange, segmentID string) []TranscriptWord {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return nil
	}

	slot := r.Duration() / float64(len(parts))
	words := make([]TranscriptWord, len(parts))
	for i, p := range parts {
		words[i] = TranscriptWord{
			ID:       fmt.Sprintf("%s-w%d", segmentID, i),
			Text:     p,
			Start:    r.Start + float64(i)*slot,
			End:      r.Start + float64(i+1)*slot,
			IsFiller: IsFiller(p),
		}
	}
	return words
}

// EnsureWords derives the word list lazily: a segment that already carries
// words (either supplied by analysis or derived earlier) is returned as is.
func EnsureWords(seg Segment) Segment {
	if seg.Words != nil || seg.Transcript == "" {
		return seg
	}
	seg.Words = DeriveWords(seg.Transcript, seg.Range, seg.ID)
	return seg
}

// SetWordDeleted flips the soft-delete flag on one word of one segment,
// deriving the word list first if needed.
func SetWordDeleted(seq Sequence, segmentID, wordID string, deleted bool) (Sequence, error) {
	idx := seq.IndexOf(segmentID)
	if idx < 0 {
		return seq, ErrSegmentNotFound
	}

	out := seq.Clone()
	out[idx] = EnsureWords(out[idx])
	for i := range out[idx].Words {
		if out[idx].Words[i].ID == wordID {
			out[idx].Words[i].IsDeleted = deleted
			return out, nil
		}
	}
	return seq, fmt.Errorf("word %s: %w", wordID, ErrSegmentNotFound)
}

// DeleteFillerWords soft-deletes every filler word in the sequence and
// reports how many were flagged.
func DeleteFillerWords(seq Sequence) (Sequence, int) {
	out := seq.Clone()
	flagged := 0
	for i := range out {
		out[i] = EnsureWords(out[i])
		for j := range out[i].Words {
			if out[i].Words[j].IsFiller && !out[i].Words[j].IsDeleted {
				out[i].Words[j].IsDeleted = true
				flagged++
			}
		}
	}
	return out, flagged
}

// RestoreAllWords clears the soft-delete flag on every word of every
// segment.
func RestoreAllWords(seq Sequence) Sequence {
	out := seq.Clone()
	for i := range out {
		for j := range out[i].Words {
			out[i].Words[j].IsDeleted = false
		}
	}
	return out
}
