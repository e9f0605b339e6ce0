// Package analysis turns a clip's audio into scored timeline segments.
// The real client talks to an OpenAI-compatible API; the stub produces
// deterministic segments so the rest of the agent works offline.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cutdesk/cutdesk-agent/internal/timeline"
)

// AnalyzeRequest describes one clip to analyze. AudioPath points at the
// extracted mono wav; MediaPath is the original clip for reference.
type AnalyzeRequest struct {
	ClipID    string
	MediaPath string
	AudioPath string
	DurationS float64
}

// AnalysisResult holds the raw segments as the model returned them.
// Callers run them through timeline.Normalize before use.
type AnalysisResult struct {
	Summary    string
	Transcript string
	Segments   []timeline.AnalyzedSegment
}

type Client interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error)
}

// AnalysisError represents a failure from the analysis API.
type AnalysisError struct {
	Stage      string
	StatusCode int
	Message    string
}

func (e *AnalysisError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("analysis %s failed: HTTP %d: %s", e.Stage, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("analysis %s failed: %s", e.Stage, e.Message)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx)
// and malformed model output are considered permanent.
func (e *AnalysisError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// StubClient fabricates a plausible analysis without any network calls.
// It slices the clip into fixed-length takes and alternates group IDs so
// the grouping and best-take UI has something to show.
type StubClient struct {
	logger *slog.Logger
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

func (c *StubClient) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error) {
	c.logger.Info("analysis stub: fabricating segments", "clip_id", req.ClipID, "duration_s", req.DurationS)

	const takeLen = 8.0
	duration := req.DurationS
	if duration <= 0 {
		duration = takeLen
	}

	var segs []timeline.AnalyzedSegment
	for i, start := 0, 0.0; start < duration; i, start = i+1, start+takeLen {
		end := start + takeLen
		if end > duration {
			end = duration
		}
		segs = append(segs, timeline.AnalyzedSegment{
			Text:    fmt.Sprintf("Take %d", i+1),
			Start:   start,
			End:     end,
			GroupID: fmt.Sprintf("take-%d", i/2+1),
			Score:   60 + (i%3)*10,
		})
	}

	return &AnalysisResult{
		Summary:  "stub analysis",
		Segments: segs,
	}, nil
}
