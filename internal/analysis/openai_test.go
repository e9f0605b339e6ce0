package analysis

import (
	"strings"
	"testing"
)

func TestParseSegmentation(t *testing.T) {
	raw := `{"summary":"two takes","segments":[
		{"text":"hello there","start":0,"end":4.5,"group_id":"g1","score":85},
		{"text":"hello again","start":4.5,"end":9,"group_id":"g1","score":60}
	]}`

	segs, summary, err := parseSegmentation(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if summary != "two takes" {
		t.Errorf("summary = %q", summary)
	}
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].Text != "hello there" || segs[0].Score != 85 {
		t.Errorf("first segment = %+v", segs[0])
	}
}

func TestParseSegmentationMarkdownFenced(t *testing.T) {
	raw := "```json\n" + `{"summary":"s","segments":[{"text":"a","start":0,"end":2}]}` + "\n```"

	segs, _, err := parseSegmentation(raw)
	if err != nil {
		t.Fatalf("parse fenced: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	// Omitted score falls back to the default.
	if segs[0].Score != 50 {
		t.Errorf("score = %d, want default 50", segs[0].Score)
	}
}

func TestParseSegmentationErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"prose only", "I could not process this clip."},
		{"no segments", `{"summary":"nothing","segments":[]}`},
		{"truncated", `{"segments":[{"text":"a"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := parseSegmentation(tc.raw); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`prefix {"a":1} suffix`, `{"a":1}`},
		{`{"a":{"b":2}}`, `{"a":{"b":2}}`},
		{`{"a":"brace } in string"}`, `{"a":"brace } in string"}`},
		{`no object here`, ""},
		{`{"unterminated":`, ""},
	}
	for _, tc := range cases {
		if got := extractFirstJSONObject(tc.in); got != tc.want {
			t.Errorf("extractFirstJSONObject(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAnalysisErrorRetryable(t *testing.T) {
	if !(&AnalysisError{StatusCode: 503}).IsRetryable() {
		t.Error("503 should be retryable")
	}
	if (&AnalysisError{StatusCode: 401}).IsRetryable() {
		t.Error("401 should not be retryable")
	}
	if (&AnalysisError{Message: "bad json"}).IsRetryable() {
		t.Error("parse failures should not be retryable")
	}
	msg := (&AnalysisError{Stage: "transcription", StatusCode: 500, Message: "oops"}).Error()
	if !strings.Contains(msg, "transcription") || !strings.Contains(msg, "500") {
		t.Errorf("error message = %q", msg)
	}
}
