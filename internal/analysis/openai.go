package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/cutdesk/cutdesk-agent/internal/timeline"
)

const analysisSystemPrompt = `You are a video editing assistant. You receive the transcript of a single
clip together with its duration in seconds. Split it into takes: contiguous
spans where the speaker attempts one thought or sentence. When the speaker
retries the same line, give every attempt the same group_id and score each
attempt 0-100 by delivery quality. Estimate start/end in seconds, within the
clip duration. Respond with JSON only:
{"summary":"...","segments":[{"text":"...","start":0.0,"end":4.2,"group_id":"g1","score":80}]}`

// OpenAIClient performs transcription plus take segmentation against an
// OpenAI-compatible API.
type OpenAIClient struct {
	client          openai.Client
	analysisModel   string
	transcribeModel string
	logger          *slog.Logger
}

func NewOpenAIClient(apiKey, baseURL, analysisModel, transcribeModel string, logger *slog.Logger) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		client:          openai.NewClient(opts...),
		analysisModel:   analysisModel,
		transcribeModel: transcribeModel,
		logger:          logger,
	}
}

func (c *OpenAIClient) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalysisResult, error) {
	transcript, err := c.transcribe(ctx, req.AudioPath)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, &AnalysisError{Stage: "transcription", Message: "empty transcript"}
	}

	c.logger.Info("transcription completed",
		"clip_id", req.ClipID,
		"transcript_chars", len(transcript),
	)

	segs, summary, err := c.segment(ctx, transcript, req.DurationS)
	if err != nil {
		return nil, err
	}

	c.logger.Info("segmentation completed",
		"clip_id", req.ClipID,
		"segment_count", len(segs),
	)

	return &AnalysisResult{
		Summary:    summary,
		Transcript: transcript,
		Segments:   segs,
	}, nil
}

func (c *OpenAIClient) transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	resp, err := c.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: openai.AudioModel(c.transcribeModel),
		File:  f,
	})
	if err != nil {
		return "", wrapAPIError("transcription", err)
	}
	return resp.Text, nil
}

func (c *OpenAIClient) segment(ctx context.Context, transcript string, durationS float64) ([]timeline.AnalyzedSegment, string, error) {
	userPrompt := fmt.Sprintf("Clip duration: %.2f seconds.\n\nTranscript:\n%s", durationS, transcript)

	ctx, cancel := context.WithTimeout(ctx, 90*time.Second)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(analysisSystemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       c.analysisModel,
		Temperature: openai.Float(0.2),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{Type: "json_object"},
		},
	})
	if err != nil {
		return nil, "", wrapAPIError("segmentation", err)
	}
	if len(resp.Choices) == 0 {
		return nil, "", &AnalysisError{Stage: "segmentation", Message: "no choices in response"}
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	segs, summary, err := parseSegmentation(raw)
	if err != nil {
		return nil, "", err
	}
	return segs, summary, nil
}

type segmentationResponse struct {
	Summary  string                     `json:"summary"`
	Segments []timeline.AnalyzedSegment `json:"segments"`
}

// parseSegmentation decodes the model's JSON reply. Models occasionally
// wrap the object in markdown fences or prose, so a bare unmarshal failure
// falls back to the first balanced JSON object in the text.
func parseSegmentation(raw string) ([]timeline.AnalyzedSegment, string, error) {
	if raw == "" {
		return nil, "", &AnalysisError{Stage: "segmentation", Message: "empty response"}
	}

	var parsed segmentationResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		fixed := extractFirstJSONObject(raw)
		if fixed == "" {
			return nil, "", &AnalysisError{Stage: "segmentation", Message: fmt.Sprintf("unparseable response: %v", err)}
		}
		if err := json.Unmarshal([]byte(fixed), &parsed); err != nil {
			return nil, "", &AnalysisError{Stage: "segmentation", Message: fmt.Sprintf("unparseable response: %v", err)}
		}
	}
	if len(parsed.Segments) == 0 {
		return nil, "", &AnalysisError{Stage: "segmentation", Message: "no segments in response"}
	}
	return parsed.Segments, parsed.Summary, nil
}

func extractFirstJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func wrapAPIError(stage string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &AnalysisError{Stage: stage, StatusCode: apiErr.StatusCode, Message: apiErr.Message}
	}
	return &AnalysisError{Stage: stage, Message: err.Error()}
}
