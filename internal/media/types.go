// Package media wraps the external ffmpeg/ffprobe tools: probing clip
// metadata, extracting audio for analysis, and rendering a cut list into a
// single output file.
package media

import (
	"context"
	"log/slog"
)

type FFmpeg interface {
	Probe(ctx context.Context, filePath string) (*ProbeResult, error)
	ExtractAudio(ctx context.Context, filePath, outputPath string) error
	Render(ctx context.Context, cuts []Cut, outputPath string) error
}

// Cut is one clip-local range to render, in playback order.
type Cut struct {
	MediaPath string
	Start     float64
	End       float64
}

type ProbeResult struct {
	Duration   float64
	Width      int
	Height     int
	VideoCodec string
	AudioCodec string
}

// StubFFmpeg logs requests instead of shelling out. Used when the doctor
// reports no tools, and in tests.
type StubFFmpeg struct {
	logger *slog.Logger
}

func NewStubFFmpeg(logger *slog.Logger) *StubFFmpeg {
	return &StubFFmpeg{logger: logger}
}

func (f *StubFFmpeg) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	f.logger.Info("ffmpeg stub: probe requested", "path", filePath)
	return &ProbeResult{}, nil
}

func (f *StubFFmpeg) ExtractAudio(ctx context.Context, filePath, outputPath string) error {
	f.logger.Info("ffmpeg stub: audio extraction requested",
		"input", filePath, "output", outputPath)
	return nil
}

func (f *StubFFmpeg) Render(ctx context.Context, cuts []Cut, outputPath string) error {
	f.logger.Info("ffmpeg stub: render requested",
		"cuts", len(cuts), "output", outputPath)
	return nil
}
