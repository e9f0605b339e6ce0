package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ExecFFmpeg shells out to the ffmpeg/ffprobe binaries.
type ExecFFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	workDir     string
	logger      *slog.Logger
}

func NewExecFFmpeg(ffmpegPath, ffprobePath, workDir string, logger *slog.Logger) *ExecFFmpeg {
	return &ExecFFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		workDir:     workDir,
		logger:      logger,
	}
}

func (f *ExecFFmpeg) Probe(ctx context.Context, filePath string) (*ProbeResult, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format", "-show_streams",
		filePath)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeOutput(output)
}

type probeJSON struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func parseProbeOutput(output []byte) (*ProbeResult, error) {
	var raw probeJSON
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	result := &ProbeResult{}
	result.Duration, _ = strconv.ParseFloat(raw.Format.Duration, 64)

	for _, s := range raw.Streams {
		switch s.CodecType {
		case "video":
			if result.VideoCodec == "" {
				result.VideoCodec = s.CodecName
				result.Width = s.Width
				result.Height = s.Height
			}
		case "audio":
			if result.AudioCodec == "" {
				result.AudioCodec = s.CodecName
			}
		}
	}
	return result, nil
}

// ExtractAudio writes a 16 kHz mono wav, the format the transcription
// endpoint handles best.
func (f *ExecFFmpeg) ExtractAudio(ctx context.Context, filePath, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-y", "-v", "error",
		"-i", filePath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %w: %s", err, tail(out))
	}
	return nil
}

// Render trims each cut into a part file, then concatenates the parts with
// the concat demuxer. Parts are re-encoded so cuts land on exact times
// instead of the previous keyframe.
func (f *ExecFFmpeg) Render(ctx context.Context, cuts []Cut, outputPath string) error {
	if len(cuts) == 0 {
		return fmt.Errorf("nothing to render")
	}

	partsDir, err := os.MkdirTemp(f.workDir, "render-")
	if err != nil {
		return fmt.Errorf("failed to create parts directory: %w", err)
	}
	defer os.RemoveAll(partsDir)

	parts := make([]string, len(cuts))
	for i, cut := range cuts {
		part := filepath.Join(partsDir, fmt.Sprintf("part-%04d.mp4", i))
		cmd := exec.CommandContext(ctx, f.ffmpegPath,
			"-y", "-v", "error",
			"-ss", formatSeconds(cut.Start),
			"-to", formatSeconds(cut.End),
			"-i", cut.MediaPath,
			"-c:v", "libx264", "-preset", "veryfast",
			"-c:a", "aac",
			part)
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("ffmpeg trim of part %d failed: %w: %s", i, err, tail(out))
		}
		parts[i] = part

		if f.logger != nil {
			f.logger.Debug("rendered part", "index", i, "start", cut.Start, "end", cut.End)
		}
	}

	listPath := filepath.Join(partsDir, "concat.txt")
	if err := os.WriteFile(listPath, []byte(buildConcatList(parts)), 0644); err != nil {
		return fmt.Errorf("failed to write concat list: %w", err)
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-y", "-v", "error",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w: %s", err, tail(out))
	}
	return nil
}

// buildConcatList formats part paths for the concat demuxer. Single quotes
// in paths are escaped the ffmpeg way: close, escaped quote, reopen.
func buildConcatList(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		escaped := strings.ReplaceAll(p, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	return b.String()
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 3, 64)
}

func tail(out []byte) string {
	const max = 512
	s := strings.TrimSpace(string(out))
	if len(s) > max {
		s = s[len(s)-max:]
	}
	return s
}
