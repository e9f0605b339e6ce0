// Package export turns an edited timeline into deliverables: an EDL for
// external NLEs or a rendered mp4 via ffmpeg.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cutdesk/cutdesk-agent/internal/library"
	"github.com/cutdesk/cutdesk-agent/internal/media"
	"github.com/cutdesk/cutdesk-agent/internal/timeline"
)

var ErrEmptyTimeline = errors.New("timeline has no cuts to export")

const maxNameLen = 80

type Exporter struct {
	repo   library.Repository
	ffmpeg media.FFmpeg
	logger *slog.Logger
}

func NewExporter(repo library.Repository, ffmpeg media.FFmpeg, logger *slog.Logger) *Exporter {
	return &Exporter{repo: repo, ffmpeg: ffmpeg, logger: logger}
}

// ResolveCuts joins timeline cut ranges with their clips' media paths.
// Cuts whose clip is unknown or whose file is currently absent are skipped
// and reported in the second return value.
func (e *Exporter) ResolveCuts(ctx context.Context, cuts []timeline.CutRange) ([]ResolvedCut, []string) {
	var resolved []ResolvedCut
	var missing []string
	seen := make(map[string]bool)

	for _, cut := range cuts {
		clip, err := e.repo.GetClip(ctx, cut.ClipID)
		if err != nil || clip == nil || !clip.Present {
			if !seen[cut.ClipID] {
				seen[cut.ClipID] = true
				missing = append(missing, cut.ClipID)
			}
			continue
		}
		resolved = append(resolved, ResolvedCut{
			ClipName:  clip.DisplayName,
			MediaPath: clip.Path,
			StartS:    cut.Start,
			EndS:      cut.End,
		})
	}
	return resolved, missing
}

// Export writes the requested deliverable into req.OutputDir and returns
// where it landed. projectName seeds the output filename.
func (e *Exporter) Export(ctx context.Context, req ExportRequest, projectName string, cuts []timeline.CutRange) (*ExportResponse, error) {
	if err := ValidateOutputDir(req.OutputDir); err != nil {
		return nil, err
	}
	if len(cuts) == 0 {
		return nil, ErrEmptyTimeline
	}

	resolved, missing := e.ResolveCuts(ctx, cuts)
	if len(resolved) == 0 {
		return nil, fmt.Errorf("no cuts could be resolved to media files")
	}

	name := SanitizeName(projectName, maxNameLen)
	if name == "" {
		name = "export"
	}
	stamp := time.Now().Format("20060102-150405")

	var outputPath string
	switch req.Format {
	case FormatEDL:
		frameRate := req.FrameRate
		if frameRate <= 0 {
			frameRate = 30
		}
		outputPath = filepath.Join(req.OutputDir, fmt.Sprintf("%s-%s.edl", name, stamp))
		content := GenerateEDL(resolved, name, frameRate)
		if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
			return nil, fmt.Errorf("write edl: %w", err)
		}

	case FormatMP4:
		outputPath = filepath.Join(req.OutputDir, fmt.Sprintf("%s-%s.mp4", name, stamp))
		mediaCuts := make([]media.Cut, len(resolved))
		for i, c := range resolved {
			mediaCuts[i] = media.Cut{MediaPath: c.MediaPath, Start: c.StartS, End: c.EndS}
		}
		if err := e.ffmpeg.Render(ctx, mediaCuts, outputPath); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported export format %q", req.Format)
	}

	e.logger.Info("export completed",
		"format", req.Format,
		"output_path", outputPath,
		"cut_count", len(resolved),
		"missing_clips", len(missing),
	)

	return &ExportResponse{
		Status:       "completed",
		Format:       req.Format,
		OutputPath:   outputPath,
		CutCount:     len(resolved),
		MissingClips: missing,
	}, nil
}
