// Package playback streams clip media to the browser editor with HTTP
// Range support, so the timeline UI can scrub without downloading whole
// files.
package playback

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cutdesk/cutdesk-agent/internal/library"
)

type Streamer struct {
	repo   library.Repository
	logger *slog.Logger
}

func NewStreamer(repo library.Repository, logger *slog.Logger) *Streamer {
	return &Streamer{repo: repo, logger: logger}
}

// ServeClip looks up a clip and streams its media file. Clips marked
// absent get a 404 even if a stale file still exists on disk.
func (s *Streamer) ServeClip(w http.ResponseWriter, r *http.Request, clipID string) error {
	clip, err := s.repo.GetClip(r.Context(), clipID)
	if err != nil {
		return fmt.Errorf("lookup clip: %w", err)
	}
	if clip == nil || !clip.Present {
		http.Error(w, "clip not found", http.StatusNotFound)
		return nil
	}
	return s.serveFile(w, r, clip.Path)
}

func (s *Streamer) serveFile(w http.ResponseWriter, r *http.Request, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "file not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	size := stat.Size()
	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	rangeHeader := r.Header.Get("Range")
	parsedRange, err := ParseRange(rangeHeader, size)

	if err == ErrUnsatisfiable {
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "Range Not Satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	}

	if err != nil && err != ErrInvalidRange {
		return err
	}

	if parsedRange == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		io.Copy(w, file)
		return nil
	}

	s.logger.LogAttrs(r.Context(), slog.LevelDebug, "serving range",
		slog.String("range", rangeHeader),
		slog.Int64("start", parsedRange.Start),
		slog.Int64("end", parsedRange.End),
	)

	w.Header().Set("Content-Length", fmt.Sprintf("%d", parsedRange.ContentLength()))
	w.Header().Set("Content-Range", parsedRange.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(parsedRange.Start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	io.CopyN(w, file, parsedRange.ContentLength())
	return nil
}
