package playback

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cutdesk/cutdesk-agent/internal/db"
	"github.com/cutdesk/cutdesk-agent/internal/library"
)

func setupStreamer(t *testing.T) (*Streamer, library.Repository) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := library.NewRepository(database.Conn())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewStreamer(repo, logger), repo
}

func seedClipFile(t *testing.T, repo library.Repository, content string, present bool) *library.Clip {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write clip file: %v", err)
	}
	clip := &library.Clip{
		ID:          library.NewID(),
		Path:        path,
		Filename:    "clip.mp4",
		DisplayName: "Clip",
		Size:        int64(len(content)),
		Present:     present,
		CreatedAt:   time.Now().UTC(),
	}
	if err := repo.CreateClip(context.Background(), clip); err != nil {
		t.Fatalf("create clip: %v", err)
	}
	return clip
}

func TestServeClipFull(t *testing.T) {
	streamer, repo := setupStreamer(t)
	clip := seedClipFile(t, repo, "0123456789", true)

	req := httptest.NewRequest(http.MethodGet, "/playback", nil)
	rec := httptest.NewRecorder()

	if err := streamer.ServeClip(rec, req, clip.ID); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "0123456789" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if rec.Header().Get("Accept-Ranges") != "bytes" {
		t.Error("missing Accept-Ranges header")
	}
	if rec.Header().Get("Content-Type") != "video/mp4" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestServeClipRange(t *testing.T) {
	streamer, repo := setupStreamer(t)
	clip := seedClipFile(t, repo, "0123456789", true)

	req := httptest.NewRequest(http.MethodGet, "/playback", nil)
	req.Header.Set("Range", "bytes=2-5")
	rec := httptest.NewRecorder()

	if err := streamer.ServeClip(rec, req, clip.ID); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "2345" {
		t.Errorf("body = %q", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 2-5/10" {
		t.Errorf("content range = %q", got)
	}
}

func TestServeClipUnsatisfiableRange(t *testing.T) {
	streamer, repo := setupStreamer(t)
	clip := seedClipFile(t, repo, "0123456789", true)

	req := httptest.NewRequest(http.MethodGet, "/playback", nil)
	req.Header.Set("Range", "bytes=50-60")
	rec := httptest.NewRecorder()

	if err := streamer.ServeClip(rec, req, clip.ID); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if rec.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestServeClipNotFound(t *testing.T) {
	streamer, repo := setupStreamer(t)

	req := httptest.NewRequest(http.MethodGet, "/playback", nil)
	rec := httptest.NewRecorder()
	if err := streamer.ServeClip(rec, req, "missing"); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for unknown clip = %d", rec.Code)
	}

	absent := seedClipFile(t, repo, "data", false)
	rec = httptest.NewRecorder()
	if err := streamer.ServeClip(rec, req, absent.ID); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status for absent clip = %d", rec.Code)
	}
}
