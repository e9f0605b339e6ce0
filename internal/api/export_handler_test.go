package api

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/cutdesk/cutdesk-agent/internal/export"
	"github.com/cutdesk/cutdesk-agent/internal/library"
)

// seedPresentClip registers a clip whose path matches the loaded batch so
// export can resolve cuts.
func seedPresentClip(t *testing.T, e *testEnv, id string) {
	t.Helper()
	clip := &library.Clip{
		ID:          id,
		Path:        "/media/" + id + ".mp4",
		Filename:    id + ".mp4",
		DisplayName: "Intro",
		DurationS:   60,
		Probed:      true,
		Present:     true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := e.repo.CreateClip(context.Background(), clip); err != nil {
		t.Fatalf("create clip: %v", err)
	}
}

func TestExportEDLEndpoint(t *testing.T) {
	e := setupEnv(t)
	projectID := newProjectWithTakes(t, e)
	seedPresentClip(t, e, "clip-1")
	outDir := t.TempDir()

	rr := e.do(t, http.MethodPost, "/projects/"+projectID+"/export", export.ExportRequest{
		Format:    "edl",
		FrameRate: 30,
		OutputDir: outDir,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("export = %d %s", rr.Code, rr.Body.String())
	}

	resp := decodeJSON[export.ExportResponse](t, rr)
	if resp.CutCount != 2 {
		t.Errorf("cut count = %d, want 2", resp.CutCount)
	}
	data, err := os.ReadFile(resp.OutputPath)
	if err != nil {
		t.Fatalf("read edl: %v", err)
	}
	if !strings.Contains(string(data), "TITLE: Edit") {
		t.Errorf("edl missing title: %q", data)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	e := setupEnv(t)
	projectID := newProjectWithTakes(t, e)

	rr := e.do(t, http.MethodPost, "/projects/"+projectID+"/export", export.ExportRequest{
		Format:    "avi",
		OutputDir: t.TempDir(),
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestExportEmptyTimeline(t *testing.T) {
	e := setupEnv(t)

	rr := e.do(t, http.MethodPost, "/projects", CreateProjectRequest{Name: "Empty"})
	p := decodeJSON[ProjectResponse](t, rr)

	rr = e.do(t, http.MethodPost, "/projects/"+p.ID+"/export", export.ExportRequest{
		Format:    "edl",
		OutputDir: t.TempDir(),
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
}

func TestExportUnknownProject(t *testing.T) {
	e := setupEnv(t)

	rr := e.do(t, http.MethodPost, "/projects/ghost/export", export.ExportRequest{
		Format:    "edl",
		OutputDir: t.TempDir(),
	})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}
