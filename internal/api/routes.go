package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cutdesk/cutdesk-agent/internal/config"
	"github.com/cutdesk/cutdesk-agent/internal/library"
	"github.com/cutdesk/cutdesk-agent/internal/project"
	"github.com/cutdesk/cutdesk-agent/internal/timeline"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))

		r.Get("/clips", listClipsHandler(cfg))
		r.Post("/clips", importClipHandler(cfg))
		r.Delete("/clips/{id}", deleteClipHandler(cfg))
		r.Get("/playback/clip", playbackHandler(cfg))

		r.Get("/jobs", listJobsHandler(cfg))
		r.Get("/jobs/{id}", getJobHandler(cfg))

		r.Get("/projects", listProjectsHandler(cfg))
		r.Post("/projects", createProjectHandler(cfg))
		r.Get("/projects/{id}", getProjectHandler(cfg))
		r.Delete("/projects/{id}", deleteProjectHandler(cfg))
		r.Post("/projects/{id}/analyze", analyzeHandler(cfg))

		r.Route("/projects/{id}/timeline", func(r chi.Router) {
			r.Get("/", getTimelineHandler(cfg))
			r.Get("/resolve", resolveHandler(cfg))
			r.Post("/split", splitHandler(cfg))
			r.Post("/reorder", reorderHandler(cfg))
			r.Post("/resize", resizeHandler(cfg))
			r.Delete("/segments/{segmentID}", deleteSegmentHandler(cfg))
			r.Get("/segments/{segmentID}/words", getWordsHandler(cfg))
			r.Post("/words", setWordDeletedHandler(cfg))
			r.Post("/words/delete-fillers", deleteFillersHandler(cfg))
			r.Post("/words/restore", restoreWordsHandler(cfg))
			r.Post("/undo", undoHandler(cfg))
			r.Post("/redo", redoHandler(cfg))
		})

		r.Post("/projects/{id}/export", exportHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		clipsCount, _ := cfg.Library.CountClips(ctx)
		jobs, _ := cfg.Repository.ListJobs(ctx, 10)

		state := "idle"
		var activeJob *JobResponse
		jobsRunning := 0
		lastError := ""

		if cfg.Runner != nil && cfg.Runner.IsPaused() {
			state = "paused"
		}

		for _, j := range jobs {
			if j.Status == library.JobStatusRunning {
				state = "working"
				resp := JobToResponse(j)
				activeJob = &resp
				jobsRunning++
			}
			if j.Status == library.JobStatusFailed && lastError == "" {
				lastError = j.Error
			}
		}

		if lastError != "" && state == "idle" {
			state = "error"
		}

		resp := StatusResponse{
			State:       state,
			LastError:   lastError,
			ClipsCount:  clipsCount,
			JobsRunning: jobsRunning,
			ActiveJob:   activeJob,
		}

		if cfg.Doctor != nil {
			caps, err := cfg.Doctor.Get(ctx)
			if err == nil && caps != nil {
				resp.Tools = &ToolStatusResponse{
					HasFFmpeg:      caps.HasFFmpeg,
					HasFFprobe:     caps.HasFFprobe,
					FFmpegVersion:  caps.FFmpegVersion,
					FFprobeVersion: caps.FFprobeVersion,
					LastProbeAt:    caps.ProbedAt.Format(time.RFC3339),
				}
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func listClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clips, err := cfg.Library.GetClips(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list clips", "INTERNAL_ERROR")
			return
		}

		resp := ClipsResponse{Clips: make([]ClipResponse, len(clips))}
		for i, c := range clips {
			resp.Clips[i] = ClipToResponse(c)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func importClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ImportClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Path == "" {
			WriteError(w, http.StatusBadRequest, "path is required", "BAD_REQUEST")
			return
		}

		clip, job, err := cfg.Library.ImportClip(r.Context(), req.Path, req.DisplayName)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		resp := ImportClipResponse{Clip: ClipToResponse(clip)}
		if job != nil {
			resp.JobID = job.ID
		}
		WriteJSON(w, http.StatusCreated, resp)
	}
}

func deleteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := cfg.Library.RemoveClip(r.Context(), id); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func playbackHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clipID := r.URL.Query().Get("clip_id")
		if clipID == "" {
			WriteError(w, http.StatusBadRequest, "clip_id is required", "BAD_REQUEST")
			return
		}

		if err := cfg.Streamer.ServeClip(w, r, clipID); err != nil {
			cfg.Logger.Error("playback error", "error", err, "clip_id", clipID)
		}
	}
}

func listJobsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobs, err := cfg.Repository.ListJobs(r.Context(), 50)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list jobs", "INTERNAL_ERROR")
			return
		}

		resp := JobsResponse{Jobs: make([]JobResponse, len(jobs))}
		for i, j := range jobs {
			resp.Jobs[i] = JobToResponse(j)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func getJobHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		job, err := cfg.Repository.GetJob(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if job == nil {
			WriteError(w, http.StatusNotFound, "job not found", "NOT_FOUND")
			return
		}
		WriteJSON(w, http.StatusOK, JobToResponse(job))
	}
}

func listProjectsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := cfg.Projects.List(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list projects", "INTERNAL_ERROR")
			return
		}

		resp := ProjectsResponse{Projects: make([]ProjectResponse, len(projects))}
		for i, p := range projects {
			resp.Projects[i] = ProjectToResponse(p)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateProjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.Name == "" {
			WriteError(w, http.StatusBadRequest, "name is required", "BAD_REQUEST")
			return
		}

		p, err := cfg.Projects.Create(r.Context(), req.Name)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		WriteJSON(w, http.StatusCreated, ProjectToResponse(p))
	}
}

func getProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := cfg.Projects.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeProjectError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ProjectToResponse(p))
	}
}

func deleteProjectHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func analyzeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.ClipID == "" {
			WriteError(w, http.StatusBadRequest, "clip_id is required", "BAD_REQUEST")
			return
		}

		if _, err := cfg.Projects.Get(r.Context(), projectID); err != nil {
			writeProjectError(w, err)
			return
		}

		job, err := cfg.Library.RequestAnalysis(r.Context(), projectID, req.ClipID)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusAccepted, AnalyzeResponse{JobID: job.ID})
	}
}

func getTimelineHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")
		seq, err := cfg.Projects.Sequence(r.Context(), projectID)
		if err != nil {
			writeProjectError(w, err)
			return
		}
		writeTimeline(w, cfg, r, projectID, seq, http.StatusOK)
	}
}

func splitHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		var req SplitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		seq, segmentID, err := cfg.Projects.Split(r.Context(), projectID, req.Time)
		if err != nil {
			writeTimelineError(w, err)
			return
		}

		canUndo, canRedo, _ := cfg.Projects.CanUndoRedo(r.Context(), projectID)
		WriteJSON(w, http.StatusOK, SplitResponse{
			Timeline:  SequenceToTimeline(seq, canUndo, canRedo),
			SegmentID: segmentID,
		})
	}
}

func reorderHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		var req ReorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		seq, err := cfg.Projects.Reorder(r.Context(), projectID, req.FromIndex, req.ToIndex)
		if err != nil {
			writeTimelineError(w, err)
			return
		}
		writeTimeline(w, cfg, r, projectID, seq, http.StatusOK)
	}
}

func resizeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		var req ResizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.SegmentID == "" {
			WriteError(w, http.StatusBadRequest, "segment_id is required", "BAD_REQUEST")
			return
		}

		seq, err := cfg.Projects.Resize(r.Context(), projectID, req.SegmentID, req.Start, req.End)
		if err != nil {
			writeTimelineError(w, err)
			return
		}
		writeTimeline(w, cfg, r, projectID, seq, http.StatusOK)
	}
}

func deleteSegmentHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")
		segmentID := chi.URLParam(r, "segmentID")

		seq, err := cfg.Projects.DeleteSegment(r.Context(), projectID, segmentID)
		if err != nil {
			writeTimelineError(w, err)
			return
		}
		writeTimeline(w, cfg, r, projectID, seq, http.StatusOK)
	}
}

func getWordsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")
		segmentID := chi.URLParam(r, "segmentID")

		words, err := cfg.Projects.Words(r.Context(), projectID, segmentID)
		if err != nil {
			writeTimelineError(w, err)
			return
		}

		resp := WordsResponse{Words: make([]WordResponse, len(words))}
		for i, word := range words {
			resp.Words[i] = WordToResponse(word)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func setWordDeletedHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		var req SetWordDeletedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if req.SegmentID == "" || req.WordID == "" {
			WriteError(w, http.StatusBadRequest, "segment_id and word_id are required", "BAD_REQUEST")
			return
		}

		seq, err := cfg.Projects.SetWordDeleted(r.Context(), projectID, req.SegmentID, req.WordID, req.Deleted)
		if err != nil {
			writeTimelineError(w, err)
			return
		}
		writeTimeline(w, cfg, r, projectID, seq, http.StatusOK)
	}
}

func deleteFillersHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		seq, count, err := cfg.Projects.DeleteFillers(r.Context(), projectID)
		if err != nil {
			writeTimelineError(w, err)
			return
		}

		canUndo, canRedo, _ := cfg.Projects.CanUndoRedo(r.Context(), projectID)
		WriteJSON(w, http.StatusOK, DeleteFillersResponse{
			Timeline:     SequenceToTimeline(seq, canUndo, canRedo),
			DeletedCount: count,
		})
	}
}

func restoreWordsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		seq, err := cfg.Projects.RestoreWords(r.Context(), projectID)
		if err != nil {
			writeTimelineError(w, err)
			return
		}
		writeTimeline(w, cfg, r, projectID, seq, http.StatusOK)
	}
}

func undoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		seq, applied, err := cfg.Projects.Undo(r.Context(), projectID)
		if err != nil {
			writeTimelineError(w, err)
			return
		}

		canUndo, canRedo, _ := cfg.Projects.CanUndoRedo(r.Context(), projectID)
		WriteJSON(w, http.StatusOK, UndoRedoResponse{
			Timeline: SequenceToTimeline(seq, canUndo, canRedo),
			Applied:  applied,
		})
	}
}

func redoHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		seq, applied, err := cfg.Projects.Redo(r.Context(), projectID)
		if err != nil {
			writeTimelineError(w, err)
			return
		}

		canUndo, canRedo, _ := cfg.Projects.CanUndoRedo(r.Context(), projectID)
		WriteJSON(w, http.StatusOK, UndoRedoResponse{
			Timeline: SequenceToTimeline(seq, canUndo, canRedo),
			Applied:  applied,
		})
	}
}

func resolveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID := chi.URLParam(r, "id")

		raw := r.URL.Query().Get("t")
		if raw == "" {
			WriteError(w, http.StatusBadRequest, "t query parameter is required", "BAD_REQUEST")
			return
		}
		t, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "t must be a number", "BAD_REQUEST")
			return
		}

		pos, err := cfg.Projects.ResolvePlayhead(r.Context(), projectID, t)
		if err != nil {
			writeProjectError(w, err)
			return
		}

		resp := ResolveResponse{Timecode: timeline.FormatTimecode(t)}
		if pos != nil {
			resp.Found = true
			resp.Index = pos.Index
			resp.SegmentID = pos.Segment.ID
			resp.LocalOffset = pos.LocalOffset
			resp.SourceTime = pos.SourceOffset
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// writeTimeline sends the standard timeline envelope used by every
// mutating handler.
func writeTimeline(w http.ResponseWriter, cfg ServerConfig, r *http.Request, projectID string, seq timeline.Sequence, status int) {
	canUndo, canRedo, _ := cfg.Projects.CanUndoRedo(r.Context(), projectID)
	WriteJSON(w, status, SequenceToTimeline(seq, canUndo, canRedo))
}

func writeProjectError(w http.ResponseWriter, err error) {
	if errors.Is(err, project.ErrProjectNotFound) {
		WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
}

// writeTimelineError maps timeline operation failures onto HTTP statuses:
// missing things are 404s, rejected edits are 422s.
func writeTimelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, project.ErrProjectNotFound):
		WriteError(w, http.StatusNotFound, "project not found", "NOT_FOUND")
	case errors.Is(err, timeline.ErrSegmentNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, timeline.ErrOutOfSequence),
		errors.Is(err, timeline.ErrSplitTooClose),
		errors.Is(err, timeline.ErrRangeTooSmall),
		errors.Is(err, timeline.ErrIndexOutOfRange):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), "INVALID_EDIT")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
	}
}
