package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cutdesk/cutdesk-agent/internal/library"
	"github.com/cutdesk/cutdesk-agent/internal/media"
	"github.com/cutdesk/cutdesk-agent/internal/timeline"
)

// TimelineLoader receives normalized analysis output for a project.
// Implemented by the project service.
type TimelineLoader interface {
	LoadAnalysis(ctx context.Context, projectID string, batch timeline.LoadBatch) error
}

// Runner polls the job queue and executes probe and analyze jobs one at a
// time. Pausing stops pickup of new jobs without interrupting the current
// one.
type Runner struct {
	library      *library.Service
	repo         library.Repository
	ffmpeg       media.FFmpeg
	doctor       *media.Doctor
	client       Client
	loader       TimelineLoader
	workDir      string
	logger       *slog.Logger
	pollInterval time.Duration
	running      atomic.Bool
	paused       atomic.Bool
}

func NewRunner(lib *library.Service, repo library.Repository, ffmpeg media.FFmpeg, doctor *media.Doctor, client Client, loader TimelineLoader, workDir string, logger *slog.Logger) *Runner {
	return &Runner{
		library:      lib,
		repo:         repo,
		ffmpeg:       ffmpeg,
		doctor:       doctor,
		client:       client,
		loader:       loader,
		workDir:      workDir,
		logger:       logger,
		pollInterval: 5 * time.Second,
	}
}

func (r *Runner) Start(ctx context.Context) {
	if r.running.Swap(true) {
		return
	}

	r.logger.Info("job runner started")

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("job runner stopping")
			r.running.Store(false)
			return
		case <-ticker.C:
			if !r.paused.Load() {
				r.processNextJob(ctx)
			}
		}
	}
}

func (r *Runner) Pause() {
	r.paused.Store(true)
	r.logger.Info("job runner paused")
}

func (r *Runner) Resume() {
	r.paused.Store(false)
	r.logger.Info("job runner resumed")
}

func (r *Runner) IsPaused() bool {
	return r.paused.Load()
}

func (r *Runner) IsRunning() bool {
	return r.running.Load()
}

func (r *Runner) processNextJob(ctx context.Context) {
	jobs, err := r.repo.ListPendingJobs(ctx)
	if err != nil {
		r.logger.Error("failed to list pending jobs", "error", err)
		return
	}

	if len(jobs) == 0 {
		return
	}

	job := jobs[0]
	r.logger.Info("processing job", "job_id", job.ID, "type", job.Type)

	switch job.Type {
	case library.JobTypeProbe:
		r.processProbeJob(ctx, job)
	case library.JobTypeAnalyze:
		r.processAnalyzeJob(ctx, job)
	default:
		r.logger.Warn("unknown job type", "type", job.Type)
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, "unknown job type")
	}
}

func (r *Runner) processProbeJob(ctx context.Context, job *library.Job) {
	clip, err := r.repo.GetClip(ctx, job.ClipID)
	if err != nil || clip == nil {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, "clip not found")
		return
	}

	r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusRunning, "")

	caps, err := r.doctor.Get(ctx)
	if err != nil {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, fmt.Sprintf("tool probe failed: %v", err))
		return
	}
	if !caps.CanProbe() {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, "ffprobe not available")
		return
	}

	result, err := r.ffmpeg.Probe(ctx, clip.Path)
	if err != nil {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, fmt.Sprintf("probe failed: %v", err))
		return
	}

	if err := r.library.SetClipDuration(ctx, clip.ID, result.Duration); err != nil {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, fmt.Sprintf("store duration: %v", err))
		return
	}

	r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusCompleted, "")
	r.logger.Info("probe job completed",
		"job_id", job.ID,
		"clip_id", clip.ID,
		"duration_s", result.Duration,
	)
}

func (r *Runner) processAnalyzeJob(ctx context.Context, job *library.Job) {
	clip, err := r.repo.GetClip(ctx, job.ClipID)
	if err != nil || clip == nil {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, "clip not found")
		return
	}
	if !clip.Probed {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, "clip not probed yet")
		return
	}

	r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusRunning, "")

	caps, err := r.doctor.Get(ctx)
	if err != nil {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, fmt.Sprintf("tool probe failed: %v", err))
		return
	}
	if !caps.HasFFmpeg {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, "ffmpeg not available")
		return
	}

	audioPath := filepath.Join(r.workDir, job.ID+".wav")
	if err := r.ffmpeg.ExtractAudio(ctx, clip.Path, audioPath); err != nil {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, fmt.Sprintf("audio extraction failed: %v", err))
		return
	}
	defer os.Remove(audioPath)

	r.repo.UpdateJobProgress(ctx, job.ID, 25)

	result, err := r.client.Analyze(ctx, AnalyzeRequest{
		ClipID:    clip.ID,
		MediaPath: clip.Path,
		AudioPath: audioPath,
		DurationS: clip.DurationS,
	})
	if err != nil {
		var analysisErr *AnalysisError
		if errors.As(err, &analysisErr) && analysisErr.IsRetryable() {
			r.logger.Warn("analysis failed with retryable error, requeueing",
				"job_id", job.ID, "error", err)
			r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusPending, analysisErr.Error())
			return
		}
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, fmt.Sprintf("analysis failed: %v", err))
		return
	}

	r.repo.UpdateJobProgress(ctx, job.ID, 75)

	normalized := timeline.Normalize(result.Segments, clip.DurationS)
	if len(normalized) == 0 {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, "no usable segments after normalization")
		return
	}

	batch := timeline.LoadBatch{
		ClipID:   clip.ID,
		ClipName: clip.DisplayName,
		Segments: normalized,
	}
	if err := r.loader.LoadAnalysis(ctx, job.ProjectID, batch); err != nil {
		r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusFailed, fmt.Sprintf("load segments: %v", err))
		return
	}

	r.repo.UpdateJobStatus(ctx, job.ID, library.JobStatusCompleted, "")
	r.logger.Info("analyze job completed",
		"job_id", job.ID,
		"clip_id", clip.ID,
		"project_id", job.ProjectID,
		"segment_count", len(normalized),
	)
}

func (r *Runner) GetActiveJobCount(ctx context.Context) int {
	jobs, err := r.repo.ListJobs(ctx, 100)
	if err != nil {
		return 0
	}
	count := 0
	for _, j := range jobs {
		if j.Status == library.JobStatusRunning {
			count++
		}
	}
	return count
}
