// Package library manages the clip catalog: source media files imported
// into the editor, the probe/analyze job queue, and agent config values.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

type LibraryService interface {
	ImportClip(ctx context.Context, path, displayName string) (*Clip, *Job, error)
	RemoveClip(ctx context.Context, id string) error
	GetClips(ctx context.Context) ([]*Clip, error)
	GetClip(ctx context.Context, id string) (*Clip, error)
	CountClips(ctx context.Context) (int, error)
	RequestAnalysis(ctx context.Context, projectID, clipID string) (*Job, error)
	SetClipDuration(ctx context.Context, id string, durationS float64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ImportClip registers a media file and queues a probe job for its
// duration. Importing a path twice returns the existing clip without a new
// job.
func (s *Service) ImportClip(ctx context.Context, path, displayName string) (*Clip, *Job, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, nil, fmt.Errorf("path does not exist: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("path is a directory")
	}
	if !IsVideoFile(absPath) {
		return nil, nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(absPath))
	}

	existing, err := s.repo.GetClipByPath(ctx, absPath)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return existing, nil, nil
	}

	if displayName == "" {
		displayName = filepath.Base(absPath)
	}

	clip := &Clip{
		ID:          NewID(),
		Path:        absPath,
		Filename:    filepath.Base(absPath),
		DisplayName: displayName,
		Size:        info.Size(),
		Present:     true,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.CreateClip(ctx, clip); err != nil {
		return nil, nil, err
	}

	job, err := s.createJob(ctx, JobTypeProbe, clip.ID, "")
	if err != nil {
		return nil, nil, err
	}

	if s.logger != nil {
		s.logger.Info("clip imported", "clip_id", clip.ID, "path", absPath, "probe_job", job.ID)
	}
	return clip, job, nil
}

func (s *Service) RemoveClip(ctx context.Context, id string) error {
	return s.repo.DeleteClip(ctx, id)
}

func (s *Service) GetClips(ctx context.Context) ([]*Clip, error) {
	return s.repo.ListClips(ctx)
}

func (s *Service) GetClip(ctx context.Context, id string) (*Clip, error) {
	return s.repo.GetClip(ctx, id)
}

func (s *Service) CountClips(ctx context.Context) (int, error) {
	return s.repo.CountClips(ctx)
}

// RequestAnalysis queues an analyze job for a clip. The clip must have
// been probed: analysis needs the duration to validate what the model
// returns.
func (s *Service) RequestAnalysis(ctx context.Context, projectID, clipID string) (*Job, error) {
	clip, err := s.repo.GetClip(ctx, clipID)
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, fmt.Errorf("clip not found")
	}
	if !clip.Probed {
		return nil, fmt.Errorf("clip has no duration yet; probe still pending")
	}
	if !clip.Present {
		return nil, fmt.Errorf("clip file is not available")
	}

	job, err := s.createJob(ctx, JobTypeAnalyze, clipID, projectID)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("analysis job created", "job_id", job.ID, "clip_id", clipID, "project_id", projectID)
	}
	return job, nil
}

// SetClipDuration records the probed duration and marks the clip ready for
// analysis.
func (s *Service) SetClipDuration(ctx context.Context, id string, durationS float64) error {
	if durationS <= 0 {
		return fmt.Errorf("duration must be positive, got %f", durationS)
	}
	return s.repo.UpdateClipDuration(ctx, id, durationS)
}

func (s *Service) createJob(ctx context.Context, jobType, clipID, projectID string) (*Job, error) {
	now := time.Now()
	job := &Job{
		ID:        NewID(),
		Type:      jobType,
		Status:    JobStatusPending,
		ClipID:    clipID,
		ProjectID: projectID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}
