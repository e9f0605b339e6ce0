// Package project ties timeline editing state to stored projects. Each
// project carries an in-memory sequence wrapped in undo history; only the
// project row itself is persisted.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cutdesk/cutdesk-agent/internal/library"
	"github.com/cutdesk/cutdesk-agent/internal/timeline"
)

var ErrProjectNotFound = errors.New("project not found")

// editorState is one project's live timeline. The mutex serializes edits;
// snapshots inside the history are never mutated in place.
type editorState struct {
	mu      sync.Mutex
	history *timeline.History[timeline.Sequence]
}

type Service struct {
	repo   library.Repository
	logger *slog.Logger

	mu     sync.RWMutex
	states map[string]*editorState
}

func NewService(repo library.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		states: make(map[string]*editorState),
	}
}

type Project struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

func (s *Service) Create(ctx context.Context, name string) (*Project, error) {
	if name == "" {
		return nil, errors.New("project name required")
	}

	p := &Project{
		ID:        library.NewID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateProject(ctx, p.ID, p.Name, p.CreatedAt); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.logger.Info("project created", "project_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	name, createdAt, err := s.repo.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, ErrProjectNotFound
	}
	return &Project{ID: id, Name: name, CreatedAt: createdAt}, nil
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	rows, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Project, len(rows))
	for i, r := range rows {
		out[i] = &Project{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt}
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.states, id)
	s.mu.Unlock()
	return nil
}

// state returns the editor state for a project, creating an empty one on
// first use. The caller must have verified the project exists.
func (s *Service) state(projectID string) *editorState {
	s.mu.RLock()
	st, ok := s.states[projectID]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok = s.states[projectID]; ok {
		return st
	}
	st = &editorState{history: timeline.NewHistory(timeline.Sequence{})}
	s.states[projectID] = st
	return st
}

func (s *Service) exists(ctx context.Context, projectID string) error {
	name, _, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if name == "" {
		return ErrProjectNotFound
	}
	return nil
}

// Sequence returns the current timeline snapshot for a project.
func (s *Service) Sequence(ctx context.Context, projectID string) (timeline.Sequence, error) {
	if err := s.exists(ctx, projectID); err != nil {
		return nil, err
	}
	st := s.state(projectID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.history.Present(), nil
}

// mutate runs a pure timeline operation against the present sequence and
// records the result as a new history entry. The operation's error aborts
// without touching history.
func (s *Service) mutate(ctx context.Context, projectID string, op func(timeline.Sequence) (timeline.Sequence, error)) (timeline.Sequence, error) {
	if err := s.exists(ctx, projectID); err != nil {
		return nil, err
	}

	st := s.state(projectID)
	st.mu.Lock()
	defer st.mu.Unlock()

	next, err := op(st.history.Present())
	if err != nil {
		return nil, err
	}
	st.history.Set(next)
	return next, nil
}

// LoadAnalysis appends a clip's normalized segments to the project
// timeline. Called by the job runner when an analyze job completes.
func (s *Service) LoadAnalysis(ctx context.Context, projectID string, batch timeline.LoadBatch) error {
	seq, err := s.mutate(ctx, projectID, func(seq timeline.Sequence) (timeline.Sequence, error) {
		return timeline.Load(seq, []timeline.LoadBatch{batch}), nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("analysis loaded into timeline",
		"project_id", projectID,
		"clip_id", batch.ClipID,
		"segment_count", len(seq),
	)
	return nil
}

func (s *Service) DeleteSegment(ctx context.Context, projectID, segmentID string) (timeline.Sequence, error) {
	return s.mutate(ctx, projectID, func(seq timeline.Sequence) (timeline.Sequence, error) {
		if seq.IndexOf(segmentID) < 0 {
			return nil, timeline.ErrSegmentNotFound
		}
		return timeline.Delete(seq, segmentID), nil
	})
}

// Split cuts the segment under globalTime and returns the new sequence
// plus the ID of the later piece.
func (s *Service) Split(ctx context.Context, projectID string, globalTime float64) (timeline.Sequence, string, error) {
	var secondID string
	seq, err := s.mutate(ctx, projectID, func(seq timeline.Sequence) (timeline.Sequence, error) {
		next, id, err := timeline.Split(seq, globalTime)
		if err != nil {
			return nil, err
		}
		secondID = id
		return next, nil
	})
	if err != nil {
		return nil, "", err
	}
	return seq, secondID, nil
}

func (s *Service) Reorder(ctx context.Context, projectID string, fromIndex, toIndex int) (timeline.Sequence, error) {
	return s.mutate(ctx, projectID, func(seq timeline.Sequence) (timeline.Sequence, error) {
		return timeline.Reorder(seq, fromIndex, toIndex)
	})
}

func (s *Service) Resize(ctx context.Context, projectID, segmentID string, newStart, newEnd float64) (timeline.Sequence, error) {
	return s.mutate(ctx, projectID, func(seq timeline.Sequence) (timeline.Sequence, error) {
		return timeline.Resize(seq, segmentID, newStart, newEnd)
	})
}

// Words returns a segment's word list, deriving it from the transcript on
// first access and memoizing the result.
func (s *Service) Words(ctx context.Context, projectID, segmentID string) ([]timeline.TranscriptWord, error) {
	if err := s.exists(ctx, projectID); err != nil {
		return nil, err
	}

	st := s.state(projectID)
	st.mu.Lock()
	defer st.mu.Unlock()

	seq := st.history.Present()
	idx := seq.IndexOf(segmentID)
	if idx < 0 {
		return nil, timeline.ErrSegmentNotFound
	}
	if seq[idx].Words == nil && seq[idx].Transcript != "" {
		out := seq.Clone()
		out[idx] = timeline.EnsureWords(out[idx])
		// Derivation is not an edit; it must not grow the undo stack.
		st.history.Replace(out)
		seq = out
	}
	return seq[idx].Words, nil
}

func (s *Service) SetWordDeleted(ctx context.Context, projectID, segmentID, wordID string, deleted bool) (timeline.Sequence, error) {
	return s.mutate(ctx, projectID, func(seq timeline.Sequence) (timeline.Sequence, error) {
		return timeline.SetWordDeleted(seq, segmentID, wordID, deleted)
	})
}

// DeleteFillers soft-deletes every filler word in the project and returns
// the new sequence and how many words were affected.
func (s *Service) DeleteFillers(ctx context.Context, projectID string) (timeline.Sequence, int, error) {
	var count int
	seq, err := s.mutate(ctx, projectID, func(seq timeline.Sequence) (timeline.Sequence, error) {
		next, n := timeline.DeleteFillerWords(seq)
		count = n
		return next, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return seq, count, nil
}

func (s *Service) RestoreWords(ctx context.Context, projectID string) (timeline.Sequence, error) {
	return s.mutate(ctx, projectID, func(seq timeline.Sequence) (timeline.Sequence, error) {
		return timeline.RestoreAllWords(seq), nil
	})
}

func (s *Service) Undo(ctx context.Context, projectID string) (timeline.Sequence, bool, error) {
	if err := s.exists(ctx, projectID); err != nil {
		return nil, false, err
	}
	st := s.state(projectID)
	st.mu.Lock()
	defer st.mu.Unlock()
	seq, ok := st.history.Undo()
	if !ok {
		return st.history.Present(), false, nil
	}
	return seq, true, nil
}

func (s *Service) Redo(ctx context.Context, projectID string) (timeline.Sequence, bool, error) {
	if err := s.exists(ctx, projectID); err != nil {
		return nil, false, err
	}
	st := s.state(projectID)
	st.mu.Lock()
	defer st.mu.Unlock()
	seq, ok := st.history.Redo()
	if !ok {
		return st.history.Present(), false, nil
	}
	return seq, true, nil
}

func (s *Service) CanUndoRedo(ctx context.Context, projectID string) (bool, bool, error) {
	if err := s.exists(ctx, projectID); err != nil {
		return false, false, err
	}
	st := s.state(projectID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.history.CanUndo(), st.history.CanRedo(), nil
}

// ResolvePlayhead maps a global timeline position to its segment.
func (s *Service) ResolvePlayhead(ctx context.Context, projectID string, globalTime float64) (*timeline.PlayheadPosition, error) {
	if err := s.exists(ctx, projectID); err != nil {
		return nil, err
	}
	st := s.state(projectID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return timeline.Resolve(st.history.Present(), globalTime), nil
}

// CutList returns the ordered cut ranges for export/render.
func (s *Service) CutList(ctx context.Context, projectID string) ([]timeline.CutRange, error) {
	if err := s.exists(ctx, projectID); err != nil {
		return nil, err
	}
	st := s.state(projectID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.history.Present().CutList(), nil
}
