package api

import (
	"time"

	"github.com/cutdesk/cutdesk-agent/internal/library"
	"github.com/cutdesk/cutdesk-agent/internal/project"
	"github.com/cutdesk/cutdesk-agent/internal/timeline"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State       string              `json:"state"`
	LastError   string              `json:"last_error,omitempty"`
	ClipsCount  int                 `json:"clips_count"`
	JobsRunning int                 `json:"jobs_running"`
	ActiveJob   *JobResponse        `json:"active_job,omitempty"`
	Tools       *ToolStatusResponse `json:"tools,omitempty"`
}

type ToolStatusResponse struct {
	HasFFmpeg      bool   `json:"has_ffmpeg"`
	HasFFprobe     bool   `json:"has_ffprobe"`
	FFmpegVersion  string `json:"ffmpeg_version,omitempty"`
	FFprobeVersion string `json:"ffprobe_version,omitempty"`
	LastProbeAt    string `json:"last_probe_at,omitempty"`
}

type ImportClipRequest struct {
	Path        string `json:"path"`
	DisplayName string `json:"display_name,omitempty"`
}

type ImportClipResponse struct {
	Clip  ClipResponse `json:"clip"`
	JobID string       `json:"job_id,omitempty"`
}

type ClipResponse struct {
	ID          string  `json:"id"`
	Path        string  `json:"path"`
	Filename    string  `json:"filename"`
	DisplayName string  `json:"display_name"`
	Size        int64   `json:"size"`
	DurationS   float64 `json:"duration_s"`
	Probed      bool    `json:"probed"`
	Present     bool    `json:"present"`
	CreatedAt   string  `json:"created_at"`
}

type ClipsResponse struct {
	Clips []ClipResponse `json:"clips"`
}

type CreateProjectRequest struct {
	Name string `json:"name"`
}

type ProjectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type AnalyzeRequest struct {
	ClipID string `json:"clip_id"`
}

type AnalyzeResponse struct {
	JobID string `json:"job_id"`
}

type JobResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	ClipID    string `json:"clip_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	Progress  int    `json:"progress"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type WordResponse struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	IsDeleted bool    `json:"is_deleted"`
	IsFiller  bool    `json:"is_filler"`
}

type SegmentResponse struct {
	ID         string         `json:"id"`
	ClipID     string         `json:"clip_id"`
	Start      float64        `json:"start"`
	End        float64        `json:"end"`
	GroupID    string         `json:"group_id"`
	IsBest     bool           `json:"is_best"`
	Score      int            `json:"score"`
	Color      string         `json:"color"`
	Name       string         `json:"name"`
	Transcript string         `json:"transcript,omitempty"`
	Words      []WordResponse `json:"words,omitempty"`
}

type TimelineResponse struct {
	Segments      []SegmentResponse `json:"segments"`
	TotalDuration float64           `json:"total_duration"`
	CanUndo       bool              `json:"can_undo"`
	CanRedo       bool              `json:"can_redo"`
}

type SplitRequest struct {
	Time float64 `json:"time"`
}

type SplitResponse struct {
	Timeline  TimelineResponse `json:"timeline"`
	SegmentID string           `json:"segment_id"`
}

type ReorderRequest struct {
	FromIndex int `json:"from_index"`
	ToIndex   int `json:"to_index"`
}

type ResizeRequest struct {
	SegmentID string  `json:"segment_id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
}

type SetWordDeletedRequest struct {
	SegmentID string `json:"segment_id"`
	WordID    string `json:"word_id"`
	Deleted   bool   `json:"deleted"`
}

type DeleteFillersResponse struct {
	Timeline     TimelineResponse `json:"timeline"`
	DeletedCount int              `json:"deleted_count"`
}

type UndoRedoResponse struct {
	Timeline TimelineResponse `json:"timeline"`
	Applied  bool             `json:"applied"`
}

type WordsResponse struct {
	Words []WordResponse `json:"words"`
}

type ResolveResponse struct {
	Found       bool    `json:"found"`
	Index       int     `json:"index,omitempty"`
	SegmentID   string  `json:"segment_id,omitempty"`
	LocalOffset float64 `json:"local_offset,omitempty"`
	SourceTime  float64 `json:"source_time,omitempty"`
	Timecode    string  `json:"timecode"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ClipToResponse(c *library.Clip) ClipResponse {
	return ClipResponse{
		ID:          c.ID,
		Path:        c.Path,
		Filename:    c.Filename,
		DisplayName: c.DisplayName,
		Size:        c.Size,
		DurationS:   c.DurationS,
		Probed:      c.Probed,
		Present:     c.Present,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

func ProjectToResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func JobToResponse(j *library.Job) JobResponse {
	return JobResponse{
		ID:        j.ID,
		Type:      j.Type,
		Status:    j.Status,
		ClipID:    j.ClipID,
		ProjectID: j.ProjectID,
		Progress:  j.Progress,
		Error:     j.Error,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
		UpdatedAt: j.UpdatedAt.Format(time.RFC3339),
	}
}

func WordToResponse(w timeline.TranscriptWord) WordResponse {
	return WordResponse{
		ID:        w.ID,
		Text:      w.Text,
		Start:     w.Start,
		End:       w.End,
		IsDeleted: w.IsDeleted,
		IsFiller:  w.IsFiller,
	}
}

func SegmentToResponse(s timeline.Segment) SegmentResponse {
	resp := SegmentResponse{
		ID:         s.ID,
		ClipID:     s.ClipID,
		Start:      s.Range.Start,
		End:        s.Range.End,
		GroupID:    s.GroupID,
		IsBest:     s.IsBest,
		Score:      s.Score,
		Color:      s.Color,
		Name:       s.Name,
		Transcript: s.Transcript,
	}
	for _, w := range s.Words {
		resp.Words = append(resp.Words, WordToResponse(w))
	}
	return resp
}

func SequenceToTimeline(seq timeline.Sequence, canUndo, canRedo bool) TimelineResponse {
	resp := TimelineResponse{
		Segments:      make([]SegmentResponse, len(seq)),
		TotalDuration: seq.TotalDuration(),
		CanUndo:       canUndo,
		CanRedo:       canRedo,
	}
	for i, s := range seq {
		resp.Segments[i] = SegmentToResponse(s)
	}
	return resp
}
