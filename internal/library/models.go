package library

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clip is a source media file the editor can cut from. DurationS is zero
// until a probe job has run; a clip without a duration cannot be analyzed.
type Clip struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	Filename    string    `json:"filename"`
	DisplayName string    `json:"display_name"`
	Size        int64     `json:"size"`
	DurationS   float64   `json:"duration_s"`
	Probed      bool      `json:"probed"`
	Present     bool      `json:"present"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	JobTypeProbe   = "probe"
	JobTypeAnalyze = "analyze"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

type Job struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
	ClipID    string    `json:"clip_id,omitempty"`
	ProjectID string    `json:"project_id,omitempty"`
	Progress  int       `json:"progress"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

func NewID() string {
	return uuid.NewString()
}

func IsVideoFile(filename string) bool {
	return VideoExtensions[strings.ToLower(filepath.Ext(filename))]
}
