package library

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateClip(ctx context.Context, clip *Clip) error
	GetClip(ctx context.Context, id string) (*Clip, error)
	GetClipByPath(ctx context.Context, path string) (*Clip, error)
	ListClips(ctx context.Context) ([]*Clip, error)
	DeleteClip(ctx context.Context, id string) error
	UpdateClipDuration(ctx context.Context, id string, durationS float64) error
	UpdateClipPresent(ctx context.Context, id string, present bool) error
	CountClips(ctx context.Context) (int, error)

	CreateProject(ctx context.Context, id, name string, createdAt time.Time) error
	GetProject(ctx context.Context, id string) (string, time.Time, error)
	ListProjects(ctx context.Context) ([]ProjectRow, error)
	DeleteProject(ctx context.Context, id string) error

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ListPendingJobs(ctx context.Context) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// ProjectRow is the persisted part of a project; editing state lives in
// memory only.
type ProjectRow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateClip(ctx context.Context, c *Clip) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO clips (id, path, filename, display_name, size, duration_s, probed, present, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Path, c.Filename, c.DisplayName, c.Size, c.DurationS, boolToInt(c.Probed), boolToInt(c.Present), c.CreatedAt.Format(time.RFC3339))
	return err
}

const clipColumns = "id, path, filename, display_name, size, duration_s, probed, present, created_at"

func (r *SQLiteRepository) GetClip(ctx context.Context, id string) (*Clip, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+clipColumns+" FROM clips WHERE id = ?", id)
	return scanClip(row)
}

func (r *SQLiteRepository) GetClipByPath(ctx context.Context, path string) (*Clip, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+clipColumns+" FROM clips WHERE path = ?", path)
	return scanClip(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClip(row rowScanner) (*Clip, error) {
	var c Clip
	var probed, present int
	var createdAt string

	err := row.Scan(&c.ID, &c.Path, &c.Filename, &c.DisplayName, &c.Size, &c.DurationS, &probed, &present, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Probed = probed == 1
	c.Present = present == 1
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &c, nil
}

func (r *SQLiteRepository) ListClips(ctx context.Context) ([]*Clip, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+clipColumns+" FROM clips ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []*Clip
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

func (r *SQLiteRepository) DeleteClip(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM clips WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) UpdateClipDuration(ctx context.Context, id string, durationS float64) error {
	_, err := r.db.ExecContext(ctx, "UPDATE clips SET duration_s = ?, probed = 1 WHERE id = ?", durationS, id)
	return err
}

func (r *SQLiteRepository) UpdateClipPresent(ctx context.Context, id string, present bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE clips SET present = ? WHERE id = ?", boolToInt(present), id)
	return err
}

func (r *SQLiteRepository) CountClips(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clips").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) CreateProject(ctx context.Context, id, name string, createdAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)
	`, id, name, createdAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (string, time.Time, error) {
	var name, createdAt string
	err := r.db.QueryRowContext(ctx, "SELECT name, created_at FROM projects WHERE id = ?", id).Scan(&name, &createdAt)
	if err == sql.ErrNoRows {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, err
	}
	at, _ := time.Parse(time.RFC3339, createdAt)
	return name, at, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]ProjectRow, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at FROM projects ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []ProjectRow
	for rows.Next() {
		var p ProjectRow
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) CreateJob(ctx context.Context, j *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (id, type, status, clip_id, project_id, progress, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.Type, j.Status, j.ClipID, j.ProjectID, j.Progress, j.Error,
		j.CreatedAt.Format(time.RFC3339), j.UpdatedAt.Format(time.RFC3339))
	return err
}

const jobColumns = "id, type, status, clip_id, project_id, progress, error, created_at, updated_at"

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	var createdAt, updatedAt string

	err := row.Scan(&j.ID, &j.Type, &j.Status, &j.ClipID, &j.ProjectID, &j.Progress, &j.Error, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	return scanJob(row)
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *SQLiteRepository) ListPendingJobs(ctx context.Context) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE status = ? ORDER BY created_at ASC", JobStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func collectJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?",
		status, errorMsg, time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?",
		progress, time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
