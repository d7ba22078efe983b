package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/vidforge/internal/domain"
	"github.com/bnema/vidforge/internal/port"
)

const jobColumns = `id, kind, source_id, format, resolution, output_path, status, progress, error_detail, created_at, updated_at`

// JobStore persists job records in the shared sqlite database. The jobs
// table doubles as the work queue: workers claim the oldest pending row.
type JobStore struct {
	store *Store
}

func NewJobStore(store *Store) *JobStore {
	return &JobStore{store: store}
}

func (s *JobStore) Create(ctx context.Context, job *domain.Job) error {
	_, err := s.store.execRetry(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		string(job.Kind),
		job.SourceID,
		string(job.Format),
		string(job.Resolution),
		job.OutputPath,
		string(job.Status),
		job.Progress,
		job.ErrorDetail,
		formatTime(job.CreatedAt),
		formatTime(job.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: source=%s format=%s resolution=%s", domain.ErrDuplicateJob, job.SourceID, job.Format, job.Resolution)
	}
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *JobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

func (s *JobStore) FindActive(ctx context.Context, sourceID string, format domain.Format, resolution domain.Resolution) (*domain.Job, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs
         WHERE kind = ? AND source_id = ? AND format = ? AND resolution = ? AND status != ?
         LIMIT 1`,
		string(domain.JobKindTranscode), sourceID, string(format), string(resolution), string(domain.JobStatusError),
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no active job for source %s", domain.ErrNotFound, sourceID)
	}
	if err != nil {
		return nil, fmt.Errorf("find active job: %w", err)
	}
	return job, nil
}

// Claim moves the oldest pending job to processing with progress 0 in a
// single statement, so two workers can never claim the same job.
func (s *JobStore) Claim(ctx context.Context) (*domain.Job, error) {
	row := s.store.db.QueryRowContext(ctx,
		`UPDATE jobs
         SET status = ?, progress = 0, updated_at = ?
         WHERE id = (SELECT id FROM jobs WHERE status = ? ORDER BY created_at LIMIT 1)
         RETURNING `+jobColumns,
		string(domain.JobStatusProcessing),
		formatTime(time.Now()),
		string(domain.JobStatusPending),
	)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return job, nil
}

func (s *JobStore) UpdateProgress(ctx context.Context, id string, progress int) error {
	_, err := s.store.execRetry(ctx,
		`UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ? AND status = ?`,
		progress, formatTime(time.Now()), id, string(domain.JobStatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

func (s *JobStore) MarkDone(ctx context.Context, id string) error {
	_, err := s.store.execRetry(ctx,
		`UPDATE jobs SET status = ?, progress = 100, updated_at = ? WHERE id = ?`,
		string(domain.JobStatusDone), formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	return nil
}

func (s *JobStore) MarkFailed(ctx context.Context, id, detail string) error {
	if detail == "" {
		detail = "unknown failure"
	}
	_, err := s.store.execRetry(ctx,
		`UPDATE jobs SET status = ?, error_detail = ?, updated_at = ? WHERE id = ?`,
		string(domain.JobStatusError), detail, formatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var (
		job                  domain.Job
		kind, format, res    string
		status               string
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&job.ID, &kind, &job.SourceID, &format, &res, &job.OutputPath,
		&status, &job.Progress, &job.ErrorDetail, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	job.Kind = domain.JobKind(kind)
	job.Format = domain.Format(format)
	job.Resolution = domain.Resolution(res)
	job.Status = domain.JobStatus(status)
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	return &job, nil
}

var _ port.JobStore = (*JobStore)(nil)
