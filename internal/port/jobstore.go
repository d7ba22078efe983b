package port

import (
	"context"

	"github.com/bnema/vidforge/internal/domain"
)

// JobStore is the durable job record mapping. Create returns
// domain.ErrDuplicateJob when a non-error job already exists for the same
// (source, format, resolution) combination; lookups return domain.ErrNotFound
// for unknown ids.
type JobStore interface {
	Create(ctx context.Context, job *domain.Job) error
	Get(ctx context.Context, id string) (*domain.Job, error)
	// FindActive returns the job for the combination whose status is not
	// error, or domain.ErrNotFound.
	FindActive(ctx context.Context, sourceID string, format domain.Format, resolution domain.Resolution) (*domain.Job, error)
	// Claim atomically moves the oldest pending job to processing with
	// progress 0 and returns it, or nil when no job is pending.
	Claim(ctx context.Context) (*domain.Job, error)
	UpdateProgress(ctx context.Context, id string, progress int) error
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, detail string) error
}
