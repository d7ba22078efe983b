package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bnema/vidforge/internal/domain"
	"github.com/bnema/vidforge/internal/infrastructure/logger"
	"github.com/bnema/vidforge/internal/port"
)

// TranscodeService validates and deduplicates transcode requests and turns
// them into pending job records. Execution belongs to the worker pool; the
// persisted pending row is the hand-off, so Submit never waits on an encode.
type TranscodeService struct {
	jobs     port.JobStore
	assets   port.AssetStore
	videoDir string
	thumbDir string
}

func NewTranscodeService(jobs port.JobStore, assets port.AssetStore, videoDir, thumbDir string) *TranscodeService {
	return &TranscodeService{
		jobs:     jobs,
		assets:   assets,
		videoDir: videoDir,
		thumbDir: thumbDir,
	}
}

type SubmitRequest struct {
	SourceID   string
	Format     string
	Resolution string
	Requester  domain.Requester
}

type SubmitResult struct {
	JobID  string
	Status domain.JobStatus
}

func (s *TranscodeService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	format, err := domain.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	resolution, err := domain.ParseResolution(req.Resolution)
	if err != nil {
		return nil, err
	}

	asset, err := s.assets.Get(ctx, req.SourceID)
	if err != nil {
		return nil, err
	}
	if !asset.ReadableBy(req.Requester) {
		return nil, fmt.Errorf("%w: requester %s may not transcode asset %s", domain.ErrAccessDenied, req.Requester.Identity, asset.ID)
	}

	// Idempotent submission: an equivalent job in any non-error state is
	// returned unchanged instead of multiplying work.
	if existing, err := s.jobs.FindActive(ctx, asset.ID, format, resolution); err == nil {
		return &SubmitResult{JobID: existing.ID, Status: existing.Status}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	outputPath := filepath.Join(s.videoDir, domain.OutputFilename(asset.ID, format, resolution))
	job := domain.NewTranscodeJob(asset.ID, format, resolution, outputPath)

	if err := s.jobs.Create(ctx, job); err != nil {
		// A concurrent identical submission won the check-then-create race;
		// the unique index caught it, so return the winner.
		if errors.Is(err, domain.ErrDuplicateJob) {
			if existing, findErr := s.jobs.FindActive(ctx, asset.ID, format, resolution); findErr == nil {
				return &SubmitResult{JobID: existing.ID, Status: existing.Status}, nil
			}
		}
		return nil, err
	}

	logger.Info.Printf("transcode queued: job=%s source=%s format=%s resolution=%s", job.ID, asset.ID, format, resolution)
	return &SubmitResult{JobID: job.ID, Status: job.Status}, nil
}

// JobStatusView is the client-facing projection of a job record.
type JobStatusView struct {
	ID          string           `json:"id"`
	Status      domain.JobStatus `json:"status"`
	Progress    int              `json:"progress"`
	ErrorDetail string           `json:"error,omitempty"`
}

// Status reads the current job record; it always reflects the most recent
// write, there is no caching in front of the store.
func (s *TranscodeService) Status(ctx context.Context, jobID string) (*JobStatusView, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &JobStatusView{
		ID:          job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		ErrorDetail: job.ErrorDetail,
	}, nil
}

type BulkItem struct {
	SourceID string           `json:"sourceId"`
	JobID    string           `json:"jobId,omitempty"`
	Status   domain.JobStatus `json:"status,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type BulkResult struct {
	Items   []BulkItem `json:"jobs"`
	Started int        `json:"started"`
}

// SubmitBulk fans a target count of submissions out over the source list,
// cycling through it when count exceeds the number of sources. Per-item
// failures are reported inline and never abort the remaining items.
func (s *TranscodeService) SubmitBulk(ctx context.Context, sourceIDs []string, format, resolution string, count int, requester domain.Requester) (*BulkResult, error) {
	if len(sourceIDs) == 0 {
		return nil, fmt.Errorf("%w: no source ids", domain.ErrInvalidArgument)
	}
	if count <= 0 {
		count = len(sourceIDs)
	}

	result := &BulkResult{Items: make([]BulkItem, 0, count)}
	for i := 0; i < count; i++ {
		sourceID := sourceIDs[i%len(sourceIDs)]
		res, err := s.Submit(ctx, SubmitRequest{
			SourceID:   sourceID,
			Format:     format,
			Resolution: resolution,
			Requester:  requester,
		})
		if err != nil {
			result.Items = append(result.Items, BulkItem{SourceID: sourceID, Error: err.Error()})
			continue
		}
		result.Items = append(result.Items, BulkItem{SourceID: sourceID, JobID: res.JobID, Status: res.Status})
		result.Started++
	}

	logger.Info.Printf("bulk dispatch: started %d of %d transcode jobs", result.Started, count)
	return result, nil
}

// RegisterAsset seeds the asset read model and kicks off a best-effort
// thumbnail job. Thumbnail problems never fail the registration.
func (s *TranscodeService) RegisterAsset(ctx context.Context, owner, title, filePath string, sizeBytes int64, isPublic bool) (*domain.Asset, error) {
	asset := domain.NewAsset(owner, title, filePath, sizeBytes, isPublic)
	if err := s.assets.Save(ctx, asset); err != nil {
		return nil, fmt.Errorf("save asset: %w", err)
	}

	s.RequestThumbnail(ctx, asset.ID)
	return asset, nil
}

// RequestThumbnail enqueues a single-frame extraction for the asset. Failure
// to enqueue degrades presentation only, so it is logged and swallowed.
func (s *TranscodeService) RequestThumbnail(ctx context.Context, sourceID string) {
	outputPath := filepath.Join(s.thumbDir, sourceID+".jpg")
	job := domain.NewThumbnailJob(sourceID, outputPath)
	if err := s.jobs.Create(ctx, job); err != nil {
		logger.Error.Printf("failed to queue thumbnail for %s: %v", logger.SanitizeForLog(sourceID), err)
		return
	}
	logger.Info.Printf("thumbnail queued: job=%s source=%s", job.ID, sourceID)
}
