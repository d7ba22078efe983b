package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bnema/vidforge/internal/domain"
	"github.com/bnema/vidforge/internal/infrastructure/logger"
	"github.com/bnema/vidforge/internal/port"
)

// WorkerPool drives queued jobs to a terminal state. Each claimed job has
// exactly one writer (the worker that claimed it), so its progress updates
// are applied in order; there is no cross-job ordering.
type WorkerPool struct {
	jobs     port.JobStore
	assets   port.AssetStore
	encoder  port.Encoder
	eventBus EventPublisher
	workers  int
}

type EventPublisher interface {
	Publish(jobID string, event Event)
}

type Event struct {
	Type     string // "status", "progress"
	Status   domain.JobStatus
	Progress int
	Message  string
}

func NewWorkerPool(jobs port.JobStore, assets port.AssetStore, encoder port.Encoder, eventBus EventPublisher, workers int) *WorkerPool {
	return &WorkerPool{
		jobs:     jobs,
		assets:   assets,
		encoder:  encoder,
		eventBus: eventBus,
		workers:  workers,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.workers; i++ {
		go wp.runWorker(ctx, i)
	}
	logger.Info.Printf("started %d workers", wp.workers)
}

func (wp *WorkerPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			logger.Info.Printf("worker %d shutting down", id)
			return
		default:
		}

		job, err := wp.jobs.Claim(ctx)
		if err != nil {
			logger.Error.Printf("worker %d: failed to claim job: %v", id, err)
			time.Sleep(2 * time.Second)
			continue
		}

		if job == nil {
			// No pending jobs, wait before polling again
			time.Sleep(500 * time.Millisecond)
			continue
		}

		logger.Info.Printf("worker %d: processing job %s (kind=%s, source=%s)", id, job.ID, job.Kind, job.SourceID)
		wp.processJob(ctx, job)
	}
}

// processJob runs one claimed job to done or error. Failures past this point
// are terminal and land on the record, never on any caller.
func (wp *WorkerPool) processJob(ctx context.Context, job *domain.Job) {
	wp.publish(job.ID, Event{Type: "status", Status: domain.JobStatusProcessing})

	var err error
	switch job.Kind {
	case domain.JobKindTranscode:
		err = wp.runTranscode(ctx, job)
	case domain.JobKindThumbnail:
		err = wp.runThumbnail(ctx, job)
	default:
		err = fmt.Errorf("unknown job kind: %s", job.Kind)
	}

	if err != nil {
		logger.Error.Printf("job %s failed: %v", job.ID, logger.SanitizeForLog(err.Error()))
		if failErr := wp.jobs.MarkFailed(ctx, job.ID, err.Error()); failErr != nil {
			logger.Error.Printf("job %s: failed to record failure: %v", job.ID, failErr)
		}
		wp.publish(job.ID, Event{Type: "status", Status: domain.JobStatusError, Message: err.Error()})
		return
	}

	if doneErr := wp.jobs.MarkDone(ctx, job.ID); doneErr != nil {
		logger.Error.Printf("job %s: failed to record completion: %v", job.ID, doneErr)
		return
	}
	wp.publish(job.ID, Event{Type: "status", Status: domain.JobStatusDone, Progress: 100})
	logger.Info.Printf("job %s completed", job.ID)
}

func (wp *WorkerPool) runTranscode(ctx context.Context, job *domain.Job) error {
	asset, err := wp.assets.Get(ctx, job.SourceID)
	if err != nil {
		return fmt.Errorf("%w: asset %s: %v", domain.ErrSourceUnavailable, job.SourceID, err)
	}
	if _, err := os.Stat(asset.FilePath); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrSourceUnavailable, asset.FilePath)
	}

	// Progress writes are telemetry: a failed write is logged and the
	// encode keeps going.
	last := -1
	onProgress := func(percent int) {
		if percent <= last {
			return
		}
		last = percent
		if err := wp.jobs.UpdateProgress(ctx, job.ID, percent); err != nil {
			logger.Warn.Printf("job %s: progress write failed: %v", job.ID, err)
		}
		wp.publish(job.ID, Event{Type: "progress", Status: domain.JobStatusProcessing, Progress: percent})
	}

	encodeErr := wp.encoder.Encode(ctx, port.EncodeRequest{
		InputPath:  asset.FilePath,
		OutputPath: job.OutputPath,
		Format:     job.Format,
		Resolution: job.Resolution,
	}, onProgress)
	if encodeErr != nil {
		return fmt.Errorf("%w: %v", domain.ErrEncodeFailed, encodeErr)
	}

	// The encoder claims success; the output file has to back that up.
	info, statErr := os.Stat(job.OutputPath)
	if statErr != nil || info.Size() == 0 {
		return fmt.Errorf("%w: encoder reported success but output %s is missing or empty", domain.ErrEncodeFailed, job.OutputPath)
	}
	return nil
}

func (wp *WorkerPool) runThumbnail(ctx context.Context, job *domain.Job) error {
	asset, err := wp.assets.Get(ctx, job.SourceID)
	if err != nil {
		return fmt.Errorf("%w: asset %s: %v", domain.ErrSourceUnavailable, job.SourceID, err)
	}
	if _, err := os.Stat(asset.FilePath); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrSourceUnavailable, asset.FilePath)
	}

	// Frame at 10% of duration. Probe on demand when registration did not
	// know the duration yet, and remember the answer.
	duration := time.Duration(asset.DurationSecs) * time.Second
	if duration == 0 {
		if probed, probeErr := wp.encoder.Duration(ctx, asset.FilePath); probeErr == nil {
			duration = probed
			if setErr := wp.assets.SetDuration(ctx, asset.ID, int(probed.Seconds())); setErr != nil {
				logger.Warn.Printf("asset %s: duration write failed: %v", asset.ID, setErr)
			}
		}
	}

	if err := wp.encoder.Thumbnail(ctx, asset.FilePath, job.OutputPath, duration/10); err != nil {
		return fmt.Errorf("thumbnail: %w", err)
	}
	return nil
}

func (wp *WorkerPool) publish(jobID string, event Event) {
	if wp.eventBus != nil {
		wp.eventBus.Publish(jobID, event)
	}
}
