package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bnema/vidforge/internal/domain"
	"github.com/bnema/vidforge/internal/port"
)

// fakeJobStore is an in-memory JobStore that records every status
// transition and progress write so tests can assert on the exact sequence.
type fakeJobStore struct {
	mu          sync.Mutex
	jobs        map[string]*domain.Job
	order       []string
	transitions map[string][]domain.JobStatus
	progressLog map[string][]int

	createErr   error
	progressErr error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{
		jobs:        make(map[string]*domain.Job),
		transitions: make(map[string][]domain.JobStatus),
		progressLog: make(map[string][]int),
	}
}

func (f *fakeJobStore) Create(_ context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	// Mirror the store's uniqueness guard on active transcode combinations.
	if job.Kind == domain.JobKindTranscode {
		for _, id := range f.order {
			existing := f.jobs[id]
			if existing.Kind == domain.JobKindTranscode &&
				existing.SourceID == job.SourceID &&
				existing.Format == job.Format &&
				existing.Resolution == job.Resolution &&
				existing.Status != domain.JobStatusError {
				return fmt.Errorf("%w: source=%s", domain.ErrDuplicateJob, job.SourceID)
			}
		}
	}
	clone := *job
	f.jobs[job.ID] = &clone
	f.order = append(f.order, job.ID)
	f.transitions[job.ID] = []domain.JobStatus{job.Status}
	return nil
}

func (f *fakeJobStore) Get(_ context.Context, id string) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	clone := *job
	return &clone, nil
}

func (f *fakeJobStore) FindActive(_ context.Context, sourceID string, format domain.Format, resolution domain.Resolution) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		job := f.jobs[id]
		if job.Kind == domain.JobKindTranscode &&
			job.SourceID == sourceID &&
			job.Format == format &&
			job.Resolution == resolution &&
			job.Status != domain.JobStatusError {
			clone := *job
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: no active job", domain.ErrNotFound)
}

func (f *fakeJobStore) Claim(_ context.Context) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		job := f.jobs[id]
		if job.Status == domain.JobStatusPending {
			job.Status = domain.JobStatusProcessing
			job.Progress = 0
			job.UpdatedAt = time.Now().UTC()
			f.transitions[id] = append(f.transitions[id], domain.JobStatusProcessing)
			clone := *job
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeJobStore) UpdateProgress(_ context.Context, id string, progress int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.progressErr != nil {
		return f.progressErr
	}
	job, ok := f.jobs[id]
	if !ok || job.Status != domain.JobStatusProcessing {
		return nil
	}
	job.Progress = progress
	f.progressLog[id] = append(f.progressLog[id], progress)
	return nil
}

func (f *fakeJobStore) MarkDone(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	job.Status = domain.JobStatusDone
	job.Progress = 100
	f.transitions[id] = append(f.transitions[id], domain.JobStatusDone)
	return nil
}

func (f *fakeJobStore) MarkFailed(_ context.Context, id, detail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return fmt.Errorf("%w: job %s", domain.ErrNotFound, id)
	}
	if detail == "" {
		detail = "unknown failure"
	}
	job.Status = domain.JobStatusError
	job.ErrorDetail = detail
	f.transitions[id] = append(f.transitions[id], domain.JobStatusError)
	return nil
}

func (f *fakeJobStore) jobCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

func (f *fakeJobStore) transitionsFor(id string) []domain.JobStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.JobStatus, len(f.transitions[id]))
	copy(out, f.transitions[id])
	return out
}

func (f *fakeJobStore) progressFor(id string) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int, len(f.progressLog[id]))
	copy(out, f.progressLog[id])
	return out
}

type fakeAssetStore struct {
	mu        sync.Mutex
	assets    map[string]*domain.Asset
	durations map[string]int
}

func newFakeAssetStore(assets ...*domain.Asset) *fakeAssetStore {
	f := &fakeAssetStore{
		assets:    make(map[string]*domain.Asset),
		durations: make(map[string]int),
	}
	for _, a := range assets {
		f.assets[a.ID] = a
	}
	return f
}

func (f *fakeAssetStore) Save(_ context.Context, asset *domain.Asset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assets[asset.ID] = asset
	return nil
}

func (f *fakeAssetStore) Get(_ context.Context, id string) (*domain.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	asset, ok := f.assets[id]
	if !ok {
		return nil, fmt.Errorf("%w: asset %s", domain.ErrNotFound, id)
	}
	return asset, nil
}

func (f *fakeAssetStore) SetDuration(_ context.Context, id string, seconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.durations[id] = seconds
	if asset, ok := f.assets[id]; ok {
		asset.DurationSecs = seconds
	}
	return nil
}

// fakeEncoder scripts the external encode process: it replays a progress
// sequence, optionally writes output bytes, and fails on demand.
type fakeEncoder struct {
	mu          sync.Mutex
	encodeCalls int
	thumbCalls  int
	lastSeek    time.Duration
	progress    []int
	output      []byte
	encodeErr   error
	thumbErr    error
	duration    time.Duration
	durationErr error
}

func (f *fakeEncoder) Encode(_ context.Context, req port.EncodeRequest, onProgress func(int)) error {
	f.mu.Lock()
	f.encodeCalls++
	f.mu.Unlock()

	for _, p := range f.progress {
		if onProgress != nil {
			onProgress(p)
		}
	}
	if f.encodeErr != nil {
		return f.encodeErr
	}
	if f.output != nil {
		return os.WriteFile(req.OutputPath, f.output, 0644)
	}
	return nil
}

func (f *fakeEncoder) Thumbnail(_ context.Context, _, outputPath string, seekTo time.Duration) error {
	f.mu.Lock()
	f.thumbCalls++
	f.lastSeek = seekTo
	f.mu.Unlock()

	if f.thumbErr != nil {
		return f.thumbErr
	}
	return os.WriteFile(outputPath, []byte("jpeg"), 0644)
}

func (f *fakeEncoder) Duration(_ context.Context, _ string) (time.Duration, error) {
	return f.duration, f.durationErr
}

func (f *fakeEncoder) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.encodeCalls
}

var (
	_ port.JobStore   = (*fakeJobStore)(nil)
	_ port.AssetStore = (*fakeAssetStore)(nil)
	_ port.Encoder    = (*fakeEncoder)(nil)
)
