package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type JobKind string

const (
	JobKindTranscode JobKind = "transcode"
	JobKindThumbnail JobKind = "thumbnail"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusDone       JobStatus = "done"
	JobStatusError      JobStatus = "error"
)

// IsTerminal reports whether no further transitions can occur.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusDone || s == JobStatusError
}

type Format string

const (
	FormatMP4  Format = "mp4"
	FormatWebM Format = "webm"
	FormatAVI  Format = "avi"
)

// ParseFormat validates a requested container format against the closed set.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatMP4, FormatWebM, FormatAVI:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: format %q (valid: mp4, webm, avi)", ErrInvalidArgument, s)
}

func (f Format) Ext() string {
	return "." + string(f)
}

type Resolution string

const (
	// ResolutionOriginal keeps the source dimensions.
	ResolutionOriginal Resolution = ""
	Resolution480p     Resolution = "480p"
	Resolution720p     Resolution = "720p"
	Resolution1080p    Resolution = "1080p"
	Resolution1440p    Resolution = "1440p"
	Resolution4K       Resolution = "4k"
)

var resolutionSizes = map[Resolution]string{
	Resolution480p:  "854x480",
	Resolution720p:  "1280x720",
	Resolution1080p: "1920x1080",
	Resolution1440p: "2560x1440",
	Resolution4K:    "3840x2160",
}

// ParseResolution validates a requested resolution. The empty string means
// "keep original" and is always valid.
func ParseResolution(s string) (Resolution, error) {
	if s == "" {
		return ResolutionOriginal, nil
	}
	if _, ok := resolutionSizes[Resolution(s)]; !ok {
		return "", fmt.Errorf("%w: resolution %q (valid: 480p, 720p, 1080p, 1440p, 4k)", ErrInvalidArgument, s)
	}
	return Resolution(s), nil
}

// Size returns the pixel dimensions for the resolution as WxH. The second
// return value is false for ResolutionOriginal.
func (r Resolution) Size() (string, bool) {
	size, ok := resolutionSizes[r]
	return size, ok
}

// Job is one transcode or thumbnail execution unit. A job record is created
// pending, mutated only by the worker executing it, and never deleted here.
type Job struct {
	ID          string
	Kind        JobKind
	SourceID    string
	Format      Format
	Resolution  Resolution
	OutputPath  string
	Status      JobStatus
	Progress    int
	ErrorDetail string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTranscodeJob(sourceID string, format Format, resolution Resolution, outputPath string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:         uuid.NewString(),
		Kind:       JobKindTranscode,
		SourceID:   sourceID,
		Format:     format,
		Resolution: resolution,
		OutputPath: outputPath,
		Status:     JobStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func NewThumbnailJob(sourceID, outputPath string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:         uuid.NewString(),
		Kind:       JobKindThumbnail,
		SourceID:   sourceID,
		OutputPath: outputPath,
		Status:     JobStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// OutputFilename derives the deterministic output name for a transcode. The
// extension carries the format, so equivalent requests for different formats
// never collide.
func OutputFilename(sourceID string, format Format, resolution Resolution) string {
	if resolution == ResolutionOriginal {
		return sourceID + "_" + string(format) + format.Ext()
	}
	return sourceID + "_" + string(resolution) + format.Ext()
}
