package port

import (
	"context"
	"time"

	"github.com/bnema/vidforge/internal/domain"
)

// EncodeRequest describes one external encode operation.
type EncodeRequest struct {
	InputPath  string
	OutputPath string
	Format     domain.Format
	Resolution domain.Resolution
}

// Encoder drives external media operations. Encode blocks for the duration of
// the process and invokes onProgress with whole percentages as the operation
// reports them; onProgress may be nil.
type Encoder interface {
	Encode(ctx context.Context, req EncodeRequest, onProgress func(percent int)) error
	Thumbnail(ctx context.Context, inputPath, outputPath string, seekTo time.Duration) error
	Duration(ctx context.Context, inputPath string) (time.Duration, error)
}
