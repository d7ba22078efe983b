package port

import (
	"context"

	"github.com/bnema/vidforge/internal/domain"
)

// AssetStore exposes the external asset layer's read model. Save exists so
// the registration path can seed the read model; the core never mutates
// asset rows it did not create.
type AssetStore interface {
	Save(ctx context.Context, asset *domain.Asset) error
	Get(ctx context.Context, id string) (*domain.Asset, error)
	SetDuration(ctx context.Context, id string, seconds int) error
}
