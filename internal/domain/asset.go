package domain

import (
	"time"

	"github.com/google/uuid"
)

// Asset is the read model of a source video owned by the external
// persistence layer. The core only references assets, it never owns them.
type Asset struct {
	ID           string
	Owner        string
	Title        string
	FilePath     string
	SizeBytes    int64
	DurationSecs int
	IsPublic     bool
	CreatedAt    time.Time
}

func NewAsset(owner, title, filePath string, sizeBytes int64, isPublic bool) *Asset {
	return &Asset{
		ID:        uuid.NewString(),
		Owner:     owner,
		Title:     title,
		FilePath:  filePath,
		SizeBytes: sizeBytes,
		IsPublic:  isPublic,
		CreatedAt: time.Now().UTC(),
	}
}

// Requester is a pre-resolved identity handed in by the excluded auth layer.
type Requester struct {
	Identity   string
	Privileged bool
}

// ReadableBy reports whether the requester may start work against this asset:
// the owner, a privileged requester, or anyone when the asset is public.
func (a *Asset) ReadableBy(r Requester) bool {
	return r.Privileged || a.Owner == r.Identity || a.IsPublic
}
