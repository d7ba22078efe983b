package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bnema/vidforge/internal/domain"
	"github.com/bnema/vidforge/internal/port"
)

// AssetStore holds the minimal asset read model jobs resolve their input
// from. Rows are seeded by the registration path and otherwise read-only.
type AssetStore struct {
	store *Store
}

func NewAssetStore(store *Store) *AssetStore {
	return &AssetStore{store: store}
}

func (s *AssetStore) Save(ctx context.Context, asset *domain.Asset) error {
	_, err := s.store.execRetry(ctx,
		`INSERT INTO assets (id, owner, title, file_path, size_bytes, duration_secs, is_public, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		asset.ID,
		asset.Owner,
		asset.Title,
		asset.FilePath,
		asset.SizeBytes,
		asset.DurationSecs,
		boolToInt(asset.IsPublic),
		formatTime(asset.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (s *AssetStore) Get(ctx context.Context, id string) (*domain.Asset, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT id, owner, title, file_path, size_bytes, duration_secs, is_public, created_at
         FROM assets WHERE id = ?`, id)

	var (
		asset     domain.Asset
		isPublic  int
		createdAt string
	)
	err := row.Scan(&asset.ID, &asset.Owner, &asset.Title, &asset.FilePath,
		&asset.SizeBytes, &asset.DurationSecs, &isPublic, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: asset %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	asset.IsPublic = isPublic != 0
	asset.CreatedAt = parseTime(createdAt)
	return &asset, nil
}

func (s *AssetStore) SetDuration(ctx context.Context, id string, seconds int) error {
	_, err := s.store.execRetry(ctx,
		`UPDATE assets SET duration_secs = ? WHERE id = ?`, seconds, id)
	if err != nil {
		return fmt.Errorf("set duration: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ port.AssetStore = (*AssetStore)(nil)
