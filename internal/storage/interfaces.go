package storage

import (
	"context"

	"fypy-hub/internal/domain"
)

// UserStore provides access to user account documents.
type UserStore interface {
	// Insert adds a new user. Returns ErrDuplicateKey if the username exists.
	Insert(ctx context.Context, u *domain.User) error

	// GetByUsername retrieves one user. Returns ErrNotFound if not exists.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetAll retrieves all users, ordered by creation time ASC.
	GetAll(ctx context.Context) ([]*domain.User, error)
}

// PriceSeriesStore archives loaded price observations per asset.
type PriceSeriesStore interface {
	// InsertBulk adds multiple points. Append-only; implementations that
	// can detect duplicates return ErrDuplicateKey for the whole batch.
	InsertBulk(ctx context.Context, points []*domain.PricePoint) error

	// GetByAsset retrieves all points for an asset, ordered by timestamp ASC.
	GetByAsset(ctx context.Context, asset string) ([]*domain.PricePoint, error)

	// Latest retrieves the newest point per asset, ordered by asset ASC.
	Latest(ctx context.Context) ([]*domain.PricePoint, error)
}
