package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"fypy-hub/internal/domain"
	"fypy-hub/internal/storage"
)

// PriceSeriesStore implements storage.PriceSeriesStore using ClickHouse.
// MergeTree does not enforce uniqueness, so only intra-batch duplicates are
// rejected here; callers deduplicate before archiving.
type PriceSeriesStore struct {
	conn *Conn
}

// NewPriceSeriesStore creates a new PriceSeriesStore.
func NewPriceSeriesStore(conn *Conn) *PriceSeriesStore {
	return &PriceSeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceSeriesStore = (*PriceSeriesStore)(nil)

// InsertBulk adds multiple points in a single batch.
func (s *PriceSeriesStore) InsertBulk(ctx context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		asset string
		ts    int64
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Asset == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.Asset, p.Timestamp.UnixMilli()}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_points (asset, ts, price, volume)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(p.Asset, p.Timestamp, p.Price, p.Volume); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByAsset retrieves all points for an asset, ordered by timestamp ASC.
func (s *PriceSeriesStore) GetByAsset(ctx context.Context, asset string) ([]*domain.PricePoint, error) {
	query := `
		SELECT asset, ts, price, volume
		FROM price_points
		WHERE asset = ?
		ORDER BY ts ASC
	`

	rows, err := s.conn.Query(ctx, query, asset)
	if err != nil {
		return nil, fmt.Errorf("query by asset: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// Latest retrieves the newest point per asset, ordered by asset ASC.
func (s *PriceSeriesStore) Latest(ctx context.Context) ([]*domain.PricePoint, error) {
	query := `
		SELECT asset, ts, price, volume
		FROM price_points
		ORDER BY asset ASC, ts DESC
		LIMIT 1 BY asset
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	defer rows.Close()

	return scanPricePoints(rows)
}

// scanPricePoints scans all rows into PricePoints.
func scanPricePoints(rows driver.Rows) ([]*domain.PricePoint, error) {
	var points []*domain.PricePoint
	for rows.Next() {
		var (
			p      domain.PricePoint
			ts     time.Time
			volume *float64
		)
		if err := rows.Scan(&p.Asset, &ts, &p.Price, &volume); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		p.Timestamp = ts.UTC()
		p.Volume = volume
		points = append(points, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price points: %w", err)
	}
	return points, nil
}
