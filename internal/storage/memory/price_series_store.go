package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fypy-hub/internal/domain"
	"fypy-hub/internal/storage"
)

// PriceSeriesStore is an in-memory implementation of storage.PriceSeriesStore.
type PriceSeriesStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PricePoint // keyed by (asset, timestamp)
}

// NewPriceSeriesStore creates a new in-memory price series store.
func NewPriceSeriesStore() *PriceSeriesStore {
	return &PriceSeriesStore{
		data: make(map[string]*domain.PricePoint),
	}
}

func pointKey(asset string, ts int64) string {
	return fmt.Sprintf("%s|%d", asset, ts)
}

// InsertBulk adds multiple points. Fails the entire batch on duplicate.
func (s *PriceSeriesStore) InsertBulk(_ context.Context, points []*domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Asset == "" {
			return storage.ErrInvalidInput
		}
		key := pointKey(p.Asset, p.Timestamp.UnixMilli())
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range points {
		pointCopy := *p
		s.data[pointKey(p.Asset, p.Timestamp.UnixMilli())] = &pointCopy
	}
	return nil
}

// GetByAsset retrieves all points for an asset, ordered by timestamp ASC.
func (s *PriceSeriesStore) GetByAsset(_ context.Context, asset string) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PricePoint
	for _, p := range s.data {
		if p.Asset == asset {
			pointCopy := *p
			result = append(result, &pointCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}

// Latest retrieves the newest point per asset, ordered by asset ASC.
func (s *PriceSeriesStore) Latest(_ context.Context) ([]*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	newest := make(map[string]*domain.PricePoint)
	for _, p := range s.data {
		cur, ok := newest[p.Asset]
		if !ok || p.Timestamp.After(cur.Timestamp) {
			newest[p.Asset] = p
		}
	}

	result := make([]*domain.PricePoint, 0, len(newest))
	for _, p := range newest {
		pointCopy := *p
		result = append(result, &pointCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Asset < result[j].Asset
	})
	return result, nil
}

var _ storage.PriceSeriesStore = (*PriceSeriesStore)(nil)
