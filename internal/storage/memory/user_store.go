// Package memory provides in-memory storage implementations, used by
// tests and single-process runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"fypy-hub/internal/domain"
	"fypy-hub/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu   sync.RWMutex
	data map[string]*domain.User // keyed by username
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data: make(map[string]*domain.User),
	}
}

// Insert adds a new user. Returns ErrDuplicateKey if the username exists.
func (s *UserStore) Insert(_ context.Context, u *domain.User) error {
	if u == nil || u.Username == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[u.Username]; exists {
		return storage.ErrDuplicateKey
	}
	userCopy := *u
	s.data[u.Username] = &userCopy
	return nil
}

// GetByUsername retrieves one user. Returns ErrNotFound if not exists.
func (s *UserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.data[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	userCopy := *u
	return &userCopy, nil
}

// GetAll retrieves all users, ordered by creation time ASC.
func (s *UserStore) GetAll(_ context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.User, 0, len(s.data))
	for _, u := range s.data {
		userCopy := *u
		result = append(result, &userCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Username < result[j].Username
	})
	return result, nil
}

var _ storage.UserStore = (*UserStore)(nil)
