package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fypy-hub/internal/domain"
	"fypy-hub/internal/storage"
)

func TestUserStore_InsertAndGetByUsername(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUserStore(pool)

	user := &domain.User{
		Name:      "Alice Example",
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "secret",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	err := store.Insert(ctx, user)
	require.NoError(t, err)

	retrieved, err := store.GetByUsername(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, user.Username, retrieved.Username)
	assert.Equal(t, user.Name, retrieved.Name)
	assert.Equal(t, user.Email, retrieved.Email)
	assert.Equal(t, user.Password, retrieved.Password)
	assert.True(t, user.CreatedAt.Equal(retrieved.CreatedAt))
}

func TestUserStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUserStore(pool)

	user := &domain.User{Username: "bob", Password: "pw", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Insert(ctx, user))

	err := store.Insert(ctx, &domain.User{Username: "bob", Password: "other", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestUserStore_GetByUsernameNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUserStore(pool)

	_, err := store.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUserStore_InsertInvalid(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUserStore(pool)

	assert.ErrorIs(t, store.Insert(ctx, nil), storage.ErrInvalidInput)
	assert.ErrorIs(t, store.Insert(ctx, &domain.User{Username: ""}), storage.ErrInvalidInput)
}

func TestUserStore_GetAllOrdered(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewUserStore(pool)

	base := time.Now().UTC().Truncate(time.Microsecond)
	users := []*domain.User{
		{Username: "carol", Password: "c", CreatedAt: base.Add(2 * time.Second)},
		{Username: "alice", Password: "a", CreatedAt: base},
		{Username: "bob", Password: "b", CreatedAt: base.Add(time.Second)},
	}
	for _, u := range users {
		require.NoError(t, store.Insert(ctx, u))
	}

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alice", all[0].Username)
	assert.Equal(t, "bob", all[1].Username)
	assert.Equal(t, "carol", all[2].Username)
}
