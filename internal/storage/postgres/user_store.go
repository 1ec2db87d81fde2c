package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fypy-hub/internal/domain"
	"fypy-hub/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Insert adds a new user. Returns ErrDuplicateKey if the username exists.
func (s *UserStore) Insert(ctx context.Context, u *domain.User) error {
	if u == nil || u.Username == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO users (username, name, email, password, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		u.Username,
		u.Name,
		u.Email,
		u.Password,
		u.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByUsername retrieves one user. Returns ErrNotFound if not exists.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT username, name, email, password, created_at
		FROM users
		WHERE username = $1
	`

	row := s.pool.QueryRow(ctx, query, username)
	u, err := scanUser(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// GetAll retrieves all users, ordered by creation time ASC.
func (s *UserStore) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT username, name, email, password, created_at
		FROM users
		ORDER BY created_at ASC, username ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// scanUser scans a single row into User.
func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User

	err := row.Scan(
		&u.Username,
		&u.Name,
		&u.Email,
		&u.Password,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &u, nil
}
