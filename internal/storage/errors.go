package storage

import "errors"

// Sentinel errors shared by all store implementations. Callers branch with
// errors.Is; the postgres and clickhouse stores translate driver errors into
// these before returning.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with an existing
	// record. Accounts and archived prices are never updated in place.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
