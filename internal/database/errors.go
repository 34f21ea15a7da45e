package database

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a requested row does not exist. No mutation is
// attempted for operations that fail this way.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on unique-constraint violations.
var ErrConflict = errors.New("already exists")

// ErrInvalidDifficulty is returned when a word's difficulty level is outside 1-5.
var ErrInvalidDifficulty = errors.New("difficulty level must be between 1 and 5")

// isUniqueViolation reports whether err is a unique-constraint error from
// either backend.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
