package store

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrInvalidIdentifier is returned when a table or column name is not a
// plain SQL identifier.
var ErrInvalidIdentifier = errors.New("invalid identifier")

// IsSchemaMissing returns true if err was caused by a table that does not
// exist (dropped, or never created in this file).
// Uses errors.As to handle wrapped errors.
func IsSchemaMissing(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrError && strings.Contains(se.Error(), "no such table")
	}
	return false
}

// IsLockContention returns true if err means another connection held the
// database past the busy timeout.
func IsLockContention(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked
	}
	return false
}
