package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrStorageUnavailable means the store could not be reached or the
	// transaction failed. Callers decide on fallback; nothing here retries.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrInvalidReference means a write referenced a row that does not exist.
	ErrInvalidReference = errors.New("invalid reference")

	// ErrDuplicate means a write violated a unique constraint.
	ErrDuplicate = errors.New("duplicate key")
)

const (
	sqlStateForeignKeyViolation = "23503"
	sqlStateUniqueViolation     = "23505"
)

// Classify maps a driver error onto the storage error taxonomy.
// sql.ErrNoRows is returned unchanged so callers can treat absence as data.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, ErrStorageUnavailable) ||
		errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrDuplicate) {
		return err
	}

	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Field('C') {
		case sqlStateForeignKeyViolation:
			return fmt.Errorf("%w: %s", ErrInvalidReference, pgErr.Field('M'))
		case sqlStateUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.Field('M'))
		}
	}

	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
