// Package session holds per-session state: the cached personal best for each
// exercise type. Nothing here is authoritative; the attempt ledger is.
package session

import (
	"context"
	"errors"
)

var (
	// ErrSessionKeyEmpty is returned when no session id is given.
	ErrSessionKeyEmpty = errors.New("session: id cannot be empty")

	// ErrStoreUnavailable wraps connection failures of the backing store.
	ErrStoreUnavailable = errors.New("session: store unavailable")
)

// Store keeps one integer per (session, exercise type).
type Store interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, sessionID, exerciseType string) (int, bool, error)
	// Set overwrites the cached value.
	Set(ctx context.Context, sessionID, exerciseType string, value int) error
	// Raise stores value if it is greater than the cached one (a miss counts
	// as 0) and returns the resulting value. It is atomic per session.
	Raise(ctx context.Context, sessionID, exerciseType string, value int) (int, error)
	// Forget drops everything cached for the session.
	Forget(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
	Close() error
}
