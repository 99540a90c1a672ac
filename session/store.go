package session

import (
	"context"

	"github.com/kvitka-shop/flower-bot/models"
)

// Store is the persistence boundary for per-chat dialogue state. It is a
// pure key-value store with TTL semantics and last-writer-wins per key;
// all business logic lives in the handlers.
type Store interface {
	// Get retrieves the session for an id.
	// Returns nil if the session is missing or expired (not an error).
	Get(ctx context.Context, id string) (*models.SessionState, error)

	// Put persists the session and (re)arms its idle TTL.
	Put(ctx context.Context, state *models.SessionState) error

	// Delete removes the session.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}
