package ports

import (
	"context"

	"github.com/aretw0/intake/pkg/domain"
)

// SessionStore defines the interface for persisting in-progress sessions.
// Implementations must be safe for concurrent use across different senders.
type SessionStore interface {
	// Save persists the session for a given sender.
	Save(ctx context.Context, senderID string, session *domain.Session) error

	// Load retrieves the session for a given sender.
	// Returns domain.ErrSessionNotFound if the sender has no session.
	Load(ctx context.Context, senderID string) (*domain.Session, error)

	// Delete removes the session for a given sender. Deleting a missing session is not an error.
	Delete(ctx context.Context, senderID string) error
}
