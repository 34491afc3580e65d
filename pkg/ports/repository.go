package ports

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// SessionRepository defines the interface for persisting AgentSession aggregates.
type SessionRepository interface {
	// FindByID retrieves the session with the given ID.
	// Returns domain.ErrSessionNotFound if the session does not exist; absence is not a failure.
	FindByID(ctx context.Context, id domain.SessionID) (*domain.AgentSession, error)

	// Save upserts the session with full replacement semantics.
	// Saving the same session repeatedly must be idempotent.
	Save(ctx context.Context, session *domain.AgentSession) error
}

// SessionAdmin is implemented by repositories that support listing and deletion.
// These are repository-level concerns used by management surfaces, never by a turn.
type SessionAdmin interface {
	Delete(ctx context.Context, id domain.SessionID) error
	List(ctx context.Context) ([]domain.SessionID, error)
}

// ManagedRepository is a repository with administrative operations.
type ManagedRepository interface {
	SessionRepository
	SessionAdmin
}
