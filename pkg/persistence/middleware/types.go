package middleware

import (
	"context"
	"fmt"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// Middleware allows wrapping a repository to add behavior.
type Middleware func(ports.ManagedRepository) ports.ManagedRepository

// Chain applies middlewares so the first one listed is the outermost.
func Chain(repo ports.ManagedRepository, mws ...Middleware) ports.ManagedRepository {
	for i := len(mws) - 1; i >= 0; i-- {
		repo = mws[i](repo)
	}
	return repo
}

// rewriteTexts rewrites every message text in a copy of the session.
// The original session is never mutated.
func rewriteTexts(session *domain.AgentSession, fn func(string) (string, error)) (*domain.AgentSession, error) {
	snap := session.Snapshot()
	for i := range snap.History {
		text, err := fn(snap.History[i].Text)
		if err != nil {
			return nil, err
		}
		snap.History[i].Text = text
	}
	out, err := domain.RestoreSession(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild session: %w", err)
	}
	return out, nil
}

// passthrough forwards admin calls to the wrapped repository.
type passthrough struct {
	next ports.ManagedRepository
}

func (p passthrough) Delete(ctx context.Context, id domain.SessionID) error {
	return p.next.Delete(ctx, id)
}

func (p passthrough) List(ctx context.Context) ([]domain.SessionID, error) {
	return p.next.List(ctx)
}
