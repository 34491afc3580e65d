package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Repository implements ports.SessionRepository in memory.
// Safe for concurrent use.
type Repository struct {
	data map[domain.SessionID]domain.SessionSnapshot
	mu   sync.RWMutex
}

// NewRepository creates a new in-memory repository.
func NewRepository() *Repository {
	return &Repository{
		data: make(map[domain.SessionID]domain.SessionSnapshot),
	}
}

// Save stores a snapshot of the session, replacing any previous one.
func (r *Repository) Save(ctx context.Context, session *domain.AgentSession) error {
	// Snapshot copies everything, so later mutations of session don't leak in.
	snap := session.Snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[session.ID()] = snap
	return nil
}

// FindByID rebuilds the session from its stored snapshot.
func (r *Repository) FindByID(ctx context.Context, id domain.SessionID) (*domain.AgentSession, error) {
	r.mu.RLock()
	snap, ok := r.data[id]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return domain.RestoreSession(snap.Clone())
}

// Delete removes the session.
func (r *Repository) Delete(ctx context.Context, id domain.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data, id)
	return nil
}

// List returns stored session IDs in lexical order.
func (r *Repository) List(ctx context.Context) ([]domain.SessionID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]domain.SessionID, 0, len(r.data))
	for id := range r.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
