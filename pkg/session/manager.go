package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// ErrAdminUnsupported is returned by Delete and List when the repository has no admin operations.
var ErrAdminUnsupported = errors.New("repository does not support listing or deletion")

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds a one-slot semaphore and the reference count.
// A channel is used instead of a mutex so waiters can give up on ctx.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// Manager orchestrates session access, ensuring one active turn per session.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	repo ports.SessionRepository

	mu    sync.Mutex                      // Global lock for the map
	locks map[domain.SessionID]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager over the given repository.
func NewManager(repo ports.SessionRepository, opts ...Option) *Manager {
	m := &Manager{
		repo:    repo,
		locks:   make(map[domain.SessionID]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST call release(id) once it no longer holds or waits for entry.sem.
func (m *Manager) acquire(id domain.SessionID) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id domain.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// active returns the number of session IDs that currently hold or wait for a lock.
func (m *Manager) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// WithLock executes fn while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, id domain.SessionID, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := m.acquire(id)
	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(id)
		return ctx.Err()
	}
	defer func() {
		<-entry.sem
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, string(id), m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// Use a fresh context: ctx may already be canceled, the lock must still go.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := unlock(releaseCtx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Load returns the persisted snapshot of a session.
func (m *Manager) Load(ctx context.Context, id domain.SessionID) (domain.SessionSnapshot, error) {
	var snap domain.SessionSnapshot
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		s, err := m.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		snap = s.Snapshot()
		return nil
	})
	return snap, err
}

// Delete removes the session from the repository.
func (m *Manager) Delete(ctx context.Context, id domain.SessionID) error {
	admin, ok := m.repo.(ports.SessionAdmin)
	if !ok {
		return ErrAdminUnsupported
	}
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return admin.Delete(ctx, id)
	})
}

// List delegates to the repository.
func (m *Manager) List(ctx context.Context) ([]domain.SessionID, error) {
	admin, ok := m.repo.(ports.SessionAdmin)
	if !ok {
		return nil, ErrAdminUnsupported
	}
	return admin.List(ctx)
}

// Repository returns the underlying repository.
func (m *Manager) Repository() ports.SessionRepository {
	return m.repo
}
