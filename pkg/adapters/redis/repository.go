package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key the repository writes.
const DefaultPrefix = "switchboard:session:"

// noExpiryScore is the index score of sessions without a TTL (2100-01-01).
const noExpiryScore = 4102444800

// Repository implements ports.SessionRepository using Redis.
// Sessions are JSON snapshots; a sorted set indexes them by expiry time.
type Repository struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// Option configures the Repository.
type Option func(*Repository)

// WithTTL sets the expiration for sessions. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		r.ttl = ttl
	}
}

// WithPrefix sets the key prefix for sessions.
func WithPrefix(prefix string) Option {
	return func(r *Repository) {
		r.prefix = prefix
	}
}

// New creates a Repository with its own client.
func New(address, password string, db int, opts ...Option) *Repository {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Repository from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Repository {
	r := &Repository{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Client exposes the underlying client so a Locker can share it.
func (r *Repository) Client() *backend.Client {
	return r.client
}

func (r *Repository) key(id domain.SessionID) string {
	return r.prefix + string(id)
}

func (r *Repository) indexKey() string {
	return r.prefix + "index"
}

// Save writes the snapshot and refreshes its index entry in one pipeline.
func (r *Repository) Save(ctx context.Context, session *domain.AgentSession) error {
	data, err := json.Marshal(session.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	score := float64(time.Now().Add(r.ttl).Unix())
	if r.ttl == 0 {
		score = noExpiryScore
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(session.ID()), data, r.ttl)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{Score: score, Member: string(session.ID())})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// FindByID restores the session stored under id.
func (r *Repository) FindByID(ctx context.Context, id domain.SessionID) (*domain.AgentSession, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var snap domain.SessionSnapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidSnapshot, err)
	}
	return domain.RestoreSession(snap)
}

// Delete removes the session and its index entry.
func (r *Repository) Delete(ctx context.Context, id domain.SessionID) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(id))
	pipe.ZRem(ctx, r.indexKey(), string(id))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// List returns live session IDs in lexical order.
// Expired entries are pruned from the index lazily.
func (r *Repository) List(ctx context.Context) ([]domain.SessionID, error) {
	now := fmt.Sprintf("%d", time.Now().Unix())
	if err := r.client.ZRemRangeByScore(ctx, r.indexKey(), "-inf", now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sessions: %w", err)
	}

	members, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	// The index may outlive keys that expired early; check each one.
	pipe := r.client.Pipeline()
	exists := make([]*backend.IntCmd, len(members))
	for i, m := range members {
		exists[i] = pipe.Exists(ctx, r.key(domain.SessionID(m)))
	}
	if len(members) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to check sessions: %w", err)
		}
	}

	ids := make([]domain.SessionID, 0, len(members))
	var stale []interface{}
	for i, m := range members {
		if exists[i].Val() == 0 {
			stale = append(stale, m)
			continue
		}
		ids = append(ids, domain.SessionID(m))
	}
	if len(stale) > 0 {
		if err := r.client.ZRem(ctx, r.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune stale sessions: %w", err)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Close closes the redis client.
func (r *Repository) Close() error {
	return r.client.Close()
}
