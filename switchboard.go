package switchboard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/internal/runtime"
	"github.com/aretw0/switchboard/pkg/adapters/keyword"
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/session"
	"github.com/aretw0/switchboard/pkg/workflow"
)

// Version is the release of the module, overridden at build time via -ldflags.
var Version = "dev"

// Engine is the high-level entry point of the library.
// It implements ports.TurnEngine.
type Engine struct {
	repo              ports.SessionRepository
	classifier        ports.IntentClassifier
	locker            ports.DistributedLocker
	lockTTL           time.Duration
	policy            ports.RoutingPolicy
	hooks             domain.LifecycleHooks
	classifierTimeout time.Duration
	logger            *slog.Logger

	manager *session.Manager
	graph   *runtime.Graph
}

var _ ports.TurnEngine = (*Engine)(nil)

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRepository sets where sessions are stored. Defaults to memory.
func WithRepository(repo ports.SessionRepository) Option {
	return func(e *Engine) {
		e.repo = repo
	}
}

// WithClassifier sets the intent classifier. Defaults to the built-in keyword classifier.
func WithClassifier(c ports.IntentClassifier) Option {
	return func(e *Engine) {
		e.classifier = c
	}
}

// WithLocker serializes turns across processes sharing the repository.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL bounds how long a distributed lock outlives a crashed holder.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithRoutingPolicy replaces the default intent to branch table.
func WithRoutingPolicy(policy ports.RoutingPolicy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithClassifierTimeout bounds each classifier call.
func WithClassifierTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.classifierTimeout = d
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.repo == nil {
		e.repo = memory.NewRepository()
	}
	if e.classifier == nil {
		c, err := keyword.New(keyword.DefaultCatalogue())
		if err != nil {
			return nil, fmt.Errorf("failed to build default classifier: %w", err)
		}
		e.classifier = c
	}

	wf := workflow.New(e.repo, e.classifier,
		workflow.WithLogger(e.logger),
		workflow.WithClassifierTimeout(e.classifierTimeout),
	)
	e.graph = runtime.NewGraph(wf,
		runtime.WithRoutingPolicy(e.policy),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
	)

	managerOpts := []session.Option{session.WithLogger(e.logger), session.WithLockTTL(e.lockTTL)}
	if e.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(e.locker))
	}
	e.manager = session.NewManager(e.repo, managerOpts...)

	return e, nil
}

// Turn runs one conversational turn for the session. Domain failures such as
// low confidence are reported in the returned state on the fail branch; the
// error is reserved for cancellation and locking problems.
func (e *Engine) Turn(ctx context.Context, sessionID, input string) (domain.TurnState, error) {
	var out domain.TurnState
	err := e.manager.WithLock(ctx, domain.SessionID(sessionID), func(ctx context.Context) error {
		state, err := e.graph.Run(ctx, domain.NewTurnState(sessionID, input))
		if err != nil {
			return err
		}
		out = state
		return nil
	})
	if err != nil {
		e.logger.Error("Turn aborted", "session_id", sessionID, "err", err)
		return domain.TurnState{}, err
	}
	return out, nil
}

// Session returns the persisted snapshot of a session.
// Absent sessions yield domain.ErrSessionNotFound.
func (e *Engine) Session(ctx context.Context, id domain.SessionID) (domain.SessionSnapshot, error) {
	return e.manager.Load(ctx, id)
}

// Sessions lists stored session IDs, if the repository supports it.
func (e *Engine) Sessions(ctx context.Context) ([]domain.SessionID, error) {
	return e.manager.List(ctx)
}

// Forget deletes a session, if the repository supports it.
func (e *Engine) Forget(ctx context.Context, id domain.SessionID) error {
	return e.manager.Delete(ctx, id)
}

// Inspect returns the routing graph structure.
func (e *Engine) Inspect() []domain.Node {
	return e.graph.Nodes()
}

// Close releases the repository if it holds resources.
func (e *Engine) Close() error {
	if c, ok := e.repo.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
