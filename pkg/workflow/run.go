package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// RunWorkflow coordinates the repository, the classifier and the aggregate for one turn.
type RunWorkflow struct {
	repo              ports.SessionRepository
	classifier        ports.IntentClassifier
	classifierTimeout time.Duration
	logger            *slog.Logger
}

// Option configures RunWorkflow.
type Option func(*RunWorkflow)

// WithLogger configures a logger for step tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(w *RunWorkflow) {
		w.logger = logger
	}
}

// WithClassifierTimeout bounds each classifier call. Zero means no bound beyond the caller's context.
func WithClassifierTimeout(d time.Duration) Option {
	return func(w *RunWorkflow) {
		w.classifierTimeout = d
	}
}

// New creates the use case.
func New(repo ports.SessionRepository, classifier ports.IntentClassifier, opts ...Option) *RunWorkflow {
	w := &RunWorkflow{
		repo:       repo,
		classifier: classifier,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Execute runs one turn and returns the mutated, persisted session.
// The returned error wraps exactly one domain failure sentinel.
func (w *RunWorkflow) Execute(ctx context.Context, in Input) (*domain.AgentSession, error) {
	if err := Validate(in); err != nil {
		return nil, err
	}
	id := domain.SessionID(in.SessionID)
	log := w.logger.With("session_id", in.SessionID)

	session, err := w.loadOrCreate(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := session.RegisterMessage(domain.NewMessage(in.UserInput)); err != nil {
		return nil, err
	}

	classification, err := w.classify(ctx, in.UserInput)
	if err != nil {
		log.Warn("classification failed", "err", err)
		return nil, err
	}
	log.Debug("classified", "intent", classification.Intent, "confidence", classification.Confidence)

	intent, err := domain.NewIntent(classification.Intent, classification.Confidence)
	if err != nil {
		return nil, err
	}

	if err := session.ResolveIntent(intent); err != nil {
		return nil, err
	}

	if err := session.MarkAction(intent.Label().String()); err != nil {
		return nil, err
	}

	if err := w.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}

	log.Debug("turn persisted", "history", len(session.History()), "action", session.LastAction())
	return session, nil
}

func (w *RunWorkflow) loadOrCreate(ctx context.Context, id domain.SessionID) (*domain.AgentSession, error) {
	session, err := w.repo.FindByID(ctx, id)
	switch {
	case err == nil && session != nil:
		return session, nil
	case err == nil, errors.Is(err, domain.ErrSessionNotFound):
		return domain.NewSession(id), nil
	default:
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistenceFailed, err)
	}
}

// classify calls the external classifier and converts every failure mode,
// panics included, into ErrClassificationFailed.
func (w *RunWorkflow) classify(ctx context.Context, text string) (result domain.Classification, err error) {
	if w.classifier == nil {
		return domain.Classification{}, fmt.Errorf("%w: no classifier configured", domain.ErrClassificationFailed)
	}

	if w.classifierTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.classifierTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			result = domain.Classification{}
			err = fmt.Errorf("%w: classifier panicked: %v", domain.ErrClassificationFailed, r)
		}
	}()

	result, err = w.classifier.Classify(ctx, text)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("%w: %w", domain.ErrClassificationFailed, err)
	}
	return result, nil
}
