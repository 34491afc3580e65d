package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/google/uuid"
)

// Runner reads user input and runs one turn per line until EOF, an exit
// command, or context cancellation.
type Runner struct {
	engine       ports.TurnEngine
	handler      IOHandler
	sessionID    string
	logger       *slog.Logger
	exitCommands []string
	skipBlank    bool
}

// New creates a Runner for the engine.
func New(engine ports.TurnEngine, opts ...Option) *Runner {
	r := &Runner{
		engine:       engine,
		logger:       logging.NewNop(),
		exitCommands: []string{"/exit", "/quit"},
		skipBlank:    true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.handler == nil {
		r.handler = NewTextHandler(nil, nil)
	}
	if r.sessionID == "" {
		r.sessionID = uuid.NewString()
	}
	return r
}

// SessionID returns the session this runner writes to.
func (r *Runner) SessionID() string {
	return r.sessionID
}

// Run executes the conversation loop. It returns nil on EOF or exit command.
func (r *Runner) Run(ctx context.Context) error {
	for {
		raw, err := r.handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		input, err := SanitizeInput(raw)
		if err != nil {
			r.logger.Warn("Rejected input", "session_id", r.sessionID, "err", err)
			if err := r.handler.SystemOutput(ctx, fmt.Sprintf("Error: %v. Please try again.", err)); err != nil {
				return err
			}
			continue
		}

		trimmed := strings.TrimSpace(input)
		if slices.Contains(r.exitCommands, trimmed) {
			return nil
		}
		if trimmed == "" && r.skipBlank {
			continue
		}

		state, err := r.engine.Turn(ctx, r.sessionID, input)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			r.logger.Error("Turn failed", "session_id", r.sessionID, "err", err)
			if err := r.handler.SystemOutput(ctx, err.Error()); err != nil {
				return err
			}
			continue
		}

		if err := r.handler.Output(ctx, state); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
}
