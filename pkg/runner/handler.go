package runner

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Input reads the next user line. io.EOF ends the conversation.
	Input(ctx context.Context) (string, error)

	// Output presents the result of a turn.
	Output(ctx context.Context, state domain.TurnState) error

	// SystemOutput presents a meta-message (errors, status) distinct from turn content.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer turns a response text into its display form (e.g. rendered markdown).
type ContentRenderer func(string) (string, error)
