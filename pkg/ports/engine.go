package ports

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// TurnEngine defines the interface consumed by inbound adapters (HTTP, MCP, CLI).
type TurnEngine interface {
	// Turn runs one conversational turn from start to end. Failures of the turn
	// are reported in the returned state (branch fail); the error is reserved
	// for infrastructure problems such as a canceled context or lock timeout.
	Turn(ctx context.Context, sessionID, input string) (domain.TurnState, error)

	// Session returns the persisted snapshot of a session.
	Session(ctx context.Context, id domain.SessionID) (domain.SessionSnapshot, error)

	// Inspect returns the routing graph structure for introspection.
	Inspect() []domain.Node
}
