package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/switchboard/pkg/domain"
)

// LogHooks writes one structured line per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter",
				"session_id", e.SessionID,
				"node_id", e.NodeID,
				"kind", e.NodeKind,
			)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_leave",
				"session_id", e.SessionID,
				"node_id", e.NodeID,
			)
		},
		OnTurnComplete: func(ctx context.Context, e *domain.TurnEvent) {
			attrs := []any{
				"session_id", e.SessionID,
				"branch", e.Branch,
				"intent", e.Intent,
				"duration", e.Duration,
			}
			if e.Failure != "" {
				logger.WarnContext(ctx, "turn_failed", append(attrs, "failure", e.Failure)...)
				return
			}
			logger.InfoContext(ctx, "turn_complete", attrs...)
		},
	}
}
