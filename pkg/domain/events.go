package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter    EventType = "node_enter"
	EventNodeLeave    EventType = "node_leave"
	EventTurnComplete EventType = "turn_complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID   NodeID `json:"node_id"`
	NodeKind string `json:"node_kind"`
}

// TurnEvent summarizes a finished turn.
type TurnEvent struct {
	EventBase
	Branch   NodeID        `json:"branch"`
	Intent   string        `json:"intent,omitempty"`
	Failure  string        `json:"failure,omitempty"` // FailureKind of the error, if any
	Duration time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for graph observability.
type LifecycleHooks struct {
	OnNodeEnter    func(context.Context, *NodeEvent)
	OnNodeLeave    func(context.Context, *NodeEvent)
	OnTurnComplete func(context.Context, *TurnEvent)
}

// ChainHooks combines several hook sets; callbacks run in argument order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range hooks {
		h := h
		if h.OnNodeEnter != nil {
			prev := out.OnNodeEnter
			out.OnNodeEnter = func(ctx context.Context, e *NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNodeEnter(ctx, e)
			}
		}
		if h.OnNodeLeave != nil {
			prev := out.OnNodeLeave
			out.OnNodeLeave = func(ctx context.Context, e *NodeEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnNodeLeave(ctx, e)
			}
		}
		if h.OnTurnComplete != nil {
			prev := out.OnTurnComplete
			out.OnTurnComplete = func(ctx context.Context, e *TurnEvent) {
				if prev != nil {
					prev(ctx, e)
				}
				h.OnTurnComplete(ctx, e)
			}
		}
	}
	return out
}
