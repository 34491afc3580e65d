package domain

import (
	"fmt"
	"strings"
	"time"
)

// SessionSnapshot is the persisted shape of an AgentSession.
// Repositories store snapshots; they never reach into the aggregate directly.
type SessionSnapshot struct {
	ID             string            `json:"id"`
	History        []MessageSnapshot `json:"history"`
	ResolvedIntent *IntentSnapshot   `json:"resolved_intent,omitempty"`
	LastAction     string            `json:"last_action,omitempty"`
}

// MessageSnapshot is the persisted shape of a UserMessage.
type MessageSnapshot struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// IntentSnapshot is the persisted shape of a ConversationIntent.
type IntentSnapshot struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Snapshot captures the current state of the session.
// The returned value shares nothing with the aggregate.
func (s *AgentSession) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		ID:         string(s.id),
		History:    make([]MessageSnapshot, len(s.history)),
		LastAction: s.lastAction,
	}
	for i, m := range s.history {
		snap.History[i] = MessageSnapshot{
			ID:        string(m.id),
			Text:      m.text,
			CreatedAt: m.createdAt,
		}
	}
	if !s.resolvedIntent.IsZero() {
		snap.ResolvedIntent = &IntentSnapshot{
			Value:      string(s.resolvedIntent.label),
			Confidence: s.resolvedIntent.confidence,
		}
	}
	return snap
}

// Clone returns a deep copy of the snapshot.
func (s SessionSnapshot) Clone() SessionSnapshot {
	out := s
	out.History = make([]MessageSnapshot, len(s.History))
	copy(out.History, s.History)
	if s.ResolvedIntent != nil {
		intent := *s.ResolvedIntent
		out.ResolvedIntent = &intent
	}
	return out
}

// RestoreSession rebuilds an aggregate from a snapshot, re-checking every invariant.
func RestoreSession(snap SessionSnapshot) (*AgentSession, error) {
	if strings.TrimSpace(snap.ID) == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidSnapshot)
	}

	s := NewSession(SessionID(snap.ID))
	for i, m := range snap.History {
		msg := UserMessage{id: MessageID(m.ID), text: m.Text, createdAt: m.CreatedAt}
		if err := s.RegisterMessage(msg); err != nil {
			return nil, fmt.Errorf("%w: history[%d]: %v", ErrInvalidSnapshot, i, err)
		}
	}

	if snap.ResolvedIntent != nil {
		intent, err := NewIntent(snap.ResolvedIntent.Value, snap.ResolvedIntent.Confidence)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		if err := s.ResolveIntent(intent); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	}

	if snap.LastAction != "" {
		if err := s.MarkAction(snap.LastAction); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	}
	return s, nil
}
