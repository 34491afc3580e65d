package domain

import (
	"fmt"
	"strings"
)

// SessionID is the opaque, stable identity of an AgentSession.
type SessionID string

func (id SessionID) String() string { return string(id) }

// AgentSession is the aggregate root of a conversation.
// Its fields are only mutated through RegisterMessage, ResolveIntent and MarkAction.
// It is not safe for concurrent mutation; callers serialize turns per session ID.
type AgentSession struct {
	id             SessionID
	history        []UserMessage
	resolvedIntent ConversationIntent
	lastAction     string
}

// NewSession creates an empty session with the given identity.
func NewSession(id SessionID) *AgentSession {
	return &AgentSession{id: id}
}

// ID returns the session identity.
func (s *AgentSession) ID() SessionID { return s.id }

// History returns a copy of the message history, oldest first.
func (s *AgentSession) History() []UserMessage {
	out := make([]UserMessage, len(s.history))
	copy(out, s.history)
	return out
}

// ResolvedIntent returns the intent resolved on the latest accepted turn, if any.
func (s *AgentSession) ResolvedIntent() (ConversationIntent, bool) {
	return s.resolvedIntent, !s.resolvedIntent.IsZero()
}

// LastAction returns the latest routing decision label, or "" if none was taken yet.
func (s *AgentSession) LastAction() string { return s.lastAction }

// Is reports identity equality: two sessions are the same aggregate when their IDs match.
func (s *AgentSession) Is(other *AgentSession) bool {
	return s != nil && other != nil && s.id == other.id
}

// RegisterMessage appends m to the history.
func (s *AgentSession) RegisterMessage(m UserMessage) error {
	if strings.TrimSpace(m.text) == "" {
		return ErrEmptyMessage
	}
	s.history = append(s.history, m)
	return nil
}

// ResolveIntent records intent as the authoritative intent of this turn,
// overwriting the intent of any previous turn.
func (s *AgentSession) ResolveIntent(intent ConversationIntent) error {
	if intent.IsZero() {
		return fmt.Errorf("%w: empty intent", ErrInvalidIntentLabel)
	}
	if intent.confidence < ConfidenceThreshold {
		return fmt.Errorf("%w: %.2f < %.2f", ErrLowConfidenceIntent, intent.confidence, ConfidenceThreshold)
	}
	s.resolvedIntent = intent
	return nil
}

// MarkAction records the routing decision label.
func (s *AgentSession) MarkAction(label string) error {
	if strings.TrimSpace(label) == "" {
		return ErrBlankAction
	}
	s.lastAction = label
	return nil
}
