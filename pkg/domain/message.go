package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MessageID is the opaque identity of a UserMessage.
type MessageID string

// UserMessage is a single turn of conversation. It is immutable once created.
type UserMessage struct {
	id        MessageID
	text      string
	createdAt time.Time
}

// NewMessage trims text and stamps the creation time.
// Emptiness is not checked here; AgentSession.RegisterMessage owns that policy.
func NewMessage(text string) UserMessage {
	return UserMessage{
		id:        MessageID(uuid.NewString()),
		text:      strings.TrimSpace(text),
		createdAt: time.Now().UTC(),
	}
}

func (m UserMessage) ID() MessageID        { return m.id }
func (m UserMessage) Text() string         { return m.text }
func (m UserMessage) CreatedAt() time.Time { return m.createdAt }
