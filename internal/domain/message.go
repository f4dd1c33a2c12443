package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one unit of conversational content on the chat topic.
// Messages are append-only: once logged they are never mutated.
type ChatMessage struct {
	ID   string
	From string
	Text string
	At   time.Time
	Role Role
}

// NewChatMessage builds a locally authored message with a fresh ID and
// the current time.
func NewChatMessage(from, text string) ChatMessage {
	return ChatMessage{
		ID:   uuid.NewString(),
		From: from,
		Text: text,
		At:   time.Now(),
		Role: RoleSelf,
	}
}
