// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	MaxIdentityLen    = 64
	MaxDisplayNameLen = 64
)

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrDisplayNameEmpty   = errors.New("display name empty")
)

// ParticipantID is the stable identity of one room participant.
type ParticipantID string

// Participant is the local user's identity pair sent to the token service.
type Participant struct {
	ID          ParticipantID `json:"id"`
	DisplayName string        `json:"name"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(displayName string) (*Participant, error) {
	displayName = strings.TrimSpace(displayName)
	if len(displayName) == 0 {
		return nil, ErrDisplayNameEmpty
	}
	if len(displayName) > MaxDisplayNameLen {
		return nil, ErrDisplayNameTooLong
	}
	return &Participant{ID: ParticipantID(uuid.NewString()), DisplayName: displayName}, nil
}

// Role classifies who authored a chat message. It is derived from the
// sender label, never transmitted.
type Role int

const (
	RoleOther Role = iota
	RoleSelf
	RoleAgent
	RoleSystem
)

func (r Role) String() string {
	switch r {
	case RoleSelf:
		return "self"
	case RoleAgent:
		return "agent"
	case RoleSystem:
		return "system"
	default:
		return "other"
	}
}

// RoleFor infers the role for a sender label. selfLabel is the local
// display name; agent labels match by prefix because the remote side
// numbers its workers ("agent", "agent-7", ...).
func RoleFor(label, selfLabel string) Role {
	l := strings.ToLower(strings.TrimSpace(label))
	switch {
	case l == "system":
		return RoleSystem
	case selfLabel != "" && strings.EqualFold(label, selfLabel):
		return RoleSelf
	case strings.HasPrefix(l, "agent"):
		return RoleAgent
	default:
		return RoleOther
	}
}
