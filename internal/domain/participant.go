// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type (
	UserID    string
	ChannelID string
	PeerID    string
)

// Participant is one connection's presence inside a channel room.
// UserID is empty for guests; PeerID is set by the client after join.
type Participant struct {
	UserID   UserID `json:"userId,omitempty"`
	Username string `json:"username"`
	PeerID   PeerID `json:"peerId,omitempty"`
}

// NewParticipant is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewParticipant(userID UserID, username string) (*Participant, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &Participant{UserID: userID, Username: username}, nil
}
