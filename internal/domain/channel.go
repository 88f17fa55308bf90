package domain

import (
	"errors"
	"time"
)

const MaxChannelNameLen = 64

var (
	ErrChannelNameEmpty   = errors.New("channel name empty")
	ErrChannelNameTooLong = errors.New("channel name too long")
	ErrBadChannelType     = errors.New("bad channel type")
)

type ChannelType string

const (
	ChannelText  ChannelType = "text"
	ChannelVoice ChannelType = "voice"
	ChannelVideo ChannelType = "video"
)

func (t ChannelType) Valid() bool {
	switch t {
	case ChannelText, ChannelVoice, ChannelVideo:
		return true
	}
	return false
}

// Channel is stored metadata about a channel resource. The relay never
// consults it; rooms materialize on join whether or not a Channel exists.
type Channel struct {
	ID        ChannelID   `json:"id" bson:"_id"`
	Name      string      `json:"name" bson:"name"`
	Type      ChannelType `json:"type" bson:"type"`
	CreatedAt time.Time   `json:"createdAt" bson:"created_at"`
}

// NewChannel validates the metadata fields; the ID is assigned by the store.
func NewChannel(name string, typ ChannelType) (*Channel, error) {
	if len(name) == 0 {
		return nil, ErrChannelNameEmpty
	}
	if len(name) > MaxChannelNameLen {
		return nil, ErrChannelNameTooLong
	}
	if !typ.Valid() {
		return nil, ErrBadChannelType
	}
	return &Channel{Name: name, Type: typ, CreatedAt: time.Now().UTC()}, nil
}
