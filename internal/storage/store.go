// Package storage defines the persistence ports for channel metadata.
// The relay core never consults these: rooms materialize on join whether
// or not a channel record exists.
package storage

import (
	"context"
	"errors"

	"github.com/akhilnr/classcord/internal/domain"
)

var ErrChannelNotFound = errors.New("channel not found")

type ChannelStore interface {
	Create(ctx context.Context, name string, typ domain.ChannelType) (*domain.Channel, error)
	Get(ctx context.Context, id domain.ChannelID) (*domain.Channel, error)
	List(ctx context.Context) ([]*domain.Channel, error)
	Delete(ctx context.Context, id domain.ChannelID) error
}
