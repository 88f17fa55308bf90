// Package memory holds the in-memory store implementations, used when no
// database is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/akhilnr/classcord/internal/domain"
	"github.com/akhilnr/classcord/internal/storage"
)

type ChannelStore struct {
	mu       sync.RWMutex
	channels map[domain.ChannelID]*domain.Channel
}

func NewChannelStore() *ChannelStore {
	return &ChannelStore{channels: make(map[domain.ChannelID]*domain.Channel)}
}

func (s *ChannelStore) Create(_ context.Context, name string, typ domain.ChannelType) (*domain.Channel, error) {
	ch, err := domain.NewChannel(name, typ)
	if err != nil {
		return nil, err
	}
	ch.ID = domain.ChannelID(uuid.NewString())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[ch.ID] = ch
	return ch, nil
}

func (s *ChannelStore) Get(_ context.Context, id domain.ChannelID) (*domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ch, ok := s.channels[id]
	if !ok {
		return nil, storage.ErrChannelNotFound
	}
	return ch, nil
}

func (s *ChannelStore) List(_ context.Context) ([]*domain.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *ChannelStore) Delete(_ context.Context, id domain.ChannelID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[id]; !ok {
		return storage.ErrChannelNotFound
	}
	delete(s.channels, id)
	return nil
}
