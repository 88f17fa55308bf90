package memory

import (
	"encoding/json"
	"sync"

	"github.com/akhilnr/classcord/internal/domain"
)

// WhiteboardStore keeps the latest whiteboard snapshot per channel. The
// live stroke stream is pure fan-out; this only backs the explicit
// save/load REST surface, last write wins.
type WhiteboardStore struct {
	mu     sync.RWMutex
	boards map[domain.ChannelID]json.RawMessage
}

func NewWhiteboardStore() *WhiteboardStore {
	return &WhiteboardStore{boards: make(map[domain.ChannelID]json.RawMessage)}
}

func (s *WhiteboardStore) Get(ch domain.ChannelID) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.boards[ch]
	return data, ok
}

func (s *WhiteboardStore) Save(ch domain.ChannelID, data json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[ch] = data
}

func (s *WhiteboardStore) Clear(ch domain.ChannelID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, ch)
}
