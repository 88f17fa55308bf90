package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/core"
	"github.com/akhilnr/classcord/internal/domain"
)

// RoomTableImpl is the single source of truth for membership. Rooms are
// created lazily on the first join and deleted the moment they empty, so
// a room is present iff it has at least one participant.
type RoomTableImpl struct {
	mu    sync.RWMutex
	rooms map[domain.ChannelID]core.RoomService
}

func NewRoomTable() core.RoomTable {
	return &RoomTableImpl{rooms: make(map[domain.ChannelID]core.RoomService)}
}

func (t *RoomTableImpl) Join(ch domain.ChannelID, id core.ConnID, ms core.MemberSession) core.RoomService {
	t.mu.Lock()
	defer t.mu.Unlock()
	room, ok := t.rooms[ch]
	if !ok {
		room = core.NewRoomService(ch)
		t.rooms[ch] = room
		log.Info().Str("module", "app.rooms").Str("channel", string(ch)).Msg("room created")
	}
	room.AddMember(id, ms)
	return room
}

func (t *RoomTableImpl) Leave(ch domain.ChannelID, id core.ConnID) (core.RoomService, core.MemberSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	room, ok := t.rooms[ch]
	if !ok {
		return nil, nil, false
	}
	ms, ok := room.RemoveMember(id)
	if !ok {
		return room, nil, false
	}
	if room.MemberCount() == 0 {
		delete(t.rooms, ch)
		log.Info().Str("module", "app.rooms").Str("channel", string(ch)).Msg("room deleted")
	}
	return room, ms, true
}

func (t *RoomTableImpl) Get(ch domain.ChannelID) (core.RoomService, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	room, ok := t.rooms[ch]
	return room, ok
}

func (t *RoomTableImpl) RoomsOf(id core.ConnID) []core.RoomService {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []core.RoomService
	for _, room := range t.rooms {
		if _, ok := room.Member(id); ok {
			out = append(out, room)
		}
	}
	return out
}

func (t *RoomTableImpl) List() []core.RoomInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(t.rooms))
	for ch, room := range t.rooms {
		out = append(out, core.RoomInfo{ChannelID: ch, MemberCount: room.MemberCount(), ActiveCall: room.ActiveCall()})
	}
	return out
}

// Clear empties the table. Called at shutdown and in test teardown.
func (t *RoomTableImpl) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rooms = make(map[domain.ChannelID]core.RoomService)
}
