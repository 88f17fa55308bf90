package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	channel domain.ChannelID
	mu      sync.RWMutex
	bySID   map[ConnID]MemberSession

	// activeCall is declared by the data model but driven by nothing yet;
	// it is reported as-is and stays false pending product clarification.
	activeCall bool
}

func NewRoomService(ch domain.ChannelID) RoomService {
	return &roomImpl{
		channel: ch,
		bySID:   make(map[ConnID]MemberSession),
	}
}

func (r *roomImpl) ChannelID() domain.ChannelID { return r.channel }

func (r *roomImpl) ActiveCall() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeCall
}

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *roomImpl) Member(id ConnID) (MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ms, ok := r.bySID[id]
	return ms, ok
}

// AddMember inserts or replaces the participant keyed by id, so a re-join
// over the same connection is idempotent.
func (r *roomImpl) AddMember(id ConnID, ms MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySID[id] = ms
	log.Info().Str("module", "core.room").Str("channel", string(r.channel)).Str("conn", string(id)).Str("username", ms.Meta().Username).Msg("member added")
}

func (r *roomImpl) RemoveMember(id ConnID) (MemberSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ms, ok := r.bySID[id]
	if !ok {
		return nil, false
	}
	delete(r.bySID, id)
	log.Info().Str("module", "core.room").Str("channel", string(r.channel)).Str("conn", string(id)).Msg("member removed")
	return ms, true
}

// Broadcast fans data out to every member except from. The exclusion is an
// explicit filter here rather than a transport feature.
func (r *roomImpl) Broadcast(from ConnID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for id, m := range r.bySID {
		if id == from {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("channel", string(r.channel)).Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() map[ConnID]ParticipantDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[ConnID]ParticipantDTO, len(r.bySID))
	for id, ms := range r.bySID {
		p := ms.Meta()
		out[id] = ParticipantDTO{ConnID: id, UserID: p.UserID, Username: p.Username, PeerID: p.PeerID}
	}
	return out
}
