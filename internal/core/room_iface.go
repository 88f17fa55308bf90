package core

import "github.com/akhilnr/classcord/internal/domain"

// PublishResult reports delivery stats/backpressure to the caller.
type PublishResult struct {
	SentTo  int
	Dropped []ConnID
}

// ParticipantDTO is a read-only view for the wire (no transport fields).
type ParticipantDTO struct {
	ConnID   ConnID        `json:"connectionId"`
	UserID   domain.UserID `json:"userId,omitempty"`
	Username string        `json:"username"`
	PeerID   domain.PeerID `json:"peerId,omitempty"`
}

// RoomService is the core-facing API of one channel room.
// It owns the membership set but never touches transport resources.
type RoomService interface {
	ChannelID() domain.ChannelID
	MemberCount() int
	Member(id ConnID) (MemberSession, bool)
	MembersSnapshot() map[ConnID]ParticipantDTO

	AddMember(id ConnID, ms MemberSession)
	RemoveMember(id ConnID) (MemberSession, bool)
	Broadcast(from ConnID, data Frame) PublishResult

	ActiveCall() bool
}

type RoomInfo struct {
	ChannelID   domain.ChannelID `json:"channelId"`
	MemberCount int              `json:"memberCount"`
	ActiveCall  bool             `json:"activeCall"`
}

// RoomTable tracks every live room. A room is present iff it has at least
// one member: Join materializes it, Leave deletes it once emptied.
type RoomTable interface {
	Join(ch domain.ChannelID, id ConnID, ms MemberSession) RoomService
	Leave(ch domain.ChannelID, id ConnID) (RoomService, MemberSession, bool)
	Get(ch domain.ChannelID) (RoomService, bool)
	RoomsOf(id ConnID) []RoomService
	List() []RoomInfo
	Clear()
}
