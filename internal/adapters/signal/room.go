package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/core"
	"github.com/akhilnr/classcord/internal/domain"
)

func (ctl *SignalWSController) handleJoin(
	sid core.ConnID,
	conn core.SignalConnection,
	hint domain.UserID,
	data []byte,
) {
	type joinPayload struct {
		Type      string `json:"type"`
		ChannelID string `json:"channelId" validate:"required"`
		Username  string `json:"username" validate:"required"`
		UserID    string `json:"userId"`
		PeerID    string `json:"peerId"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.replyError(conn, "bad_payload")
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("join missing required field")
		ctl.replyError(conn, "missing_field")
		return
	}

	userID := domain.UserID(p.UserID)
	if userID == "" {
		userID = hint
	}
	meta, err := domain.NewParticipant(userID, p.Username)
	if err != nil {
		ctl.replyError(conn, "invalid_username")
		return
	}
	meta.PeerID = domain.PeerID(p.PeerID)

	ch := domain.ChannelID(p.ChannelID)
	room, err := ctl.Orch.Join(ch, sid, meta)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("join")
		ctl.replyError(conn, "not_connected")
		return
	}

	// Everyone already present hears about the joiner; the joiner gets the
	// full roster, itself included.
	ctl.broadcastTo(room, sid, struct {
		Type      string `json:"type"`
		ChannelID string `json:"channelId"`
		core.ParticipantDTO
	}{"user-joined", p.ChannelID, core.ParticipantDTO{ConnID: sid, UserID: meta.UserID, Username: meta.Username, PeerID: meta.PeerID}})

	ctl.sendJSON(conn, struct {
		Type         string                              `json:"type"`
		ChannelID    string                              `json:"channelId"`
		Participants map[core.ConnID]core.ParticipantDTO `json:"participants"`
	}{"channel-participants", p.ChannelID, room.MembersSnapshot()})
}

func (ctl *SignalWSController) handleLeave(sid core.ConnID, data []byte) {
	type leavePayload struct {
		Type      string `json:"type"`
		ChannelID string `json:"channelId" validate:"required"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		log.Warn().Str("module", "signal").Str("conn", string(sid)).Msg("leave missing required field")
		return
	}

	dep, ok := ctl.Orch.Leave(domain.ChannelID(p.ChannelID), sid)
	if !ok {
		// Leaving a room the connection never joined is benign.
		return
	}
	ctl.broadcastTo(dep.Room, sid, struct {
		Type      string      `json:"type"`
		ChannelID string      `json:"channelId"`
		ConnID    core.ConnID `json:"connectionId"`
		Username  string      `json:"username"`
	}{"user-left", p.ChannelID, sid, dep.Meta.Username})
}
