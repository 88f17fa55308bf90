package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/core"
	"github.com/akhilnr/classcord/internal/domain"
)

func (ctl *SignalWSController) handlePing(conn core.SignalConnection) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}

// Screen-share toggles are advisory: the server broadcasts the flag and
// tracks nothing.
func (ctl *SignalWSController) handleScreenShare(
	sid core.ConnID,
	conn core.SignalConnection,
	data []byte,
	sharing bool,
) {
	type sharePayload struct {
		Type      string `json:"type"`
		ChannelID string `json:"channelId" validate:"required"`
	}
	var p sharePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad screen share payload")
		ctl.replyError(conn, "bad_payload")
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.replyError(conn, "missing_field")
		return
	}

	ctl.broadcastRoom(domain.ChannelID(p.ChannelID), sid, struct {
		Type      string      `json:"type"`
		ChannelID string      `json:"channelId"`
		ConnID    core.ConnID `json:"connectionId"`
		IsSharing bool        `json:"isSharing"`
	}{"user-screen-share", p.ChannelID, sid, sharing})
}

// Audio/video mute flags, advisory like the screen-share toggle.
func (ctl *SignalWSController) handleMediaState(
	sid core.ConnID,
	conn core.SignalConnection,
	data []byte,
) {
	type mediaStatePayload struct {
		Type         string `json:"type"`
		ChannelID    string `json:"channelId" validate:"required"`
		AudioEnabled *bool  `json:"audioEnabled"`
		VideoEnabled *bool  `json:"videoEnabled"`
	}
	var p mediaStatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad media state payload")
		ctl.replyError(conn, "bad_payload")
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.replyError(conn, "missing_field")
		return
	}

	ctl.broadcastRoom(domain.ChannelID(p.ChannelID), sid, struct {
		Type         string      `json:"type"`
		ChannelID    string      `json:"channelId"`
		ConnID       core.ConnID `json:"connectionId"`
		AudioEnabled *bool       `json:"audioEnabled,omitempty"`
		VideoEnabled *bool       `json:"videoEnabled,omitempty"`
	}{"user-media-state", p.ChannelID, sid, p.AudioEnabled, p.VideoEnabled})
}
