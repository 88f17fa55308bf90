package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/core"
	"github.com/akhilnr/classcord/internal/domain"
)

// Message and whiteboard bodies are opaque passthrough: only channelId is
// read here, the rest is forwarded unchanged.

func (ctl *SignalWSController) handleSendMessage(
	sid core.ConnID,
	conn core.SignalConnection,
	data []byte,
) {
	type messagePayload struct {
		Type      string          `json:"type"`
		ChannelID string          `json:"channelId" validate:"required"`
		Message   json.RawMessage `json:"message"`
	}
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad message payload")
		ctl.replyError(conn, "bad_payload")
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.replyError(conn, "missing_field")
		return
	}

	ctl.broadcastRoom(domain.ChannelID(p.ChannelID), sid, struct {
		Type      string          `json:"type"`
		ChannelID string          `json:"channelId"`
		Message   json.RawMessage `json:"message"`
	}{"new-message", p.ChannelID, p.Message})
}

func (ctl *SignalWSController) handleWhiteboardUpdate(
	sid core.ConnID,
	conn core.SignalConnection,
	data []byte,
) {
	type whiteboardPayload struct {
		Type      string          `json:"type"`
		ChannelID string          `json:"channelId" validate:"required"`
		Data      json.RawMessage `json:"data"`
	}
	var p whiteboardPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad whiteboard payload")
		ctl.replyError(conn, "bad_payload")
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		ctl.replyError(conn, "missing_field")
		return
	}

	// No conflict resolution: last update wins on each client independently.
	ctl.broadcastRoom(domain.ChannelID(p.ChannelID), sid, struct {
		Type      string          `json:"type"`
		ChannelID string          `json:"channelId"`
		Data      json.RawMessage `json:"data"`
	}{"whiteboard-updated", p.ChannelID, p.Data})
}
