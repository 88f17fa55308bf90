package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/app"
	"github.com/akhilnr/classcord/internal/core"
)

// handleRelay forwards one WebRTC negotiation message (offer, answer or ICE
// candidate) point-to-point to the connection named by "to", payload
// untouched. An unreachable target drops the event: the sender finds out
// through its own negotiation timeout, not through us.
func (ctl *SignalWSController) handleRelay(
	sid core.ConnID,
	conn core.SignalConnection,
	kind string,
	data []byte,
) {
	type relayPayload struct {
		Type      string          `json:"type"`
		ChannelID string          `json:"channelId" validate:"required"`
		To        string          `json:"to" validate:"required"`
		Offer     json.RawMessage `json:"offer"`
		Answer    json.RawMessage `json:"answer"`
		Candidate json.RawMessage `json:"candidate"`
	}
	var p relayPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signaling payload")
		ctl.replyError(conn, "bad_payload")
		return
	}
	if err := ctl.validate.Struct(p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("kind", kind).Msg("signaling missing required field")
		ctl.replyError(conn, "missing_field")
		return
	}

	var field string
	var body json.RawMessage
	switch kind {
	case "rtc-offer":
		field, body = "offer", p.Offer
	case "rtc-answer":
		field, body = "answer", p.Answer
	case "ice-candidate":
		field, body = "candidate", p.Candidate
	}
	if len(body) == 0 {
		ctl.replyError(conn, "missing_field")
		return
	}

	out := map[string]any{
		"type":      kind,
		"channelId": p.ChannelID,
		"from":      sid,
		field:       body,
	}
	frame, err := marshalFrame(out)
	if err != nil {
		return
	}

	if err := ctl.Orch.Relay(core.ConnID(p.To), frame); err != nil {
		// Reported for observability, never surfaced to the sender.
		if errors.Is(err, app.ErrTargetUnreachable) {
			log.Warn().Str("module", "signal").Str("kind", kind).Str("from", string(sid)).Str("to", p.To).Msg("target unreachable, signaling event dropped")
			return
		}
		log.Warn().Err(err).Str("module", "signal").Str("kind", kind).Str("from", string(sid)).Str("to", p.To).Msg("signaling delivery failed")
	}
}
