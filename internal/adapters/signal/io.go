package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/core"
	"github.com/akhilnr/classcord/internal/domain"
)

const writeWait = 5 * time.Second

func (ctl *SignalWSController) writePump(ctx context.Context, c *wsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.ConnID, c *wsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(sid)).Msg("readPump closing")
		ctl.handleDisconnect(sid)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("conn", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleEvent(sid, c, c.userHint, data)
		}
	}
}

// handleEvent classifies one inbound event and dispatches it. A bad event
// is rejected and logged; it never takes the connection down.
func (ctl *SignalWSController) handleEvent(sid core.ConnID, conn core.SignalConnection, hint domain.UserID, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.replyError(conn, "bad_payload")
		return
	}

	switch env.Type {
	case "join-channel":
		ctl.handleJoin(sid, conn, hint, data)
	case "leave-channel":
		ctl.handleLeave(sid, data)
	case "send-message":
		ctl.handleSendMessage(sid, conn, data)
	case "whiteboard-update":
		ctl.handleWhiteboardUpdate(sid, conn, data)
	case "rtc-offer":
		ctl.handleRelay(sid, conn, "rtc-offer", data)
	case "rtc-answer":
		ctl.handleRelay(sid, conn, "rtc-answer", data)
	case "ice-candidate":
		ctl.handleRelay(sid, conn, "ice-candidate", data)
	case "start-screen-share":
		ctl.handleScreenShare(sid, conn, data, true)
	case "stop-screen-share":
		ctl.handleScreenShare(sid, conn, data, false)
	case "media-state-change":
		ctl.handleMediaState(sid, conn, data)
	case "ping":
		ctl.handlePing(conn)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}

// handleDisconnect runs the leave-equivalent for every joined room and
// notifies the remaining members, then drops the connection.
func (ctl *SignalWSController) handleDisconnect(sid core.ConnID) {
	for _, dep := range ctl.Orch.Disconnect(sid) {
		ctl.broadcastTo(dep.Room, sid, struct {
			Type      string      `json:"type"`
			ChannelID string      `json:"channelId"`
			ConnID    core.ConnID `json:"connectionId"`
			Username  string      `json:"username"`
		}{"user-left", string(dep.Room.ChannelID()), sid, dep.Meta.Username})
	}
}

func marshalFrame(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("marshal frame")
		return nil, err
	}
	return b, nil
}

func (ctl *SignalWSController) sendJSON(c core.SignalConnection, v any) {
	b, err := marshalFrame(v)
	if err != nil {
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) replyError(c core.SignalConnection, reason string) {
	ctl.sendJSON(c, map[string]any{"type": "error", "error": reason})
}
