package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/app"
	"github.com/akhilnr/classcord/internal/config"
	"github.com/akhilnr/classcord/internal/core"
	"github.com/akhilnr/classcord/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Orch     *app.Orchestrator
	cfg      *config.Config
	validate *validator.Validate
}

func NewSignalWSController(orch *app.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch:     orch,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// wsSignalConn implements core.SignalConnection over a gorilla websocket.
type wsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	// userHint is the client-token cookie, used as the guest identity when
	// a join payload carries no userId.
	userHint domain.UserID

	mu     sync.RWMutex
	closed bool
}

func (c *wsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and hands the connection a fresh id.
// Connection ids are never reused; a reconnect is a brand new connection.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	sid := core.ConnID(uuid.NewString())
	log.Info().Str("module", "signal").Str("conn", string(sid)).Msg("new WS connection")

	conn := &wsSignalConn{
		conn:     ws,
		send:     make(chan core.Frame, 32),
		userHint: domain.UserID(c.GetString("client_token")),
	}

	ctl.Orch.Registry.Register(sid, conn)

	// The client needs its own connection id to be addressable by peers.
	ctl.sendJSON(conn, map[string]any{"type": "connected", "connectionId": sid})

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

// broadcastTo fans an event out to every member of room except from.
func (ctl *SignalWSController) broadcastTo(room core.RoomService, from core.ConnID, v any) {
	b, err := marshalFrame(v)
	if err != nil {
		return
	}
	res := room.Broadcast(from, b)
	if len(res.Dropped) > 0 {
		log.Warn().Str("module", "signal").Str("channel", string(room.ChannelID())).Int("dropped", len(res.Dropped)).Msg("slow consumers dropped broadcast frame")
	}
}

// broadcastRoom resolves the channel first; an untracked channel means
// there is nobody to notify, which is benign.
func (ctl *SignalWSController) broadcastRoom(ch domain.ChannelID, from core.ConnID, v any) {
	room, ok := ctl.Orch.Rooms.Get(ch)
	if !ok {
		return
	}
	ctl.broadcastTo(room, from, v)
}
