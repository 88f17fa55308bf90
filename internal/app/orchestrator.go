package app

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/core"
	"github.com/akhilnr/classcord/internal/domain"
)

var (
	ErrNotConnected      = errors.New("connection not registered")
	ErrTargetUnreachable = errors.New("target unreachable")
)

// Orchestrator is the only mutator of the room table. Handlers call it for
// membership changes and targeted relays; fan-out composition stays in the
// signal adapter.
type Orchestrator struct {
	Registry *Registry
	Rooms    core.RoomTable
}

// Departure reports one room a connection was removed from, with the
// participant meta captured before removal so the username still resolves.
type Departure struct {
	Room core.RoomService
	Meta *domain.Participant
}

// Join materializes the room if needed and upserts the participant keyed by
// connection id. There is no existence check on the channel: joining an
// unknown channel is legal and creates the room on demand.
func (o *Orchestrator) Join(ch domain.ChannelID, id core.ConnID, p *domain.Participant) (core.RoomService, error) {
	conn, ok := o.Registry.Lookup(id)
	if !ok {
		return nil, ErrNotConnected
	}
	room := o.Rooms.Join(ch, id, core.NewMemberSession(p, conn))
	log.Info().Str("module", "app.orch").Str("channel", string(ch)).Str("conn", string(id)).Str("username", p.Username).Msg("joined channel")
	return room, nil
}

// Leave removes the participant and reports who left. Leaving a room the
// connection never joined is a benign no-op.
func (o *Orchestrator) Leave(ch domain.ChannelID, id core.ConnID) (Departure, bool) {
	room, ms, ok := o.Rooms.Leave(ch, id)
	if !ok {
		return Departure{}, false
	}
	log.Info().Str("module", "app.orch").Str("channel", string(ch)).Str("conn", string(id)).Msg("left channel")
	return Departure{Room: room, Meta: ms.Meta()}, true
}

// Disconnect performs the leave-equivalent in every room the connection had
// joined, then drops it from the registry. Safe to call for connections that
// never joined anything, and idempotent.
func (o *Orchestrator) Disconnect(id core.ConnID) []Departure {
	var out []Departure
	for _, room := range o.Rooms.RoomsOf(id) {
		if dep, ok := o.Leave(room.ChannelID(), id); ok {
			out = append(out, dep)
		}
	}
	o.Registry.Unregister(id)
	return out
}

// Relay forwards an already-encoded frame to exactly one connection, looked
// up by liveness alone; the destination need not share a room with the
// sender. There is no retry and no buffering: an unreachable target drops
// the frame and the caller logs the failure.
func (o *Orchestrator) Relay(to core.ConnID, data core.Frame) error {
	conn, ok := o.Registry.Lookup(to)
	if !ok {
		return fmt.Errorf("relay to %s: %w", to, ErrTargetUnreachable)
	}
	if err := conn.TrySend(data); err != nil {
		return fmt.Errorf("relay to %s: %w", to, err)
	}
	return nil
}
