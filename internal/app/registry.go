package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/core"
)

// Registry tracks every live connection independently of room membership.
// It is the liveness source the signaling relay checks before forwarding.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]core.SignalConnection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.ConnID]core.SignalConnection)}
}

func (r *Registry) Register(id core.ConnID, conn core.SignalConnection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("connection registered")
}

// Unregister is idempotent; dropping an unknown connection is a no-op.
func (r *Registry) Unregister(id core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[id]; !ok {
		return
	}
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("connection unregistered")
}

func (r *Registry) Lookup(id core.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

func (r *Registry) IsLive(id core.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[id]
	return ok
}
