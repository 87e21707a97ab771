package app

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Banter/internal/core"
	"github.com/dkeye/Banter/internal/domain"
)

type connEntry struct {
	identity *domain.User // nil for guests
	signal   core.SignalConnection
}

// Registry owns the set of live connections. Each entry pairs a transport
// endpoint with the identity attached at upgrade time; the identity is
// immutable for the connection's lifetime.
type Registry struct {
	mu    sync.RWMutex
	conns map[core.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[core.ConnID]*connEntry)}
}

// Add registers a connection and assigns it a fresh id. identity may be
// nil; the connection is then a guest.
func (r *Registry) Add(identity *domain.User, signal core.SignalConnection) core.ConnID {
	id := core.ConnID(uuid.NewString())
	r.mu.Lock()
	r.conns[id] = &connEntry{identity: identity, signal: signal}
	r.mu.Unlock()
	ev := log.Info().Str("module", "app.registry").Str("conn", string(id))
	if identity != nil {
		ev = ev.Int64("user", int64(identity.ID))
	}
	ev.Msg("connection registered")
	return id
}

func (r *Registry) Remove(id core.ConnID) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("connection removed")
}

// Identity returns the identity attached to the connection, or nil when
// the connection is a guest or unknown.
func (r *Registry) Identity(id core.ConnID) *domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.identity
	}
	return nil
}

// UserRef resolves the connection's identity into the wire shape used by
// presence events, falling back to the guest placeholder.
func (r *Registry) UserRef(id core.ConnID) core.UserRef {
	if u := r.Identity(id); u != nil {
		return core.UserRef{ID: u.ID, Username: u.Username}
	}
	return core.UserRef{Username: "guest"}
}

// Send unicasts one frame. Delivery is best effort: a closed or congested
// connection drops the frame.
func (r *Registry) Send(id core.ConnID, f core.Frame) error {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return e.signal.TrySend(f)
}

// BroadcastAll fans one frame out to every live connection, joined to a
// room or not. Used for room_created.
func (r *Registry) BroadcastAll(f core.Frame) {
	r.mu.RLock()
	targets := make([]core.SignalConnection, 0, len(r.conns))
	for _, e := range r.conns {
		targets = append(targets, e.signal)
	}
	r.mu.RUnlock()
	for _, s := range targets {
		_ = s.TrySend(f)
	}
}
