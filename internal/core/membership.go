package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Banter/internal/domain"
)

// roomState is the live side of a room: which connections are subscribed
// to its broadcasts right now and which user ids may kick. Entries are
// created lazily on first join and kept for the life of the process.
type roomState struct {
	members map[ConnID]struct{}
	admins  map[domain.UserID]struct{}
}

// Membership tracks which connections are joined to which rooms. It is a
// plain injected table, constructed once per process; it never touches
// transport resources or the durable store.
//
// Invariant: a conn id is in a room's member set exactly when the room id
// is in that conn's joined set. Every mutation updates both sides under
// the same lock.
type Membership struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]*roomState
	joined map[ConnID]map[domain.RoomID]struct{}
}

func NewMembership() *Membership {
	return &Membership{
		rooms:  make(map[domain.RoomID]*roomState),
		joined: make(map[ConnID]map[domain.RoomID]struct{}),
	}
}

// Join subscribes the connection to the room, creating the live entry
// (admin set seeded from the durable room's owner) if absent. Reports
// false when the connection was already a member; the call is then a
// no-op. The caller is responsible for checking that the durable room
// exists before calling.
func (m *Membership) Join(roomID domain.RoomID, connID ConnID, ownerID domain.UserID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.joined[connID][roomID]; ok {
		return false
	}
	r, ok := m.rooms[roomID]
	if !ok {
		r = &roomState{
			members: make(map[ConnID]struct{}),
			admins:  map[domain.UserID]struct{}{ownerID: {}},
		}
		m.rooms[roomID] = r
	}
	r.members[connID] = struct{}{}
	if m.joined[connID] == nil {
		m.joined[connID] = make(map[domain.RoomID]struct{})
	}
	m.joined[connID][roomID] = struct{}{}
	log.Debug().Str("module", "core.membership").Int64("room", int64(roomID)).Str("conn", string(connID)).Msg("joined")
	return true
}

// Leave removes the connection from the room's member set and the room
// from the connection's joined set. Reports false when the connection was
// not a member. The live room entry stays even when its member set
// becomes empty.
func (m *Membership) Leave(roomID domain.RoomID, connID ConnID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaveLocked(roomID, connID)
}

func (m *Membership) leaveLocked(roomID domain.RoomID, connID ConnID) bool {
	if _, ok := m.joined[connID][roomID]; !ok {
		return false
	}
	if r, ok := m.rooms[roomID]; ok {
		delete(r.members, connID)
	}
	delete(m.joined[connID], roomID)
	log.Debug().Str("module", "core.membership").Int64("room", int64(roomID)).Str("conn", string(connID)).Msg("left")
	return true
}

func (m *Membership) IsMember(roomID domain.RoomID, connID ConnID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.joined[connID][roomID]
	return ok
}

// HasRoom reports whether a live entry exists for the room, regardless of
// how many members it currently holds.
func (m *Membership) HasRoom(roomID domain.RoomID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rooms[roomID]
	return ok
}

// IsAdmin reports whether the user id is in the room's admin set. The
// caller ORs in the identity's global admin flag; that flag lives on the
// identity, not here.
func (m *Membership) IsAdmin(roomID domain.RoomID, userID domain.UserID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return false
	}
	_, ok = r.admins[userID]
	return ok
}

// Members returns a snapshot of the room's member set for fan-out.
func (m *Membership) Members(roomID domain.RoomID) []ConnID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]ConnID, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	return out
}

// Rooms returns a snapshot of the rooms the connection is joined to.
func (m *Membership) Rooms(connID ConnID) []domain.RoomID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.RoomID, 0, len(m.joined[connID]))
	for id := range m.joined[connID] {
		out = append(out, id)
	}
	return out
}

// Drop removes the connection from every room it belonged to and returns
// those rooms, so the caller can broadcast one "left" event per room.
// Used on disconnect.
func (m *Membership) Drop(connID ConnID) []domain.RoomID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.RoomID, 0, len(m.joined[connID]))
	for roomID := range m.joined[connID] {
		if r, ok := m.rooms[roomID]; ok {
			delete(r.members, connID)
		}
		out = append(out, roomID)
	}
	delete(m.joined, connID)
	if len(out) > 0 {
		log.Debug().Str("module", "core.membership").Str("conn", string(connID)).Int("rooms", len(out)).Msg("dropped")
	}
	return out
}
