package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Banter/internal/core"
	"github.com/dkeye/Banter/internal/domain"
	"github.com/dkeye/Banter/internal/store"
)

// RoomFinder is the slice of the durable store the router needs: room
// existence checks on join. Missing rooms are store.ErrNotFound.
type RoomFinder interface {
	GetRoomByID(ctx context.Context, id domain.RoomID) (*domain.Room, error)
}

// Router validates inbound client events against membership and admin
// preconditions and fans the resulting events out to the right subset of
// connections. Broadcasts are synchronous and best effort: one failed
// delivery never rolls back or retries the others.
type Router struct {
	Registry *Registry
	Members  *core.Membership
	Rooms    RoomFinder
}

// JoinRoom subscribes the connection to a room's broadcasts. The durable
// store is consulted first; membership is only mutated after the lookup
// resolves, and Join re-checks "already joined" at that point since other
// events may have interleaved during the I/O.
func (rt *Router) JoinRoom(ctx context.Context, connID core.ConnID, roomID domain.RoomID) core.Ack {
	room, err := rt.Rooms.GetRoomByID(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return core.ErrAck(core.ErrCodeNoRoom)
	}
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Int64("room", int64(roomID)).Msg("join: store lookup failed")
		return core.ErrAck(core.ErrCodeDB)
	}
	if !rt.Members.Join(roomID, connID, room.OwnerID) {
		return core.AlreadyAck(true)
	}
	rt.broadcastRoom(roomID, core.UserJoined{Type: core.EventUserJoined, User: rt.Registry.UserRef(connID)})
	return core.OKAck()
}

// LeaveRoom unsubscribes the connection. Leaving a room you are not in is
// acknowledged with already:false and has no side effects.
func (rt *Router) LeaveRoom(connID core.ConnID, roomID domain.RoomID) core.Ack {
	if !rt.Members.Leave(roomID, connID) {
		return core.AlreadyAck(false)
	}
	rt.broadcastRoom(roomID, core.UserLeft{Type: core.EventUserLeft, User: rt.Registry.UserRef(connID)})
	return core.OKAck()
}

// Message fans a chat line out to every member of the room, sender
// included. Fire and forget: a missing room id or a sender that is not a
// member drops the message silently.
func (rt *Router) Message(connID core.ConnID, roomID domain.RoomID, text string) {
	if roomID == 0 || !rt.Members.IsMember(roomID, connID) {
		return
	}
	rt.broadcastRoom(roomID, core.Message{
		Type:   core.EventMsg,
		RoomID: roomID,
		User:   rt.Registry.UserRef(connID),
		Text:   text,
		Time:   time.Now().UnixMilli(),
	})
}

// Kick force-removes every connection of the target user from the room.
// The caller must be a per-room admin (owner-seeded) or carry the global
// admin flag. Idempotent with respect to the target: when no connection
// matches, the user_kicked broadcast still fires.
func (rt *Router) Kick(connID core.ConnID, roomID domain.RoomID, targetID domain.UserID) core.Ack {
	if roomID == 0 {
		return core.ErrAck(core.ErrCodeMissingRoom)
	}
	if !rt.Members.HasRoom(roomID) {
		return core.ErrAck(core.ErrCodeNoRoomState)
	}
	caller := rt.Registry.Identity(connID)
	if caller == nil || !(rt.Members.IsAdmin(roomID, caller.ID) || caller.IsAdmin) {
		return core.ErrAck(core.ErrCodeNotAdmin)
	}
	kicked, _ := encode(core.Kicked{Type: core.EventKicked, RoomID: roomID})
	for _, member := range rt.Members.Members(roomID) {
		id := rt.Registry.Identity(member)
		if id == nil || id.ID != targetID {
			continue
		}
		rt.Members.Leave(roomID, member)
		_ = rt.Registry.Send(member, kicked)
	}
	rt.broadcastRoom(roomID, core.UserKicked{Type: core.EventUserKicked, UserID: targetID})
	log.Info().Str("module", "app.router").Int64("room", int64(roomID)).Int64("target", int64(targetID)).Msg("kick")
	return core.OKAck()
}

// Disconnect removes the connection from every room it was joined to,
// broadcasting one user_left per room with the connection's last-known
// identity, then drops it from the registry.
func (rt *Router) Disconnect(connID core.ConnID) {
	user := rt.Registry.UserRef(connID)
	for _, roomID := range rt.Members.Drop(connID) {
		rt.broadcastRoom(roomID, core.UserLeft{Type: core.EventUserLeft, User: user})
	}
	rt.Registry.Remove(connID)
}

// RoomCreated announces a freshly persisted room to every live
// connection.
func (rt *Router) RoomCreated(room *domain.Room) {
	f, err := encode(core.RoomCreated{
		Type:    core.EventRoomCreated,
		ID:      room.ID,
		Name:    room.Name,
		OwnerID: room.OwnerID,
	})
	if err != nil {
		return
	}
	rt.Registry.BroadcastAll(f)
}

func (rt *Router) broadcastRoom(roomID domain.RoomID, v any) {
	f, err := encode(v)
	if err != nil {
		return
	}
	dropped := 0
	for _, member := range rt.Members.Members(roomID) {
		if err := rt.Registry.Send(member, f); err != nil {
			dropped++
		}
	}
	if dropped > 0 {
		log.Warn().Str("module", "app.router").Int64("room", int64(roomID)).Int("dropped", dropped).Msg("broadcast dropped frames")
	}
}

func encode(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Msg("event marshal")
		return nil, err
	}
	return core.Frame(b), nil
}
