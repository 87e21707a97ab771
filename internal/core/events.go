package core

import "github.com/dkeye/Banter/internal/domain"

// Outbound event types. Every frame on the wire is a JSON object with a
// "type" field; clients dispatch on it.
const (
	EventUserJoined  = "user_joined"
	EventUserLeft    = "user_left"
	EventMsg         = "msg"
	EventUserKicked  = "user_kicked"
	EventKicked      = "kicked"
	EventRoomCreated = "room_created"
	EventAck         = "ack"
	EventPong        = "pong"
)

// Error codes carried in acks.
const (
	ErrCodeNoRoom      = "no_room"
	ErrCodeMissingRoom = "missing_room"
	ErrCodeNoRoomState = "no_room_state"
	ErrCodeNotAdmin    = "not_admin"
	ErrCodeDB          = "db"
)

// UserRef is the public view of an identity in presence events.
// The global admin flag never goes on the wire.
type UserRef struct {
	ID       domain.UserID `json:"id"`
	Username string        `json:"username"`
}

type UserJoined struct {
	Type string  `json:"type"`
	User UserRef `json:"user"`
}

type UserLeft struct {
	Type string  `json:"type"`
	User UserRef `json:"user"`
}

type Message struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
	User   UserRef       `json:"user"`
	Text   string        `json:"text"`
	Time   int64         `json:"time"`
}

type UserKicked struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

// Kicked is unicast to each removed connection; everyone else in the room
// gets UserKicked instead.
type Kicked struct {
	Type   string        `json:"type"`
	RoomID domain.RoomID `json:"roomId"`
}

type RoomCreated struct {
	Type    string        `json:"type"`
	ID      domain.RoomID `json:"id"`
	Name    string        `json:"name"`
	OwnerID domain.UserID `json:"ownerId"`
}

// Ack answers one inbound request. Event names the request it answers and
// Seq echoes the client-supplied sequence number so the client can
// correlate acks with pending requests.
type Ack struct {
	Type    string `json:"type"`
	Event   string `json:"event,omitempty"`
	Seq     int64  `json:"seq,omitempty"`
	OK      bool   `json:"ok,omitempty"`
	Already *bool  `json:"already,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OKAck builds a plain success ack.
func OKAck() Ack { return Ack{Type: EventAck, OK: true} }

// AlreadyAck builds a success ack with the already flag set explicitly.
func AlreadyAck(already bool) Ack {
	return Ack{Type: EventAck, OK: true, Already: &already}
}

// ErrAck builds a failure ack with one of the ErrCode constants.
func ErrAck(code string) Ack { return Ack{Type: EventAck, Error: code} }
