package domain

import "time"

const MaxRoomNameLen = 100

type RoomID int64

// Room is the durable record: it lives in the relational store and is the
// source of truth for room existence, independent of live membership.
type Room struct {
	ID        RoomID    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   UserID    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}
