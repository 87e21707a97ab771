package http

import (
	"context"

	"github.com/dkeye/Banter/internal/domain"
)

// UserStore is the slice of the durable store the auth endpoints need.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	UserByUsername(ctx context.Context, username string) (*domain.User, string, error)
	UserByID(ctx context.Context, id domain.UserID) (*domain.User, error)
}

// RoomStore is the slice of the durable store the rooms endpoints need.
type RoomStore interface {
	ListRooms(ctx context.Context) ([]domain.Room, error)
	CreateRoom(ctx context.Context, name string, ownerID domain.UserID) (*domain.Room, error)
}
