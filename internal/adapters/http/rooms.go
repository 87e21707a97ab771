package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Banter/internal/app"
	"github.com/dkeye/Banter/internal/domain"
	"github.com/dkeye/Banter/internal/store"
)

type RoomsController struct {
	Users  UserStore
	Rooms  RoomStore
	Events *app.Router
}

func (ctl *RoomsController) handleList(c *gin.Context) {
	rooms, err := ctl.Rooms.ListRooms(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (ctl *RoomsController) handleCreate(c *gin.Context) {
	u := currentUser(c, ctl.Users)
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid name"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if runes := []rune(name); len(runes) > domain.MaxRoomNameLen {
		name = string(runes[:domain.MaxRoomNameLen])
	}
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid name"})
		return
	}
	room, err := ctl.Rooms.CreateRoom(c.Request.Context(), name, u.ID)
	if errors.Is(err, store.ErrDuplicateName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room may exist"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("name", room.Name).Int64("owner", int64(room.OwnerID)).Msg("room created")
	ctl.Events.RoomCreated(room)
	c.JSON(http.StatusOK, gin.H{"room": room})
}
