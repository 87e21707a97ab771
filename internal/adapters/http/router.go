package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Banter/internal/adapters/chat"
	"github.com/dkeye/Banter/internal/app"
	"github.com/dkeye/Banter/internal/config"
)

// Deps carries everything the router wires together.
type Deps struct {
	Users  UserStore
	Rooms  RoomStore
	Events *app.Router
	Chat   *chat.Controller
}

func SetupRouter(ctx context.Context, cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("BanterSessions", store))

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	auth := &AuthController{Users: deps.Users, Cost: cfg.BcryptCost}
	rooms := &RoomsController{Users: deps.Users, Rooms: deps.Rooms, Events: deps.Events}

	api := r.Group("/api")

	api.POST("/register", auth.handleRegister)
	api.POST("/login", auth.handleLogin)
	api.POST("/logout", auth.handleLogout)
	api.GET("/me", auth.handleMe)

	api.GET("/rooms", rooms.handleList)
	api.POST("/rooms", rooms.handleCreate)

	api.GET("/ws", func(c *gin.Context) {
		identity := currentUser(c, deps.Users)
		deps.Chat.Handle(ctx, c, identity)
	})

	return r
}
