package http

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/dkeye/Banter/internal/domain"
	"github.com/dkeye/Banter/internal/store"
)

const userIDKey = "user_id"

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthController struct {
	Users UserStore
	Cost  int
}

func (ctl *AuthController) handleRegister(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username or password"})
		return
	}
	if err := domain.ValidateCredentials(req.Username, req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), ctl.Cost)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("bcrypt hash")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash"})
		return
	}
	u, err := ctl.Users.CreateUser(c.Request.Context(), req.Username, string(hash))
	if errors.Is(err, store.ErrDuplicateName) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username may be taken"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("username", u.Username).Msg("registered")
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "username": u.Username})
}

func (ctl *AuthController) handleLogin(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username or password"})
		return
	}
	u, hash, err := ctl.Users.UserByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("login lookup")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	sess := sessions.Default(c)
	sess.Set(userIDKey, int64(u.ID))
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session save")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("username", u.Username).Msg("logged in")
	c.JSON(http.StatusOK, gin.H{"id": u.ID, "username": u.Username, "isAdmin": u.IsAdmin})
}

func (ctl *AuthController) handleLogout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("session clear")
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (ctl *AuthController) handleMe(c *gin.Context) {
	u := currentUser(c, ctl.Users)
	if u == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// currentUser resolves the session cookie into an identity, or nil when
// the request carries no valid session.
func currentUser(c *gin.Context, users UserStore) *domain.User {
	sess := sessions.Default(c)
	id, ok := sess.Get(userIDKey).(int64)
	if !ok {
		return nil
	}
	u, err := users.UserByID(c.Request.Context(), domain.UserID(id))
	if err != nil {
		return nil
	}
	return u
}
