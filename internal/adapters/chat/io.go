package chat

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Banter/internal/core"
	"github.com/dkeye/Banter/internal/domain"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				log.Debug().Err(err).Str("module", "chat").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "chat").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "chat").Msg("writePump write error")
				return
			}
		}
	}
}

// readPump processes inbound events one at a time; each event runs to
// completion (store lookup and broadcasts included) before the next one
// is read, so events from one connection are naturally serialized.
func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, connID core.ConnID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "chat").Str("conn", string(connID)).Msg("readPump closing")
		ctl.Events.Disconnect(connID)
		if ctl.Limiter != nil {
			ctl.Limiter.Forget(connID)
		}
		cancel()
		c.Close()
	}()

	pongWait := ctl.PingPeriod + writeWait
	c.conn.SetReadLimit(ctl.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Str("module", "chat").Str("conn", string(connID)).Msg("readPump read error")
				return
			}
			ctl.handleEvent(ctx, connID, c, data)
		}
	}
}

func (ctl *Controller) handleEvent(ctx context.Context, connID core.ConnID, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad json")
		return
	}

	switch env.Type {
	case "join_room":
		ctl.handleJoinRoom(ctx, connID, c, data)
	case "leave_room":
		ctl.handleLeaveRoom(connID, c, data)
	case "msg":
		ctl.handleMsg(connID, data)
	case "kick":
		ctl.handleKick(connID, c, data)
	case "ping":
		ctl.sendJSON(c, core.Ack{Type: core.EventPong})
	default:
		log.Warn().Str("module", "chat").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *Controller) handleJoinRoom(ctx context.Context, connID core.ConnID, c *wsConn, data []byte) {
	var p struct {
		RoomID int64 `json:"roomId"`
		Seq    int64 `json:"seq"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad join_room payload")
		ctl.sendAck(c, "join_room", p.Seq, core.ErrAck("bad_payload"))
		return
	}
	ack := ctl.Events.JoinRoom(ctx, connID, domain.RoomID(p.RoomID))
	ctl.sendAck(c, "join_room", p.Seq, ack)
}

func (ctl *Controller) handleLeaveRoom(connID core.ConnID, c *wsConn, data []byte) {
	var p struct {
		RoomID int64 `json:"roomId"`
		Seq    int64 `json:"seq"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad leave_room payload")
		ctl.sendAck(c, "leave_room", p.Seq, core.ErrAck("bad_payload"))
		return
	}
	ack := ctl.Events.LeaveRoom(connID, domain.RoomID(p.RoomID))
	ctl.sendAck(c, "leave_room", p.Seq, ack)
}

// handleMsg is fire and forget: malformed payloads, unknown rooms and
// rate-limited senders all drop the message without surfacing an error.
func (ctl *Controller) handleMsg(connID core.ConnID, data []byte) {
	var p struct {
		RoomID int64  `json:"roomId"`
		Text   string `json:"text"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad msg payload")
		return
	}
	if ctl.Limiter != nil && !ctl.Limiter.Allow(connID) {
		log.Warn().Str("module", "chat").Str("conn", string(connID)).Msg("msg rate limited")
		return
	}
	ctl.Events.Message(connID, domain.RoomID(p.RoomID), p.Text)
}

func (ctl *Controller) handleKick(connID core.ConnID, c *wsConn, data []byte) {
	var p struct {
		RoomID       int64 `json:"roomId"`
		TargetUserID int64 `json:"targetUserId"`
		Seq          int64 `json:"seq"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("bad kick payload")
		ctl.sendAck(c, "kick", p.Seq, core.ErrAck("bad_payload"))
		return
	}
	ack := ctl.Events.Kick(connID, domain.RoomID(p.RoomID), domain.UserID(p.TargetUserID))
	ctl.sendAck(c, "kick", p.Seq, ack)
}

func (ctl *Controller) sendAck(c *wsConn, event string, seq int64, ack core.Ack) {
	ack.Event = event
	ack.Seq = seq
	ctl.sendJSON(c, ack)
}

func (ctl *Controller) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "chat").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}
