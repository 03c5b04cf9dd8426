package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/core"
)

func (ctl *SessionController) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads frames and dispatches them. Exactly one reader per
// connection, so everything a connection sends is handled in send order.
// On exit the full disconnect cleanup runs before the goroutine ends.
func (ctl *SessionController) readPump(ctx context.Context, conn *core.Connection, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(conn.ID)).Msg("readPump closing")
		ctl.Lifecycle.Disconnect(conn.ID)
		c.Close()
	}()

	pongWait := ctl.PingPeriod * 10 / 9
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
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("conn", string(conn.ID)).Msg("readPump read error")
				}
				return
			}
			ctl.handleFrame(ctx, conn, c, data)
		}
	}
}

func (ctl *SessionController) handleFrame(ctx context.Context, conn *core.Connection, c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad_payload", "malformed frame")
		return
	}

	switch env.Type {
	case evtJoinRoom:
		ctl.handleJoin(conn, c, data)
	case evtLeaveRoom:
		ctl.handleLeave(conn, c)
	case evtOffer, evtAnswer, evtICECandidate:
		ctl.handleSignal(conn, env.Type, data)
	case evtConnected:
		ctl.handleConnected(conn)
	case evtSendMessage:
		ctl.handleSendMessage(ctx, conn, c, data)
	case evtPing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown event")
	}
}

func (ctl *SessionController) sendJSON(c *wsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SessionController) sendError(c *wsConn, code, msg string) {
	ctl.sendJSON(c, errorEvent{Type: evtError, Code: code, Error: msg})
}
