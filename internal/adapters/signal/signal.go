// Package signal is the WebSocket transport adapter: it owns the wire
// format and the connection pumps, and translates frames into app calls.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/app"
	"github.com/mindmend/sessiond/internal/core"
	"github.com/mindmend/sessiond/internal/domain"
	"github.com/mindmend/sessiond/internal/gateway"
)

var ErrBackpressure = errors.New("backpressure")

// SessionController handles one WebSocket endpoint per participant.
type SessionController struct {
	Lifecycle *app.Lifecycle
	Signals   *app.SignalingRelay
	Chat      *app.ChatRelay

	ReadLimit  int64
	PingPeriod time.Duration
	WriteWait  time.Duration
	SendBuffer int
}

type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSession upgrades the request and runs the connection until the
// transport closes. Identity comes from the auth middleware; an anonymous
// request never reaches this handler.
func (ctl *SessionController) HandleSession(ctx context.Context, c *gin.Context) {
	identity := domain.Identity{
		ParticipantID: domain.ParticipantID(c.GetString("participant_id")),
		Role:          domain.Role(c.GetString("role")),
	}
	if identity.ParticipantID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": domain.ErrAuthentication.Error()})
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		conn: ws,
		send: make(chan core.Frame, ctl.SendBuffer),
	}

	ctx = gateway.WithBearer(ctx, c.GetString("token"))
	ctx, cancel := context.WithCancel(ctx)
	reg := ctl.Lifecycle.Registry.Register(conn, identity, cancel)
	log.Info().Str("module", "signal").Str("conn", string(reg.ID)).Str("participant", string(identity.ParticipantID)).Msg("new WS connection")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, reg, conn)
}
