package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/core"
	"github.com/mindmend/sessiond/internal/domain"
)

func (ctl *SessionController) handleJoin(conn *core.Connection, c *wsConn, data []byte) {
	var p struct {
		Type    string `json:"type"`
		RoomKey string `json:"roomKey"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomKey == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad_payload", "join-room requires a roomKey")
		return
	}

	res, err := ctl.Lifecycle.Join(conn.ID, domain.RoomKey(p.RoomKey))
	if errors.Is(err, domain.ErrRoomFull) {
		ctl.sendError(c, "room_full", "room already has two members")
		return
	}
	if err != nil {
		ctl.sendError(c, "join_failed", err.Error())
		return
	}

	ack := struct {
		Type      string `json:"type"`
		RoomKey   string `json:"roomKey"`
		Phase     string `json:"phase"`
		Initiator bool   `json:"initiator"`
	}{evtJoined, p.RoomKey, res.Phase.String(), res.Initiator}
	ctl.sendJSON(c, ack)
}

// handleLeave exits the current room without dropping the connection.
func (ctl *SessionController) handleLeave(conn *core.Connection, c *wsConn) {
	ctl.Lifecycle.Leave(conn.ID)
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{evtLeft})
}

// handleConnected records the client-observed media-flowing transition.
func (ctl *SessionController) handleConnected(conn *core.Connection) {
	if !ctl.Lifecycle.Connected(conn.ID) {
		log.Debug().Str("module", "signal").Str("conn", string(conn.ID)).Msg("connected report outside negotiation, ignored")
	}
}
