package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/core"
)

// handleSignal re-envelopes a handshake frame with the resolved sender and
// hands it to the relay. The payload bytes pass through untouched: the
// server never parses session descriptions or candidates.
func (ctl *SessionController) handleSignal(conn *core.Connection, kind string, data []byte) {
	var p struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("kind", kind).Msg("bad signal envelope")
		return
	}

	out := struct {
		Type    string          `json:"type"`
		From    string          `json:"from"`
		Payload json.RawMessage `json:"payload"`
	}{kind, string(conn.ID), p.Payload}

	frame, err := json.Marshal(out)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("signal marshal")
		return
	}
	ctl.Signals.Relay(conn.ID, core.Frame(frame))
}
