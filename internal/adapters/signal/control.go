package signal

func (ctl *SessionController) handlePing(c *wsConn) {
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{evtPong})
}
