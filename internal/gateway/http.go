package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mindmend/sessiond/internal/domain"
)

// HTTPGateway talks to the platform's message API:
//
//	POST /messages               {receiverId, content, roomKey}
//	GET  /messages?partnerId=
//
// The platform attributes both calls to the bearer token, so the gateway
// forwards the sending participant's own token (carried via WithBearer) and
// falls back to the service token only for calls with no participant behind
// them. Used when this server runs next to the full booking platform; the
// platform owns the durable store.
type HTTPGateway struct {
	base   string
	token  string
	client *http.Client
}

func NewHTTPGateway(baseURL, serviceToken string, timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		base:   baseURL,
		token:  serviceToken,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGateway) bearer(ctx context.Context) string {
	if token, ok := bearerFrom(ctx); ok {
		return token
	}
	return g.token
}

func (g *HTTPGateway) Append(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	// The sender is the token identity; it never travels in the body.
	payload := struct {
		ReceiverID domain.ParticipantID `json:"receiverId"`
		Content    string               `json:"content"`
		RoomKey    domain.RoomKey       `json:"roomKey,omitempty"`
	}{msg.ReceiverID, msg.Content, msg.RoomKey}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("encode message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base+"/messages", bytes.NewReader(body))
	if err != nil {
		return domain.ChatMessage{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.bearer(ctx))

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return domain.ChatMessage{}, fmt.Errorf("%w: gateway returned %d", domain.ErrPersistence, resp.StatusCode)
	}

	var stored domain.ChatMessage
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("%w: decode response: %v", domain.ErrPersistence, err)
	}
	return stored, nil
}

// History queries the conversation with partner. The caller side of the pair
// is the token identity, so caller only picks which bearer the request rides
// on; the platform scopes the result itself.
func (g *HTTPGateway) History(ctx context.Context, _, partner domain.ParticipantID) ([]domain.ChatMessage, error) {
	q := url.Values{}
	q.Set("partnerId", string(partner))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.base+"/messages?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.bearer(ctx))

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gateway returned %d", domain.ErrPersistence, resp.StatusCode)
	}

	var msgs []domain.ChatMessage
	if err := json.NewDecoder(resp.Body).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrPersistence, err)
	}
	return msgs, nil
}
