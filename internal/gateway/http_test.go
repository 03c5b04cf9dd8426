package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mindmend/sessiond/internal/domain"
)

func TestHTTPGateway_Append(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("/messages", r.URL.Path)
		req.Equal("Bearer u1-token", r.Header.Get("Authorization"), "participant bearer is forwarded")

		var body map[string]json.RawMessage
		req.NoError(json.NewDecoder(r.Body).Decode(&body))
		req.NotContains(body, "senderId", "sender is the token identity, never the body")
		req.JSONEq(`"t1"`, string(body["receiverId"]))
		req.JSONEq(`"hello"`, string(body["content"]))

		w.WriteHeader(http.StatusCreated)
		req.NoError(json.NewEncoder(w).Encode(domain.ChatMessage{
			ID:         uuid.New(),
			SenderID:   "u1",
			ReceiverID: "t1",
			Content:    "hello",
			CreatedAt:  time.Now().UTC(),
		}))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "svc-token", time.Second)
	ctx := WithBearer(context.Background(), "u1-token")
	stored, err := gw.Append(ctx, domain.ChatMessage{
		SenderID:   "u1",
		ReceiverID: "t1",
		Content:    "hello",
	})
	req.NoError(err)
	req.NotZero(stored.ID)
	req.Equal("hello", stored.Content)
	req.Equal(domain.ParticipantID("u1"), stored.SenderID)
}

func TestHTTPGateway_ServiceTokenFallback(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("Bearer svc-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
		req.NoError(json.NewEncoder(w).Encode(domain.ChatMessage{ID: uuid.New(), Content: "x"}))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "svc-token", time.Second)
	_, err := gw.Append(context.Background(), domain.ChatMessage{ReceiverID: "t1", Content: "x"})
	req.NoError(err)
}

func TestHTTPGateway_AppendFailureIsPersistenceError(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "svc-token", time.Second)
	_, err := gw.Append(context.Background(), domain.ChatMessage{SenderID: "u1", ReceiverID: "t1", Content: "x"})
	req.ErrorIs(err, domain.ErrPersistence)
}

func TestHTTPGateway_History(t *testing.T) {
	req := require.New(t)

	msgs := []domain.ChatMessage{
		{ID: uuid.New(), SenderID: "u1", ReceiverID: "t1", Content: "one", CreatedAt: time.Now().UTC()},
		{ID: uuid.New(), SenderID: "t1", ReceiverID: "u1", Content: "two", CreatedAt: time.Now().UTC()},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodGet, r.Method)
		req.Equal("/messages", r.URL.Path)
		req.Equal("Bearer u1-token", r.Header.Get("Authorization"))
		req.Equal("t1", r.URL.Query().Get("partnerId"))
		req.Empty(r.URL.Query().Get("participantId"), "caller is the token identity, not a query param")
		req.NoError(json.NewEncoder(w).Encode(msgs))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "svc-token", time.Second)
	history, err := gw.History(WithBearer(context.Background(), "u1-token"), "u1", "t1")
	req.NoError(err)
	req.Len(history, 2)
	req.Equal("one", history[0].Content)
	req.Equal("two", history[1].Content)
}
