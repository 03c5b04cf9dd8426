package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/mindmend/sessiond/internal/domain"
	"github.com/mindmend/sessiond/internal/store"
)

type messageResponse struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toMessageResponse(m domain.ChatMessage) messageResponse {
	return messageResponse{
		ID:         m.ID.String(),
		SenderID:   string(m.SenderID),
		ReceiverID: string(m.ReceiverID),
		Content:    m.Content,
		CreatedAt:  m.CreatedAt,
	}
}

// MessagesAPI serves the persistence surface when the server runs standalone:
// GET /messages?partnerId= and POST /messages. The live relay consumes the
// same store through the local gateway.
type MessagesAPI struct {
	Store *store.MessageStore
}

func (a *MessagesAPI) History(c *gin.Context) {
	caller := domain.ParticipantID(c.GetString("participant_id"))
	partner := domain.ParticipantID(c.Query("partnerId"))
	if partner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing partnerId"})
		return
	}

	msgs, err := a.Store.History(caller, partner)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("history read")
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrPersistence.Error()})
		return
	}
	c.JSON(http.StatusOK, lo.Map(msgs, func(m domain.ChatMessage, _ int) messageResponse {
		return toMessageResponse(m)
	}))
}

func (a *MessagesAPI) Append(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiverId" binding:"required"`
		Content    string `json:"content" binding:"required,max=2000"`
		RoomKey    string `json:"roomKey"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrValidation.Error()})
		return
	}

	stored, err := a.Store.Append(domain.ChatMessage{
		RoomKey:    domain.RoomKey(req.RoomKey),
		SenderID:   domain.ParticipantID(c.GetString("participant_id")),
		ReceiverID: domain.ParticipantID(req.ReceiverID),
		Content:    req.Content,
	})
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("message append")
		c.JSON(http.StatusInternalServerError, gin.H{"error": domain.ErrPersistence.Error()})
		return
	}
	c.JSON(http.StatusCreated, toMessageResponse(stored))
}
