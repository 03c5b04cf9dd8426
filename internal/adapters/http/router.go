package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mindmend/sessiond/internal/adapters/signal"
	"github.com/mindmend/sessiond/internal/app"
	"github.com/mindmend/sessiond/internal/config"
	"github.com/mindmend/sessiond/internal/store"
)

// ConnTokenMiddleware keeps a stable token in the cookie session so a
// participant reconnecting between call attempts is recognizable in logs.
func ConnTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := sessions.Default(c)
		token, _ := s.Get("ct").(string)
		if token == "" {
			token = uuid.NewString()
			s.Set("ct", token)
			_ = s.Save()
		}
		c.Set("client_token", token)
		c.Next()
	}
}

// SetupRouter wires HTTP routes (REST + WS) with the app layer.
// messages may be nil when an external gateway owns persistence.
func SetupRouter(ctx context.Context, cfg *config.Config, ctl *signal.SessionController, rooms *app.RoomRegistry, messages *MessagesAPI) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("MindmendSessions", cookieStore))
	r.Use(ConnTokenMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	api := r.Group("/api")
	api.Use(AuthMiddleware([]byte(cfg.TokenSecret)))

	api.GET("/ws/session", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("ct", c.GetString("client_token")).Msg("ws session endpoint hit")
		ctl.HandleSession(ctx, c)
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": rooms.List()})
	})

	if messages != nil {
		api.GET("/messages", messages.History)
		api.POST("/messages", messages.Append)
	}

	return r
}

// NewMessagesAPI is nil-safe sugar for optional standalone persistence.
func NewMessagesAPI(s *store.MessageStore) *MessagesAPI {
	if s == nil {
		return nil
	}
	return &MessagesAPI{Store: s}
}
