package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mindmend/sessiond/internal/domain"
)

// SessionClaims is the token shape issued by the platform's identity service.
type SessionClaims struct {
	ParticipantID string `json:"participant_id"`
	Role          string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a participant token. The platform normally issues
// these; the server only needs this for standalone mode and tests.
func GenerateToken(secret []byte, id domain.ParticipantID, role domain.Role, ttl time.Duration) (string, error) {
	claims := &SessionClaims{
		ParticipantID: string(id),
		Role:          string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "mindmend",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies signature and expiry and returns the identity.
func ParseToken(secret []byte, tokenString string) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return domain.Identity{}, domain.ErrAuthentication
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return domain.Identity{}, domain.ErrAuthentication
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return domain.Identity{}, domain.ErrAuthentication
	}
	return domain.Identity{ParticipantID: domain.ParticipantID(claims.ParticipantID), Role: role}, nil
}

// AuthMiddleware refuses any request it cannot tie to a known identity.
// Tokens arrive as a bearer header, or as a query parameter for WebSocket
// upgrades where browsers cannot set headers.
func AuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("token")
		if raw == "" {
			raw = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrAuthentication.Error()})
			return
		}
		identity, err := ParseToken(secret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": domain.ErrAuthentication.Error()})
			return
		}
		c.Set("participant_id", string(identity.ParticipantID))
		c.Set("role", string(identity.Role))
		// Kept raw so downstream calls to the platform ride the
		// participant's own bearer.
		c.Set("token", raw)
		c.Next()
	}
}
