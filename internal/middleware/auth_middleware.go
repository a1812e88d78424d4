package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskmanager/internal/auth"
)

// Context keys set for authenticated requests.
const (
	UserIDKey   = "userID"
	UsernameKey = "username"
)

type TokenParser interface {
	Parse(tokenStr string) (*auth.Claims, error)
}

// JWTAuthMiddleware requires a valid "Authorization: Bearer <token>" header and
// stores the caller's uuid.UUID under UserIDKey.
func JWTAuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "Authorization header format must be Bearer {token}")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			abortUnauthorized(c, "Invalid user ID in token")
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"data":    nil,
	})
}
