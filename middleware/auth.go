package middleware

import (
	"strings"
	"time"

	"safeher/services"
	"safeher/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID         = "user_id"
	ContextToken          = "token"
	ContextTokenExpiresAt = "token_expires_at"
)

type TokenParser interface {
	Parse(token string) (*services.Claims, error)
}

// AuthMiddleware requires a valid, non-revoked bearer access token and stores
// the caller's id in the context.
func AuthMiddleware(tokens TokenParser, blacklist services.TokenBlacklist) gin.HandlerFunc {
	if blacklist == nil {
		blacklist = services.NoopBlacklist{}
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.TrackAuthAttempt("failure", "token")
			utils.Unauthorized(c, "Missing or invalid token")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if blacklist.IsBlacklisted(c.Request.Context(), tokenString) {
			utils.TrackAuthAttempt("failure", "token")
			utils.Unauthorized(c, "Token has been invalidated")
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			utils.TrackAuthAttempt("failure", "token")
			utils.Unauthorized(c, "Invalid token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextToken, tokenString)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExpiresAt, claims.ExpiresAt.Time)
		} else {
			c.Set(ContextTokenExpiresAt, time.Time{})
		}

		c.Next()
	}
}

// UserID returns the authenticated caller set by AuthMiddleware.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
