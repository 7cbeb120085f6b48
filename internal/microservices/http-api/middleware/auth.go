package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"cinerate/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const (
	identityContextKey = "identity"
	adminKeyHeader     = "X-Admin-Key"
)

// IdentityFromContext returns the identity set by OptionalAuth, if any.
func IdentityFromContext(c *gin.Context) (*service.Identity, bool) {
	value, ok := c.Get(identityContextKey)
	if !ok {
		return nil, false
	}
	id, ok := value.(*service.Identity)
	return id, ok && id != nil
}

// OptionalAuth validates a bearer token when one is presented. Requests
// without an Authorization header pass through anonymously; a malformed,
// forged or expired token is rejected with 401.
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		id, err := authService.VerifyToken(parts[1])
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrExpiredToken) {
				msg = "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		c.Set(identityContextKey, id)
		c.Next()
	}
}

// RequireAdminKey guards admin routes with a shared key sent in X-Admin-Key.
// An empty key leaves the routes open.
func RequireAdminKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		presented := c.GetHeader(adminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin key required"})
			return
		}
		c.Next()
	}
}
