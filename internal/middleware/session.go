package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/fefu-lab-api/internal/models"
)

// ContextIdentityKey is the gin context key storing the resolved caller.
const ContextIdentityKey = "identity"

// SessionResolver turns a session token into the caller identity.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*models.Identity, error)
}

// Session attaches the caller identity when the request carries a valid
// session token, either in the session cookie or as a Bearer header. Requests
// without one continue anonymously; gating is left to RequireRoles.
func Session(resolver SessionResolver, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		identity, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			logger.Debug("session rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Next()
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// SessionToken returns the session token from the cookie, falling back to the
// Authorization header.
func SessionToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentIdentity returns the caller attached by Session, or nil.
func CurrentIdentity(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil
	}
	identity, _ := value.(*models.Identity)
	return identity
}
