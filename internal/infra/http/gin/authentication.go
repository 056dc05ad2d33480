package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"growshare/internal/app/policies"
)

const principalContextKey = "growshare.principal"

// AuthMiddleware resolves bearer tokens through the external identity
// service. Unauthenticated requests pass through; handlers that need a
// principal enforce it themselves.
type AuthMiddleware struct {
	Resolver policies.IdentityResolver
	Logger   *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Resolver == nil {
		c.Next()
		return
	}
	principal, err := m.Resolver.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, policies.ErrUnknownToken) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(principalContextKey, principal)
	c.Next()
}

func currentPrincipal(c *gin.Context) (policies.Principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return policies.Principal{}, false
	}
	p, ok := val.(policies.Principal)
	return p, ok
}

func requirePrincipal(c *gin.Context) (policies.Principal, bool) {
	p, ok := currentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"code": CodeAuthRequired, "error": "auth required"})
		return policies.Principal{}, false
	}
	return p, true
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
