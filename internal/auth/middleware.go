package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const principalContextKey contextKey = "archivePrincipal"

// Middleware validates bearer tokens and injects the resolved principal
// username into the request context. Every ownership check downstream trusts
// this value and nothing from the client payload.
func Middleware(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "missing authorization header"})
			return
		}

		token := extractBearerToken(authHeader)
		if token == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid authorization header"})
			return
		}

		username, err := service.ResolvePrincipal(token)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "invalid or expired token"})
			return
		}

		SetPrincipal(c, username)
		c.Next()
	}
}

// SetPrincipal stores the resolved username in the request context.
func SetPrincipal(c *gin.Context, username string) {
	c.Set(string(principalContextKey), username)
}

// Principal extracts the authenticated username from the context.
func Principal(c *gin.Context) (string, bool) {
	value, exists := c.Get(string(principalContextKey))
	if !exists {
		return "", false
	}
	username, ok := value.(string)
	return username, ok && username != ""
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
