package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const authTokenKey = "auth_token"

// BearerToken stores the caller's bearer token, if any, on the gin context.
// The token is not validated here; it is forwarded to the store so row-level
// security can act on it.
func BearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractBearerToken(c.GetHeader("Authorization")); token != "" {
			c.Set(authTokenKey, token)
		}
		c.Next()
	}
}

// AuthToken returns the token stored by BearerToken, or "".
func AuthToken(c *gin.Context) string {
	return c.GetString(authTokenKey)
}

// The scheme is matched case-insensitively (RFC 7235).
func extractBearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
