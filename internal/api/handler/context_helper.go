package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/soundofguitara/parma/pkg/jwt"
	"github.com/soundofguitara/parma/pkg/response"
)

const msgUnauthenticated = "Non authentifié"

// MustGetUserID reads the user_id set by the JWT middleware.
// On failure it writes a 401 and the caller should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, msgUnauthenticated)
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, msgUnauthenticated)
		return "", false
	}
	return s, true
}

// MustGetClaims reads the parsed access token claims.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get("claims")
	if !exists {
		response.Unauthorized(c, 10002, msgUnauthenticated)
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, msgUnauthenticated)
		return nil, false
	}
	return claims, true
}
