package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// OwnerSource reports the owner signed in on this device.
type OwnerSource interface {
	OwnerID() string
}

// OptionalUser resolves the caller without requiring auth. A bearer token wins
// over the device session; with neither the request continues anonymously.
func OptionalUser(verifier TokenVerifier, owner OwnerSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c); token != "" && verifier != nil {
			id, err := verifier.Verify(c.Request.Context(), token)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
				c.Abort()
				return
			}
			c.Set(CtxFirebaseUID, id.UID)
			c.Set(CtxEmail, id.Email)
			c.Next()
			return
		}

		if owner != nil {
			if uid := owner.OwnerID(); uid != "" {
				c.Set(CtxFirebaseUID, uid)
			}
		}
		c.Next()
	}
}

// BearerToken extracts the Bearer token from the Authorization header.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
