package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civicpulse-be/models"
)

// Principal is the authenticated actor for the current request
type Principal struct {
	UserID string
	Role   models.UserRole
}

// CurrentPrincipal returns the principal placed in the context by
// AuthMiddleware
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return Principal{}, false
	}
	role, ok := c.Get(ContextRole)
	if !ok {
		return Principal{}, false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return Principal{}, false
	}
	roleStr, ok := role.(string)
	if !ok {
		return Principal{}, false
	}

	return Principal{UserID: id, Role: models.UserRole(roleStr)}, true
}

// RequireRole gates a route to principals holding the given role. The
// response is a bare deny, no resource detail.
func RequireRole(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := CurrentPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			c.Abort()
			return
		}
		if principal.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
