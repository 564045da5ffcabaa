package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/skillpivot/api/internal/app/models"
)

// Keys under which JWTAuth stores the caller's identity.
const (
	ContextUserID = "userID"
	ContextEmail  = "email"
	ContextRole   = "role"
)

// CurrentUserID returns the authenticated user's id.
func CurrentUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// CurrentRole returns the authenticated user's role.
func CurrentRole(c *gin.Context) (models.Role, bool) {
	value, exists := c.Get(ContextRole)
	if !exists {
		return "", false
	}
	role, ok := value.(models.Role)
	return role, ok
}
