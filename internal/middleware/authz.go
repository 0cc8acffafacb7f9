package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/authz"
)

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, roleID, ok := Identity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no identity in context"})
			return
		}
		if !authz.IsAdmin(roleID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
