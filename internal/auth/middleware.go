package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity headers are set by the upstream gateway after it validates the
// session; by the time a request reaches this service they are trusted.
const (
	HeaderUserID = "X-User-ID"
	HeaderRole   = "X-User-Role"
)

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		ctx := WithUser(c.Request.Context(), userID, c.GetHeader(HeaderRole))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
