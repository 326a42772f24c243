package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GatewayAuth trusts user info from gateway headers (X-User-ID, X-User-Email, X-User-Role).
// This is used when the API runs behind a gateway that has already
// authenticated the caller.
//
// When AUTH_MODE=gateway, the API trusts these headers unconditionally.
// This should ONLY be used with proper network isolation.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr := c.GetHeader("X-User-ID")
		if userIDStr == "" {
			abortUnauthorized(c, "Missing X-User-ID header from gateway")
			return
		}

		// Parse user ID (could be numeric or string depending on gateway)
		var userID uint
		if id, err := strconv.ParseUint(userIDStr, 10, 64); err == nil {
			userID = uint(id)
		}

		c.Set(UserIDKey, userID)
		c.Set(UserIDStrKey, userIDStr)
		c.Set(UserEmailKey, c.GetHeader("X-User-Email"))
		c.Set(UserRoleKey, c.GetHeader("X-User-Role"))

		c.Next()
	}
}

// GetUserID returns the caller's ID as set by any of the auth middlewares
func GetUserID(c *gin.Context) (string, bool) {
	id := c.GetString(UserIDStrKey)
	return id, id != ""
}

// GetUserRole returns the caller's role if the auth mode provides one
func GetUserRole(c *gin.Context) (string, bool) {
	role := c.GetString(UserRoleKey)
	return role, role != ""
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
		"request_id": c.GetString(RequestIDKey),
	})
}
