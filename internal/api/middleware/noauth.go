package middleware

import (
	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middlewares
const (
	UserIDKey    = "user_id"
	UserIDStrKey = "user_id_str"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"
)

// NoAuth is a pass-through middleware for when AUTH_MODE=none.
// It allows all requests without authentication.
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Set a dummy user ID for logging purposes
		c.Set(UserIDKey, uint(0))
		c.Set(UserIDStrKey, "anonymous")
		c.Next()
	}
}
