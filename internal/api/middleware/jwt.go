package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
)

const bearerPrefix = "Bearer"

var errEmptyJWTSecret = errors.New("JWT_SECRET is empty")

// Claims are the HS256 token claims accepted when AUTH_MODE=jwt
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuth validates bearer tokens signed with secret and attaches the
// caller to the context. Tokens are read from the Authorization header
// first, then from the access_token cookie. An empty secret rejects every
// request, since any token signed with an empty HMAC key would verify.
func JWTAuth(secret string) gin.HandlerFunc {
	if secret == "" {
		logger.Error("JWT auth enabled without a secret", errEmptyJWTSecret, logger.Fields{"auth_mode": "jwt"})
		return func(c *gin.Context) {
			abortUnauthorized(c, "Authentication is not configured")
		}
	}

	key := []byte(secret)
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abortUnauthorized(c, "Authorization required")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserIDStrKey, strconv.FormatUint(uint64(claims.UserID), 10))
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Split(header, " ")
		if len(parts) == 2 && parts[0] == bearerPrefix {
			return parts[1]
		}
	}
	token, _ := c.Cookie("access_token")
	return token
}
