package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, key []byte, userID uint) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func jwtRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(JWTAuth(secret))
	router.GET("/protected", func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id)
	})
	return router
}

func getProtected(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthEmptySecretRejectsEverything(t *testing.T) {
	router := jwtRouter("")

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"token signed with empty key", signToken(t, []byte(""), 1)},
		{"token signed with some key", signToken(t, []byte("anything"), 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := getProtected(router, tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
		})
	}
}

func TestJWTAuthSetsUser(t *testing.T) {
	router := jwtRouter("test-secret")

	w := getProtected(router, signToken(t, []byte("test-secret"), 42))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "42", w.Body.String())

	w = getProtected(router, signToken(t, []byte(""), 42))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthReadsCookie(t *testing.T) {
	router := jwtRouter("test-secret")

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, []byte("test-secret"), 9)})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9", w.Body.String())
}
