package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apimiddleware "github.com/Conceptual-Machines/chordsmith-api/internal/api/middleware"
	"github.com/Conceptual-Machines/chordsmith-api/internal/config"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
	"github.com/Conceptual-Machines/chordsmith-api/internal/storage"
)

type silentDevice struct{}

func (silentDevice) Acquire(context.Context) (playback.Session, error) { return silentDevice{}, nil }
func (silentDevice) Realtime() bool                                    { return false }
func (silentDevice) Name() string                                      { return "silent" }
func (silentDevice) NoteOn(_, _, _ int)                                {}
func (silentDevice) NoteOff(_, _ int)                                  {}
func (silentDevice) Close() error                                      { return nil }

func newTestRouter(t *testing.T, authMode string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AuthMode:         authMode,
		JWTSecret:        "test-secret",
		PlaybackMode:     config.PlaybackModeMIDI,
		DefaultVelocity:  96,
		DefaultOctave:    4,
		DefaultDuration:  time.Second,
		MIDIDownloadName: "chord_output.mid",
	}
	orchestrator := playback.NewOrchestrator(silentDevice{}, storage.NewMemoryStore(0), playback.Options{})

	return SetupRouter(Dependencies{
		Config:          cfg,
		Player:          orchestrator,
		AdvisorProvider: "none",
		Version:         "test",
	})
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func chordRequest() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/generate_chord", strings.NewReader(`{"chord":"C","duration":0.1}`))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPublicRoutes(t *testing.T) {
	router := newTestRouter(t, config.AuthModeGateway)

	for _, path := range []string{"/health", "/api/metrics", "/chords", "/scales"} {
		w := serve(router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestNoAuthPlaysChord(t *testing.T) {
	router := newTestRouter(t, config.AuthModeNone)

	w := serve(router, chordRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"chord_notes":[60,64,67]`)

	w = serve(router, httptest.NewRequest(http.MethodGet, "/download_midi", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGatewayAuth(t *testing.T) {
	router := newTestRouter(t, config.AuthModeGateway)

	w := serve(router, chordRequest())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := chordRequest()
	req.Header.Set("X-User-ID", "42")
	w = serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestJWTAuth(t *testing.T) {
	router := newTestRouter(t, config.AuthModeJWT)

	sign := func(secret string, expires time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, apimiddleware.Claims{
			UserID: 7,
			Email:  "player@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(expires),
			},
		})
		s, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign("other", time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", "Bearer " + sign("test-secret", time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"valid", "Bearer " + sign("test-secret", time.Now().Add(time.Hour)), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := chordRequest()
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(router, req)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRequestIDAndCORS(t *testing.T) {
	router := newTestRouter(t, config.AuthModeNone)

	req := httptest.NewRequest(http.MethodOptions, "/generate_chord", nil)
	w := serve(router, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	const id = "0b5c4b7e-3d5a-4b8e-9f4e-6a1f2c3d4e5f"
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", id)
	w = serve(router, req)
	assert.Equal(t, id, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	w = serve(router, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get("X-Request-ID"))
}
