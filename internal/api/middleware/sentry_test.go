package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureSentryEvents counts events and drops them before they are sent
func captureSentryEvents(t *testing.T) *atomic.Int32 {
	t.Helper()
	var count atomic.Int32
	err := sentry.Init(sentry.ClientOptions{
		Dsn: "https://public@sentry.example.com/1",
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			count.Add(1)
			return nil
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { sentry.CurrentHub().BindClient(nil) })
	return &count
}

func TestPanicIsReportedOnce(t *testing.T) {
	events := captureSentryEvents(t)
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RecoverWithSentry())
	router.Use(SentryMiddleware())
	router.Use(RequestTracking(nil))
	router.GET("/boom", func(c *gin.Context) {
		panic("voicing table corrupted")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, int32(1), events.Load())
}

func TestCORSDoesNotAllowCredentialsWithWildcard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}
