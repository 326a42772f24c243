package middleware

import (
	"log"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
)

const (
	httpStatusInternalServerError = http.StatusInternalServerError
	sentryFlushTimeout            = 2 * time.Second

	// RequestIDKey is the gin context key holding the request ID
	RequestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestTracking adds request ID and logging to all requests.
// An incoming X-Request-ID is reused so IDs survive a proxy hop.
func RequestTracking(recorder metrics.Recorder) gin.HandlerFunc {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetTag("request_id", requestID)
		}

		start := time.Now()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		logger.LogAPIRequest(c, duration, statusCode, nil)

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		recorder.RecordAPIRequest(c.Request.Context(), endpoint, statusCode, duration)
	}
}

// SentryMiddleware returns the Sentry middleware with custom configuration
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         sentryFlushTimeout,
	})
}

// RecoverWithSentry turns a panic into the JSON error envelope. It runs
// outside SentryMiddleware, which reports the panic and re-panics, so it
// does not report again.
func RecoverWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("❌ Panic recovered (request %s, %s %s): %v",
					c.GetString(RequestIDKey), c.Request.Method, c.Request.URL.Path, err)

				c.AbortWithStatusJSON(httpStatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
					"request_id": c.GetString(RequestIDKey),
				})
			}
		}()
		c.Next()
	}
}
