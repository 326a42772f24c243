package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const healthPingTimeout = 2 * time.Second

// HealthHandler reports liveness and the state of the optional database
type HealthHandler struct {
	db       *gorm.DB
	device   string
	advisor  string
	realtime bool
}

// NewHealthHandler creates the handler. db may be nil when performances are
// kept in memory.
func NewHealthHandler(db *gorm.DB, device string, realtime bool, advisorProvider string) *HealthHandler {
	return &HealthHandler{
		db:       db,
		device:   device,
		advisor:  advisorProvider,
		realtime: realtime,
	}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	status := "healthy"
	database := "memory"

	if h.db != nil {
		database = "connected"
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			status = "degraded"
			database = "unreachable"
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": database,
		"playback": gin.H{
			"device":   h.device,
			"realtime": h.realtime,
		},
		"advisor": h.advisor,
	})
}
