package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chordsmith-api/internal/api/middleware"
	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
)

// PerformanceSource returns the most recent performance
type PerformanceSource interface {
	Latest(ctx context.Context) (*models.Performance, error)
}

// WAVRenderer synthesizes a performance offline
type WAVRenderer interface {
	RenderWAV(w io.WriteSeeker, perf *models.Performance) error
}

// DownloadHandler serves the last performance as a file
type DownloadHandler struct {
	performances PerformanceSource
	renderer     WAVRenderer
	midiName     string
}

// NewDownloadHandler creates the handler. renderer may be nil, in which case
// /download_wav reports the synthesizer as unavailable.
func NewDownloadHandler(performances PerformanceSource, renderer WAVRenderer, midiName string) *DownloadHandler {
	if midiName == "" {
		midiName = "chord_output.mid"
	}
	return &DownloadHandler{
		performances: performances,
		renderer:     renderer,
		midiName:     midiName,
	}
}

// DownloadMIDI handles GET /download_midi
func (h *DownloadHandler) DownloadMIDI(c *gin.Context) {
	perf, err := h.performances.Latest(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	data, err := playback.EncodeSMF(perf.Events, perf.TempoBPM)
	if err != nil {
		respondDomainError(c, fmt.Errorf("failed to encode MIDI: %w", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.midiName))
	c.Header("X-Performance-ID", perf.ID)
	c.Data(http.StatusOK, midiContentType, data)
}

// DownloadWAV handles GET /download_wav
func (h *DownloadHandler) DownloadWAV(c *gin.Context) {
	if h.renderer == nil {
		respondDomainError(c, &playback.SynthesizerUnavailableError{Device: "soundfont", Err: fmt.Errorf("no renderer configured")})
		return
	}

	perf, err := h.performances.Latest(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	// wav.Encode seeks back to patch the header, so render into a file
	tmp, err := os.CreateTemp("", "chordsmith-*.wav")
	if err != nil {
		respondDomainError(c, err)
		return
	}
	defer func() {
		tmp.Close()
		if rerr := os.Remove(tmp.Name()); rerr != nil {
			logger.Warn("Failed to remove rendered WAV", logger.Fields{"path": tmp.Name(), "error": rerr.Error()})
		}
	}()

	if err := h.renderer.RenderWAV(tmp, perf); err != nil {
		respondDomainError(c, err)
		return
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		respondDomainError(c, err)
		return
	}
	info, err := tmp.Stat()
	if err != nil {
		respondDomainError(c, err)
		return
	}

	logger.Info("Rendered WAV", logger.Fields{
		"request_id":     c.GetString(middleware.RequestIDKey),
		"performance_id": perf.ID,
		"bytes":          info.Size(),
	})

	c.Header("X-Performance-ID", perf.ID)
	c.DataFromReader(http.StatusOK, info.Size(), wavContentType, tmp, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", wavDownloadName),
	})
}
