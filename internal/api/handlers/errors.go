package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Conceptual-Machines/chordsmith-api/internal/api/middleware"
	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

// Error codes returned in the error envelope
const (
	CodeParseError             = "PARSE_ERROR"
	CodeUnknownChordQuality    = "UNKNOWN_CHORD_QUALITY"
	CodeUnknownScale           = "UNKNOWN_SCALE"
	CodeInvalidSequence        = "INVALID_SEQUENCE"
	CodeSynthesizerUnavailable = "SYNTHESIZER_UNAVAILABLE"
	CodePlaybackTimeout        = "PLAYBACK_TIMEOUT"
	CodeRequestCancelled       = "REQUEST_CANCELLED"
	CodeNotFound               = "NOT_FOUND"
	CodeInternal               = "INTERNAL_ERROR"
)

// ErrorBody is the error part of the envelope
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details map[string]string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Success: false,
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		RequestID: c.GetString(middleware.RequestIDKey),
	})
}

// respondBindError reports a request body that failed to decode or validate
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondError(c, http.StatusBadRequest, CodeParseError, "Validation failed", formatValidationErrors(validationErrors))
		return
	}
	if errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, CodeParseError, "Request body is required", nil)
		return
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		respondError(c, http.StatusBadRequest, CodeParseError, "Invalid request body: "+err.Error(), nil)
		return
	}
	respondError(c, http.StatusBadRequest, CodeParseError, err.Error(), nil)
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		details[e.Field()] = e.Tag()
	}
	return details
}

// respondDomainError maps music-theory and playback errors onto the envelope
func respondDomainError(c *gin.Context, err error) {
	var (
		parseErr       *theory.ParseError
		qualityErr     *theory.UnknownChordQualityError
		scaleErr       *theory.UnknownScaleError
		sequenceErr    *playback.InvalidSequenceError
		unavailableErr *playback.SynthesizerUnavailableError
	)

	switch {
	case errors.As(err, &parseErr):
		respondError(c, http.StatusBadRequest, CodeParseError, err.Error(), nil)
	case errors.As(err, &qualityErr):
		respondError(c, http.StatusUnprocessableEntity, CodeUnknownChordQuality, err.Error(), nil)
	case errors.As(err, &scaleErr):
		respondError(c, http.StatusUnprocessableEntity, CodeUnknownScale, err.Error(), nil)
	case errors.As(err, &sequenceErr):
		respondError(c, http.StatusBadRequest, CodeInvalidSequence, err.Error(), nil)
	case errors.As(err, &unavailableErr):
		logger.Warn("Synthesizer unavailable", logger.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"device":     unavailableErr.Device,
			"error":      err.Error(),
		})
		respondError(c, http.StatusServiceUnavailable, CodeSynthesizerUnavailable, err.Error(), nil)
	case errors.Is(err, playback.ErrNoPerformance):
		respondError(c, http.StatusNotFound, CodeNotFound, "Nothing has been played yet", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, CodePlaybackTimeout, "Playback did not finish in time", nil)
	case errors.Is(err, context.Canceled):
		respondError(c, http.StatusRequestTimeout, CodeRequestCancelled, "Request was cancelled", nil)
	default:
		logger.Error("Request failed", err, logger.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"path":       c.Request.URL.Path,
		})
		respondError(c, http.StatusInternalServerError, CodeInternal, "Internal server error", nil)
	}
}
