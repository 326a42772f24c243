package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics handles custom metrics for Sentry
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a new Sentry metrics client
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{
		enabled: true, // Always enabled if Sentry is configured
	}
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetTag("success", fmt.Sprintf("%t", statusCode < successStatusCodeThreshold))

	span.SetData("duration_ms", duration.Milliseconds())
	span.SetData("endpoint", endpoint)
	span.SetData("status_code", statusCode)

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}

	span.Description = fmt.Sprintf("API Request: %s", endpoint)
}

// RecordPlayback records one playback through the synthesizer
func (m *SentryMetrics) RecordPlayback(ctx context.Context, kind, device string, notes int, duration time.Duration, err error) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "playback.perform")
	defer span.Finish()

	span.SetTag("kind", kind)
	span.SetTag("device", device)
	span.SetTag("success", fmt.Sprintf("%t", err == nil))
	span.SetData("notes", notes)
	span.SetData("duration_ms", duration.Milliseconds())

	switch {
	case err == nil:
		span.Status = sentry.SpanStatusOK
	case ctx.Err() != nil:
		span.Status = sentry.SpanStatusDeadlineExceeded
	default:
		span.Status = sentry.SpanStatusUnavailable
	}

	span.Description = fmt.Sprintf("Playback: %s via %s", kind, device)
}

// RecordAdvisorCall records a language-model advisor call and whether its answer was used
func (m *SentryMetrics) RecordAdvisorCall(ctx context.Context, provider, operation, source string, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "advisor."+operation)
	defer span.Finish()

	span.SetTag("provider", provider)
	span.SetTag("source", source)
	span.SetData("duration_ms", duration.Milliseconds())

	if source == SourceFallback {
		span.Status = sentry.SpanStatusUnavailable
	} else {
		span.Status = sentry.SpanStatusOK
	}

	span.Description = fmt.Sprintf("Advisor %s: %s (%s)", operation, provider, source)
}

// RecordTokenUsage records LLM token usage metrics
func (m *SentryMetrics) RecordTokenUsage(ctx context.Context, model string, totalTokens, inputTokens, outputTokens int) {
	if !m.enabled {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("llm.model", model)
		transaction.SetData("llm.total_tokens", totalTokens)
		transaction.SetData("llm.input_tokens", inputTokens)
		transaction.SetData("llm.output_tokens", outputTokens)
	}

	span := sentry.StartSpan(ctx, "llm.token_usage")
	defer span.Finish()

	span.SetTag("model", model)
	span.SetData("total_tokens", totalTokens)
	span.SetData("input_tokens", inputTokens)
	span.SetData("output_tokens", outputTokens)

	span.Status = sentry.SpanStatusOK
	span.Description = fmt.Sprintf("Token Usage: %s", model)
}
