package metrics

import (
	"context"
	"time"
)

// Advisor result sources
const (
	SourceAI       = "ai"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

// Recorder is implemented by every metrics sink
type Recorder interface {
	RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration)
	RecordPlayback(ctx context.Context, kind, device string, notes int, duration time.Duration, err error)
	RecordAdvisorCall(ctx context.Context, provider, operation, source string, duration time.Duration)
	RecordTokenUsage(ctx context.Context, model string, totalTokens, inputTokens, outputTokens int)
}

// Multi fans every record out to all sinks
type Multi []Recorder

func (m Multi) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	for _, r := range m {
		r.RecordAPIRequest(ctx, endpoint, statusCode, duration)
	}
}

func (m Multi) RecordPlayback(ctx context.Context, kind, device string, notes int, duration time.Duration, err error) {
	for _, r := range m {
		r.RecordPlayback(ctx, kind, device, notes, duration, err)
	}
}

func (m Multi) RecordAdvisorCall(ctx context.Context, provider, operation, source string, duration time.Duration) {
	for _, r := range m {
		r.RecordAdvisorCall(ctx, provider, operation, source, duration)
	}
}

func (m Multi) RecordTokenUsage(ctx context.Context, model string, totalTokens, inputTokens, outputTokens int) {
	for _, r := range m {
		r.RecordTokenUsage(ctx, model, totalTokens, inputTokens, outputTokens)
	}
}

// Nop discards everything. Used in tests and when no sink is configured.
type Nop struct{}

func (Nop) RecordAPIRequest(context.Context, string, int, time.Duration) {}
func (Nop) RecordPlayback(context.Context, string, string, int, time.Duration, error) {}
func (Nop) RecordAdvisorCall(context.Context, string, string, string, time.Duration) {}
func (Nop) RecordTokenUsage(context.Context, string, int, int, int) {}
