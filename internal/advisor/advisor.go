package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Conceptual-Machines/chordsmith-api/internal/cache"
	"github.com/Conceptual-Machines/chordsmith-api/internal/llm"
	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
	"github.com/Conceptual-Machines/chordsmith-api/internal/observability"
	"github.com/Conceptual-Machines/chordsmith-api/internal/prompt"
)

const (
	operationScales = "suggest_scales"
	operationSong   = "analyze_song"

	defaultTimeout  = 20 * time.Second
	defaultCacheTTL = time.Hour
)

var errNoProvider = errors.New("no language model configured")

// Options configures the advisor
type Options struct {
	Model         string
	ReasoningMode string
	Timeout       time.Duration
	CacheTTL      time.Duration
	Metrics       metrics.Recorder
}

// Advisor asks a language model for scale suggestions and song progressions
// and validates every answer against the theory tables. It never fails
// because the model is unavailable; it falls back to static answers instead.
type Advisor struct {
	provider llm.Provider
	cache    cache.Cache
	prompts  *prompt.Builder
	opts     Options
}

// New creates an advisor. provider may be nil, in which case every answer is
// the static fallback.
func New(provider llm.Provider, c cache.Cache, opts Options) (*Advisor, error) {
	prompts, err := prompt.NewPromptBuilder()
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	if c == nil {
		c = cache.NewMemory()
	}
	if provider == nil {
		log.Println("⚠️  Advisor has no language model; static suggestions only")
	}
	return &Advisor{provider: provider, cache: c, prompts: prompts, opts: opts}, nil
}

// ProviderName returns the configured provider, or "none"
func (a *Advisor) ProviderName() string {
	if a.provider == nil {
		return "none"
	}
	return a.provider.Name()
}

// generate sends one request to the provider under the advisor timeout and
// traces it in Langfuse
func (a *Advisor) generate(ctx context.Context, operation string, request *llm.GenerationRequest) (*llm.GenerationResponse, error) {
	if a.provider == nil {
		return nil, errNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	request.Model = a.opts.Model
	request.ReasoningMode = a.opts.ReasoningMode

	trace := observability.GetClient().StartTrace(ctx, "advisor."+operation, map[string]interface{}{
		"provider": a.provider.Name(),
		"model":    a.opts.Model,
	})
	defer trace.Finish()
	gen := trace.Generation(operation, nil)
	defer gen.Finish()

	resp, err := a.provider.Generate(ctx, request)
	if err != nil {
		gen.SetLevel("ERROR")
		return nil, err
	}

	if resp.Model == "" {
		resp.Model = a.opts.Model
	}
	gen.LogAdvisorResponse(request.InputArray, resp, map[string]interface{}{"operation": operation})
	trace.SetMetadata(map[string]interface{}{
		"response_model": resp.Model,
		"total_tokens":   resp.Usage.TotalTokens,
	})
	a.opts.Metrics.RecordTokenUsage(ctx, resp.Model,
		int(resp.Usage.TotalTokens), int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens))
	return resp, nil
}

// record logs and meters a finished advisor call
func (a *Advisor) record(ctx context.Context, operation, source string, started time.Time, resp *llm.GenerationResponse) {
	duration := time.Since(started)
	var usage map[string]interface{}
	if resp != nil {
		usage = resp.Usage.Map()
	}
	logger.LogAdvisorCall(ctx, a.ProviderName(), operation, source, duration, usage, nil)
	a.opts.Metrics.RecordAdvisorCall(ctx, a.ProviderName(), operation, source, duration)
}

func (a *Advisor) cacheKey(parts ...string) string {
	key := a.ProviderName() + ":" + a.opts.Model
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// loadCached decodes a cached JSON value into out
func (a *Advisor) loadCached(ctx context.Context, key string, out interface{}) bool {
	data, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("Advisor cache read failed", logger.Fields{"key": key, "error": err.Error()})
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("Advisor cache entry is corrupt", logger.Fields{"key": key, "error": err.Error()})
		return false
	}
	return true
}

func (a *Advisor) storeCached(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, a.opts.CacheTTL); err != nil {
		logger.Warn("Advisor cache write failed", logger.Fields{"key": key, "error": fmt.Sprint(err)})
	}
}
