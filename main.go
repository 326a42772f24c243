package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/Conceptual-Machines/chordsmith-api/internal/advisor"
	"github.com/Conceptual-Machines/chordsmith-api/internal/api"
	"github.com/Conceptual-Machines/chordsmith-api/internal/cache"
	"github.com/Conceptual-Machines/chordsmith-api/internal/config"
	"github.com/Conceptual-Machines/chordsmith-api/internal/database"
	"github.com/Conceptual-Machines/chordsmith-api/internal/llm"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
	"github.com/Conceptual-Machines/chordsmith-api/internal/observability"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
	"github.com/Conceptual-Machines/chordsmith-api/internal/storage"
	"github.com/Conceptual-Machines/chordsmith-api/internal/synth"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	shutdownTimeout       = 10 * time.Second
	readHeaderTimeout     = 10 * time.Second
	defaultGeminiModel    = "gemini-2.5-flash"
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          "chordsmith-api@" + releaseVersion,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			EnableLogs:       true,
			Debug:            cfg.Environment != environmentProduction,
			BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
				if event.Request != nil {
					event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
				}
				return event
			},
		}); err != nil {
			log.Printf("Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
			defer sentry.Flush(sentryFlushTimeout)
		}
	} else {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
	}

	observability.InitializeLangfuse(ctx, cfg)

	recorder := setupMetrics(ctx, cfg)

	db, store := setupStorage(cfg)

	suggestionCache := cache.New(ctx, cfg.RedisURL)
	if closer, ok := suggestionCache.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	provider := setupProvider(ctx, cfg)
	model := cfg.AdvisorModel
	if provider != nil && provider.Name() == "gemini" && !strings.HasPrefix(model, "gemini-") {
		model = defaultGeminiModel
	}
	scaleAdvisor, err := advisor.New(provider, suggestionCache, advisor.Options{
		Model:    model,
		Timeout:  cfg.AdvisorTimeout,
		CacheTTL: cfg.AdvisorCacheTTL,
		Metrics:  recorder,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to create advisor:", err)
	}

	device := setupDevice(cfg)
	if closer, ok := device.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	orchestrator := playback.NewOrchestrator(device, store, playback.Options{
		TempoBPM:    cfg.TempoBPM,
		MaxDuration: cfg.MaxPlayback,
		Metrics:     recorder,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.SetupRouter(api.Dependencies{
		Config:          cfg,
		DB:              db,
		Player:          orchestrator,
		Advisor:         scaleAdvisor,
		AdvisorProvider: scaleAdvisor.ProviderName(),
		Renderer:        synth.NewRenderer(cfg.SoundFontPath, cfg.AudioSampleRate),
		Metrics:         recorder,
		Version:         GetVersion(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Printf("🚀 Starting server on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

func setupMetrics(ctx context.Context, cfg *config.Config) metrics.Recorder {
	recorders := metrics.Multi{metrics.NewSentryMetrics()}
	if cfg.IsProduction() {
		cw, err := metrics.NewClient(ctx, cfg.Environment)
		if err != nil {
			log.Printf("⚠️  CloudWatch metrics disabled: %v", err)
		} else {
			recorders = append(recorders, cw)
		}
	}
	return recorders
}

// setupStorage keeps performances in Postgres when DATABASE_URL is set
func setupStorage(cfg *config.Config) (*gorm.DB, playback.Store) {
	if cfg.DatabaseURL == "" {
		log.Println("💾 Performances kept in memory (DATABASE_URL not set)")
		return nil, storage.NewMemoryStore(storage.DefaultHistory)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to run migrations:", err)
	}
	return db, storage.NewGormStore(db)
}

// setupProvider returns nil when no API key is configured; the advisor then
// answers with fallbacks only
func setupProvider(ctx context.Context, cfg *config.Config) llm.Provider {
	factory := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey)
	provider, err := factory.GetProvider(ctx, cfg.AdvisorModel, cfg.AdvisorProvider)
	if err != nil {
		log.Printf("⚠️  Advisor disabled, using static scale suggestions: %v", err)
		return nil
	}
	log.Printf("🤖 Advisor provider: %s", provider.Name())
	return provider
}

func setupDevice(cfg *config.Config) playback.Device {
	if cfg.IsMIDIOnly() {
		log.Println("🎼 Playback mode: MIDI only")
		return synth.NewMIDIDevice()
	}

	device := synth.NewAudioDevice(cfg.SoundFontPath, cfg.AudioSampleRate)
	if err := device.Warm(); err != nil {
		// Requests report SYNTHESIZER_UNAVAILABLE until the SoundFont appears
		log.Printf("⚠️  Audio device not ready (%s): %v", cfg.SoundFontPath, err)
	}
	return device
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string)
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
