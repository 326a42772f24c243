package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Conceptual-Machines/chordsmith-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/chordsmith-api/internal/api/middleware"
	"github.com/Conceptual-Machines/chordsmith-api/internal/config"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
)

// Dependencies are the services the routes are wired to
type Dependencies struct {
	Config          *config.Config
	DB              *gorm.DB // nil when performances are kept in memory
	Player          handlers.Player
	Advisor         handlers.Advisor // nil plays fallbacks only
	AdvisorProvider string
	Renderer        handlers.WAVRenderer
	Metrics         metrics.Recorder
	Version         string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	if err := handlers.RegisterValidators(); err != nil {
		log.Printf("⚠️  Custom validators not registered: %v", err)
	}

	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.Metrics))

	router.Use(apimiddleware.CORS())

	// Health and metrics stay public
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Player.Device(), deps.Player.Realtime(), deps.AdvisorProvider)
	router.GET("/health", healthHandler.HealthCheck)

	metricsHandler := handlers.NewMetricsHandler(deps.Version, map[string]interface{}{
		"playback_device": deps.Player.Device(),
		"playback_mode":   cfg.PlaybackMode,
		"tempo_bpm":       deps.Player.TempoBPM(),
		"advisor":         deps.AdvisorProvider,
		"auth_mode":       cfg.AuthMode,
	})
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	router.GET("/chords", handlers.ListChords)
	router.GET("/scales", handlers.ListScales)

	music := handlers.NewMusicHandler(deps.Player, deps.Advisor, handlers.Defaults{
		Duration: cfg.DefaultDuration,
		Velocity: cfg.DefaultVelocity,
		Octave:   cfg.DefaultOctave,
		NoteGap:  cfg.NoteGap,
	})
	downloads := handlers.NewDownloadHandler(deps.Player, deps.Renderer, cfg.MIDIDownloadName)

	playbackRoutes := router.Group("/")
	playbackRoutes.Use(authMiddleware(cfg))
	{
		playbackRoutes.POST("/generate_chord", music.GenerateChord)
		playbackRoutes.POST("/play_12bar_blues", music.PlayBlues)
		playbackRoutes.POST("/analyze_song", music.AnalyzeSong)
		playbackRoutes.POST("/play_scale", music.PlayScale)
		playbackRoutes.GET("/download_midi", downloads.DownloadMIDI)
		playbackRoutes.GET("/download_wav", downloads.DownloadWAV)
	}

	return router
}

func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	switch cfg.AuthMode {
	case config.AuthModeGateway:
		log.Println("🔐 Auth mode: gateway (trusting X-User-* headers)")
		return apimiddleware.GatewayAuth()
	case config.AuthModeJWT:
		log.Println("🔐 Auth mode: jwt")
		return apimiddleware.JWTAuth(cfg.JWTSecret)
	default:
		log.Println("🔓 Auth mode: none")
		return apimiddleware.NoAuth()
	}
}
