package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	PlaybackModeAudio = "audio"
	PlaybackModeMIDI  = "midi"

	AuthModeNone    = "none"
	AuthModeGateway = "gateway"
	AuthModeJWT     = "jwt"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string
	Port        string

	// LLM API Keys
	OpenAIAPIKey string // OpenAI API key for GPT models
	GeminiAPIKey string // Google Gemini API key

	// Advisor
	AdvisorProvider string // "openai" or "gemini"
	AdvisorModel    string
	AdvisorTimeout  time.Duration
	AdvisorCacheTTL time.Duration

	// Playback
	SoundFontPath    string
	PlaybackMode     string // "audio" or "midi"
	TempoBPM         float64
	NoteGap          time.Duration
	MaxPlayback      time.Duration
	AudioSampleRate  int
	DefaultVelocity  int
	DefaultDuration  time.Duration
	DefaultOctave    int
	MIDIDownloadName string

	// Storage
	DatabaseURL string // empty keeps performances in memory
	RedisURL    string // empty keeps advisor cache in memory

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse

	// Auth mode
	// - "none": No auth (self-hosted, local dev)
	// - "gateway": Trust X-User-* headers from an upstream gateway
	// - "jwt": Verify HS256 bearer tokens signed with JWTSecret
	AuthMode  string
	JWTSecret string
}

// Load reads configuration from the environment and an optional config.yaml.
// Environment variables win over the file; defaults fill the rest. A missing
// config.yaml is fine, an unreadable or malformed one is an error.
func Load() (*Config, error) {
	return loadFrom(".", "./config")
}

func loadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("advisor_provider", "openai")
	v.SetDefault("advisor_model", "gpt-5-mini")
	v.SetDefault("advisor_timeout_seconds", 20)
	v.SetDefault("advisor_cache_ttl_seconds", 3600)
	v.SetDefault("soundfont_path", "./piano.sf2")
	v.SetDefault("playback_mode", PlaybackModeAudio)
	v.SetDefault("playback_tempo_bpm", 120.0)
	v.SetDefault("playback_note_gap_seconds", 0.0)
	v.SetDefault("playback_max_seconds", 60)
	v.SetDefault("audio_sample_rate", 44100)
	v.SetDefault("default_velocity", 96)
	v.SetDefault("default_duration_seconds", 2.5)
	v.SetDefault("default_octave", 4)
	v.SetDefault("midi_download_name", "chord_output.mid")
	v.SetDefault("langfuse_host", "https://cloud.langfuse.com")
	v.SetDefault("langfuse_enabled", false)
	v.SetDefault("auth_mode", AuthModeNone) // Default to no auth for self-hosted
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Environment:       v.GetString("environment"),
		Port:              v.GetString("port"),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		GeminiAPIKey:      v.GetString("gemini_api_key"),
		AdvisorProvider:   strings.ToLower(v.GetString("advisor_provider")),
		AdvisorModel:      v.GetString("advisor_model"),
		AdvisorTimeout:    seconds(v.GetFloat64("advisor_timeout_seconds")),
		AdvisorCacheTTL:   seconds(v.GetFloat64("advisor_cache_ttl_seconds")),
		SoundFontPath:     v.GetString("soundfont_path"),
		PlaybackMode:      strings.ToLower(v.GetString("playback_mode")),
		TempoBPM:          v.GetFloat64("playback_tempo_bpm"),
		NoteGap:           seconds(v.GetFloat64("playback_note_gap_seconds")),
		MaxPlayback:       seconds(v.GetFloat64("playback_max_seconds")),
		AudioSampleRate:   v.GetInt("audio_sample_rate"),
		DefaultVelocity:   v.GetInt("default_velocity"),
		DefaultDuration:   seconds(v.GetFloat64("default_duration_seconds")),
		DefaultOctave:     v.GetInt("default_octave"),
		MIDIDownloadName:  v.GetString("midi_download_name"),
		DatabaseURL:       v.GetString("database_url"),
		RedisURL:          v.GetString("redis_url"),
		SentryDSN:         v.GetString("sentry_dsn"),
		LangfusePublicKey: v.GetString("langfuse_public_key"),
		LangfuseSecretKey: v.GetString("langfuse_secret_key"),
		LangfuseHost:      v.GetString("langfuse_host"),
		LangfuseEnabled:   v.GetBool("langfuse_enabled"),
		AuthMode:          strings.ToLower(v.GetString("auth_mode")),
		JWTSecret:         v.GetString("jwt_secret"),
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// IsGatewayMode returns true if running behind an auth gateway
func (c *Config) IsGatewayMode() bool {
	return c.AuthMode == AuthModeGateway
}

// IsMIDIOnly returns true when playback should skip the audio device
func (c *Config) IsMIDIOnly() bool {
	return c.PlaybackMode == PlaybackModeMIDI
}

// IsProduction returns true in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
