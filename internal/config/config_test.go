package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PLAYBACK_MODE", "")
	t.Setenv("PLAYBACK_TEMPO_BPM", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "./piano.sf2", cfg.SoundFontPath)
	assert.Equal(t, PlaybackModeAudio, cfg.PlaybackMode)
	assert.Equal(t, 120.0, cfg.TempoBPM)
	assert.Equal(t, 20*time.Second, cfg.AdvisorTimeout)
	assert.Equal(t, "chord_output.mid", cfg.MIDIDownloadName)
	assert.Equal(t, 96, cfg.DefaultVelocity)
	assert.Equal(t, 2500*time.Millisecond, cfg.DefaultDuration)
	assert.Equal(t, AuthModeNone, cfg.AuthMode)
	assert.False(t, cfg.IsMIDIOnly())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PLAYBACK_MODE", "MIDI")
	t.Setenv("PLAYBACK_NOTE_GAP_SECONDS", "0.25")
	t.Setenv("ADVISOR_PROVIDER", "Gemini")
	t.Setenv("AUTH_MODE", "gateway")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsMIDIOnly())
	assert.Equal(t, 250*time.Millisecond, cfg.NoteGap)
	assert.Equal(t, "gemini", cfg.AdvisorProvider)
	assert.True(t, cfg.IsGatewayMode())
	assert.True(t, cfg.IsProduction())
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("PORT", "")

	tests := []struct {
		name    string
		content string
		port    string
		wantErr bool
	}{
		{"missing file uses defaults", "", "8080", false},
		{"valid file", "port: \"7070\"\nplayback_mode: midi\n", "7070", false},
		{"malformed file", "port: [7070\nplayback_mode: {\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.content), 0o600))
			}

			cfg, err := loadFrom(dir)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.port, cfg.Port)
		})
	}
}
