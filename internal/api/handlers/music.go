package handlers

import (
	"context"
	"time"

	"github.com/Conceptual-Machines/chordsmith-api/internal/advisor"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
)

// Player sends note groups to the synthesizer and remembers the last performance
type Player interface {
	Play(ctx context.Context, req playback.Request) (*models.Performance, error)
	Latest(ctx context.Context) (*models.Performance, error)
	TempoBPM() float64
	MaxDuration() time.Duration
	Device() string
	Realtime() bool
}

// Advisor suggests scales and analyzes songs. It never fails on advisor
// trouble; it answers with fallbacks instead.
type Advisor interface {
	SuggestScales(ctx context.Context, chordSymbol string) ([]advisor.ScaleSuggestion, error)
	AnalyzeSong(ctx context.Context, title string) (*advisor.SongAnalysis, error)
}

// Defaults fill request fields the client leaves out
type Defaults struct {
	Duration time.Duration
	Velocity int
	Octave   int
	NoteGap  time.Duration
}

// MusicHandler serves the chord, scale, blues and song endpoints
type MusicHandler struct {
	player   Player
	advisor  Advisor
	defaults Defaults
}

// NewMusicHandler creates the handler
func NewMusicHandler(player Player, adv Advisor, defaults Defaults) *MusicHandler {
	if defaults.Duration <= 0 {
		defaults.Duration = 2500 * time.Millisecond
	}
	if defaults.Velocity <= 0 {
		defaults.Velocity = 96
	}
	if defaults.Octave == 0 {
		defaults.Octave = 4
	}
	return &MusicHandler{
		player:   player,
		advisor:  adv,
		defaults: defaults,
	}
}

func (h *MusicHandler) velocity(v *int) int {
	if v == nil {
		return h.defaults.Velocity
	}
	return *v
}

func (h *MusicHandler) durationSeconds(d *float64) float64 {
	if d == nil {
		return h.defaults.Duration.Seconds()
	}
	return *d
}

func (h *MusicHandler) toBeats(seconds float64) float64 {
	return playback.SecondsToBeats(seconds, h.player.TempoBPM())
}

func (h *MusicHandler) method() string {
	if h.player.Realtime() {
		return methodAudio
	}
	return methodMIDI
}
