package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chordsmith-api/internal/advisor"
	"github.com/Conceptual-Machines/chordsmith-api/internal/api/middleware"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

// GenerateChordRequest is the body of POST /generate_chord. Either chord is
// set, or root_note and chord_type are; both empty plays C major.
type GenerateChordRequest struct {
	Chord         string   `json:"chord" binding:"omitempty,max=32,chordsymbol"`
	RootNote      string   `json:"root_note" binding:"omitempty,notename"`
	ChordType     string   `json:"chord_type" binding:"omitempty,max=24"`
	Duration      *float64 `json:"duration" binding:"omitempty,gt=0,lte=30"`
	Velocity      *int     `json:"velocity" binding:"omitempty,min=0,max=127"`
	SuggestScales *bool    `json:"suggest_scales"`
}

// symbol returns the chord symbol to resolve
func (r GenerateChordRequest) symbol() string {
	if s := strings.TrimSpace(r.Chord); s != "" {
		return s
	}
	root := strings.TrimSpace(r.RootNote)
	if root == "" {
		root = "C"
	}
	quality := strings.TrimSpace(r.ChordType)
	if quality == "" {
		quality = "major"
	}
	return root + " " + quality
}

// ChordResponse describes the chord that was played
type ChordResponse struct {
	Success         bool                      `json:"success"`
	Chord           string                    `json:"chord"`
	RootNote        string                    `json:"root_note"`
	ChordType       string                    `json:"chord_type"`
	ChordNotes      []int                     `json:"chord_notes"`
	NoteNames       []string                  `json:"note_names"`
	Intervals       []int                     `json:"intervals"`
	Duration        float64                   `json:"duration"`
	Velocity        int                       `json:"velocity"`
	Method          string                    `json:"method"`
	Driver          string                    `json:"driver"`
	PerformanceID   string                    `json:"performance_id"`
	SuggestedScales []advisor.ScaleSuggestion `json:"suggested_scales"`
	AdvisorSource   string                    `json:"advisor_source,omitempty"`
	Message         string                    `json:"message"`
}

type suggestionResult struct {
	scales []advisor.ScaleSuggestion
	err    error
}

// GenerateChord handles POST /generate_chord. The chord sounds for the
// requested duration; scale suggestions are fetched while it plays.
func (h *MusicHandler) GenerateChord(c *gin.Context) {
	var req GenerateChordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	symbol := req.symbol()
	chord, err := theory.ParseChord(symbol)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	pitches, err := chord.Pitches(h.defaults.Octave)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	userID, _ := middleware.GetUserID(c)
	log.Printf("🎹 Chord request from user %s: %s", userID, chord.Name())

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var suggestions chan suggestionResult
	if h.advisor != nil && (req.SuggestScales == nil || *req.SuggestScales) {
		suggestions = make(chan suggestionResult, 1)
		go func() {
			scales, err := h.advisor.SuggestScales(ctx, chord.Name())
			suggestions <- suggestionResult{scales: scales, err: err}
		}()
	}

	seconds := h.durationSeconds(req.Duration)
	velocity := h.velocity(req.Velocity)
	notes := theory.Ints(pitches)

	perf, err := h.player.Play(ctx, playback.Request{
		Kind:   models.PerformanceChord,
		Label:  chord.Name(),
		Groups: playback.Simultaneous(notes, h.toBeats(seconds), velocity),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	names := theory.Names(pitches)
	resp := ChordResponse{
		Success:         true,
		Chord:           chord.Name(),
		RootNote:        chord.RootName,
		ChordType:       chord.Quality.Name,
		ChordNotes:      notes,
		NoteNames:       names,
		Intervals:       chord.Quality.Intervals(),
		Duration:        seconds,
		Velocity:        velocity,
		Method:          h.method(),
		Driver:          h.player.Device(),
		PerformanceID:   perf.ID,
		SuggestedScales: []advisor.ScaleSuggestion{},
		Message:         fmt.Sprintf("Played %s chord: %s", chord.Name(), strings.Join(names, ", ")),
	}

	if suggestions != nil {
		result := <-suggestions
		if result.err == nil && len(result.scales) > 0 {
			resp.SuggestedScales = result.scales
			resp.AdvisorSource = result.scales[0].Source
		}
	}

	c.JSON(http.StatusOK, resp)
}
