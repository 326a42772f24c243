package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

// PlayBluesRequest is the body of POST /play_12bar_blues
type PlayBluesRequest struct {
	Root        string   `json:"root" binding:"required,notename"`
	Quality     string   `json:"quality" binding:"omitempty,max=24"`
	QuickChange bool     `json:"quick_change"`
	TempoBPM    *float64 `json:"tempo" binding:"omitempty,gte=30,lte=300"`
	Velocity    *int     `json:"velocity" binding:"omitempty,min=0,max=127"`
	Rhythm      string   `json:"rhythm" binding:"omitempty,max=16"`
}

// ProgressionStepResponse is one played bar
type ProgressionStepResponse struct {
	models.ProgressionStep
	Notes     []int    `json:"notes"`
	NoteNames []string `json:"note_names"`
}

// ProgressionResponse describes a played progression
type ProgressionResponse struct {
	Success       bool                      `json:"success"`
	Root          string                    `json:"root,omitempty"`
	Form          string                    `json:"form,omitempty"`
	Rhythm        string                    `json:"rhythm,omitempty"`
	TempoBPM      float64                   `json:"tempo_bpm"`
	Progression   []ProgressionStepResponse `json:"progression"`
	Method        string                    `json:"method"`
	Driver        string                    `json:"driver"`
	PerformanceID string                    `json:"performance_id"`
	Message       string                    `json:"message"`
}

// PlayBlues handles POST /play_12bar_blues
func (h *MusicHandler) PlayBlues(c *gin.Context) {
	var req PlayBluesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	steps, err := theory.Generate12BarBlues(req.Root, theory.BluesOptions{
		Quality:     req.Quality,
		QuickChange: req.QuickChange,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	var rhythm *playback.Rhythm
	if req.Rhythm != "" {
		r, ok := playback.LookupRhythm(req.Rhythm)
		if !ok {
			respondError(c, http.StatusBadRequest, CodeParseError, "unknown rhythm: "+req.Rhythm,
				map[string]string{"rhythm": strings.Join(playback.RhythmNames(), ", ")})
			return
		}
		rhythm = &r
	}

	tempo := h.player.TempoBPM()
	if req.TempoBPM != nil {
		tempo = *req.TempoBPM
	}

	form := "standard"
	if req.QuickChange {
		form = "quick_change"
	}
	log.Printf("🎸 12-bar blues in %s (%s, %.0f BPM)", req.Root, form, tempo)

	resp, err := h.playProgression(c, steps, tempo, h.velocity(req.Velocity), rhythm, "12-bar blues in "+req.Root)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	resp.Root = steps[0].Root
	resp.Form = form
	if rhythm != nil {
		resp.Rhythm = rhythm.Name
	}
	c.JSON(http.StatusOK, resp)
}

// playProgression voices the steps and plays them at tempo, comped on the
// rhythm when one is given. Beats are rescaled onto the player's clock so the
// recorded performance keeps the player tempo.
func (h *MusicHandler) playProgression(c *gin.Context, steps []models.ProgressionStep, tempo float64, velocity int, rhythm *playback.Rhythm, label string) (*ProgressionResponse, error) {
	groups, err := theory.VoiceProgression(steps, h.defaults.Octave, velocity)
	if err != nil {
		return nil, err
	}

	played := append([]models.NoteGroup(nil), groups...)
	if rhythm != nil {
		played = playback.Comp(groups, *rhythm)
	}

	if scale := h.player.TempoBPM() / tempo; scale != 1 {
		for i := range played {
			played[i].StartBeats *= scale
			played[i].DurationBeats *= scale
		}
	}

	perf, err := h.player.Play(c.Request.Context(), playback.Request{
		Kind:   models.PerformanceProgression,
		Label:  label,
		Groups: played,
	})
	if err != nil {
		return nil, err
	}

	bars := make([]ProgressionStepResponse, len(steps))
	symbols := make([]string, len(steps))
	for i, step := range steps {
		pitches := make([]theory.Pitch, len(groups[i].Pitches))
		for j, p := range groups[i].Pitches {
			pitches[j] = theory.Pitch(p)
		}
		bars[i] = ProgressionStepResponse{
			ProgressionStep: step,
			Notes:           groups[i].Pitches,
			NoteNames:       theory.Names(pitches),
		}
		symbols[i] = step.Chord
	}

	return &ProgressionResponse{
		Success:       true,
		TempoBPM:      tempo,
		Progression:   bars,
		Method:        h.method(),
		Driver:        h.player.Device(),
		PerformanceID: perf.ID,
		Message:       fmt.Sprintf("Played %s: %s", label, strings.Join(symbols, " | ")),
	}, nil
}
