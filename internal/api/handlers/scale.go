package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

const defaultScaleNoteSecs = 0.5

// PlayScaleRequest is the body of POST /play_scale. Either scale_notes lists
// the notes, or scale names a scale from the table ("D dorian", or "dorian"
// with root).
type PlayScaleRequest struct {
	ScaleNotes []string `json:"scale_notes" binding:"omitempty,max=64,dive,notename"`
	Scale      string   `json:"scale" binding:"omitempty,max=48"`
	Root       string   `json:"root" binding:"omitempty,notename"`
	Octaves    int      `json:"octaves" binding:"omitempty,min=1,max=4"`
	Octave     *int     `json:"octave" binding:"omitempty,min=0,max=8"`
	Duration   *float64 `json:"duration" binding:"omitempty,gt=0,lte=30"`
	Velocity   *int     `json:"velocity" binding:"omitempty,min=0,max=127"`
}

// ScaleResponse describes the scale that was played
type ScaleResponse struct {
	Success       bool      `json:"success"`
	Scale         string    `json:"scale,omitempty"`
	Notes         []int     `json:"notes"`
	NoteNames     []string  `json:"note_names"`
	StartTimes    []float64 `json:"start_times"` // seconds from the first note
	Duration      float64   `json:"duration"`
	Gap           float64   `json:"gap"`
	Velocity      int       `json:"velocity"`
	Method        string    `json:"method"`
	Driver        string    `json:"driver"`
	PerformanceID string    `json:"performance_id"`
	Message       string    `json:"message"`
}

// PlayScale handles POST /play_scale. Notes sound one after another in
// strictly ascending order.
func (h *MusicHandler) PlayScale(c *gin.Context) {
	var req PlayScaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	octave := h.defaults.Octave
	if req.Octave != nil {
		octave = *req.Octave
	}

	pitches, label, err := resolveScaleRequest(req, octave)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	seconds := req.seconds()
	gap := h.defaults.NoteGap.Seconds()
	velocity := h.velocity(req.Velocity)
	notes := theory.Ints(pitches)

	perf, err := h.player.Play(c.Request.Context(), playback.Request{
		Kind:   models.PerformanceScale,
		Label:  label,
		Groups: playback.Sequential(notes, h.toBeats(seconds), h.toBeats(gap), velocity),
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}

	starts := make([]float64, len(notes))
	for i := range starts {
		starts[i] = float64(i) * (seconds + gap)
	}

	names := theory.Names(pitches)
	c.JSON(http.StatusOK, ScaleResponse{
		Success:       true,
		Scale:         label,
		Notes:         notes,
		NoteNames:     names,
		StartTimes:    starts,
		Duration:      seconds,
		Gap:           gap,
		Velocity:      velocity,
		Method:        h.method(),
		Driver:        h.player.Device(),
		PerformanceID: perf.ID,
		Message:       fmt.Sprintf("Played %d notes: %s", len(names), strings.Join(names, ", ")),
	})
}

func (r PlayScaleRequest) seconds() float64 {
	if r.Duration == nil {
		return defaultScaleNoteSecs
	}
	return *r.Duration
}

// resolveScaleRequest returns the ascending pitches and a display label
func resolveScaleRequest(req PlayScaleRequest, octave int) ([]theory.Pitch, string, error) {
	if len(req.ScaleNotes) > 0 {
		pitches, err := theory.ParseNoteSequence(req.ScaleNotes, octave)
		if err != nil {
			return nil, "", err
		}
		return pitches, strings.Join(req.ScaleNotes, " "), nil
	}

	if strings.TrimSpace(req.Scale) == "" {
		return nil, "", &theory.ParseError{Input: "", Reason: "scale_notes or scale is required"}
	}

	ref, err := theory.ParseScaleName(req.Scale)
	if err != nil {
		return nil, "", err
	}

	root, rootName, shift := ref.Root, ref.RootName, ref.RootShift
	if !ref.HasRoot {
		if req.Root == "" {
			return nil, "", &theory.ParseError{Input: req.Scale, Reason: "scale needs a root, e.g. \"D dorian\""}
		}
		note, err := theory.ParseNoteName(req.Root)
		if err != nil {
			return nil, "", err
		}
		root, rootName, shift = note.Class(), note.String(), note.OctaveShift()
		if note.HasOctave && req.Octave == nil {
			octave = note.Octave
		}
	}

	octaves := req.Octaves
	if octaves == 0 {
		octaves = 1
	}
	pitches, err := ref.Spec.Pitches(root, octaves, octave+shift)
	if err != nil {
		return nil, "", err
	}
	return pitches, rootName + " " + ref.Spec.Name, nil
}
