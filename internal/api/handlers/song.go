package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chordsmith-api/internal/advisor"
	"github.com/Conceptual-Machines/chordsmith-api/internal/api/middleware"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
)

const (
	minSongTempo = 30
	beatEpsilon  = 1e-9
)

// AnalyzeSongRequest is the body of POST /analyze_song
type AnalyzeSongRequest struct {
	Title    string `json:"title" binding:"required,max=200"`
	Play     bool   `json:"play"`
	Velocity *int   `json:"velocity" binding:"omitempty,min=0,max=127"`
}

// SongResponse is the analyzed progression, with playback details when the
// client asked for it to be played
type SongResponse struct {
	Success bool `json:"success"`
	*advisor.SongAnalysis
	Played    *ProgressionResponse `json:"played,omitempty"`
	Truncated bool                 `json:"truncated,omitempty"`
	Fallback  bool                 `json:"fallback"`
}

// AnalyzeSong handles POST /analyze_song
func (h *MusicHandler) AnalyzeSong(c *gin.Context) {
	var req AnalyzeSongRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var analysis *advisor.SongAnalysis
	if h.advisor == nil {
		analysis = advisor.FallbackSong(req.Title)
	} else {
		var err error
		analysis, err = h.advisor.AnalyzeSong(c.Request.Context(), req.Title)
		if err != nil {
			respondDomainError(c, err)
			return
		}
	}

	userID, _ := middleware.GetUserID(c)
	log.Printf("🎼 Song analysis for user %s: %q, %d chords (%s)", userID, analysis.Title, len(analysis.Steps), analysis.Source)

	resp := SongResponse{
		Success:      true,
		SongAnalysis: analysis,
		Fallback:     analysis.Source == metrics.SourceFallback,
	}

	if req.Play && len(analysis.Steps) > 0 {
		tempo := analysis.TempoBPM
		if tempo < minSongTempo {
			tempo = h.player.TempoBPM()
		}
		steps := fitPlayback(analysis.Steps, tempo, h.player.MaxDuration())
		if len(steps) < len(analysis.Steps) {
			log.Printf("✂️  Playing %d of %d chords of %q to stay within %s",
				len(steps), len(analysis.Steps), analysis.Title, h.player.MaxDuration())
			resp.Truncated = true
		}

		played, err := h.playProgression(c, steps, tempo, h.velocity(req.Velocity), nil, analysis.Title)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		resp.Played = played
	}

	c.JSON(http.StatusOK, resp)
}

// fitPlayback returns the leading steps that end within limit at tempo. A
// first step that alone exceeds the limit is returned as is so playback
// reports the limit.
func fitPlayback(steps []models.ProgressionStep, tempo float64, limit time.Duration) []models.ProgressionStep {
	if limit <= 0 {
		return steps
	}
	maxBeats := playback.SecondsToBeats(limit.Seconds(), tempo) + beatEpsilon

	n := 0
	for n < len(steps) && steps[n].StartBeats+steps[n].DurationBeats <= maxBeats {
		n++
	}
	if n == 0 {
		return steps
	}
	return steps[:n]
}
