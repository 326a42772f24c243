package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

type chordQualityInfo struct {
	Name      string   `json:"name"`
	Suffix    string   `json:"suffix"`
	Intervals []int    `json:"intervals"`
	Aliases   []string `json:"aliases"`
}

type scaleInfo struct {
	Name    string   `json:"name"`
	Offsets []int    `json:"offsets"`
	Aliases []string `json:"aliases,omitempty"`
}

// ListChords handles GET /chords
func ListChords(c *gin.Context) {
	qualities := theory.Qualities()
	out := make([]chordQualityInfo, 0, len(qualities))
	for _, q := range qualities {
		out = append(out, chordQualityInfo{
			Name:      q.Name,
			Suffix:    q.Suffix,
			Intervals: q.Intervals(),
			Aliases:   theory.QualityAliases(q.Name),
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "qualities": out, "rhythms": playback.RhythmNames()})
}

// ListScales handles GET /scales
func ListScales(c *gin.Context) {
	scales := theory.Scales()
	out := make([]scaleInfo, 0, len(scales))
	for _, s := range scales {
		out = append(out, scaleInfo{
			Name:    s.Name,
			Offsets: s.Offsets(),
			Aliases: s.Aliases,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "scales": out})
}
