package advisor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Conceptual-Machines/chordsmith-api/internal/llm"
	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/prompt"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

// maxSongChords bounds what a model answer can make us play
const maxSongChords = 64

// I-vi-IV-V in C
var fallbackProgression = []theory.TimedChord{
	{Symbol: "C", Beats: theory.BeatsPerBar},
	{Symbol: "Am", Beats: theory.BeatsPerBar},
	{Symbol: "F", Beats: theory.BeatsPerBar},
	{Symbol: "G", Beats: theory.BeatsPerBar},
}

// SongAnalysis is the chord progression of a song
type SongAnalysis struct {
	Title    string                   `json:"title"`
	Artist   string                   `json:"artist,omitempty"`
	Key      string                   `json:"key,omitempty"`
	TempoBPM float64                  `json:"tempo_bpm,omitempty"`
	Steps    []models.ProgressionStep `json:"progression"`
	Skipped  []string                 `json:"skipped_chords,omitempty"`
	Source   string                   `json:"source"`
}

// Chords returns the chord symbols in order
func (s *SongAnalysis) Chords() []string {
	out := make([]string, len(s.Steps))
	for i, step := range s.Steps {
		out[i] = step.Chord
	}
	return out
}

// AnalyzeSong asks the model for the song's chord progression. Chords that do
// not resolve are dropped. If the model is unavailable or nothing valid
// remains the answer is a I-vi-IV-V in C with Source "fallback".
func (a *Advisor) AnalyzeSong(ctx context.Context, title string) (*SongAnalysis, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &theory.ParseError{Input: title, Reason: "song title is empty"}
	}

	started := time.Now()
	key := a.cacheKey("song", strings.ToLower(title))

	var cached SongAnalysis
	if a.loadCached(ctx, key, &cached) && len(cached.Steps) > 0 {
		cached.Source = metrics.SourceCache
		a.record(ctx, operationSong, metrics.SourceCache, started, nil)
		return &cached, nil
	}

	analysis, resp, err := a.requestSong(ctx, title)
	if err != nil {
		var ue *AdvisorUnavailableError
		if !errors.As(err, &ue) {
			ue = unavailable(operationSong, err)
		}
		logger.Warn("Song advisor unavailable, using fallback", logger.Fields{
			"title":    title,
			"provider": a.ProviderName(),
			"error":    ue.Error(),
		})
		a.record(ctx, operationSong, metrics.SourceFallback, started, resp)
		return FallbackSong(title), nil
	}

	a.storeCached(ctx, key, analysis)
	a.record(ctx, operationSong, metrics.SourceAI, started, resp)
	return analysis, nil
}

func (a *Advisor) requestSong(ctx context.Context, title string) (*SongAnalysis, *llm.GenerationResponse, error) {
	system, user, err := a.prompts.BuildSongPrompt(prompt.SongPromptData{Title: title})
	if err != nil {
		return nil, nil, err
	}

	resp, err := a.generate(ctx, operationSong, &llm.GenerationRequest{
		SystemPrompt: system,
		InputArray:   llm.UserMessage(user),
		CFGGrammar:   llm.SongDSLCFG(),
	})
	if err != nil {
		return nil, nil, unavailable(operationSong, err)
	}

	parser, err := NewSongDSLParser()
	if err != nil {
		return nil, resp, err
	}
	header, chords, err := parser.ParseDSL(ctx, resp.RawOutput)
	if err != nil {
		return nil, resp, unavailable(operationSong, err)
	}

	analysis := buildAnalysis(title, header, chords)
	if len(analysis.Steps) == 0 {
		return nil, resp, unavailable(operationSong, errors.New("no valid chord in model output"))
	}
	return analysis, resp, nil
}

// buildAnalysis validates every chord through the chord resolver
func buildAnalysis(title string, header songHeader, chords []theory.TimedChord) *SongAnalysis {
	if len(chords) > maxSongChords {
		chords = chords[:maxSongChords]
	}

	valid := make([]theory.TimedChord, 0, len(chords))
	var skipped []string
	for _, c := range chords {
		if _, err := theory.ParseChord(c.Symbol); err != nil {
			logger.Debug("Discarding invalid chord from song analysis", logger.Fields{"title": title, "chord": c.Symbol})
			skipped = append(skipped, c.Symbol)
			continue
		}
		valid = append(valid, c)
	}

	// every chord was checked above
	steps, _ := theory.ProgressionFromTimedChords(valid)

	if header.Title == "" {
		header.Title = title
	}
	return &SongAnalysis{
		Title:    header.Title,
		Artist:   header.Artist,
		Key:      header.Key,
		TempoBPM: header.Tempo,
		Steps:    steps,
		Skipped:  skipped,
		Source:   metrics.SourceAI,
	}
}

// FallbackSong returns the static progression for title
func FallbackSong(title string) *SongAnalysis {
	steps, _ := theory.ProgressionFromTimedChords(fallbackProgression)
	return &SongAnalysis{
		Title:  title,
		Key:    "C",
		Steps:  steps,
		Source: metrics.SourceFallback,
	}
}
