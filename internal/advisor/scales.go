package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/Conceptual-Machines/chordsmith-api/internal/llm"
	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
	"github.com/Conceptual-Machines/chordsmith-api/internal/prompt"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

// ScaleSuggestion is a validated scale to play over a chord
type ScaleSuggestion struct {
	Name   string   `json:"name"`  // e.g. "G mixolydian"
	Scale  string   `json:"scale"` // table name
	Root   string   `json:"root"`
	Notes  []string `json:"notes"`
	Fit    int      `json:"fit"` // chord tones the scale contains
	Reason string   `json:"reason,omitempty"`
	Source string   `json:"source"`
}

type candidate struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// parent scales used when the model has nothing usable to say
var fallbackScales = map[string][]string{
	"major":           {"major", "major pentatonic"},
	"major6":          {"major", "major pentatonic"},
	"major7":          {"major", "lydian"},
	"major9":          {"major", "lydian"},
	"add9":            {"major", "major pentatonic"},
	"power":           {"major", "minor pentatonic"},
	"minor":           {"natural minor", "minor pentatonic"},
	"minor6":          {"dorian", "melodic minor"},
	"minor7":          {"dorian", "minor pentatonic"},
	"minor9":          {"dorian", "natural minor"},
	"minormajor7":     {"melodic minor", "harmonic minor"},
	"dominant7":       {"mixolydian", "blues"},
	"dominant9":       {"mixolydian", "bebop dominant"},
	"dominant11":      {"mixolydian"},
	"dominant13":      {"mixolydian", "lydian dominant"},
	"dominant7sus4":   {"mixolydian"},
	"sus2":            {"mixolydian", "major"},
	"sus4":            {"mixolydian", "major"},
	"diminished":      {"diminished", "locrian"},
	"diminished7":     {"diminished"},
	"halfdiminished7": {"locrian"},
	"augmented":       {"whole tone"},
	"augmented7":      {"whole tone"},
}

// SuggestScales returns scales to improvise over the chord, best first.
// Only a malformed chord symbol is an error; an unavailable model yields
// the chord's parent scales with Source "fallback".
func (a *Advisor) SuggestScales(ctx context.Context, chordSymbol string) ([]ScaleSuggestion, error) {
	chord, err := theory.ParseChord(chordSymbol)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	key := a.cacheKey("scales", chord.Name())

	var cached []ScaleSuggestion
	if a.loadCached(ctx, key, &cached) && len(cached) > 0 {
		for i := range cached {
			cached[i].Source = metrics.SourceCache
		}
		a.record(ctx, operationScales, metrics.SourceCache, started, nil)
		return cached, nil
	}

	suggestions, resp, err := a.requestScales(ctx, chord)
	if err != nil {
		var ue *AdvisorUnavailableError
		if !errors.As(err, &ue) {
			ue = unavailable(operationScales, err)
		}
		logger.Warn("Scale advisor unavailable, using fallback", logger.Fields{
			"chord":    chord.Name(),
			"provider": a.ProviderName(),
			"error":    ue.Error(),
		})
		a.record(ctx, operationScales, metrics.SourceFallback, started, resp)
		return FallbackScales(chord), nil
	}

	a.storeCached(ctx, key, suggestions)
	a.record(ctx, operationScales, metrics.SourceAI, started, resp)
	return suggestions, nil
}

func (a *Advisor) requestScales(ctx context.Context, chord theory.Chord) ([]ScaleSuggestion, *llm.GenerationResponse, error) {
	system, user, err := a.prompts.BuildScalePrompt(scalePromptData(chord))
	if err != nil {
		return nil, nil, err
	}

	resp, err := a.generate(ctx, operationScales, &llm.GenerationRequest{
		SystemPrompt: system,
		InputArray:   llm.UserMessage(user),
		OutputSchema: llm.ScaleSuggestionOutputSchema(),
	})
	if err != nil {
		return nil, nil, unavailable(operationScales, err)
	}

	suggestions := validateCandidates(chord, parseCandidates(resp.RawOutput))
	if len(suggestions) == 0 {
		return nil, resp, unavailable(operationScales, errors.New("no valid scale in model output"))
	}
	return suggestions, resp, nil
}

func scalePromptData(chord theory.Chord) prompt.ScalePromptData {
	flats := preferFlats(chord.RootName)
	tones := make([]string, 0, len(chord.Tones()))
	for _, pc := range chord.Tones() {
		tones = append(tones, pc.Spell(flats))
	}
	names := make([]string, 0, len(theory.Scales()))
	for _, s := range theory.Scales() {
		names = append(names, s.Name)
	}
	return prompt.ScalePromptData{
		Chord:   chord.Name(),
		Root:    chord.RootName,
		Quality: chord.Quality.Name,
		Tones:   tones,
		Scales:  names,
	}
}

// parseCandidates reads the structured JSON answer, or failing that splits
// free text into one candidate per line or comma
func parseCandidates(raw string) []candidate {
	raw = strings.TrimSpace(raw)

	var structured struct {
		Scales []candidate `json:"scales"`
	}
	if err := json.Unmarshal([]byte(raw), &structured); err == nil && len(structured.Scales) > 0 {
		return structured.Scales
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err == nil {
		out := make([]candidate, 0, len(names))
		for _, n := range names {
			out = append(out, candidate{Name: n})
		}
		return out
	}

	var out []candidate
	for _, line := range strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == ',' || r == ';' }) {
		line = strings.TrimLeftFunc(line, func(r rune) bool {
			return unicode.IsDigit(r) || unicode.IsSpace(r) || r == '.' || r == ')' || r == '-' || r == '*'
		})
		name, reason := line, ""
		for _, sep := range []string{":", " - ", " because ", "("} {
			if i := strings.Index(name, sep); i > 0 {
				name, reason = name[:i], strings.TrimSpace(strings.TrimRight(line[i+len(sep):], ")"))
				break
			}
		}
		name = strings.TrimSpace(strings.Trim(name, "\"'`*"))
		if name != "" {
			out = append(out, candidate{Name: name, Reason: reason})
		}
	}
	return out
}

// validateCandidates drops names outside the scale table and duplicates.
// Scales holding every chord tone move ahead of those that clash; otherwise
// the model's order is kept.
func validateCandidates(chord theory.Chord, candidates []candidate) []ScaleSuggestion {
	seen := make(map[string]bool)
	var out []ScaleSuggestion

	for _, c := range candidates {
		ref, err := theory.ParseScaleName(c.Name)
		if err != nil {
			logger.Debug("Discarding unknown scale suggestion", logger.Fields{"chord": chord.Name(), "scale": c.Name})
			continue
		}

		root, rootName := chord.Root, chord.RootName
		if ref.HasRoot {
			root, rootName = ref.Root, ref.RootName
		}

		s := newSuggestion(chord, ref.Spec, root, rootName, metrics.SourceAI)
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		s.Reason = c.Reason
		out = append(out, s)
	}

	full := len(chord.Tones())
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Fit == full && out[j].Fit != full
	})
	return out
}

// FallbackScales returns the chord's parent scales
func FallbackScales(chord theory.Chord) []ScaleSuggestion {
	names, ok := fallbackScales[chord.Quality.Name]
	if !ok {
		names = []string{"major"}
	}

	out := make([]ScaleSuggestion, 0, len(names))
	for _, name := range names {
		spec, err := theory.LookupScale(name)
		if err != nil {
			continue
		}
		out = append(out, newSuggestion(chord, spec, chord.Root, chord.RootName, metrics.SourceFallback))
	}
	return out
}

func newSuggestion(chord theory.Chord, spec theory.ScaleSpec, root theory.PitchClass, rootName, source string) ScaleSuggestion {
	flats := preferFlats(rootName)
	notes := make([]string, 0, len(spec.Offsets()))
	for _, off := range spec.Offsets() {
		notes = append(notes, root.Transpose(off).Spell(flats))
	}
	return ScaleSuggestion{
		Name:   rootName + " " + spec.Name,
		Scale:  spec.Name,
		Root:   rootName,
		Notes:  notes,
		Fit:    theory.ScaleFit(chord, spec, root),
		Source: source,
	}
}

func preferFlats(rootName string) bool {
	return rootName == "F" || (len(rootName) > 1 && strings.HasSuffix(rootName, "b"))
}
