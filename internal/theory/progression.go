package theory

import (
	"strings"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
)

const (
	// BeatsPerBar is the bar length used by generated progressions (4/4)
	BeatsPerBar = 4.0
	// DefaultBluesQuality is the chord quality of every blues chord unless overridden
	DefaultBluesQuality = "7"
	bluesBars           = 12
)

// Blues degrees as semitones above the root
const (
	degreeI  = 0
	degreeIV = 5
	degreeV  = 7
)

// Standard form: I I I I | IV IV I I | V IV I I
var standardBlues = [bluesBars]int{
	degreeI, degreeI, degreeI, degreeI,
	degreeIV, degreeIV, degreeI, degreeI,
	degreeV, degreeIV, degreeI, degreeI,
}

// Quick change: the second bar moves to IV
var quickChangeBlues = [bluesBars]int{
	degreeI, degreeIV, degreeI, degreeI,
	degreeIV, degreeIV, degreeI, degreeI,
	degreeV, degreeIV, degreeI, degreeI,
}

var degreeNumerals = map[int]string{degreeI: "I", degreeIV: "IV", degreeV: "V"}

// BluesOptions configures Generate12BarBlues
type BluesOptions struct {
	Quality     string // quality token for every chord; empty means dominant 7th
	QuickChange bool
}

// Generate12BarBlues returns the twelve bars of a blues in the given key.
// Each step is one 4-beat bar; step k starts at beat 4k.
func Generate12BarBlues(root string, opts BluesOptions) ([]models.ProgressionStep, error) {
	rootNote, err := ParseNoteName(root)
	if err != nil {
		return nil, err
	}
	if rootNote.HasOctave {
		return nil, parseErr(root, "blues root must be a note name without octave")
	}

	qualityToken := opts.Quality
	if strings.TrimSpace(qualityToken) == "" {
		qualityToken = DefaultBluesQuality
	}
	quality, ok := LookupQuality(qualityToken)
	if !ok {
		return nil, &UnknownChordQualityError{Symbol: root + qualityToken, Quality: qualityToken}
	}

	template := standardBlues
	if opts.QuickChange {
		template = quickChangeBlues
	}

	preferFlats := rootNote.Flat() || rootNote.Class() == PitchClass(5)
	tonic := rootNote.Class()

	steps := make([]models.ProgressionStep, 0, bluesBars)
	for bar, degree := range template {
		name := rootNote.String()
		if degree != degreeI {
			name = tonic.Transpose(degree).Spell(preferFlats)
		}
		steps = append(steps, models.ProgressionStep{
			Bar:           bar + 1,
			Degree:        degreeNumerals[degree],
			Root:          name,
			Chord:         name + quality.Suffix,
			StartBeats:    float64(bar) * BeatsPerBar,
			DurationBeats: BeatsPerBar,
		})
	}
	return steps, nil
}

// TimedChord is a chord symbol held for a number of beats
type TimedChord struct {
	Symbol string
	Beats  float64
}

// ProgressionFromChords lays chord symbols end to end, one per beatsPerChord.
// Every symbol must resolve.
func ProgressionFromChords(symbols []string, beatsPerChord float64) ([]models.ProgressionStep, error) {
	if beatsPerChord <= 0 {
		beatsPerChord = BeatsPerBar
	}
	timed := make([]TimedChord, len(symbols))
	for i, symbol := range symbols {
		timed[i] = TimedChord{Symbol: symbol, Beats: beatsPerChord}
	}
	return ProgressionFromTimedChords(timed)
}

// ProgressionFromTimedChords lays chords end to end, each for its own length.
// A chord without a positive length lasts one bar.
func ProgressionFromTimedChords(chords []TimedChord) ([]models.ProgressionStep, error) {
	steps := make([]models.ProgressionStep, 0, len(chords))
	start := 0.0
	for _, tc := range chords {
		chord, err := ParseChord(tc.Symbol)
		if err != nil {
			return nil, err
		}
		beats := tc.Beats
		if beats <= 0 {
			beats = BeatsPerBar
		}
		steps = append(steps, models.ProgressionStep{
			Bar:           int(start/BeatsPerBar) + 1,
			Root:          chord.RootName,
			Chord:         chord.Name(),
			StartBeats:    start,
			DurationBeats: beats,
		})
		start += beats
	}
	return steps, nil
}

// VoiceProgression resolves each step into a simultaneous note group
func VoiceProgression(steps []models.ProgressionStep, octave, velocity int) ([]models.NoteGroup, error) {
	groups := make([]models.NoteGroup, 0, len(steps))
	for _, step := range steps {
		pitches, err := ResolveChord(step.Chord, octave)
		if err != nil {
			return nil, err
		}
		groups = append(groups, models.NoteGroup{
			Pitches:       Ints(pitches),
			Velocity:      velocity,
			StartBeats:    step.StartBeats,
			DurationBeats: step.DurationBeats,
		})
	}
	return groups, nil
}
