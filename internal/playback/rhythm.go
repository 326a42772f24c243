package playback

import (
	"math"
	"sort"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
)

// BeatsPerBar is the bar length used for comping; every form here is 4/4
const BeatsPerBar = 4.0

// Rhythm is a one-bar comping pattern
type Rhythm struct {
	Name string
	// Offsets within the bar, in beats
	Offsets []float64
	// Velocity multipliers, one per offset
	Accents []float64
	// Fraction of the gap to the next hit that the chord is held
	Articulation float64
}

const (
	articulationFull   = 1.0
	articulationHigh   = 0.9
	articulationMedium = 0.85
	articulationShort  = 0.4
)

var rhythms = map[string]Rhythm{
	"whole": {
		Name:         "whole",
		Offsets:      []float64{0},
		Accents:      []float64{1.0},
		Articulation: articulationFull,
	},
	"half": {
		Name:         "half",
		Offsets:      []float64{0, 2},
		Accents:      []float64{1.0, 0.9},
		Articulation: articulationFull,
	},
	"quarters": {
		Name:         "quarters",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.8, 0.9, 0.8},
		Articulation: articulationHigh,
	},
	"8ths": {
		Name:         "8ths",
		Offsets:      []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5},
		Accents:      []float64{1.0, 0.7, 0.9, 0.7, 0.95, 0.7, 0.9, 0.7},
		Articulation: articulationMedium,
	},
	// Triplet feel: the off-beat lands two thirds through each beat
	"shuffle": {
		Name:         "shuffle",
		Offsets:      []float64{0, 2.0 / 3, 1, 5.0 / 3, 2, 8.0 / 3, 3, 11.0 / 3},
		Accents:      []float64{1.0, 0.8, 0.9, 0.8, 1.0, 0.8, 0.9, 0.8},
		Articulation: articulationHigh,
	},
	"swing": {
		Name:         "swing",
		Offsets:      []float64{0, 2.0 / 3, 1, 5.0 / 3, 2, 8.0 / 3, 3, 11.0 / 3},
		Accents:      []float64{1.0, 0.7, 0.9, 0.7, 0.95, 0.7, 0.9, 0.7},
		Articulation: articulationMedium,
	},
	"tresillo": {
		Name:         "tresillo",
		Offsets:      []float64{0, 1.5, 3},
		Accents:      []float64{1.0, 0.9, 0.95},
		Articulation: articulationHigh,
	},
	"offbeat": {
		Name:         "offbeat",
		Offsets:      []float64{0.5, 1.5, 2.5, 3.5},
		Accents:      []float64{0.9, 0.85, 0.9, 0.85},
		Articulation: articulationMedium,
	},
	"anticipation": {
		Name:         "anticipation",
		Offsets:      []float64{0, 1, 1.75, 3, 3.75},
		Accents:      []float64{1.0, 0.8, 0.9, 0.85, 0.9},
		Articulation: articulationMedium,
	},
	"stabs": {
		Name:         "stabs",
		Offsets:      []float64{0, 1, 2, 3},
		Accents:      []float64{1.0, 0.85, 0.95, 0.85},
		Articulation: articulationShort,
	},
}

// LookupRhythm returns the named comping pattern
func LookupRhythm(name string) (Rhythm, bool) {
	r, ok := rhythms[name]
	return r, ok
}

// RhythmNames lists the available patterns in sorted order
func RhythmNames() []string {
	names := make([]string, 0, len(rhythms))
	for name := range rhythms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Comp restrikes each group on the pattern's hits for every bar the group
// spans. Hits falling past the end of a group are dropped and no hit is held
// beyond it.
func Comp(groups []models.NoteGroup, rhythm Rhythm) []models.NoteGroup {
	var out []models.NoteGroup
	for _, g := range groups {
		end := g.StartBeats + g.DurationBeats
		for bar := g.StartBeats; bar < end; bar += BeatsPerBar {
			for i, offset := range rhythm.Offsets {
				start := bar + offset
				if start >= end {
					break
				}

				next := bar + BeatsPerBar
				if i+1 < len(rhythm.Offsets) {
					next = bar + rhythm.Offsets[i+1]
				}
				length := math.Min((next-start)*rhythm.Articulation, end-start)

				out = append(out, models.NoteGroup{
					Pitches:       append([]int(nil), g.Pitches...),
					Velocity:      accent(g.Velocity, rhythm.Accents, i),
					StartBeats:    start,
					DurationBeats: length,
				})
			}
		}
	}
	return out
}

func accent(velocity int, accents []float64, i int) int {
	if velocity == 0 || i >= len(accents) {
		return velocity
	}
	v := int(math.Round(float64(velocity) * accents[i]))
	if v < 1 {
		return 1
	}
	if v > maxMIDIValue {
		return maxMIDIValue
	}
	return v
}
