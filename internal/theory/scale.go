package theory

import (
	"strings"
)

// ScaleSpec is an entry of the scale table. Offsets are strictly increasing
// semitones in [0,12) starting at 0.
type ScaleSpec struct {
	Name    string
	Aliases []string
	offsets []int
}

// Offsets returns a copy of the scale's semitone offsets
func (s ScaleSpec) Offsets() []int {
	out := make([]int, len(s.offsets))
	copy(out, s.offsets)
	return out
}

// Contains reports whether pc belongs to the scale built on root
func (s ScaleSpec) Contains(root, pc PitchClass) bool {
	rel := mod12(int(pc) - int(root))
	for _, off := range s.offsets {
		if off == rel {
			return true
		}
	}
	return false
}

var scaleTable = []ScaleSpec{
	{Name: "major", Aliases: []string{"ionian"}, offsets: []int{0, 2, 4, 5, 7, 9, 11}},
	{Name: "natural minor", Aliases: []string{"minor", "aeolian"}, offsets: []int{0, 2, 3, 5, 7, 8, 10}},
	{Name: "harmonic minor", offsets: []int{0, 2, 3, 5, 7, 8, 11}},
	{Name: "melodic minor", Aliases: []string{"jazz minor"}, offsets: []int{0, 2, 3, 5, 7, 9, 11}},
	{Name: "dorian", offsets: []int{0, 2, 3, 5, 7, 9, 10}},
	{Name: "phrygian", offsets: []int{0, 1, 3, 5, 7, 8, 10}},
	{Name: "lydian", offsets: []int{0, 2, 4, 6, 7, 9, 11}},
	{Name: "mixolydian", Aliases: []string{"dominant"}, offsets: []int{0, 2, 4, 5, 7, 9, 10}},
	{Name: "locrian", offsets: []int{0, 1, 3, 5, 6, 8, 10}},
	{Name: "phrygian dominant", Aliases: []string{"spanish phrygian"}, offsets: []int{0, 1, 4, 5, 7, 8, 10}},
	{Name: "lydian dominant", Aliases: []string{"lydian b7", "overtone"}, offsets: []int{0, 2, 4, 6, 7, 9, 10}},
	{Name: "altered", Aliases: []string{"super locrian", "superlocrian"}, offsets: []int{0, 1, 3, 4, 6, 8, 10}},
	{Name: "major pentatonic", Aliases: []string{"pentatonic", "pentatonic major"}, offsets: []int{0, 2, 4, 7, 9}},
	{Name: "minor pentatonic", Aliases: []string{"pentatonic minor"}, offsets: []int{0, 3, 5, 7, 10}},
	{Name: "blues", Aliases: []string{"minor blues"}, offsets: []int{0, 3, 5, 6, 7, 10}},
	{Name: "major blues", offsets: []int{0, 2, 3, 4, 7, 9}},
	{Name: "whole tone", Aliases: []string{"wholetone", "augmented"}, offsets: []int{0, 2, 4, 6, 8, 10}},
	{Name: "diminished", Aliases: []string{"whole half diminished", "whole half", "octatonic"}, offsets: []int{0, 2, 3, 5, 6, 8, 9, 11}},
	{Name: "half whole diminished", Aliases: []string{"dominant diminished", "half whole"}, offsets: []int{0, 1, 3, 4, 6, 7, 9, 10}},
	{Name: "bebop dominant", Aliases: []string{"bebop"}, offsets: []int{0, 2, 4, 5, 7, 9, 10, 11}},
	{Name: "chromatic", offsets: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}},
}

var scaleIndex = buildScaleIndex()

func buildScaleIndex() map[string]int {
	index := make(map[string]int)
	for i, spec := range scaleTable {
		if len(spec.offsets) == 0 || spec.offsets[0] != 0 {
			panic("theory: scale must start at the tonic: " + spec.Name)
		}
		for j := 1; j < len(spec.offsets); j++ {
			if spec.offsets[j] <= spec.offsets[j-1] || spec.offsets[j] >= semitones {
				panic("theory: scale offsets not strictly increasing within an octave: " + spec.Name)
			}
		}
		for _, name := range append([]string{spec.Name}, spec.Aliases...) {
			key := normalizeScaleName(name)
			if _, dup := index[key]; dup {
				panic("theory: duplicate scale name " + key)
			}
			index[key] = i
		}
	}
	return index
}

// normalizeScaleName folds case, separators and a trailing "scale"/"mode"
func normalizeScaleName(name string) string {
	name = strings.ToLower(name)
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	fields := strings.Fields(name)
	if n := len(fields); n > 1 && (fields[n-1] == "scale" || fields[n-1] == "mode") {
		fields = fields[:n-1]
	}
	return strings.Join(fields, " ")
}

// LookupScale finds a scale by name or alias, case-insensitively
func LookupScale(name string) (ScaleSpec, error) {
	i, ok := scaleIndex[normalizeScaleName(name)]
	if !ok {
		return ScaleSpec{}, &UnknownScaleError{Name: name}
	}
	return scaleTable[i], nil
}

// Scales lists the scale table
func Scales() []ScaleSpec {
	out := make([]ScaleSpec, len(scaleTable))
	copy(out, scaleTable)
	return out
}

// ScaleRef is a scale name optionally preceded by a root, e.g. "D dorian"
type ScaleRef struct {
	Spec     ScaleSpec
	Root     PitchClass
	RootName string
	HasRoot  bool
	// RootShift moves the start octave for Cb and B# style roots
	RootShift int
}

// ParseScaleName accepts "dorian", "D dorian" or "A minor pentatonic scale"
func ParseScaleName(s string) (ScaleRef, error) {
	if spec, err := LookupScale(s); err == nil {
		return ScaleRef{Spec: spec}, nil
	}

	fields := strings.Fields(s)
	if len(fields) >= 2 {
		root, err := ParseNoteName(fields[0])
		if err == nil && !root.HasOctave {
			spec, err := LookupScale(strings.Join(fields[1:], " "))
			if err == nil {
				return ScaleRef{Spec: spec, Root: root.Class(), RootName: root.String(), HasRoot: true, RootShift: root.OctaveShift()}, nil
			}
		}
	}
	return ScaleRef{}, &UnknownScaleError{Name: s}
}

// ResolveScale returns the scale on root across the given number of octaves,
// starting in startOctave and closing on the tonic above the last octave.
// The result is strictly ascending.
func ResolveScale(root PitchClass, scaleName string, octaves, startOctave int) ([]Pitch, error) {
	spec, err := LookupScale(scaleName)
	if err != nil {
		return nil, err
	}
	return spec.Pitches(root, octaves, startOctave)
}

// Pitches builds the ascending pitch sequence of the scale
func (s ScaleSpec) Pitches(root PitchClass, octaves, startOctave int) ([]Pitch, error) {
	if octaves < 1 {
		return nil, parseErr(s.Name, "octaves must be at least 1, got %d", octaves)
	}

	base := PitchAt(root, startOctave)
	pitches := make([]Pitch, 0, octaves*len(s.offsets)+1)
	for k := 0; k < octaves; k++ {
		for _, off := range s.offsets {
			pitches = append(pitches, base+Pitch(k*semitones+off))
		}
	}
	pitches = append(pitches, base+Pitch(octaves*semitones))

	for _, p := range pitches {
		if !p.Valid() {
			return nil, rangeErr(root.Name()+" "+s.Name, int(p))
		}
	}
	return pitches, nil
}

// ScaleFit counts how many of the chord's tones the scale on root contains
func ScaleFit(chord Chord, spec ScaleSpec, root PitchClass) int {
	fit := 0
	for _, tone := range chord.Tones() {
		if spec.Contains(root, tone) {
			fit++
		}
	}
	return fit
}
