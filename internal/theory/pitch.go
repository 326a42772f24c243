package theory

import (
	"strconv"
	"strings"
)

// MIDI range and the register used when no octave is given (C4 = 60)
const (
	MinPitch      = 0
	MaxPitch      = 127
	DefaultOctave = 4
	semitones     = 12
)

// Pitch is a MIDI note number
type Pitch int

// PitchClass is a pitch without octave, 0 (C) through 11 (B)
type PitchClass int

var sharpNames = [semitones]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
var flatNames = [semitones]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// Note semitone offsets from C
var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Valid reports whether p is a playable MIDI note
func (p Pitch) Valid() bool {
	return p >= MinPitch && p <= MaxPitch
}

// Class returns the pitch class of p
func (p Pitch) Class() PitchClass {
	return PitchClass(mod12(int(p)))
}

// Octave returns the scientific octave number (C4 = 60)
func (p Pitch) Octave() int {
	return int(p)/semitones - 1
}

// Name returns the sharp spelling with octave, e.g. "F#3"
func (p Pitch) Name() string {
	return p.Class().Name() + strconv.Itoa(p.Octave())
}

// PitchAt places a pitch class in an octave. C4 = 60.
func PitchAt(pc PitchClass, octave int) Pitch {
	return Pitch((octave+1)*semitones + int(pc))
}

// Name returns the sharp spelling of the pitch class
func (pc PitchClass) Name() string {
	return sharpNames[mod12(int(pc))]
}

// Spell returns the pitch class name using flats when preferFlats is set
func (pc PitchClass) Spell(preferFlats bool) string {
	if preferFlats {
		return flatNames[mod12(int(pc))]
	}
	return sharpNames[mod12(int(pc))]
}

// Transpose moves the pitch class by n semitones, wrapping at the octave
func (pc PitchClass) Transpose(n int) PitchClass {
	return PitchClass(mod12(int(pc) + n))
}

// NoteName is a parsed note spelling such as "Bb", "F#3" or "C-1"
type NoteName struct {
	Letter     byte
	Accidental int // -2..2, flats negative
	Octave     int
	HasOctave  bool
}

// Class returns the pitch class the spelling denotes
func (n NoteName) Class() PitchClass {
	return PitchClass(mod12(letterOffsets[n.Letter] + n.Accidental))
}

// OctaveShift is -1 for spellings that cross below C (Cb, Cbb) and +1 for
// spellings that cross above B (B#, B##). Cb4 is 59 and B#4 is 72.
func (n NoteName) OctaveShift() int {
	v := letterOffsets[n.Letter] + n.Accidental
	switch {
	case v < 0:
		return -1
	case v >= semitones:
		return 1
	}
	return 0
}

// String returns the spelling without octave
func (n NoteName) String() string {
	var b strings.Builder
	b.WriteByte(n.Letter)
	for i := 0; i < n.Accidental; i++ {
		b.WriteByte('#')
	}
	for i := 0; i > n.Accidental; i-- {
		b.WriteByte('b')
	}
	return b.String()
}

// Flat reports whether the spelling uses flats
func (n NoteName) Flat() bool {
	return n.Accidental < 0
}

// Pitch resolves the spelling in the given octave. Accidentals may cross
// the octave boundary: Cb4 is 59, B#3 is 60.
func (n NoteName) Pitch(octave int) (Pitch, error) {
	p := (octave+1)*semitones + letterOffsets[n.Letter] + n.Accidental
	if p < MinPitch || p > MaxPitch {
		return 0, rangeErr(n.String()+strconv.Itoa(octave), p)
	}
	return Pitch(p), nil
}

// parseNoteHead reads a root letter and accidentals from the front of s.
// It returns the note and the unconsumed remainder.
func parseNoteHead(s string) (NoteName, string, bool) {
	if s == "" {
		return NoteName{}, s, false
	}
	letter := s[0]
	if letter >= 'a' && letter <= 'g' {
		letter -= 'a' - 'A'
	}
	if _, ok := letterOffsets[letter]; !ok {
		return NoteName{}, s, false
	}

	n := NoteName{Letter: letter}
	rest := s[1:]
	for len(rest) > 0 && n.Accidental > -2 && n.Accidental < 2 {
		switch {
		case strings.HasPrefix(rest, "#"):
			n.Accidental++
			rest = rest[1:]
		case strings.HasPrefix(rest, "♯"):
			n.Accidental++
			rest = rest[len("♯"):]
		case strings.HasPrefix(rest, "♭"):
			n.Accidental--
			rest = rest[len("♭"):]
		case rest[0] == 'b' && n.Accidental <= 0:
			n.Accidental--
			rest = rest[1:]
		default:
			return n, rest, true
		}
	}
	return n, rest, true
}

// ParseNoteName parses "C", "Eb", "F#3" or "C-1". The octave is optional.
func ParseNoteName(s string) (NoteName, error) {
	input := s
	s = strings.TrimSpace(s)
	n, rest, ok := parseNoteHead(s)
	if !ok {
		return NoteName{}, parseErr(input, "expected a note letter A-G")
	}
	if rest == "" {
		return n, nil
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return NoteName{}, parseErr(input, "invalid octave %q", rest)
	}
	n.Octave = octave
	n.HasOctave = true
	return n, nil
}

// ParseNoteSequence turns note names into a strictly ascending pitch
// sequence. Names without an octave are placed at the first pitch above the
// previous note (the first one in defaultOctave). A name with an explicit
// octave that does not ascend is rejected.
func ParseNoteSequence(names []string, defaultOctave int) ([]Pitch, error) {
	pitches := make([]Pitch, 0, len(names))
	prev := Pitch(MinPitch - 1)

	for i, name := range names {
		n, err := ParseNoteName(name)
		if err != nil {
			return nil, err
		}

		var p Pitch
		if n.HasOctave {
			p, err = n.Pitch(n.Octave)
			if err != nil {
				return nil, err
			}
			if p <= prev {
				return nil, parseErr(name, "note %d (%s) does not ascend from %s", i+1, p.Name(), prev.Name())
			}
		} else {
			octave := defaultOctave
			if i > 0 {
				octave = prev.Octave()
			}
			p, err = n.Pitch(octave)
			if err != nil {
				return nil, err
			}
			for p <= prev {
				p += semitones
			}
			if !p.Valid() {
				return nil, rangeErr(name, int(p))
			}
		}

		pitches = append(pitches, p)
		prev = p
	}
	return pitches, nil
}

// Ints converts pitches to plain MIDI note numbers
func Ints(ps []Pitch) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = int(p)
	}
	return out
}

// Names returns the sharp spelling with octave of each pitch
func Names(ps []Pitch) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name()
	}
	return out
}

func mod12(n int) int {
	return ((n % semitones) + semitones) % semitones
}
