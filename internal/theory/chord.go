package theory

import (
	"strings"
)

// IntervalSet is an ascending list of semitone offsets from a chord root
type IntervalSet []int

// Quality is a chord quality from the fixed quality table
type Quality struct {
	Name      string // canonical name, e.g. "dominant7"
	Suffix    string // symbol suffix, e.g. "7"
	intervals IntervalSet
}

// Intervals returns a copy of the quality's interval set
func (q Quality) Intervals() IntervalSet {
	out := make(IntervalSet, len(q.intervals))
	copy(out, q.intervals)
	return out
}

// Quality table. Order is the listing order for /chords.
var qualityTable = []struct {
	quality Quality
	aliases []string
}{
	{Quality{"major", "", IntervalSet{0, 4, 7}}, []string{"", "maj", "major", "M"}},
	{Quality{"minor", "m", IntervalSet{0, 3, 7}}, []string{"m", "min", "minor", "-"}},
	{Quality{"diminished", "dim", IntervalSet{0, 3, 6}}, []string{"dim", "diminished", "°", "o"}},
	{Quality{"augmented", "aug", IntervalSet{0, 4, 8}}, []string{"aug", "augmented", "+"}},
	{Quality{"power", "5", IntervalSet{0, 7}}, []string{"5", "power"}},
	{Quality{"sus2", "sus2", IntervalSet{0, 2, 7}}, []string{"sus2", "suspended2"}},
	{Quality{"sus4", "sus4", IntervalSet{0, 5, 7}}, []string{"sus4", "sus", "suspended4", "suspended"}},
	{Quality{"major6", "6", IntervalSet{0, 4, 7, 9}}, []string{"6", "maj6", "major6"}},
	{Quality{"minor6", "m6", IntervalSet{0, 3, 7, 9}}, []string{"m6", "min6", "minor6"}},
	{Quality{"dominant7", "7", IntervalSet{0, 4, 7, 10}}, []string{"7", "dom7", "dominant7", "dominant", "7th"}},
	{Quality{"major7", "maj7", IntervalSet{0, 4, 7, 11}}, []string{"maj7", "major7", "M7", "Δ", "Δ7"}},
	{Quality{"minor7", "m7", IntervalSet{0, 3, 7, 10}}, []string{"m7", "min7", "minor7", "-7"}},
	{Quality{"minormajor7", "mMaj7", IntervalSet{0, 3, 7, 11}}, []string{"mMaj7", "mmaj7", "minmaj7", "minormajor7", "mM7"}},
	{Quality{"diminished7", "dim7", IntervalSet{0, 3, 6, 9}}, []string{"dim7", "diminished7", "°7", "o7"}},
	{Quality{"halfdiminished7", "m7b5", IntervalSet{0, 3, 6, 10}}, []string{"m7b5", "min7b5", "ø", "ø7", "half-diminished", "halfdiminished", "halfdiminished7"}},
	{Quality{"augmented7", "aug7", IntervalSet{0, 4, 8, 10}}, []string{"aug7", "7#5", "+7", "augmented7"}},
	{Quality{"dominant7sus4", "7sus4", IntervalSet{0, 5, 7, 10}}, []string{"7sus4", "7sus"}},
	{Quality{"add9", "add9", IntervalSet{0, 4, 7, 14}}, []string{"add9", "add2"}},
	{Quality{"dominant9", "9", IntervalSet{0, 4, 7, 10, 14}}, []string{"9", "dom9", "dominant9"}},
	{Quality{"major9", "maj9", IntervalSet{0, 4, 7, 11, 14}}, []string{"maj9", "major9", "M9"}},
	{Quality{"minor9", "m9", IntervalSet{0, 3, 7, 10, 14}}, []string{"m9", "min9", "minor9"}},
	{Quality{"dominant11", "11", IntervalSet{0, 4, 7, 10, 14, 17}}, []string{"11", "dom11", "dominant11"}},
	{Quality{"dominant13", "13", IntervalSet{0, 4, 7, 10, 14, 21}}, []string{"13", "dom13", "dominant13"}},
}

var qualityIndex = buildQualityIndex()

func buildQualityIndex() map[string]int {
	index := make(map[string]int)
	for i, entry := range qualityTable {
		iv := entry.quality.intervals
		if len(iv) == 0 || iv[0] != 0 {
			panic("theory: interval set must start at the root: " + entry.quality.Name)
		}
		for j := 1; j < len(iv); j++ {
			if iv[j] <= iv[j-1] {
				panic("theory: interval set not ascending: " + entry.quality.Name)
			}
		}
		index[entry.quality.Name] = i
		for _, alias := range entry.aliases {
			if _, dup := index[alias]; dup && alias != entry.quality.Name {
				panic("theory: duplicate chord alias " + alias)
			}
			index[alias] = i
		}
	}
	return index
}

// LookupQuality finds a quality by token. Tokens are matched exactly first so
// that "M7" and "m7" stay distinct, then case-insensitively.
func LookupQuality(token string) (Quality, bool) {
	token = normalizeQualityToken(token)
	if i, ok := qualityIndex[token]; ok {
		return qualityTable[i].quality, true
	}
	if i, ok := qualityIndex[strings.ToLower(token)]; ok {
		return qualityTable[i].quality, true
	}
	return Quality{}, false
}

// Qualities lists the quality table in display order
func Qualities() []Quality {
	out := make([]Quality, len(qualityTable))
	for i, entry := range qualityTable {
		out[i] = entry.quality
	}
	return out
}

// QualityAliases returns the accepted tokens for a canonical quality name
func QualityAliases(name string) []string {
	i, ok := qualityIndex[name]
	if !ok {
		return nil
	}
	return append([]string(nil), qualityTable[i].aliases...)
}

// "minor 7" and "Minor7" both become "minor7"; "maj 7" becomes "maj7"
func normalizeQualityToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "(")
	token = strings.TrimSuffix(token, ")")
	return strings.Join(strings.Fields(token), "")
}

// Chord is a parsed chord symbol
type Chord struct {
	Symbol   string
	Root     PitchClass
	RootName string
	Quality  Quality
	Bass     *PitchClass
	BassName string

	// octave corrections for Cb and B# style spellings
	rootShift int
	bassShift int
}

// Name returns the canonical symbol, e.g. "Bbm7/F"
func (c Chord) Name() string {
	name := c.RootName + c.Quality.Suffix
	if c.Bass != nil {
		name += "/" + c.BassName
	}
	return name
}

// Tones returns the pitch classes of the chord, root first, bass excluded
func (c Chord) Tones() []PitchClass {
	tones := make([]PitchClass, 0, len(c.Quality.intervals))
	for _, iv := range c.Quality.intervals {
		tones = append(tones, c.Root.Transpose(iv))
	}
	return tones
}

// Pitches voices the chord with its root in the given octave. A slash bass
// is prepended one octave below the root register.
func (c Chord) Pitches(octave int) ([]Pitch, error) {
	root := PitchAt(c.Root, octave+c.rootShift)
	pitches := make([]Pitch, 0, len(c.Quality.intervals)+1)

	if c.Bass != nil {
		bass := PitchAt(*c.Bass, octave-1+c.bassShift)
		if !bass.Valid() {
			return nil, rangeErr(c.Symbol, int(bass))
		}
		pitches = append(pitches, bass)
	}

	for _, iv := range c.Quality.intervals {
		p := root + Pitch(iv)
		if !p.Valid() {
			return nil, rangeErr(c.Symbol, int(p))
		}
		pitches = append(pitches, p)
	}
	return pitches, nil
}

// ParseChord parses a chord symbol: a root letter A-G, optional accidentals,
// an optional quality token (compact "m7" or spelled "minor 7" after a
// space) and an optional "/bass" note.
func ParseChord(symbol string) (Chord, error) {
	trimmed := strings.TrimSpace(symbol)
	if trimmed == "" {
		return Chord{}, parseErr(symbol, "empty chord symbol")
	}

	body := trimmed
	var bassPart string
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		body = strings.TrimSpace(trimmed[:i])
		bassPart = strings.TrimSpace(trimmed[i+1:])
		if bassPart == "" {
			return Chord{}, parseErr(symbol, "missing bass note after '/'")
		}
	}

	root, rest, ok := parseNoteHead(body)
	if !ok {
		return Chord{}, parseErr(symbol, "chord must start with a root letter A-G")
	}

	quality, ok := LookupQuality(rest)
	if !ok {
		return Chord{}, &UnknownChordQualityError{Symbol: trimmed, Quality: strings.TrimSpace(rest)}
	}

	chord := Chord{
		Symbol:   trimmed,
		Root:      root.Class(),
		RootName:  root.String(),
		Quality:   quality,
		rootShift: root.OctaveShift(),
	}

	if bassPart != "" {
		bass, err := ParseNoteName(bassPart)
		if err != nil || bass.HasOctave {
			return Chord{}, parseErr(symbol, "invalid bass note %q", bassPart)
		}
		pc := bass.Class()
		chord.Bass = &pc
		chord.BassName = bass.String()
		chord.bassShift = bass.OctaveShift()
	}
	return chord, nil
}

// ResolveChord parses a chord symbol and voices it in the given octave
func ResolveChord(symbol string, octave int) ([]Pitch, error) {
	chord, err := ParseChord(symbol)
	if err != nil {
		return nil, err
	}
	return chord.Pitches(octave)
}
