package theory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveChord(t *testing.T) {
	tests := []struct {
		name          string
		chordSymbol   string
		octave        int
		expectedNotes []int
	}{
		{name: "C major spelled out", chordSymbol: "C major", octave: 4, expectedNotes: []int{60, 64, 67}},
		{name: "C major bare", chordSymbol: "C", octave: 4, expectedNotes: []int{60, 64, 67}},
		{name: "E minor", chordSymbol: "Em", octave: 4, expectedNotes: []int{64, 67, 71}},
		{name: "A minor 7 spelled out", chordSymbol: "A minor 7", octave: 4, expectedNotes: []int{69, 72, 76, 79}},
		{name: "G dominant 7", chordSymbol: "G7", octave: 4, expectedNotes: []int{67, 71, 74, 77}},
		{name: "C major 7th", chordSymbol: "Cmaj7", octave: 4, expectedNotes: []int{60, 64, 67, 71}},
		{name: "B diminished", chordSymbol: "Bdim", octave: 3, expectedNotes: []int{59, 62, 65}},
		{name: "Bb major", chordSymbol: "Bb", octave: 4, expectedNotes: []int{70, 74, 77}},
		{name: "F sharp half diminished", chordSymbol: "F#m7b5", octave: 4, expectedNotes: []int{66, 69, 72, 76}},
		{name: "lowercase root", chordSymbol: "dm", octave: 4, expectedNotes: []int{62, 65, 69}},
		{name: "slash bass below register", chordSymbol: "C/E", octave: 4, expectedNotes: []int{52, 60, 64, 67}},
		{name: "power chord", chordSymbol: "E5", octave: 2, expectedNotes: []int{40, 47}},
		{name: "octave 3", chordSymbol: "C", octave: 3, expectedNotes: []int{48, 52, 55}},
		{name: "C flat sits below C4", chordSymbol: "Cb", octave: 4, expectedNotes: []int{59, 63, 66}},
		{name: "B sharp sits above B4", chordSymbol: "B#", octave: 4, expectedNotes: []int{72, 76, 79}},
		{name: "B sharp slash bass", chordSymbol: "G/B#", octave: 4, expectedNotes: []int{60, 67, 71, 74}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notes, err := ResolveChord(tt.chordSymbol, tt.octave)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedNotes, Ints(notes))
		})
	}
}

func TestResolveChordIntervalsMatchTable(t *testing.T) {
	for _, q := range Qualities() {
		for _, alias := range QualityAliases(q.Name) {
			symbol := "D" + alias
			if len(alias) > 1 && alias[0] != '-' && alias[0] != '+' {
				symbol = "D " + alias
			}
			t.Run(symbol, func(t *testing.T) {
				notes, err := ResolveChord(symbol, DefaultOctave)
				require.NoError(t, err)

				root := int(PitchAt(2, DefaultOctave))
				got := make([]int, len(notes))
				for i, n := range notes {
					got[i] = int(n) - root
				}
				assert.Equal(t, []int(q.Intervals()), got)
			})
		}
	}
}

func TestParseChordErrors(t *testing.T) {
	tests := []struct {
		name        string
		symbol      string
		wantQuality bool
	}{
		{name: "empty", symbol: "   "},
		{name: "bad root letter", symbol: "H7"},
		{name: "digit root", symbol: "7C"},
		{name: "missing bass", symbol: "C/"},
		{name: "bad bass", symbol: "C/X"},
		{name: "bass with octave", symbol: "C/E3"},
		{name: "unknown quality", symbol: "Cxyz", wantQuality: true},
		{name: "unknown spelled quality", symbol: "C superb", wantQuality: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseChord(tt.symbol)
			require.Error(t, err)

			var parseErr *ParseError
			var qualityErr *UnknownChordQualityError
			if tt.wantQuality {
				assert.True(t, errors.As(err, &qualityErr), "expected UnknownChordQualityError, got %T", err)
			} else {
				assert.True(t, errors.As(err, &parseErr), "expected ParseError, got %T", err)
			}
		})
	}
}

func TestParseChordCaseSensitiveTokens(t *testing.T) {
	major7, err := ParseChord("CM7")
	require.NoError(t, err)
	assert.Equal(t, "major7", major7.Quality.Name)

	minor7, err := ParseChord("Cm7")
	require.NoError(t, err)
	assert.Equal(t, "minor7", minor7.Quality.Name)

	upper, err := ParseChord("C MINOR")
	require.NoError(t, err)
	assert.Equal(t, "minor", upper.Quality.Name)
}

func TestChordName(t *testing.T) {
	chord, err := ParseChord("Bb minor 7 / F")
	require.NoError(t, err)
	assert.Equal(t, "Bbm7/F", chord.Name())
	assert.Equal(t, []PitchClass{10, 1, 5, 8}, chord.Tones())
}

func TestChordOutOfRange(t *testing.T) {
	_, err := ResolveChord("G13", 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPitchOutOfRange)
}

func TestQualityIntervalsAreCopies(t *testing.T) {
	q, ok := LookupQuality("maj")
	require.True(t, ok)

	iv := q.Intervals()
	iv[1] = 99

	again, _ := LookupQuality("maj")
	assert.Equal(t, IntervalSet{0, 4, 7}, again.Intervals())
}

func TestChordRootMatchesNoteName(t *testing.T) {
	for _, root := range []string{"Cb", "C", "B", "B#", "Fb", "E#", "Cbb", "B##"} {
		t.Run(root, func(t *testing.T) {
			chord, err := ResolveChord(root, 4)
			require.NoError(t, err)

			note, err := ParseNoteName(root + "4")
			require.NoError(t, err)
			want, err := note.Pitch(4)
			require.NoError(t, err)

			assert.Equal(t, want, chord[0])
		})
	}
}
