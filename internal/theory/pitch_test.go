package theory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteNamePitch(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "middle C", input: "C4", expected: 60},
		{name: "lowest note", input: "C-1", expected: 0},
		{name: "E1", input: "E1", expected: 28},
		{name: "F sharp 3", input: "F#3", expected: 54},
		{name: "B flat 2", input: "Bb2", expected: 46},
		{name: "unicode flat", input: "E♭4", expected: 63},
		{name: "C flat crosses down", input: "Cb4", expected: 59},
		{name: "B sharp crosses up", input: "B#3", expected: 60},
		{name: "top of range", input: "G9", expected: 127},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ParseNoteName(tt.input)
			require.NoError(t, err)
			require.True(t, n.HasOctave)

			p, err := n.Pitch(n.Octave)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, int(p))
		})
	}
}

func TestParseNoteNameErrors(t *testing.T) {
	for _, input := range []string{"", "H", "C#x", "4C"} {
		_, err := ParseNoteName(input)
		var parseErr *ParseError
		assert.True(t, errors.As(err, &parseErr), "input %q", input)
	}

	n, err := ParseNoteName("G#9")
	require.NoError(t, err)
	_, err = n.Pitch(n.Octave)
	assert.ErrorIs(t, err, ErrPitchOutOfRange)
}

func TestPitchName(t *testing.T) {
	assert.Equal(t, "C4", Pitch(60).Name())
	assert.Equal(t, "F#3", Pitch(54).Name())
	assert.Equal(t, "C-1", Pitch(0).Name())
	assert.Equal(t, "Bb", PitchClass(10).Spell(true))
	assert.Equal(t, PitchClass(2), PitchClass(9).Transpose(5))
}

func TestParseNoteSequence(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []int
	}{
		{
			name:     "C major scale without octaves",
			input:    []string{"C", "D", "E", "F", "G", "A", "B"},
			expected: []int{60, 62, 64, 65, 67, 69, 71},
		},
		{
			name:     "wraps over the octave",
			input:    []string{"A", "B", "C", "D", "E"},
			expected: []int{69, 71, 72, 74, 76},
		},
		{
			name:     "repeated tonic moves up",
			input:    []string{"C", "E", "G", "C"},
			expected: []int{60, 64, 67, 72},
		},
		{
			name:     "explicit octaves",
			input:    []string{"E2", "G#2", "B2", "E3"},
			expected: []int{40, 44, 47, 52},
		},
		{
			name:     "mixed",
			input:    []string{"G3", "A", "B", "C", "D5"},
			expected: []int{55, 57, 59, 60, 74},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pitches, err := ParseNoteSequence(tt.input, DefaultOctave)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, Ints(pitches))
		})
	}
}

func TestParseNoteSequenceRejectsDescendingOctave(t *testing.T) {
	_, err := ParseNoteSequence([]string{"C5", "D4"}, DefaultOctave)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Reason, "does not ascend")
}
