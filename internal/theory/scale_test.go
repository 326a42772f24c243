package theory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveScaleStrictlyAscending(t *testing.T) {
	for _, spec := range Scales() {
		for octaves := 1; octaves <= 3; octaves++ {
			for root := PitchClass(0); root < 12; root++ {
				pitches, err := ResolveScale(root, spec.Name, octaves, 3)
				require.NoError(t, err, "%s %s x%d", root.Name(), spec.Name, octaves)

				assert.Len(t, pitches, octaves*len(spec.Offsets())+1)
				for i := 1; i < len(pitches); i++ {
					require.Greater(t, pitches[i], pitches[i-1], "%s %s not ascending at %d", root.Name(), spec.Name, i)
				}
				assert.Equal(t, pitches[0]+Pitch(12*octaves), pitches[len(pitches)-1])
			}
		}
	}
}

func TestResolveScale(t *testing.T) {
	tests := []struct {
		name     string
		root     PitchClass
		scale    string
		octaves  int
		expected []int
	}{
		{name: "C major", root: 0, scale: "major", octaves: 1, expected: []int{60, 62, 64, 65, 67, 69, 71, 72}},
		{name: "A natural minor by alias", root: 9, scale: "Aeolian", octaves: 1, expected: []int{69, 71, 72, 74, 76, 77, 79, 81}},
		{name: "D dorian", root: 2, scale: "dorian mode", octaves: 1, expected: []int{62, 64, 65, 67, 69, 71, 72, 74}},
		{name: "E minor pentatonic two octaves", root: 4, scale: "minor_pentatonic", octaves: 2, expected: []int{64, 67, 69, 71, 74, 76, 79, 81, 83, 86, 88}},
		{name: "C blues", root: 0, scale: "BLUES", octaves: 1, expected: []int{60, 63, 65, 66, 67, 70, 72}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pitches, err := ResolveScale(tt.root, tt.scale, tt.octaves, DefaultOctave)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, Ints(pitches))
		})
	}
}

func TestResolveScaleErrors(t *testing.T) {
	_, err := ResolveScale(0, "hungarian gypsy", 1, DefaultOctave)
	var unknown *UnknownScaleError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "hungarian gypsy", unknown.Name)

	_, err = ResolveScale(0, "major", 0, DefaultOctave)
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))

	_, err = ResolveScale(0, "major", 3, 8)
	assert.ErrorIs(t, err, ErrPitchOutOfRange)
}

func TestParseScaleName(t *testing.T) {
	ref, err := ParseScaleName("D dorian")
	require.NoError(t, err)
	assert.True(t, ref.HasRoot)
	assert.Equal(t, PitchClass(2), ref.Root)
	assert.Equal(t, "dorian", ref.Spec.Name)

	ref, err = ParseScaleName("Bb minor pentatonic scale")
	require.NoError(t, err)
	assert.Equal(t, "Bb", ref.RootName)
	assert.Equal(t, "minor pentatonic", ref.Spec.Name)

	ref, err = ParseScaleName("mixolydian")
	require.NoError(t, err)
	assert.False(t, ref.HasRoot)

	_, err = ParseScaleName("X wizard")
	var unknown *UnknownScaleError
	assert.True(t, errors.As(err, &unknown))
}

func TestScaleFit(t *testing.T) {
	chord, err := ParseChord("G7")
	require.NoError(t, err)

	mixolydian, _ := LookupScale("mixolydian")
	major, _ := LookupScale("major")

	assert.Equal(t, 4, ScaleFit(chord, mixolydian, chord.Root))
	assert.Equal(t, 3, ScaleFit(chord, major, chord.Root))
}

func TestScaleRootShift(t *testing.T) {
	ref, err := ParseScaleName("Cb major")
	require.NoError(t, err)
	assert.Equal(t, -1, ref.RootShift)

	pitches, err := ref.Spec.Pitches(ref.Root, 1, 4+ref.RootShift)
	require.NoError(t, err)
	assert.Equal(t, Pitch(59), pitches[0])

	ref, err = ParseScaleName("B# minor")
	require.NoError(t, err)
	assert.Equal(t, 1, ref.RootShift)
}
