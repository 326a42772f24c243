package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
)

func TestLookupRhythm(t *testing.T) {
	r, ok := LookupRhythm("shuffle")
	require.True(t, ok)
	assert.Len(t, r.Offsets, len(r.Accents))

	_, ok = LookupRhythm("polka")
	assert.False(t, ok)

	names := RhythmNames()
	assert.Contains(t, names, "whole")
	assert.IsIncreasing(t, names)
}

func TestCompQuartersOverTwoBars(t *testing.T) {
	rhythm, _ := LookupRhythm("quarters")
	groups := []models.NoteGroup{{Pitches: []int{60, 64, 67}, Velocity: 100, StartBeats: 4, DurationBeats: 8}}

	comped := Comp(groups, rhythm)
	require.Len(t, comped, 8)

	assert.Equal(t, 4.0, comped[0].StartBeats)
	assert.Equal(t, 100, comped[0].Velocity)
	assert.InDelta(t, 0.9, comped[0].DurationBeats, 1e-9)
	assert.Equal(t, 80, comped[1].Velocity)
	assert.Equal(t, 11.0, comped[7].StartBeats)
	assert.Equal(t, []int{60, 64, 67}, comped[7].Pitches)
}

func TestCompStaysInsideGroup(t *testing.T) {
	tests := []struct {
		name   string
		rhythm string
		group  models.NoteGroup
		hits   int
	}{
		{"whole bar", "whole", models.NoteGroup{Pitches: []int{60}, Velocity: 90, DurationBeats: 4}, 1},
		{"half bar cuts pattern", "quarters", models.NoteGroup{Pitches: []int{60}, Velocity: 90, DurationBeats: 2}, 2},
		{"offbeat skips downbeat", "offbeat", models.NoteGroup{Pitches: []int{60}, Velocity: 90, DurationBeats: 4}, 4},
		{"shuffle two bars", "shuffle", models.NoteGroup{Pitches: []int{60}, Velocity: 90, DurationBeats: 8}, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rhythm, ok := LookupRhythm(tt.rhythm)
			require.True(t, ok)

			comped := Comp([]models.NoteGroup{tt.group}, rhythm)
			assert.Len(t, comped, tt.hits)

			end := tt.group.StartBeats + tt.group.DurationBeats
			for _, g := range comped {
				assert.LessOrEqual(t, g.StartBeats+g.DurationBeats, end+1e-9)
				assert.Greater(t, g.DurationBeats, 0.0)
			}
			assert.NoError(t, validateGroups(comped))
		})
	}
}

func TestCompKeepsSilentVelocity(t *testing.T) {
	rhythm, _ := LookupRhythm("quarters")
	comped := Comp([]models.NoteGroup{{Pitches: []int{60}, Velocity: 0, DurationBeats: 4}}, rhythm)
	for _, g := range comped {
		assert.Equal(t, 0, g.Velocity)
	}
}
