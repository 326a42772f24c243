package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
)

func TestSMFRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		groups []models.NoteGroup
	}{
		{name: "chord", groups: Simultaneous([]int{60, 64, 67}, 2, 80)},
		{name: "scale", groups: Sequential([]int{60, 62, 64, 65, 67, 69, 71, 72}, 1.5, 0, 100)},
		{name: "scale with gap", groups: Sequential([]int{57, 60, 62}, 0.5, 0.25, 64)},
		{name: "repeated pitch", groups: Sequential([]int{60, 60, 60}, 1, 0, 70)},
		{
			name: "progression",
			groups: []models.NoteGroup{
				{Pitches: []int{60, 64, 67, 70}, Velocity: 90, StartBeats: 0, DurationBeats: 4},
				{Pitches: []int{65, 69, 72, 75}, Velocity: 90, StartBeats: 4, DurationBeats: 4},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := Flatten(tt.groups)

			data, err := EncodeSMF(events, 120)
			require.NoError(t, err)
			require.Equal(t, "MThd", string(data[:4]))

			decoded, tempo, err := DecodeSMF(data)
			require.NoError(t, err)
			assert.InDelta(t, 120.0, tempo, 1e-9)

			require.Len(t, decoded, len(events))
			for i := range events {
				assert.Equal(t, events[i].MidiNoteNumber, decoded[i].MidiNoteNumber)
				assert.Equal(t, events[i].Velocity, decoded[i].Velocity)
				assert.Equal(t, events[i].StartBeats, decoded[i].StartBeats)
				assert.Equal(t, events[i].DurationBeats, decoded[i].DurationBeats)
			}
		})
	}
}

func TestSMFQuantizesOffGridTimes(t *testing.T) {
	events := Flatten(Sequential([]int{60, 62, 64}, 1.0/3, 0, 90))

	data, err := EncodeSMF(events, 120)
	require.NoError(t, err)
	decoded, _, err := DecodeSMF(data)
	require.NoError(t, err)

	require.Len(t, decoded, len(events))
	for i := range events {
		assert.InDelta(t, events[i].StartBeats, decoded[i].StartBeats, 0.5/TicksPerQuarter)
		assert.InDelta(t, events[i].DurationBeats, decoded[i].DurationBeats, 0.5/TicksPerQuarter)
	}
}

func TestEncodeSMFSkipsSilentNotes(t *testing.T) {
	data, err := EncodeSMF([]models.NoteEvent{
		{MidiNoteNumber: 60, Velocity: 0, StartBeats: 0, DurationBeats: 1},
		{MidiNoteNumber: 64, Velocity: 50, StartBeats: 0, DurationBeats: 1},
	}, 90)
	require.NoError(t, err)

	decoded, tempo, err := DecodeSMF(data)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, tempo, 1e-3)
	require.Len(t, decoded, 1)
	assert.Equal(t, 64, decoded[0].MidiNoteNumber)
}

func TestDecodeSMFRejectsGarbage(t *testing.T) {
	_, _, err := DecodeSMF([]byte("not a midi file"))
	assert.Error(t, err)
}
