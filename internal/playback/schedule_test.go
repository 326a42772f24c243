package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
)

func TestTempoConversions(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, BeatsToDuration(1, 120))
	assert.Equal(t, 2*time.Second, BeatsToDuration(2, 60))
	assert.InDelta(t, 1.2, SecondsToBeats(0.6, 120), 1e-9)
}

func TestSequentialWithGap(t *testing.T) {
	groups := Sequential([]int{60, 62, 64}, 1, 0.5, 70)
	assert.Len(t, groups, 3)
	assert.Equal(t, 0.0, groups[0].StartBeats)
	assert.Equal(t, 1.5, groups[1].StartBeats)
	assert.Equal(t, 3.0, groups[2].StartBeats)
}

func TestTimelineOrdersOffBeforeOn(t *testing.T) {
	events := []models.NoteEvent{
		{MidiNoteNumber: 67, Velocity: 80, StartBeats: 0, DurationBeats: 1},
		{MidiNoteNumber: 60, Velocity: 80, StartBeats: 0, DurationBeats: 1},
		{MidiNoteNumber: 62, Velocity: 80, StartBeats: 1, DurationBeats: 1},
	}

	msgs := Timeline(events, 120)
	assert.Len(t, msgs, 6)
	assert.True(t, msgs[0].On)
	assert.Equal(t, 60, msgs[0].Key)

	var at500 []Message
	for _, m := range msgs {
		if m.At == 500*time.Millisecond {
			at500 = append(at500, m)
		}
	}
	assert.Len(t, at500, 3)
	assert.False(t, at500[0].On)
	assert.False(t, at500[1].On)
	assert.True(t, at500[2].On)
	assert.Equal(t, 62, at500[2].Key)
}
