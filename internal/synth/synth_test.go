package synth

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
)

func TestAudioDeviceMissingSoundFont(t *testing.T) {
	device := NewAudioDevice(filepath.Join(t.TempDir(), "missing.sf2"), 44100)

	_, err := device.Acquire(context.Background())

	var unavailable *playback.SynthesizerUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, "soundfont", unavailable.Device)

	// the slot must be released so the next request gets the same error, not a hang
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = device.Acquire(ctx)
	assert.True(t, errors.As(err, &unavailable))
}

func TestLoadSoundFontRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.sf2")
	require.NoError(t, os.WriteFile(path, []byte("RIFF0000nope"), 0o600))

	_, err := LoadSoundFont(path)
	assert.Error(t, err)
}

func TestMIDIDeviceIsExclusive(t *testing.T) {
	device := NewMIDIDevice()

	session, err := device.Acquire(context.Background())
	require.NoError(t, err)
	session.NoteOn(0, 60, 100)
	session.NoteOff(0, 60)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = device.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	second, err := device.Acquire(context.Background())
	require.NoError(t, err)
	require.NoError(t, second.Close())

	ons, offs := device.Counts()
	assert.Equal(t, 1, ons)
	assert.Equal(t, 1, offs)
}

func TestMIDIDeviceWithOrchestrator(t *testing.T) {
	device := NewMIDIDevice()
	o := playback.NewOrchestrator(device, nil, playback.Options{TempoBPM: 120})

	start := time.Now()
	_, err := o.Play(context.Background(), playback.Request{
		Kind:   models.PerformanceScale,
		Groups: playback.Sequential([]int{60, 62, 64, 65, 67, 69, 71}, 4, 0, 90),
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	ons, offs := device.Counts()
	assert.Equal(t, 7, ons)
	assert.Equal(t, 7, offs)
}

func TestSliceStreamer(t *testing.T) {
	s := &sliceStreamer{buf: [][2]float64{{0.1, 0.2}, {0.3, 0.4}, {0.5, 0.6}}}
	out := make([][2]float64, 2)

	n, ok := s.Stream(out)
	assert.Equal(t, 2, n)
	assert.True(t, ok)

	n, ok = s.Stream(out)
	assert.Equal(t, 1, n)
	assert.True(t, ok)
	assert.Equal(t, [2]float64{0.5, 0.6}, out[0])

	_, ok = s.Stream(out)
	assert.False(t, ok)
}

// Needs a real SoundFont: SOUNDFONT_PATH=./piano.sf2 go test ./internal/synth/
func TestRenderWAV(t *testing.T) {
	path := os.Getenv("SOUNDFONT_PATH")
	if path == "" {
		t.Skip("SOUNDFONT_PATH not set")
	}

	perf := &models.Performance{
		TempoBPM: 120,
		Events:   playback.Flatten(playback.Simultaneous([]int{60, 64, 67}, 2, 100)),
	}

	out, err := os.Create(filepath.Join(t.TempDir(), "chord.wav"))
	require.NoError(t, err)
	defer out.Close()

	require.NoError(t, NewRenderer(path, 22050).RenderWAV(out, perf))

	info, err := out.Stat()
	require.NoError(t, err)
	// 1s of chord plus 1s tail, 16-bit stereo
	assert.Greater(t, info.Size(), int64(2*22050*4))
}
