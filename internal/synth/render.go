package synth

import (
	"fmt"
	"io"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
)

// releaseTail keeps rendering after the last note-off so the piano decays
const releaseTail = time.Second

// Renderer produces audio files offline from recorded performances
type Renderer struct {
	soundFontPath string
	sampleRate    int
}

// NewRenderer creates an offline renderer
func NewRenderer(soundFontPath string, sampleRate int) *Renderer {
	return &Renderer{soundFontPath: soundFontPath, sampleRate: sampleRate}
}

// RenderWAV synthesizes the performance and writes it as 16-bit stereo WAV
func (r *Renderer) RenderWAV(w io.WriteSeeker, perf *models.Performance) error {
	synthesizer, err := NewSynthesizer(r.soundFontPath, r.sampleRate)
	if err != nil {
		return &playback.SynthesizerUnavailableError{Device: "soundfont", Err: err}
	}

	tempo := perf.TempoBPM
	if tempo <= 0 {
		tempo = playback.DefaultTempoBPM
	}
	msgs := playback.Timeline(perf.Events, tempo)
	end := playback.BeatsToDuration(perf.DurationBeats(), tempo) + releaseTail
	total := r.frameAt(end)

	buf := make([][2]float64, 0, total)
	left := make([]float32, blockSize)
	right := make([]float32, blockSize)

	renderUntil := func(frame int) {
		for len(buf) < frame {
			n := frame - len(buf)
			if n > blockSize {
				n = blockSize
			}
			synthesizer.Render(left[:n], right[:n])
			for i := 0; i < n; i++ {
				buf = append(buf, [2]float64{clamp(left[i]), clamp(right[i])})
			}
		}
	}

	for _, m := range msgs {
		renderUntil(r.frameAt(m.At))
		if m.On {
			synthesizer.NoteOn(0, int32(m.Key), int32(m.Velocity))
		} else {
			synthesizer.NoteOff(0, int32(m.Key))
		}
	}
	renderUntil(total)

	format := beep.Format{
		SampleRate:  beep.SampleRate(r.sampleRate),
		NumChannels: channelCount,
		Precision:   2,
	}
	if err := wav.Encode(w, &sliceStreamer{buf: buf}, format); err != nil {
		return fmt.Errorf("failed to encode WAV: %w", err)
	}
	return nil
}

func (r *Renderer) frameAt(d time.Duration) int {
	return int(d.Seconds() * float64(r.sampleRate))
}

func clamp(s float32) float64 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	default:
		return float64(s)
	}
}

// sliceStreamer is a beep.Streamer over rendered stereo samples
type sliceStreamer struct {
	buf [][2]float64
	pos int
}

func (s *sliceStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	n = copy(samples, s.buf[s.pos:])
	s.pos += n
	return n, true
}

func (s *sliceStreamer) Err() error {
	return nil
}
