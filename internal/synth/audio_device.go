package synth

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/ezmidi/go-meltysynth/meltysynth"

	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
)

const (
	channelCount   = 2
	bytesPerSample = 4
	bytesPerFrame  = channelCount * bytesPerSample
)

// An oto context can only be created once per process
var (
	otoOnce    sync.Once
	otoContext *oto.Context
	otoErr     error
)

func openOutput(sampleRate int) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatFloat32LE,
		})
		if err != nil {
			otoErr = fmt.Errorf("failed to create audio context: %w", err)
			return
		}
		<-ready
		otoContext = ctx
	})
	return otoContext, otoErr
}

// AudioDevice plays through the system audio output. There is one
// synthesizer per process; requests take turns holding it.
type AudioDevice struct {
	soundFontPath string
	sampleRate    int
	slot          slot

	// mu guards synthesizer against the audio callback
	mu          sync.Mutex
	synthesizer *meltysynth.Synthesizer
	player      *oto.Player
}

// NewAudioDevice creates the device. The SoundFont and the audio output are
// opened on first use.
func NewAudioDevice(soundFontPath string, sampleRate int) *AudioDevice {
	return &AudioDevice{
		soundFontPath: soundFontPath,
		sampleRate:    sampleRate,
		slot:          newSlot(),
	}
}

// Name implements playback.Device
func (d *AudioDevice) Name() string {
	return "soundfont"
}

// Realtime implements playback.Device
func (d *AudioDevice) Realtime() bool {
	return true
}

// Acquire waits for the device and opens it if needed
func (d *AudioDevice) Acquire(ctx context.Context) (playback.Session, error) {
	if err := d.slot.acquire(ctx); err != nil {
		return nil, err
	}
	if err := d.open(); err != nil {
		d.slot.release()
		return nil, &playback.SynthesizerUnavailableError{Device: d.Name(), Err: err}
	}
	return &audioSession{device: d}, nil
}

// Warm opens the device ahead of the first request
func (d *AudioDevice) Warm() error {
	return d.open()
}

func (d *AudioDevice) open() error {
	d.mu.Lock()
	ready := d.synthesizer != nil
	d.mu.Unlock()
	if ready {
		return nil
	}

	synthesizer, err := NewSynthesizer(d.soundFontPath, d.sampleRate)
	if err != nil {
		return err
	}

	output, err := openOutput(d.sampleRate)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.synthesizer = synthesizer
	d.mu.Unlock()

	d.player = output.NewPlayer(&stream{device: d})
	d.player.Play()
	log.Printf("🔊 Audio output started (%d Hz)", d.sampleRate)
	return nil
}

// Close stops the audio output
func (d *AudioDevice) Close() error {
	if d.player == nil {
		return nil
	}
	return d.player.Close()
}

type audioSession struct {
	device *AudioDevice
	once   sync.Once
}

func (s *audioSession) NoteOn(channel, key, velocity int) {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	s.device.synthesizer.NoteOn(int32(channel), int32(key), int32(velocity))
}

func (s *audioSession) NoteOff(channel, key int) {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	s.device.synthesizer.NoteOff(int32(channel), int32(key))
}

func (s *audioSession) Close() error {
	s.once.Do(func() {
		s.device.mu.Lock()
		s.device.synthesizer.NoteOffAll(false)
		s.device.mu.Unlock()
		s.device.slot.release()
	})
	return nil
}

// stream renders the synthesizer into interleaved float32 frames for oto
type stream struct {
	device      *AudioDevice
	left, right []float32
}

func (s *stream) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}
	if cap(s.left) < frames {
		s.left = make([]float32, frames)
		s.right = make([]float32, frames)
	}
	left, right := s.left[:frames], s.right[:frames]

	s.device.mu.Lock()
	s.device.synthesizer.Render(left, right)
	s.device.mu.Unlock()

	for i := 0; i < frames; i++ {
		off := i * bytesPerFrame
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(left[i]))
		binary.LittleEndian.PutUint32(p[off+bytesPerSample:], math.Float32bits(right[i]))
	}
	return frames * bytesPerFrame, nil
}
