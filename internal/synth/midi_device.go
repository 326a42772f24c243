package synth

import (
	"context"
	"sync"

	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
)

// MIDIDevice is used when no audio output is wanted. It sounds nothing and
// only counts messages; the performance is still recorded for download.
type MIDIDevice struct {
	slot slot

	mu       sync.Mutex
	noteOns  int
	noteOffs int
}

// NewMIDIDevice creates a MIDI-only device
func NewMIDIDevice() *MIDIDevice {
	return &MIDIDevice{slot: newSlot()}
}

// Name implements playback.Device
func (d *MIDIDevice) Name() string {
	return "midi_file"
}

// Realtime implements playback.Device
func (d *MIDIDevice) Realtime() bool {
	return false
}

// Acquire implements playback.Device
func (d *MIDIDevice) Acquire(ctx context.Context) (playback.Session, error) {
	if err := d.slot.acquire(ctx); err != nil {
		return nil, err
	}
	return &midiSession{device: d}, nil
}

// Counts returns the number of note-on and note-off messages received
func (d *MIDIDevice) Counts() (noteOns, noteOffs int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.noteOns, d.noteOffs
}

type midiSession struct {
	device *MIDIDevice
	once   sync.Once
	ons    int
}

func (s *midiSession) NoteOn(_, _, _ int) {
	s.ons++
	s.device.mu.Lock()
	s.device.noteOns++
	s.device.mu.Unlock()
}

func (s *midiSession) NoteOff(_, _ int) {
	s.device.mu.Lock()
	s.device.noteOffs++
	s.device.mu.Unlock()
}

func (s *midiSession) Close() error {
	s.once.Do(func() {
		logger.Debug("MIDI-only session closed", logger.Fields{"notes": s.ons})
		s.device.slot.release()
	})
	return nil
}
