package playback

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
)

// TicksPerQuarter is the resolution of exported files
const TicksPerQuarter = 960

const pianoChannel = 0

type tickMessage struct {
	tick uint32
	on   bool
	key  uint8
	msg  midi.Message
}

// EncodeSMF writes the events as a single-track Standard MIDI File with a
// tempo meta event. Notes with velocity 0 are silent and are not written.
func EncodeSMF(events []models.NoteEvent, tempoBPM float64) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSMF(&buf, events, tempoBPM); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSMF is EncodeSMF writing to w
func WriteSMF(w io.Writer, events []models.NoteEvent, tempoBPM float64) error {
	if tempoBPM <= 0 {
		tempoBPM = DefaultTempoBPM
	}

	msgs := make([]tickMessage, 0, 2*len(events))
	for _, ev := range events {
		if ev.Velocity <= 0 {
			continue
		}
		if ev.MidiNoteNumber < 0 || ev.MidiNoteNumber > maxMIDIValue || ev.Velocity > maxMIDIValue {
			return fmt.Errorf("note %d velocity %d out of MIDI range", ev.MidiNoteNumber, ev.Velocity)
		}
		key := uint8(ev.MidiNoteNumber)
		start := beatsToTicks(ev.StartBeats)
		end := beatsToTicks(ev.EndBeats())
		msgs = append(msgs,
			tickMessage{tick: start, on: true, key: key, msg: midi.NoteOn(pianoChannel, key, uint8(ev.Velocity))},
			tickMessage{tick: end, on: false, key: key, msg: midi.NoteOff(pianoChannel, key)},
		)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].tick != msgs[j].tick {
			return msgs[i].tick < msgs[j].tick
		}
		if msgs[i].on != msgs[j].on {
			return !msgs[i].on
		}
		return msgs[i].key < msgs[j].key
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName("chordsmith"))
	tr.Add(0, smf.MetaTempo(tempoBPM))
	tr.Add(0, midi.ProgramChange(pianoChannel, 0))

	var last uint32
	for _, m := range msgs {
		tr.Add(m.tick-last, m.msg)
		last = m.tick
	}
	tr.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)
	if err := s.Add(tr); err != nil {
		return fmt.Errorf("failed to add track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write MIDI file: %w", err)
	}
	return nil
}

// DecodeSMF reads note events and the first tempo back from a Standard MIDI
// File. Overlapping notes on the same key are paired first-in first-out.
func DecodeSMF(data []byte) ([]models.NoteEvent, float64, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read MIDI file: %w", err)
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, 0, fmt.Errorf("unsupported MIDI time format %v", s.TimeFormat)
	}
	resolution := float64(ticks)

	type open struct {
		tick     uint32
		velocity uint8
	}

	tempo := DefaultTempoBPM
	tempoSeen := false
	var events []models.NoteEvent

	for _, tr := range s.Tracks {
		pending := map[uint8][]open{}
		var abs uint32
		for _, ev := range tr {
			abs += ev.Delta

			var bpm float64
			if !tempoSeen && ev.Message.GetMetaTempo(&bpm) {
				tempo = bpm
				tempoSeen = true
				continue
			}

			msg := midi.Message(ev.Message)
			var ch, key, vel uint8
			switch {
			case msg.GetNoteStart(&ch, &key, &vel):
				pending[key] = append(pending[key], open{tick: abs, velocity: vel})
			case msg.GetNoteEnd(&ch, &key):
				queue := pending[key]
				if len(queue) == 0 {
					continue
				}
				start := queue[0]
				pending[key] = queue[1:]
				events = append(events, models.NoteEvent{
					MidiNoteNumber: int(key),
					Velocity:       int(start.velocity),
					StartBeats:     float64(start.tick) / resolution,
					DurationBeats:  float64(abs-start.tick) / resolution,
				})
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].StartBeats != events[j].StartBeats {
			return events[i].StartBeats < events[j].StartBeats
		}
		return events[i].MidiNoteNumber < events[j].MidiNoteNumber
	})
	return events, tempo, nil
}

func beatsToTicks(beats float64) uint32 {
	return uint32(math.Round(beats * TicksPerQuarter))
}
