package playback

import (
	"sort"
	"time"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
)

const (
	// DefaultTempoBPM matches the tempo written into exported MIDI files
	DefaultTempoBPM = 120.0
	maxMIDIValue    = 127
	secondsPerMin   = 60.0
)

// BeatsToDuration converts beats to wall time at the given tempo
func BeatsToDuration(beats, tempoBPM float64) time.Duration {
	return time.Duration(beats * secondsPerMin / tempoBPM * float64(time.Second))
}

// SecondsToBeats converts seconds to beats at the given tempo
func SecondsToBeats(seconds, tempoBPM float64) float64 {
	return seconds * tempoBPM / secondsPerMin
}

// Simultaneous returns a single group: every pitch starts and stops together
func Simultaneous(pitches []int, durationBeats float64, velocity int) []models.NoteGroup {
	return []models.NoteGroup{{
		Pitches:       append([]int(nil), pitches...),
		Velocity:      velocity,
		StartBeats:    0,
		DurationBeats: durationBeats,
	}}
}

// Sequential returns one group per pitch. Each note starts durationBeats plus
// gapBeats after the previous one.
func Sequential(pitches []int, durationBeats, gapBeats float64, velocity int) []models.NoteGroup {
	groups := make([]models.NoteGroup, 0, len(pitches))
	for i, p := range pitches {
		groups = append(groups, models.NoteGroup{
			Pitches:       []int{p},
			Velocity:      velocity,
			StartBeats:    float64(i) * (durationBeats + gapBeats),
			DurationBeats: durationBeats,
		})
	}
	return groups
}

// Flatten expands groups into note events ordered by start then pitch
func Flatten(groups []models.NoteGroup) []models.NoteEvent {
	var events []models.NoteEvent
	for _, g := range groups {
		events = append(events, g.Events()...)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].StartBeats != events[j].StartBeats {
			return events[i].StartBeats < events[j].StartBeats
		}
		return events[i].MidiNoteNumber < events[j].MidiNoteNumber
	})
	return events
}

func validateGroups(groups []models.NoteGroup) error {
	if len(groups) == 0 {
		return invalid("no notes to play")
	}
	for i, g := range groups {
		if len(g.Pitches) == 0 {
			return invalid("group %d has no pitches", i)
		}
		if g.DurationBeats <= 0 {
			return invalid("group %d has non-positive duration", i)
		}
		if g.StartBeats < 0 {
			return invalid("group %d starts before zero", i)
		}
		if g.Velocity < 0 || g.Velocity > maxMIDIValue {
			return invalid("velocity %d outside 0-127", g.Velocity)
		}
		for _, p := range g.Pitches {
			if p < 0 || p > maxMIDIValue {
				return invalid("pitch %d outside 0-127", p)
			}
		}
	}
	return nil
}

// Message is a note-on or note-off at an offset from the start
type Message struct {
	At       time.Duration
	On       bool
	Key      int
	Velocity int
}

// Timeline orders messages by time. At equal times note-offs come first so a
// repeated pitch is released before it is struck again.
func Timeline(events []models.NoteEvent, tempoBPM float64) []Message {
	msgs := make([]Message, 0, 2*len(events))
	for _, ev := range events {
		msgs = append(msgs,
			Message{At: BeatsToDuration(ev.StartBeats, tempoBPM), On: true, Key: ev.MidiNoteNumber, Velocity: ev.Velocity},
			Message{At: BeatsToDuration(ev.EndBeats(), tempoBPM), On: false, Key: ev.MidiNoteNumber},
		)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].At != msgs[j].At {
			return msgs[i].At < msgs[j].At
		}
		if msgs[i].On != msgs[j].On {
			return !msgs[i].On
		}
		return msgs[i].Key < msgs[j].Key
	})
	return msgs
}
