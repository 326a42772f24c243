package models

// NoteEvent represents a single musical note with timing and pitch information
type NoteEvent struct {
	MidiNoteNumber int     `json:"midiNoteNumber"`
	Velocity       int     `json:"velocity"`
	StartBeats     float64 `json:"startBeats"`
	DurationBeats  float64 `json:"durationBeats"`
}

// EndBeats returns the beat at which the note is released
func (n NoteEvent) EndBeats() float64 {
	return n.StartBeats + n.DurationBeats
}

// NoteGroup is a set of pitches that start and stop together.
// A chord is one group; a scale is one group per note.
type NoteGroup struct {
	Pitches       []int   `json:"pitches"`
	Velocity      int     `json:"velocity"`
	StartBeats    float64 `json:"startBeats"`
	DurationBeats float64 `json:"durationBeats"`
}

// Events flattens the group into one NoteEvent per pitch
func (g NoteGroup) Events() []NoteEvent {
	events := make([]NoteEvent, 0, len(g.Pitches))
	for _, p := range g.Pitches {
		events = append(events, NoteEvent{
			MidiNoteNumber: p,
			Velocity:       g.Velocity,
			StartBeats:     g.StartBeats,
			DurationBeats:  g.DurationBeats,
		})
	}
	return events
}

// ProgressionStep is one chord of a generated progression
type ProgressionStep struct {
	Bar           int     `json:"bar"`
	Degree        string  `json:"degree,omitempty"`
	Root          string  `json:"root"`
	Chord         string  `json:"chord"`
	StartBeats    float64 `json:"startBeats"`
	DurationBeats float64 `json:"durationBeats"`
}
