package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Performance kinds
const (
	PerformanceChord       = "chord"
	PerformanceScale       = "scale"
	PerformanceProgression = "progression"
)

// Performance is the record of one playback request. The most recent one
// backs the MIDI and WAV downloads.
type Performance struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
	Kind      string     `gorm:"size:32;index" json:"kind"`
	Label     string     `json:"label"`
	TempoBPM  float64    `gorm:"not null" json:"tempo_bpm"`
	Events    NoteEvents `gorm:"type:jsonb" json:"events"`
}

// DurationBeats returns the beat at which the last note ends
func (p *Performance) DurationBeats() float64 {
	var end float64
	for _, ev := range p.Events {
		if e := ev.EndBeats(); e > end {
			end = e
		}
	}
	return end
}

// NoteEvents is stored as a JSON column
type NoteEvents []NoteEvent

// Value implements driver.Valuer
func (n NoteEvents) Value() (driver.Value, error) {
	if n == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]NoteEvent(n))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (n *NoteEvents) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*n = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported note events column type %T", value)
	}
	return json.Unmarshal(data, (*[]NoteEvent)(n))
}
