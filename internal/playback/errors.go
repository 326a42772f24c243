package playback

import (
	"errors"
	"fmt"
)

// ErrNoPerformance is returned when nothing has been played yet
var ErrNoPerformance = errors.New("no performance recorded yet")

// SynthesizerUnavailableError means the audio device or SoundFont could not
// be opened. No note has been sent when it is returned.
type SynthesizerUnavailableError struct {
	Device string
	Err    error
}

func (e *SynthesizerUnavailableError) Error() string {
	return fmt.Sprintf("synthesizer %s unavailable: %v", e.Device, e.Err)
}

func (e *SynthesizerUnavailableError) Unwrap() error {
	return e.Err
}

// InvalidSequenceError rejects a note sequence before playback starts
type InvalidSequenceError struct {
	Reason string
}

func (e *InvalidSequenceError) Error() string {
	return "invalid note sequence: " + e.Reason
}

func invalid(format string, args ...interface{}) *InvalidSequenceError {
	return &InvalidSequenceError{Reason: fmt.Sprintf(format, args...)}
}
