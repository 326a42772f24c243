package theory

import (
	"errors"
	"fmt"
)

// ErrPitchOutOfRange is wrapped by ParseError when a note falls outside 0-127
var ErrPitchOutOfRange = errors.New("pitch outside MIDI range 0-127")

// ParseError reports input that does not match the chord, note or scale grammar
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnknownChordQualityError means the symbol parsed but its quality token is not in the table
type UnknownChordQualityError struct {
	Symbol  string
	Quality string
}

func (e *UnknownChordQualityError) Error() string {
	return fmt.Sprintf("unknown chord quality %q in %q", e.Quality, e.Symbol)
}

// UnknownScaleError means the scale name is not in the scale table
type UnknownScaleError struct {
	Name string
}

func (e *UnknownScaleError) Error() string {
	return fmt.Sprintf("unknown scale %q", e.Name)
}

func parseErr(input, format string, args ...interface{}) *ParseError {
	return &ParseError{Input: input, Reason: fmt.Sprintf(format, args...)}
}

func rangeErr(input string, p int) *ParseError {
	return &ParseError{
		Input:  input,
		Reason: fmt.Sprintf("MIDI note %d out of range", p),
		Err:    ErrPitchOutOfRange,
	}
}
