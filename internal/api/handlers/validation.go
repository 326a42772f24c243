package handlers

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

var registerOnce sync.Once

// RegisterValidators adds the music binding rules to gin's validator:
//
//	chordsymbol  root letter, accidentals, quality token and optional bass
//	notename     a note name with optional octave, e.g. "C", "F#4", "Bb"
//
// A chord whose only problem is an unknown quality passes chordsymbol so the
// handler can report it as UNKNOWN_CHORD_QUALITY.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("chordsymbol", validateChordSymbol); err != nil {
			return
		}
		err = v.RegisterValidation("notename", validateNoteName)
	})
	return err
}

func validateChordSymbol(fl validator.FieldLevel) bool {
	_, err := theory.ParseChord(fl.Field().String())
	if err == nil {
		return true
	}
	var qualityErr *theory.UnknownChordQualityError
	return errors.As(err, &qualityErr)
}

func validateNoteName(fl validator.FieldLevel) bool {
	_, err := theory.ParseNoteName(fl.Field().String())
	return err == nil
}
