package advisor

import "fmt"

// AdvisorUnavailableError means the language model could not produce a usable
// answer: unreachable, timed out, or returned nothing valid. Callers get the
// static fallback instead; this error is only logged.
type AdvisorUnavailableError struct {
	Operation string
	Err       error
}

func (e *AdvisorUnavailableError) Error() string {
	return fmt.Sprintf("advisor unavailable for %s: %v", e.Operation, e.Err)
}

func (e *AdvisorUnavailableError) Unwrap() error {
	return e.Err
}

func unavailable(operation string, err error) *AdvisorUnavailableError {
	return &AdvisorUnavailableError{Operation: operation, Err: err}
}
