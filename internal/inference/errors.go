package inference

import (
	"errors"
	"fmt"
)

var (
	ErrBackendLoad     = errors.New("backend load failed")
	ErrPromptIngestion = errors.New("prompt ingestion failed")
	ErrGenerationStep  = errors.New("generation step failed")
	ErrInvalidParams   = errors.New("invalid generation parameters")
)

// StepError reports which evaluation failed. It matches both the phase
// sentinel and the backend's own error with errors.Is.
type StepError struct {
	Phase State
	// Step is the chunk index during ingestion and the decoding step
	// otherwise.
	Step int
	Err  error
}

func (e *StepError) sentinel() error {
	if e.Phase == StatePromptIngestion {
		return ErrPromptIngestion
	}
	return ErrGenerationStep
}

func (e *StepError) Error() string {
	unit := "step"
	if e.Phase == StatePromptIngestion {
		unit = "chunk"
	}
	return fmt.Sprintf("%v at %s %d: %v", e.sentinel(), unit, e.Step, e.Err)
}

func (e *StepError) Unwrap() []error {
	return []error{e.sentinel(), e.Err}
}

type invalidParamsError struct {
	field string
	msg   string
}

func (e *invalidParamsError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidParams, e.field, e.msg)
}

func (e *invalidParamsError) Unwrap() error { return ErrInvalidParams }

// guard runs fn and turns a panic into an error naming the backend call.
func guard(call string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %s: %v", call, rec)
		}
	}()
	return fn()
}
