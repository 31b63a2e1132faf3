package multiverse

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or sampling parameter failed validation.
	ErrValidation = errors.New("validation error")

	// ErrUnknownUniverse indicates the requested universe is not registered.
	ErrUnknownUniverse = errors.New("unknown universe")

	// ErrDetailCount indicates the number of details does not match the
	// universe's required fields.
	ErrDetailCount = errors.New("detail count mismatch")

	// ErrGeneration indicates the external generation call failed.
	ErrGeneration = errors.New("generation failed")

	// ErrPersist indicates a generated character could not be saved.
	ErrPersist = errors.New("persist failed")

	// ErrStreamNotReady indicates Completion() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)

// UnknownUniverseError is returned when a universe id is not registered.
// Valid lists every registered id in registry order.
type UnknownUniverseError struct {
	ID    string
	Valid []string
}

func (e *UnknownUniverseError) Error() string {
	return fmt.Sprintf("unknown universe %q (valid: %s)", e.ID, strings.Join(e.Valid, ", "))
}

// Is reports whether target is ErrUnknownUniverse.
func (e *UnknownUniverseError) Is(target error) bool { return target == ErrUnknownUniverse }

// DetailCountError is returned when the supplied details do not line up with
// the universe's required fields.
type DetailCountError struct {
	Universe string
	Expected int
	Actual   int
	Fields   []string
}

func (e *DetailCountError) Error() string {
	return fmt.Sprintf("universe %q requires %d details, got %d (fields: %s)",
		e.Universe, e.Expected, e.Actual, strings.Join(e.Fields, ", "))
}

// Is reports whether target is ErrDetailCount.
func (e *DetailCountError) Is(target error) bool { return target == ErrDetailCount }

// GenerationError wraps a failure of the external generation call.
type GenerationError struct {
	Universe string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s character: %v", e.Universe, e.Err)
}

// Is reports whether target is ErrGeneration.
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

func (e *GenerationError) Unwrap() error { return e.Err }

// PersistError wraps a failure to save a generated character.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("save character: %v", e.Err)
	}
	return fmt.Sprintf("save character to %s: %v", e.Path, e.Err)
}

// Is reports whether target is ErrPersist.
func (e *PersistError) Is(target error) bool { return target == ErrPersist }

func (e *PersistError) Unwrap() error { return e.Err }
