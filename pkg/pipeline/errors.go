package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrRunnerMustBeSet   = errors.New("runner must be set")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Fatal conditions. Every one of them aborts the run.
var (
	// ErrConfiguration reports a missing or malformed configuration field.
	ErrConfiguration = errors.New("configuration error")
	// ErrFatalDependency reports that the assembler cannot be executed.
	ErrFatalDependency = errors.New("fatal dependency error")
	// ErrMissingPriorOutput reports a skipped assembly without a previous assembly to reuse.
	ErrMissingPriorOutput = errors.New("missing prior output")
	// ErrStageExecution reports an external process that could not run or exited with a failure.
	ErrStageExecution = errors.New("stage execution error")
	// ErrMissingOutput reports an external process that exited successfully without producing its artifact.
	ErrMissingOutput = errors.New("missing output")
)

// ConfigurationError describes a missing or malformed configuration field.
// It matches ErrConfiguration with errors.Is.
type ConfigurationError struct {
	Reason string
}

func NewConfigurationError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

func (e *ConfigurationError) Error() string {
	return ErrConfiguration.Error() + ": " + e.Reason
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// StageError is returned when a run aborts at a stage.
// It matches its Kind with errors.Is.
type StageError struct {
	Err        error
	Kind       error
	Stage      string
	Message    string
	Diagnostic string
}

func (e *StageError) Error() string {
	msg := e.Stage + ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *StageError) Is(target error) bool {
	return target == e.Kind
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func newStageError(stage string, kind error, message string, err error) *StageError {
	return &StageError{
		Err:     err,
		Kind:    kind,
		Stage:   stage,
		Message: message,
	}
}
