package pipeline

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/askiada/werner/pkg/pipeline/model"
)

// State is a step of the linear state machine of a run.
type State int

const (
	StateInit State = iota
	StateDependencyCheck
	StateAssemblyStage
	StateAssemblyValidate
	StateViralStage
	StateViralValidate
	StateCompleted
	StateAborted
)

var stateNames = [...]string{
	StateInit:             "init",
	StateDependencyCheck:  "dependency-check",
	StateAssemblyStage:    "assembly-stage",
	StateAssemblyValidate: "assembly-validate",
	StateViralStage:       "viral-stage",
	StateViralValidate:    "viral-validate",
	StateCompleted:        "completed",
	StateAborted:          "aborted",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}

	return stateNames[s]
}

// Terminal reports whether no transition leaves the state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateAborted
}

// StageOutcome pairs a stage with its result.
type StageOutcome struct {
	Stage  *model.StageInfo
	Result *model.StageResult
}

// Run is the ordered execution of the stages under one configuration.
type Run struct {
	ID               uuid.UUID
	State            State
	AssemblerVersion string
	Outcomes         []StageOutcome
	// AbortedAt is the stage that aborted the run, nil unless the run is aborted.
	AbortedAt *model.StageInfo
}

func newRun() *Run {
	return &Run{
		ID:    uuid.New(),
		State: StateInit,
	}
}

// advance moves the run to the next state. Aborting is valid from any non terminal state.
func (r *Run) advance(to State) error {
	if r.State.Terminal() || (to != r.State+1 && to != StateAborted) {
		return errors.Wrapf(ErrInvalidTransition, "%s to %s", r.State, to)
	}

	r.State = to

	return nil
}

func (r *Run) abort(stage *model.StageInfo) {
	if r.State.Terminal() {
		return
	}

	r.State = StateAborted
	r.AbortedAt = stage
}

// Outcome describes the terminal state: "completed", "aborted-at-stage-N" or the current state.
func (r *Run) Outcome() string {
	if r.State == StateAborted && r.AbortedAt != nil {
		return fmt.Sprintf("aborted-at-stage-%d", r.AbortedAt.Order)
	}

	return r.State.String()
}

// Result returns the result of the named stage, nil if it did not run.
func (r *Run) Result(stageName string) *model.StageResult {
	for _, outcome := range r.Outcomes {
		if outcome.Stage.Name == stageName {
			return outcome.Result
		}
	}

	return nil
}
