package model

import "time"

// StageType is the kind of a stage, used to shape it in the run graph.
type StageType string

const (
	RootStageType     StageType = "root"
	CheckStageType    StageType = "check"
	ExternalStageType StageType = "external"
	EndStageType      StageType = "end"
)

// Names of the vertices framing every run.
const (
	StartStageName = "start"
	EndStageName   = "end"
)

// StageStatus is the outcome of a stage.
type StageStatus string

const (
	StatusPending          StageStatus = "pending"
	StatusSuccess          StageStatus = "success"
	StatusSkipped          StageStatus = "skipped"
	StatusDryRun           StageStatus = "dry-run"
	StatusMissingOutput    StageStatus = "missing-output"
	StatusExecutionFailure StageStatus = "execution-failure"
)

// Failed reports whether the status aborts a run.
func (s StageStatus) Failed() bool {
	return s == StatusMissingOutput || s == StatusExecutionFailure
}

type StageInfo struct {
	Type  StageType
	Name  string
	Order int
}

// StageResult is the outcome of running one stage.
type StageResult struct {
	Status StageStatus
	// OutputDir is the directory the stage writes to, empty when it has none.
	OutputDir string
	// Command is the command line that ran, or would have run in dry-run mode.
	Command      string
	Diagnostic   string
	ArtifactSize int64
	Duration     time.Duration
}
