package model

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	pipelineStageOption

	// Finish runs once after the pipeline is finished, whether it completed or aborted.
	Finish() error
}

// pipelineStageOption defines the interface for stage options at the pipeline level.
type pipelineStageOption interface {
	// PrepareStage runs when the stage is registered, before anything is executed.
	PrepareStage(parentStage, stage *StageInfo) error
	// AfterStage runs after the stage is executed, including when it failed.
	AfterStage(stage *StageInfo, result *StageResult) error
}
