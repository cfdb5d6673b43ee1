package measure

import (
	"time"

	"github.com/askiada/werner/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
	startTime time.Time
}

func (pm *pipelineMeasure) New() error {
	pm.startTime = time.Now()
	pm.AddMetric(model.StartStageName)
	pm.AddMetric(model.EndStageName)

	return nil
}

func (pm *pipelineMeasure) PrepareStage(_, stage *model.StageInfo) error {
	pm.AddMetric(stage.Name)

	return nil
}

func (pm *pipelineMeasure) AfterStage(stage *model.StageInfo, result *model.StageResult) error {
	mt := pm.AddMetric(stage.Name)
	mt.AddDuration(result.Duration)
	mt.SetTotalDuration(time.Since(pm.startTime))

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	pm.AddMetric(model.EndStageName).SetTotalDuration(time.Since(pm.startTime))

	return nil
}

// PipelineMeasure returns a pipeline option recording stage durations into measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{Measure: measure}
}
