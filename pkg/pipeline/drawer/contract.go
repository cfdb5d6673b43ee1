package drawer

import (
	"time"

	"github.com/askiada/werner/pkg/pipeline/measure"
	"github.com/askiada/werner/pkg/pipeline/model"
)

// Drawer is an interface that defines the methods for drawing a pipeline run.
type Drawer interface {
	// AddStage adds a stage to the pipeline drawer.
	AddStage(stageName string, stageType model.StageType) error
	// AddLink adds a link between parent and children stages.
	AddLink(parentStageName, childrenStageName string) error
	// SetStatus marks the stage with the outcome of its execution.
	SetStatus(stageName string, status model.StageStatus) error
	// SetTotalTime sets the total time for the stage.
	SetTotalTime(stageName string, startTime time.Time) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
	// Draw creates a file with the pipeline graph.
	Draw() error
}
