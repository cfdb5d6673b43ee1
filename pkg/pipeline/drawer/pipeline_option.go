package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/werner/pkg/pipeline/measure"
	"github.com/askiada/werner/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
	lastStage string
}

func (pd *pipelineDrawer) New() error {
	pd.startTime = time.Now()
	pd.lastStage = model.StartStageName

	err := pd.AddStage(model.StartStageName, model.RootStageType)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}

	err = pd.AddStage(model.EndStageName, model.EndStageType)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStage(parentStage, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Name, stage.Type)
	if err != nil {
		return err
	}

	err = pd.AddLink(parentStage.Name, stage.Name)
	if err != nil {
		return err
	}

	pd.lastStage = stage.Name

	return nil
}

func (pd *pipelineDrawer) AfterStage(stage *model.StageInfo, result *model.StageResult) error {
	return pd.SetStatus(stage.Name, result.Status)
}

func (pd *pipelineDrawer) Finish() error {
	err := pd.AddLink(pd.lastStage, model.EndStageName)
	if err != nil {
		return errors.Wrap(err, "unable to link last stage to end")
	}

	err = pd.SetTotalTime(model.EndStageName, pd.startTime)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer returns a pipeline option drawing the run with drawer once it is finished.
// The measure is optional and adds stage durations to the graph.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure}
}
