package drawer_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/werner/pkg/pipeline/drawer"
	"github.com/askiada/werner/pkg/pipeline/measure"
	"github.com/askiada/werner/pkg/pipeline/model"
)

func TestDOTDrawerRejectsUnknownStage(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer(filepath.Join(t.TempDir(), "run.gv"))
	require.NoError(t, d.AddStage("assembly", model.ExternalStageType))

	assert.Error(t, d.AddLink("assembly", "missing"))
	assert.Error(t, d.SetStatus("missing", model.StatusSuccess))
	assert.Error(t, d.AddStage("assembly", model.ExternalStageType))
}

func TestPipelineDrawer(t *testing.T) {
	t.Parallel()

	dotFile := filepath.Join(t.TempDir(), "run.gv")
	m := measure.NewDefaultMeasure()
	opts := []model.PipelineOption{
		measure.PipelineMeasure(m),
		drawer.PipelineDrawer(drawer.NewDOTDrawer(dotFile), m),
	}

	start := &model.StageInfo{Type: model.RootStageType, Name: model.StartStageName}
	check := &model.StageInfo{Type: model.CheckStageType, Name: "dependency-check", Order: 0}
	assembly := &model.StageInfo{Type: model.ExternalStageType, Name: "assembly", Order: 1}
	results := map[*model.StageInfo]*model.StageResult{
		check:    {Status: model.StatusSuccess, Duration: 10 * time.Millisecond},
		assembly: {Status: model.StatusExecutionFailure, Duration: 30 * time.Millisecond},
	}

	for _, opt := range opts {
		require.NoError(t, opt.New())
		require.NoError(t, opt.PrepareStage(start, check))
		require.NoError(t, opt.PrepareStage(check, assembly))
	}

	for _, stage := range []*model.StageInfo{check, assembly} {
		for _, opt := range opts {
			require.NoError(t, opt.AfterStage(stage, results[stage]))
		}
	}

	for _, opt := range opts {
		require.NoError(t, opt.Finish())
	}

	content, err := os.ReadFile(dotFile)
	require.NoError(t, err)

	dot := string(content)
	assert.True(t, strings.HasPrefix(dot, "strict digraph {"))
	assert.Contains(t, dot, `rankdir="LR"`)

	for _, name := range []string{"start", "dependency-check", "assembly", "end"} {
		assert.Contains(t, dot, `"`+name+`" [`)
	}

	assert.Contains(t, dot, `"start" -> "dependency-check"`)
	assert.Contains(t, dot, `"dependency-check" -> "assembly"`)
	assert.Contains(t, dot, `"assembly" -> "end"`)
	assert.Contains(t, dot, `shape="diamond"`)
	assert.Contains(t, dot, "execution-failure")
	assert.Contains(t, strings.ToLower(dot), `color="#dc0000"`)
	assert.Contains(t, strings.ToLower(dot), `color="#008200"`)
	assert.Contains(t, dot, `label="30ms"`)
}
