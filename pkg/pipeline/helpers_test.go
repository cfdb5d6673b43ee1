package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/askiada/werner/pkg/pipeline"
	"github.com/askiada/werner/pkg/pipeline/model"
	"github.com/askiada/werner/pkg/pipeline/runner"
)

const testVersion = "2.9.2-b1786"

type fakeRunner struct {
	mu    sync.Mutex
	calls []runner.Command
	run   func(cmd runner.Command) (*runner.Output, error)
}

func (f *fakeRunner) Run(_ context.Context, cmd runner.Command) (*runner.Output, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if f.run == nil {
		return &runner.Output{}, nil
	}

	return f.run(cmd)
}

func (f *fakeRunner) Calls() []runner.Command {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]runner.Command(nil), f.calls...)
}

type toolBehaviour struct {
	versionErr    error
	assemblyErr   error
	assemblyOut   *runner.Output
	skipAssembly  bool
	skipViral     bool
	assemblyBytes string
}

// newToolRunner fakes metaFlye and viralFlye, creating their artifacts in the command directory.
func newToolRunner(t *testing.T, behaviour toolBehaviour) *fakeRunner {
	t.Helper()

	if behaviour.assemblyBytes == "" {
		behaviour.assemblyBytes = ">contig_1\nACGT\n"
	}

	return &fakeRunner{run: func(cmd runner.Command) (*runner.Output, error) {
		switch {
		case len(cmd.Args) == 1 && cmd.Args[0] == "--version":
			if behaviour.versionErr != nil {
				return nil, behaviour.versionErr
			}

			return &runner.Output{Stdout: testVersion + "\n"}, nil
		case len(cmd.Args) > 0 && cmd.Args[0] == "--meta":
			if behaviour.assemblyErr != nil {
				return behaviour.assemblyOut, behaviour.assemblyErr
			}

			if !behaviour.skipAssembly {
				writeAssembly(t, cmd.Dir, behaviour.assemblyBytes)
			}

			return &runner.Output{Stdout: "assembly done\n"}, nil
		default:
			if !behaviour.skipViral {
				require.NoError(t, os.MkdirAll(filepath.Join(cmd.Dir, pipeline.ViralOutputDir), 0o755))
			}

			return &runner.Output{}, nil
		}
	}}
}

func writeAssembly(t *testing.T, dir, content string) {
	t.Helper()

	outputDir := filepath.Join(dir, pipeline.AssemblyOutputDir)
	require.NoError(t, os.MkdirAll(outputDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, pipeline.AssemblyArtifact), []byte(content), 0o600))
}

func validConfig(t *testing.T) pipeline.Config {
	t.Helper()

	cfg := pipeline.DefaultConfig()
	cfg.InputPath = "reads.fasta"
	cfg.ReadType = pipeline.NanoHQ
	cfg.ViralFlyePath = "/bin/viralflye"
	cfg.HMMPath = "/db/pfam.hmm"
	cfg.WorkDir = t.TempDir()

	return cfg
}

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)

	return zap.New(core), logs
}

var errOption = errors.New("option failure")

type recordingOption struct {
	mu        sync.Mutex
	newCalls  int
	prepared  [][2]string
	after     map[string]model.StageStatus
	finished  int
	failAfter bool
	failFinal bool
	failNew   bool
}

func (o *recordingOption) New() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.newCalls++
	o.after = make(map[string]model.StageStatus)

	if o.failNew {
		return errOption
	}

	return nil
}

func (o *recordingOption) PrepareStage(parentStage, stage *model.StageInfo) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.prepared = append(o.prepared, [2]string{parentStage.Name, stage.Name})

	return nil
}

func (o *recordingOption) AfterStage(stage *model.StageInfo, result *model.StageResult) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.after[stage.Name] = result.Status

	if o.failAfter {
		return errOption
	}

	return nil
}

func (o *recordingOption) Finish() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.finished++

	if o.failFinal {
		return errOption
	}

	return nil
}
