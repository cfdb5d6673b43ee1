package runner_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/askiada/werner/pkg/pipeline/runner"
)

func TestCommandString(t *testing.T) {
	t.Parallel()

	cmd := runner.Command{Name: "flye", Args: []string{"--meta", "--nano-hq", "reads.fasta"}}
	assert.Equal(t, "flye --meta --nano-hq reads.fasta", cmd.String())
	assert.Equal(t, "flye", runner.Command{Name: "flye"}.String())
}

func TestExecRunnerSuccess(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	rnr := runner.NewExecRunner(zap.New(core))

	out, err := rnr.Run(context.Background(), runner.Command{
		Name: "sh",
		Args: []string{"-c", "echo 2.9.5; echo warming up >&2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "2.9.5\n", out.Stdout)
	assert.Equal(t, "warming up\n", out.Stderr)
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, 2, logs.Len())
}

func TestExecRunnerDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out, err := runner.NewExecRunner(nil).Run(context.Background(), runner.Command{
		Name: "pwd",
		Dir:  dir,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), filepath.Base(strings.TrimSpace(out.Stdout)))
}

func TestExecRunnerNonZeroExit(t *testing.T) {
	t.Parallel()

	out, err := runner.NewExecRunner(nil).Run(context.Background(), runner.Command{
		Name: "sh",
		Args: []string{"-c", "echo disk full >&2; exit 3"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, runner.ErrNonZeroExit))
	assert.False(t, errors.Is(err, runner.ErrNotFound))
	require.NotNil(t, out)
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "disk full", out.Diagnostic())
}

func TestExecRunnerNotFound(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"werner-missing-executable", "/nonexistent/viralFlye.py"} {
		_, err := runner.NewExecRunner(nil).Run(context.Background(), runner.Command{Name: name})
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, runner.ErrNotFound), name)
	}
}

func TestExecRunnerCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.NewExecRunner(nil).Run(ctx, runner.Command{Name: "sh", Args: []string{"-c", "sleep 5"}})
	assert.Error(t, err)
}

func TestExecRunnerMissingDir(t *testing.T) {
	t.Parallel()

	_, err := runner.NewExecRunner(nil).Run(context.Background(), runner.Command{
		Name: "sh",
		Args: []string{"-c", "true"},
		Dir:  filepath.Join(t.TempDir(), "does-not-exist"),
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, runner.ErrNotFound))
	assert.Contains(t, err.Error(), "chdir")
}

func TestExecRunnerCancelKillsBackgroundProcesses(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := runner.NewExecRunner(nil).Run(ctx, runner.Command{
		Name: "sh",
		Args: []string{"-c", "sleep 10 & sleep 10; wait"},
	})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOutputDiagnostic(t *testing.T) {
	t.Parallel()

	var nilOutput *runner.Output
	assert.Empty(t, nilOutput.Diagnostic())

	out := &runner.Output{Stdout: "only stdout\n"}
	assert.Equal(t, "only stdout", out.Diagnostic())

	lines := make([]string, 30)
	for i := range lines {
		lines[i] = "line"
	}
	lines[29] = "last"
	out = &runner.Output{Stderr: strings.Join(lines, "\n")}
	diag := strings.Split(out.Diagnostic(), "\n")
	assert.Len(t, diag, 20)
	assert.Equal(t, "last", diag[19])
}
