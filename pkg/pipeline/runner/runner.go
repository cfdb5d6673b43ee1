// Package runner builds and runs the external commands driven by the pipeline.
package runner

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotFound reports an executable missing from PATH or from the given path.
	ErrNotFound = errors.New("executable not found")
	// ErrNonZeroExit reports a child that exited with a failure status or was killed.
	ErrNonZeroExit = errors.New("non-zero exit status")
)

const (
	maxLineSize     = 1024 * 1024
	diagnosticLines = 20
)

// Command is an external invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory of the child, the current one when empty.
	Dir string
}

// String returns the command line as it is logged.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Output is what a child process produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Diagnostic returns the tail of stderr, falling back to stdout when stderr is empty.
func (o *Output) Diagnostic() string {
	if o == nil {
		return ""
	}

	text := strings.TrimSpace(o.Stderr)
	if text == "" {
		text = strings.TrimSpace(o.Stdout)
	}

	lines := strings.Split(text, "\n")
	if len(lines) > diagnosticLines {
		lines = lines[len(lines)-diagnosticLines:]
	}

	return strings.Join(lines, "\n")
}

// Runner runs a command synchronously and blocks until the child exits.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Output, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	logger *zap.Logger
}

// NewExecRunner creates a runner logging the output of the children at debug level.
// A nil logger discards it.
func NewExecRunner(logger *zap.Logger) *ExecRunner {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ExecRunner{logger: logger}
}

// Run starts the command and waits for it. There is no timeout: only ctx cancellation kills the child,
// together with every process it started.
func (r *ExecRunner) Run(ctx context.Context, command Command) (*Output, error) {
	cmd := exec.CommandContext(ctx, command.Name, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	killProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "unable to open stdout pipe")
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "unable to open stderr pipe")
	}

	err = cmd.Start()
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(ErrNotFound, "%s: %s", command.Name, err.Error())
		}

		return nil, errors.Wrapf(err, "unable to start %s", command.Name)
	}

	var outBuf, errBuf bytes.Buffer

	// Both pipes must be drained before Wait closes them.
	grp := new(errgroup.Group)
	grp.Go(func() error {
		return r.drain(stdout, &outBuf, command.Name, "stdout")
	})
	grp.Go(func() error {
		return r.drain(stderr, &errBuf, command.Name, "stderr")
	})

	drainErr := grp.Wait()
	waitErr := cmd.Wait()

	out := &Output{
		Stdout: outBuf.String(),
		Stderr: errBuf.String(),
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			out.ExitCode = exitErr.ExitCode()

			return out, errors.Wrapf(ErrNonZeroExit, "%s exited with status %d", command.Name, out.ExitCode)
		}

		return out, errors.Wrapf(waitErr, "unable to wait for %s", command.Name)
	}

	if drainErr != nil {
		return out, errors.Wrapf(drainErr, "unable to read output of %s", command.Name)
	}

	return out, nil
}

// isNotFound reports a missing executable. A missing working directory is not one.
func isNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Op != "chdir" && errors.Is(pathErr.Err, fs.ErrNotExist)
	}

	return false
}

func (r *ExecRunner) drain(src io.Reader, dst *bytes.Buffer, name, stream string) error {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Text()
		dst.WriteString(line)
		dst.WriteByte('\n')
		r.logger.Debug(line, zap.String("command", name), zap.String("stream", stream))
	}

	err := scanner.Err()
	if err != nil {
		// The child may keep writing after a line overflowed the scanner.
		_, _ = io.Copy(io.Discard, src)

		return errors.Wrapf(err, "unable to scan %s", stream)
	}

	return nil
}

var _ Runner = (*ExecRunner)(nil)
