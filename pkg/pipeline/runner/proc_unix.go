//go:build unix

package runner

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// killProcessGroup starts the child in its own process group and kills the whole group on cancellation.
// Processes started by the child would otherwise keep the output pipes open.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}

		return err
	}
}
