//go:build !windows

package ytdlp

import (
	"os/exec"
	"syscall"
)

// isolateProcessGroup starts the command as the leader of a new process group
// and makes cancellation kill the whole group, including downloaders it spawns.
func isolateProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)

		return cmd.Process.Kill()
	}
}
