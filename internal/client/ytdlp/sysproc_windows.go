//go:build windows

package ytdlp

import "os/exec"

// isolateProcessGroup keeps the default behavior: Windows has no process groups to signal,
// and WaitDelay still releases the pipes held by descendants.
func isolateProcessGroup(_ *exec.Cmd) {}
