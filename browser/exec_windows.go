//go:build windows

package browser

import (
	"os/exec"
	"syscall"
)

// applyHiddenWindow keeps a console window from flashing for every ffmpeg run.
func applyHiddenWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
