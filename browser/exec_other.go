//go:build !windows

package browser

import "os/exec"

func applyHiddenWindow(*exec.Cmd) {}
