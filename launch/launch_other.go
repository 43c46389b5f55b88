//go:build !linux && !darwin

package launch

import "os/exec"

func openers() []opener {
	return nil
}

func detach(*exec.Cmd) {}
