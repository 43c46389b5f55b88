//go:build darwin

package launch

import (
	"os/exec"
	"syscall"
)

func openers() []opener {
	return []opener{{"open", nil}}
}

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
