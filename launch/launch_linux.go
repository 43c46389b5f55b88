//go:build linux

package launch

import (
	"os/exec"
	"syscall"
)

func openers() []opener {
	return []opener{
		{"xdg-open", nil},
		{"gio", []string{"open"}},
		{"gnome-open", nil},
		{"kde-open", nil},
	}
}

// detach puts the opener in its own process group so it outlives us.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
