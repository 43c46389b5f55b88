package launch

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrNoOpener is returned when no file manager helper could be started.
var ErrNoOpener = errors.New("no file manager opener available")

type opener struct {
	name string
	args []string
}

// start is swapped out in tests.
var start = func(cmd *exec.Cmd) error {
	detach(cmd)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// OpenDir shows dir in the desktop file manager without waiting for it.
func OpenDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cannot open %s: not a directory", dir)
	}

	var tried []string
	for _, o := range openers() {
		cmd := exec.Command(o.name, append(o.args, dir)...)
		if err := start(cmd); err != nil {
			log.Debug().Err(err).Msgf("opener %s failed", o.name)
			tried = append(tried, o.name)
			continue
		}
		log.Debug().Msgf("opened %s with %s", dir, o.name)
		return nil
	}
	return fmt.Errorf("%w (tried %s)", ErrNoOpener, strings.Join(tried, ", "))
}
