package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"protonup-go/api"
	"protonup-go/apps"
	"protonup-go/download"
	"protonup-go/service"
	"protonup-go/tui"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type installOptions struct {
	installation apps.Installation
	tags         []string
	dir          string
	yes          bool
	plain        bool
}

func newInstallCmd(getEnv func() *env, root *rootOptions) *cobra.Command {
	var slug, dir string
	var tags []string
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download, verify and install releases",
		Example: `  protonup install
  protonup install -i lutris -t GE-Proton8-26
  protonup install -t latest -t GE-Proton9-1 --dir ~/custom/compatibilitytools.d`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv()
			inst, err := e.installation(slug)
			if err != nil {
				return err
			}
			return runInstall(cmd.Context(), e, installOptions{
				installation: inst,
				tags:         tags,
				dir:          dir,
				yes:          root.yes,
				plain:        root.plain,
			})
		},
	}
	addInstallationFlag(cmd, &slug)
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", []string{api.LatestTag}, "release tags to install")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "custom compatibility-tools directory")
	return cmd
}

func runInstall(ctx context.Context, e *env, opts installOptions) error {
	inst := opts.installation
	dest := e.destination(inst, opts.dir)
	fmt.Fprintf(e.out, "Installing %s for %s into %s\n", inst.Variant(), inst, dest)

	releases, err := e.client.ListReleases(ctx, inst.GithubParameters())
	if err != nil {
		return err
	}

	confirm := promptOverwrite(e.in, e.out, dest)
	if opts.yes {
		confirm = func(string) bool { return true }
	}

	var reqs []service.Request
	seen := make(map[string]bool)
	for _, tag := range opts.tags {
		release, err := api.FindTag(releases, tag)
		if err != nil {
			return err
		}
		if seen[release.Version] {
			continue
		}
		seen[release.Version] = true

		req, err := download.NewRequest(e.scanner.Fs(), inst, release, dest, confirm)
		if errors.Is(err, download.ErrSkipped) {
			fmt.Fprintf(e.out, "%s is already installed, skipping\n", release.Version)
			continue
		}
		if err != nil {
			return err
		}
		reqs = append(reqs, service.NewRequest(*req))
	}
	if len(reqs) == 0 {
		return nil
	}

	if opts.plain || !e.tty {
		err = runPlain(ctx, e.installer, reqs, e.out)
	} else {
		err = tui.Run(ctx, e.installer, reqs)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Done. Restart %s to pick up the new version.\n", inst.AsApp())
	return nil
}

// promptOverwrite asks on in whether an installed version should be replaced.
// Anything but y/yes declines, including EOF.
func promptOverwrite(in io.Reader, out io.Writer, dest string) download.ConfirmOverwrite {
	reader := bufio.NewReader(in)
	return func(version string) bool {
		fmt.Fprintf(out, "%s is already installed in %s. Reinstall it? [y/N]: ", version, dest)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(out)
			log.Debug().Err(err).Msg("no answer to overwrite prompt")
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}
