package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"protonup-go/api"
	"protonup-go/apps"
	"protonup-go/launch"
	"protonup-go/local"
	"protonup-go/util"

	"github.com/spf13/cobra"
)

// installation resolves the --installation flag, falling back to the config.
func (e *env) installation(slug string) (apps.Installation, error) {
	if slug == "" {
		return e.cfg.Installation(), nil
	}
	return apps.ParseInstallation(slug)
}

// destination is the tools directory for inst unless dir overrides it.
func (e *env) destination(inst apps.Installation, dir string) string {
	if dir != "" {
		return e.scanner.Expand(dir)
	}
	return e.scanner.InstallDir(inst)
}

func addInstallationFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "installation", "i", "",
		fmt.Sprintf("one of %s (default from config)", strings.Join(apps.Slugs(), ", ")))
}

func newReleasesCmd(getEnv func() *env) *cobra.Command {
	var slug string
	var all bool
	cmd := &cobra.Command{
		Use:   "releases",
		Short: "List published releases for an installation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv()
			inst, err := e.installation(slug)
			if err != nil {
				return err
			}
			releases, err := e.client.ListReleases(cmd.Context(), inst.GithubParameters())
			if err != nil {
				return err
			}
			if !all && e.cfg.VersionFilter != "" {
				if releases, err = api.FilterMinVersion(releases, e.cfg.VersionFilter); err != nil {
					return err
				}
			}

			dest := e.destination(inst, "")
			w := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TAG\tSIZE\tPUBLISHED\tSTATUS")
			for _, r := range releases {
				var status []string
				if r.Prerelease {
					status = append(status, "prerelease")
				}
				if local.VersionExists(e.scanner.Fs(), dest, r.Version) {
					status = append(status, "installed")
				}
				published := "-"
				if !r.PublishedAt.IsZero() {
					published = r.PublishedAt.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.TagName, util.FormatSize(int64(r.Size)), published, strings.Join(status, ","))
			}
			return w.Flush()
		},
	}
	addInstallationFlag(cmd, &slug)
	cmd.Flags().BoolVar(&all, "all", false, "ignore version_filter from the config")
	return cmd
}

func newInstalledCmd(getEnv func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "installed",
		Short: "Show detected launchers and the versions installed for them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv()
			found := e.scanner.ListInstalledApps(cmd.Context())
			if len(found) == 0 {
				fmt.Fprintln(e.out, "No Steam or Lutris installation found.")
				return nil
			}
			for _, inst := range found {
				fmt.Fprintln(e.out, e.scanner.Describe(inst))
				versions, err := e.scanner.ListInstalledVersions(inst)
				if err != nil {
					return err
				}
				if len(versions) == 0 {
					fmt.Fprintln(e.out, "  (none)")
				}
				for _, v := range versions {
					fmt.Fprintf(e.out, "  %s\n", v)
				}
			}
			return nil
		},
	}
}

func newRemoveCmd(getEnv func() *env) *cobra.Command {
	var slug, dir string
	cmd := &cobra.Command{
		Use:   "remove VERSION...",
		Short: "Delete installed versions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv()
			inst, err := e.installation(slug)
			if err != nil {
				return err
			}
			dest := e.destination(inst, dir)
			for _, v := range args {
				if !local.VersionExists(e.scanner.Fs(), dest, v) {
					return fmt.Errorf("%s is not installed in %s", v, dest)
				}
				if err := local.RemoveVersion(e.scanner.Fs(), dest, v); err != nil {
					return err
				}
				fmt.Fprintf(e.out, "Removed %s\n", v)
			}
			return nil
		},
	}
	addInstallationFlag(cmd, &slug)
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "custom compatibility-tools directory")
	return cmd
}

func newOpenCmd(getEnv func() *env) *cobra.Command {
	var slug, dir string
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open the compatibility-tools directory in the file manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := getEnv()
			inst, err := e.installation(slug)
			if err != nil {
				return err
			}
			return launch.OpenDir(e.destination(inst, dir))
		},
	}
	addInstallationFlag(cmd, &slug)
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "custom compatibility-tools directory")
	return cmd
}
