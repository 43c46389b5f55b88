// Package cli wires the command line to the release index, the scanner and
// the download pipeline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"protonup-go/api"
	"protonup-go/apps"
	"protonup-go/config"
	"protonup-go/download"
	"protonup-go/local"
	"protonup-go/logging"
	"protonup-go/util"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// env is everything a command needs, built once per invocation.
type env struct {
	cfg       config.Config
	scanner   *local.Scanner
	client    *api.Client
	installer *download.Installer
	in        io.Reader
	out       io.Writer
	tty       bool
}

type envBuilder func(cfg config.Config) (*env, error)

func defaultEnv(cfg config.Config) (*env, error) {
	scanner, err := local.NewOSScanner()
	if err != nil {
		return nil, err
	}
	httpClient := util.NewHTTPClient()
	return &env{
		cfg:       cfg,
		scanner:   scanner,
		client:    api.NewClient(httpClient, cfg.GithubAPIURL),
		installer: download.NewInstaller(download.WithHTTPClient(httpClient), download.WithTempDir(cfg.TempDir)),
		in:        os.Stdin,
		out:       os.Stdout,
		tty:       isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}, nil
}

type rootOptions struct {
	configPath string
	verbose    bool
	yes        bool
	plain      bool

	quickSteam         bool
	quickSteamFlatpak  bool
	quickLutris        bool
	quickLutrisFlatpak bool
}

func (o *rootOptions) quickInstallations() []apps.Installation {
	var out []apps.Installation
	if o.quickSteam {
		out = append(out, apps.SteamNative)
	}
	if o.quickSteamFlatpak {
		out = append(out, apps.SteamFlatpak)
	}
	if o.quickLutris {
		out = append(out, apps.LutrisNative)
	}
	if o.quickLutrisFlatpak {
		out = append(out, apps.LutrisFlatpak)
	}
	return out
}

// NewRootCmd builds the protonup command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultEnv, true)
}

func newRootCmd(build envBuilder, initLogging bool) *cobra.Command {
	opts := &rootOptions{}
	var e *env

	root := &cobra.Command{
		Use:           "protonup",
		Short:         "Install and manage GE-Proton and Wine-GE builds",
		Long:          "protonup downloads GE-Proton for Steam and Wine-GE for Lutris from their GitHub releases, verifies them and installs them into the right compatibility-tools directory.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			path := opts.configPath
			if path == "" {
				path = config.GetConfigPath()
			}
			cfg, err := config.LoadConfigFrom(path)
			if err != nil {
				return err
			}

			if initLogging {
				var writers []io.Writer
				if opts.verbose {
					writers = append(writers, logging.Console())
				}
				level := cfg.LogLevel
				if opts.verbose {
					level = "debug"
				}
				if err := logging.Init(logging.LogDir(), level, writers...); err != nil {
					return fmt.Errorf("failed to set up logging: %w", err)
				}
			}

			e, err = build(cfg)
			if err != nil {
				return err
			}
			log.Debug().Msgf("config loaded from %s", path)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets := opts.quickInstallations()
			if len(targets) == 0 {
				return cmd.Help()
			}
			for _, inst := range targets {
				if err := runInstall(cmd.Context(), e, installOptions{
					installation: inst,
					tags:         []string{api.LatestTag},
					yes:          opts.yes,
					plain:        opts.plain,
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/protonup-go/config.toml)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")
	pf.BoolVarP(&opts.yes, "yes", "y", false, "reinstall existing versions without asking")
	pf.BoolVar(&opts.plain, "plain", false, "print plain progress lines instead of the interactive view")

	f := root.Flags()
	f.BoolVarP(&opts.quickSteam, "quick-download", "q", false, "install the latest GE-Proton for Steam")
	f.BoolVarP(&opts.quickSteamFlatpak, "quick-download-flatpak", "f", false, "install the latest GE-Proton for Flatpak Steam")
	f.BoolVarP(&opts.quickLutris, "lutris-quick-download", "l", false, "install the latest Wine-GE for Lutris")
	f.BoolVarP(&opts.quickLutrisFlatpak, "lutris-quick-download-flatpak", "L", false, "install the latest Wine-GE for Flatpak Lutris")

	getEnv := func() *env { return e }
	root.AddCommand(
		newReleasesCmd(getEnv),
		newInstalledCmd(getEnv),
		newInstallCmd(getEnv, opts),
		newRemoveCmd(getEnv),
		newOpenCmd(getEnv),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			return 130
		}
		return 1
	}
	return 0
}
