package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"protonup-go/apps"
	"protonup-go/model"
	"protonup-go/types"
	"protonup-go/util"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Scanner detects launcher installations and the tool versions installed
// into them.
type Scanner struct {
	fs   afero.Fs
	home string
}

// NewScanner returns a Scanner over fsys that expands ~ to home.
func NewScanner(fsys afero.Fs, home string) *Scanner {
	return &Scanner{fs: fsys, home: home}
}

// NewOSScanner returns a Scanner over the real filesystem and the current
// user's home directory.
func NewOSScanner() (*Scanner, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, types.Wrap(types.ErrFilesystem, err, "could not get home directory")
	}
	return NewScanner(afero.NewOsFs(), home), nil
}

// Fs returns the filesystem the scanner reads.
func (s *Scanner) Fs() afero.Fs {
	return s.fs
}

// Expand resolves a catalog path against the scanner's home directory.
func (s *Scanner) Expand(path string) string {
	return util.ExpandTildeWith(path, s.home)
}

// InstallDir returns the expanded compatibility-tools directory of inst.
func (s *Scanner) InstallDir(inst apps.Installation) string {
	return s.Expand(inst.DefaultInstallDir())
}

// DetectInstallation reports whether the launcher root of inst exists.
// It never inspects the directory, and unreadable paths count as absent.
func (s *Scanner) DetectInstallation(inst apps.Installation) bool {
	base := s.Expand(inst.BaseDir())
	exists, err := afero.Exists(s.fs, base)
	if err != nil {
		log.Debug().Err(err).Msgf("treating %s as absent", base)
		return false
	}
	return exists
}

// ListInstalledApps checks every installation concurrently and returns the
// ones present, in catalog order.
func (s *Scanner) ListInstalledApps(ctx context.Context) []apps.Installation {
	found := make([]bool, len(apps.AllInstallations))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(len(apps.AllInstallations))
	for i, inst := range apps.AllInstallations {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			found[i] = s.DetectInstallation(inst)
			return nil
		})
	}
	_ = g.Wait()

	var installed []apps.Installation
	for i, inst := range apps.AllInstallations {
		if found[i] {
			installed = append(installed, inst)
		}
	}
	return installed
}

// ListInstalledVersions lists the tool directories under the default install
// directory of inst, newest first. A missing directory yields no versions.
func (s *Scanner) ListInstalledVersions(inst apps.Installation) ([]string, error) {
	return ListVersionsIn(s.fs, s.InstallDir(inst))
}

// ListVersionsIn lists the subdirectory names of dir, newest first.
func ListVersionsIn(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, types.Wrap(types.ErrFilesystem, err, "failed to read install directory %s", dir)
	}

	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			versions = append(versions, entry.Name())
		}
	}
	model.SortNewestFirst(versions)
	return versions, nil
}

// VersionExists reports whether dir already holds a directory named version.
func VersionExists(fsys afero.Fs, dir, version string) bool {
	if !ValidVersionName(version) {
		return false
	}
	exists, err := afero.DirExists(fsys, filepath.Join(dir, version))
	return err == nil && exists
}

// RemoveVersion deletes dir/version and everything under it. Removing a
// version that is not installed is not an error.
func RemoveVersion(fsys afero.Fs, dir, version string) error {
	if !ValidVersionName(version) {
		return types.Wrap(types.ErrFilesystem, nil, "refusing to remove %q from %s", version, dir)
	}
	target := filepath.Join(dir, version)
	if err := fsys.RemoveAll(target); err != nil {
		return types.Wrap(types.ErrFilesystem, err, "failed to delete version directory %s", target)
	}
	log.Info().Msgf("removed %s", target)
	return nil
}

// ValidVersionName rejects names that would resolve outside their parent.
func ValidVersionName(version string) bool {
	if version == "" || version == "." || version == ".." {
		return false
	}
	return !strings.ContainsAny(version, `/\`)
}

// Describe renders an installation with its resolved tools directory.
func (s *Scanner) Describe(inst apps.Installation) string {
	return fmt.Sprintf("%s (%s)", inst, s.InstallDir(inst))
}
