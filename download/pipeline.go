package download

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"protonup-go/apps"
	"protonup-go/local"
	"protonup-go/model"
	"protonup-go/types"
	"protonup-go/util"

	"github.com/cavaliergopher/grab/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrSkipped is returned by NewRequest when the version is already installed
// and the caller declined to replace it.
var ErrSkipped = errors.New("already installed, skipped")

const scratchDirName = "protonup-go"

// Installer runs the download, verify and extract pipeline.
type Installer struct {
	fs             afero.Fs
	httpClient     *http.Client
	checksumClient *grab.Client
	tempDir        string
}

// Option configures an Installer.
type Option func(*Installer)

// WithFs replaces the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(in *Installer) { in.fs = fsys }
}

// WithHTTPClient sets the client used for archive and checksum downloads.
func WithHTTPClient(c *http.Client) Option {
	return func(in *Installer) { in.httpClient = c }
}

// WithTempDir sets where archives are staged before extraction.
func WithTempDir(dir string) Option {
	return func(in *Installer) { in.tempDir = dir }
}

func NewInstaller(opts ...Option) *Installer {
	in := &Installer{
		fs:         afero.NewOsFs(),
		httpClient: util.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.tempDir == "" {
		in.tempDir = os.TempDir()
	}
	if in.tempDir == "" {
		in.tempDir = "/tmp"
	}

	gc := grab.NewClient()
	gc.HTTPClient = in.httpClient
	gc.UserAgent = util.UserAgent
	in.checksumClient = gc
	return in
}

// ScratchDir is where archives are staged. Every install gets its own file
// in it, so concurrent installs of the same release never share one.
func (in *Installer) ScratchDir() string {
	return filepath.Join(in.tempDir, scratchDirName)
}

// createScratch opens a fresh staging file for release.
func (in *Installer) createScratch(release model.Release) (afero.File, error) {
	dir := in.ScratchDir()
	if err := in.fs.MkdirAll(dir, 0o750); err != nil {
		return nil, types.Wrap(types.ErrFilesystem, err, "failed to create scratch directory")
	}
	f, err := afero.TempFile(in.fs, dir, release.Version+"-*"+release.ArchiveExt())
	if err != nil {
		return nil, types.Wrap(types.ErrFilesystem, err, "failed to create download file")
	}
	return f, nil
}

// Install runs the whole pipeline for req and blocks until it finishes.
// onStart, if set, receives the progress handle before any byte is transferred.
func (in *Installer) Install(ctx context.Context, req model.DownloadRequest, onStart func(*ProgressState)) error {
	progress := newProgressState(req.Release.Size)
	if onStart != nil {
		onStart(progress)
	}
	return in.install(ctx, req, progress)
}

// Task is an install running in its own goroutine.
type Task struct {
	progress *ProgressState
	done     chan struct{}
	err      error
}

// Start launches Install in a goroutine. The progress handle is available
// as soon as Start returns.
func (in *Installer) Start(ctx context.Context, req model.DownloadRequest) *Task {
	t := &Task{
		progress: newProgressState(req.Release.Size),
		done:     make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		t.err = in.install(ctx, req, t.progress)
	}()
	return t
}

func (t *Task) Progress() *ProgressState { return t.progress }

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes and returns its outcome.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

func (in *Installer) install(ctx context.Context, req model.DownloadRequest, progress *ProgressState) error {
	err := in.run(ctx, req, progress)
	if err != nil {
		progress.finish(types.StateFailed)
		log.Error().Err(err).Msgf("install of %s into %s failed", req.Release.Version, req.Destination)
		return err
	}
	progress.finish(types.StateDone)
	log.Info().Msgf("installed %s into %s", req.Release.Version, req.TargetDir())
	return nil
}

func (in *Installer) run(ctx context.Context, req model.DownloadRequest, progress *ProgressState) error {
	release := req.Release

	// Downloading
	progress.setState(types.StateDownloading)
	ext := release.ArchiveExt()
	if ext == "" {
		return types.Wrap(types.ErrExtraction, nil, "unsupported archive %s", release.ArchiveName())
	}
	if !local.ValidVersionName(release.Version) {
		return types.Wrap(types.ErrExtraction, nil, "invalid version name %q", release.Version)
	}
	if err := cancelled(ctx); err != nil {
		return err
	}
	out, err := in.createScratch(release)
	if err != nil {
		return err
	}
	scratch := out.Name()
	log.Debug().Msgf("downloading %s to %s", release.DownloadURL, scratch)
	written, err := in.fetchArchive(ctx, release.DownloadURL, out, progress)
	if err != nil {
		return err
	}
	progress.reconcile(written)

	// Verifying
	progress.setState(types.StateVerifying)
	if err := cancelled(ctx); err != nil {
		return err
	}
	if err := in.verifyArchive(ctx, scratch, release); err != nil {
		return err
	}

	// Extracting
	progress.setState(types.StateExtracting)
	if err := cancelled(ctx); err != nil {
		return err
	}
	if err := in.fs.MkdirAll(req.Destination, 0o750); err != nil {
		return types.Wrap(types.ErrFilesystem, err, "failed to create %s", req.Destination)
	}
	target := req.TargetDir()
	existed, err := afero.DirExists(in.fs, target)
	if err != nil {
		return types.Wrap(types.ErrFilesystem, err, "failed to stat %s", target)
	}
	if existed && req.Overwrite {
		if err := in.fs.RemoveAll(target); err != nil {
			return types.Wrap(types.ErrFilesystem, err, "failed to remove existing %s", target)
		}
		existed = false
	}
	if err := in.extractArchive(ctx, scratch, ext, req.Destination); err != nil {
		if !existed {
			if rmErr := in.fs.RemoveAll(target); rmErr != nil {
				log.Warn().Err(rmErr).Msgf("failed to clean up partial extraction %s", target)
			}
		}
		return err
	}
	if ok, err := afero.DirExists(in.fs, target); err != nil || !ok {
		return types.Wrap(types.ErrExtraction, err, "%s did not unpack into %s", release.ArchiveName(), release.Version)
	}

	if err := in.fs.Remove(scratch); err != nil {
		log.Warn().Err(err).Msgf("failed to remove scratch archive %s", scratch)
	}
	return nil
}

// ConfirmOverwrite decides whether an installed version gets replaced.
type ConfirmOverwrite func(version string) bool

// NewRequest builds the request for installing release into dest. When the
// version is already present, confirm decides: declining yields ErrSkipped,
// accepting sets Overwrite. A nil confirm declines.
func NewRequest(fsys afero.Fs, inst apps.Installation, release model.Release, dest string, confirm ConfirmOverwrite) (*model.DownloadRequest, error) {
	req := &model.DownloadRequest{
		Installation: inst,
		Release:      release,
		Destination:  dest,
	}
	if local.VersionExists(fsys, dest, release.Version) {
		if confirm == nil || !confirm(release.Version) {
			log.Info().Msgf("%s already installed in %s, skipping", release.Version, dest)
			return nil, ErrSkipped
		}
		req.Overwrite = true
	}
	return req, nil
}
