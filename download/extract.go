package download

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"protonup-go/types"
	"protonup-go/variants"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/ulikunitz/xz"
)

const extractBufferSize = 1024 * 1024

// decompressor opens the compression layer for a supported archive extension.
func decompressor(ext string, r io.Reader) (io.Reader, func() error, error) {
	switch ext {
	case variants.ExtTarGz:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gz, gz.Close, nil
	case variants.ExtTarXz:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xzr, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported archive extension %q", ext)
	}
}

// extractArchive unpacks archivePath into destDir entry by entry.
func (in *Installer) extractArchive(ctx context.Context, archivePath, ext, destDir string) error {
	file, err := in.fs.Open(archivePath)
	if err != nil {
		return types.Wrap(types.ErrFilesystem, err, "failed to open archive")
	}
	defer file.Close()

	stream, closeStream, err := decompressor(ext, bufio.NewReaderSize(file, extractBufferSize))
	if err != nil {
		return types.Wrap(types.ErrExtraction, err, "failed to open %s stream", ext)
	}
	defer func() {
		if cerr := closeStream(); cerr != nil {
			log.Debug().Err(cerr).Msg("closing decompressor")
		}
	}()

	tr := tar.NewReader(stream)
	copyBuf := make([]byte, copyBufferSize)
	entries := 0
	for {
		if err := cancelled(ctx); err != nil {
			return err
		}

		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return types.Wrap(types.ErrExtraction, err, "error reading tar entry")
		}
		entries++

		target, err := safeJoin(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := in.fs.MkdirAll(target, dirMode(header.Mode)); err != nil {
				return types.Wrap(types.ErrFilesystem, err, "failed to create dir %s", target)
			}
		case tar.TypeReg, tar.TypeRegA: //nolint:staticcheck // old archives still use TypeRegA
			if err := in.writeFile(target, tr, fileMode(header.Mode), copyBuf); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := in.symlink(destDir, target, header.Linkname); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := safeJoin(destDir, header.Linkname)
			if err != nil {
				return err
			}
			if err := in.copyFile(source, target, copyBuf); err != nil {
				return err
			}
		default:
			log.Debug().Msgf("skipping tar entry %s of type %c", header.Name, header.Typeflag)
		}
	}

	if entries == 0 {
		return types.Wrap(types.ErrExtraction, nil, "archive is empty")
	}
	log.Debug().Msgf("extracted %d entries into %s", entries, destDir)
	return nil
}

// safeJoin resolves name under root and rejects anything that lands outside it.
func safeJoin(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) {
		return "", types.Wrap(types.ErrExtraction, nil, "absolute path in archive: %s", name)
	}
	target := filepath.Join(root, cleaned)
	if !within(root, target) {
		return "", types.Wrap(types.ErrExtraction, nil, "path escapes destination: %s", name)
	}
	return target, nil
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func dirMode(mode int64) os.FileMode {
	return os.FileMode(mode).Perm() | 0o700
}

func fileMode(mode int64) os.FileMode {
	perm := os.FileMode(mode).Perm()
	if perm == 0 {
		return 0o644
	}
	return perm | 0o600
}

func (in *Installer) writeFile(target string, r io.Reader, mode os.FileMode, buf []byte) error {
	if err := in.fs.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return types.Wrap(types.ErrFilesystem, err, "failed to create parent dir for %s", target)
	}
	out, err := in.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return types.Wrap(types.ErrFilesystem, err, "failed to create file %s", target)
	}
	_, err = io.CopyBuffer(out, r, buf)
	closeErr := out.Close()
	if err != nil {
		return types.Wrap(types.ErrExtraction, err, "failed to write %s", target)
	}
	if closeErr != nil {
		return types.Wrap(types.ErrFilesystem, closeErr, "failed to close %s", target)
	}
	return nil
}

func (in *Installer) symlink(root, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), resolved)
	}
	if !within(root, filepath.Clean(resolved)) {
		return types.Wrap(types.ErrExtraction, nil, "symlink %s points outside destination: %s", target, linkname)
	}

	linker, ok := in.fs.(afero.Linker)
	if !ok {
		return types.Wrap(types.ErrExtraction, nil, "filesystem cannot create symlink %s", target)
	}
	if err := in.fs.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return types.Wrap(types.ErrFilesystem, err, "failed to create parent dir for %s", target)
	}
	if err := linker.SymlinkIfPossible(linkname, target); err != nil {
		return types.Wrap(types.ErrFilesystem, err, "failed to create symlink %s", target)
	}
	return nil
}

// copyFile materialises a hard link as an independent copy.
func (in *Installer) copyFile(source, target string, buf []byte) error {
	src, err := in.fs.Open(source)
	if err != nil {
		return types.Wrap(types.ErrExtraction, err, "hard link target %s missing", source)
	}
	defer src.Close()

	mode := os.FileMode(0o644)
	if info, err := src.Stat(); err == nil {
		mode = info.Mode().Perm()
	}
	return in.writeFile(target, src, mode, buf)
}
