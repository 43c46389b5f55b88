package download

import (
	"archive/tar"
	"context"
	"os"
	"path/filepath"
	"testing"

	"protonup-go/types"
	"protonup-go/variants"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeJoin(t *testing.T) {
	testCases := []struct {
		name    string
		entry   string
		want    string
		wantErr bool
	}{
		{name: "plain", entry: "GE-Proton9-1/proton", want: "/dest/GE-Proton9-1/proton"},
		{name: "dot prefix", entry: "./GE-Proton9-1/", want: "/dest/GE-Proton9-1"},
		{name: "inner dotdot", entry: "a/../b", want: "/dest/b"},
		{name: "root itself", entry: "./", want: "/dest"},
		{name: "escape", entry: "../x", wantErr: true},
		{name: "deep escape", entry: "a/../../x", wantErr: true},
		{name: "absolute", entry: "/etc/passwd", wantErr: true},
		{name: "dotdot prefix name", entry: "..hidden/file", want: "/dest/..hidden/file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := safeJoin("/dest", tc.entry)
			if tc.wantErr {
				require.ErrorIs(t, err, types.ErrExtraction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func writeArchive(t *testing.T, fsys afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, data, 0o644))
}

func TestExtractLinksOnOsFs(t *testing.T) {
	root := t.TempDir()
	fsys := afero.NewOsFs()
	in := NewInstaller(WithFs(fsys))

	archive := gzipBytes(t, buildTar(t, []tarEntry{
		dirEntry("GE-Proton9-1/"),
		fileEntry("GE-Proton9-1/files/lib/libfoo.so.1", "elf"),
		{name: "GE-Proton9-1/files/lib/libfoo.so", typeflag: tar.TypeSymlink, linkname: "libfoo.so.1"},
		{name: "GE-Proton9-1/files/lib/libfoo-copy.so", typeflag: tar.TypeLink, linkname: "GE-Proton9-1/files/lib/libfoo.so.1"},
	}))
	archivePath := filepath.Join(root, "a.tar.gz")
	writeArchive(t, fsys, archivePath, archive)
	dest := filepath.Join(root, "dest")

	require.NoError(t, in.extractArchive(context.Background(), archivePath, variants.ExtTarGz, dest))

	lib := filepath.Join(dest, "GE-Proton9-1/files/lib")
	target, err := os.Readlink(filepath.Join(lib, "libfoo.so"))
	require.NoError(t, err)
	assert.Equal(t, "libfoo.so.1", target)

	data, err := os.ReadFile(filepath.Join(lib, "libfoo-copy.so"))
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))
}

func TestExtractRejectsEscapingSymlink(t *testing.T) {
	root := t.TempDir()
	fsys := afero.NewOsFs()
	in := NewInstaller(WithFs(fsys))

	archive := gzipBytes(t, buildTar(t, []tarEntry{
		dirEntry("GE-Proton9-1/"),
		{name: "GE-Proton9-1/etc", typeflag: tar.TypeSymlink, linkname: "../../../etc"},
	}))
	archivePath := filepath.Join(root, "a.tar.gz")
	writeArchive(t, fsys, archivePath, archive)

	err := in.extractArchive(context.Background(), archivePath, variants.ExtTarGz, filepath.Join(root, "dest"))
	require.ErrorIs(t, err, types.ErrExtraction)

	_, err = os.Lstat(filepath.Join(root, "dest/GE-Proton9-1/etc"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractSymlinkWithoutLinkSupport(t *testing.T) {
	fsys := afero.NewMemMapFs()
	in := NewInstaller(WithFs(fsys))

	archive := gzipBytes(t, buildTar(t, []tarEntry{
		{name: "v/link", typeflag: tar.TypeSymlink, linkname: "target"},
	}))
	writeArchive(t, fsys, "/a.tar.gz", archive)

	err := in.extractArchive(context.Background(), "/a.tar.gz", variants.ExtTarGz, "/dest")
	require.ErrorIs(t, err, types.ErrExtraction)
}

func TestExtractEmptyArchive(t *testing.T) {
	fsys := afero.NewMemMapFs()
	in := NewInstaller(WithFs(fsys))
	writeArchive(t, fsys, "/empty.tar.xz", xzBytes(t, buildTar(t, nil)))

	err := in.extractArchive(context.Background(), "/empty.tar.xz", variants.ExtTarXz, "/dest")
	require.ErrorIs(t, err, types.ErrExtraction)
}

func TestExtractUnsupportedExtension(t *testing.T) {
	fsys := afero.NewMemMapFs()
	in := NewInstaller(WithFs(fsys))
	writeArchive(t, fsys, "/a.zip", []byte("PK"))

	err := in.extractArchive(context.Background(), "/a.zip", ".zip", "/dest")
	require.ErrorIs(t, err, types.ErrExtraction)
}

func TestExtractTruncatedArchive(t *testing.T) {
	fsys := afero.NewMemMapFs()
	in := NewInstaller(WithFs(fsys))

	full := protonArchive(t, "GE-Proton9-1")
	writeArchive(t, fsys, "/a.tar.gz", full[:len(full)/2])

	err := in.extractArchive(context.Background(), "/a.tar.gz", variants.ExtTarGz, "/dest")
	require.ErrorIs(t, err, types.ErrExtraction)
}

func TestExtractCancelled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	in := NewInstaller(WithFs(fsys))
	writeArchive(t, fsys, "/a.tar.gz", protonArchive(t, "GE-Proton9-1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := in.extractArchive(ctx, "/a.tar.gz", variants.ExtTarGz, "/dest")
	require.ErrorIs(t, err, ErrCancelled)
}
