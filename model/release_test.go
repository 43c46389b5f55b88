package model

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArchiveExt(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{"GE-Proton9-1.tar.gz", ".tar.gz"},
		{"wine-lutris-GE-Proton8-26-x86_64.tar.xz", ".tar.xz"},
		{"https://example.com/dl/GE-Proton9-1.TAR.GZ", ".tar.gz"},
		{"GE-Proton9-1.sha512sum", ""},
		{"GE-Proton9-1.zip", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ArchiveExt(tc.name))
		})
	}
}

func TestReleaseArchiveName(t *testing.T) {
	r := Release{DownloadURL: "https://github.com/x/y/releases/download/GE-Proton9-1/GE-Proton9-1.tar.gz"}

	assert.Equal(t, "GE-Proton9-1.tar.gz", r.ArchiveName())
	assert.Equal(t, ".tar.gz", r.ArchiveExt())
}

func TestDownloadRequestTargetDir(t *testing.T) {
	req := DownloadRequest{
		Destination: filepath.FromSlash("/games/compatibilitytools.d"),
		Release:     Release{Version: "GE-Proton9-1"},
	}

	assert.Equal(t, filepath.FromSlash("/games/compatibilitytools.d/GE-Proton9-1"), req.TargetDir())
}
