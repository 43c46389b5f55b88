package model

import (
	"path"
	"path/filepath"
	"strings"
	"time"

	"protonup-go/apps"
)

// Release is one published version of a variant, reduced to what the
// pipeline needs: an archive asset and the asset holding its checksum.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Version     string    `json:"version"` // top-level directory the archive extracts to
	DownloadURL string    `json:"download_url"`
	ChecksumURL string    `json:"checksum_url"`
	Size        uint64    `json:"size"` // archive size in bytes, as published
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

// ArchiveName returns the file name of the archive asset.
func (r Release) ArchiveName() string {
	return path.Base(r.DownloadURL)
}

// ArchiveExt returns the archive extension of the download URL
// (".tar.gz" or ".tar.xz"), or "" when it is neither.
func (r Release) ArchiveExt() string {
	return ArchiveExt(r.DownloadURL)
}

// ArchiveExt returns the supported archive extension name ends with, or "".
func ArchiveExt(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range []string{".tar.gz", ".tar.xz"} {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	return ""
}

// DownloadRequest is built by the caller after the overwrite policy has been
// applied, and consumed once by the download pipeline.
type DownloadRequest struct {
	Installation apps.Installation
	Release      Release
	Destination  string // expanded compatibility-tools directory
	Overwrite    bool   // replace an existing Destination/Version directory
}

// TargetDir is the directory the release ends up in.
func (r DownloadRequest) TargetDir() string {
	return filepath.Join(r.Destination, r.Release.Version)
}
