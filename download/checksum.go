package download

import (
	"context"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"path"
	"path/filepath"
	"strings"

	"protonup-go/model"
	"protonup-go/types"
	"protonup-go/variants"

	"github.com/cavaliergopher/grab/v3"
)

// maxChecksumSize caps how much of a checksum asset is read into memory.
const maxChecksumSize = 64 * 1024

type digestAlgo struct {
	name string
	size int
	new  func() hash.Hash
}

var (
	algoSHA512 = digestAlgo{name: "sha512", size: sha512.Size, new: sha512.New}
	algoSHA256 = digestAlgo{name: "sha256", size: sha256.Size, new: sha256.New}
)

// algoForURL picks the digest from the checksum asset suffix.
func algoForURL(url string) (digestAlgo, error) {
	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, variants.SuffixSha512):
		return algoSHA512, nil
	case strings.HasSuffix(lower, variants.SuffixSha256):
		return algoSHA256, nil
	default:
		return digestAlgo{}, types.Wrap(types.ErrVerification, nil, "unrecognised checksum asset %s", path.Base(url))
	}
}

// fetchChecksum downloads the checksum asset into memory.
func (in *Installer) fetchChecksum(ctx context.Context, url string) ([]byte, error) {
	req, err := grab.NewRequest(path.Base(url), url)
	if err != nil {
		return nil, types.Wrap(types.ErrNetwork, err, "invalid checksum url %s", url)
	}
	req.NoStore = true
	req.NoResume = true
	// NoStore buffers the whole body, so the size is checked before the copy.
	req.BeforeCopy = func(resp *grab.Response) error {
		n := resp.HTTPResponse.ContentLength
		if n < 0 {
			return types.Wrap(types.ErrVerification, nil, "checksum file %s has no declared size", path.Base(url))
		}
		if n > maxChecksumSize {
			return types.Wrap(types.ErrVerification, nil, "checksum file too large (%d bytes)", n)
		}
		return nil
	}
	req = req.WithContext(ctx)

	resp := in.checksumClient.Do(req)
	if err := resp.Err(); err != nil {
		if cerr := cancelled(ctx); cerr != nil {
			return nil, cerr
		}
		if types.Kind(err) != nil {
			return nil, err
		}
		return nil, types.Wrap(types.ErrNetwork, err, "failed to fetch checksum %s", url)
	}
	data, err := resp.Bytes()
	if err != nil {
		return nil, types.Wrap(types.ErrNetwork, err, "failed to read checksum %s", url)
	}
	if len(data) > maxChecksumSize {
		return nil, types.Wrap(types.ErrVerification, nil, "checksum file too large (%d bytes)", len(data))
	}
	return data, nil
}

// parseChecksum accepts either a bare hex digest or "<hex>  <name>" lines.
// A line naming archiveName wins; a file with exactly one digest line is
// accepted whatever name it carries.
func parseChecksum(data []byte, algo digestAlgo, archiveName string) (string, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("checksum file is empty")
	}
	hexLen := algo.size * 2
	if isHexDigest(text, hexLen) {
		return strings.ToLower(text), nil
	}

	var only []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 || !isHexDigest(fields[0], hexLen) {
			continue
		}
		digest := strings.ToLower(fields[0])
		if len(fields) >= 2 {
			// "*name" marks binary mode in coreutils output.
			name := filepath.Base(strings.TrimPrefix(fields[len(fields)-1], "*"))
			if name == archiveName {
				return digest, nil
			}
		}
		only = append(only, digest)
	}
	if len(only) == 1 {
		return only[0], nil
	}
	return "", fmt.Errorf("no %s digest for %s", algo.name, archiveName)
}

func isHexDigest(value string, expectedLen int) bool {
	if len(value) != expectedLen {
		return false
	}
	_, err := hex.DecodeString(value)
	return err == nil
}

// verifyArchive hashes the scratch file and compares it with the published digest.
func (in *Installer) verifyArchive(ctx context.Context, archivePath string, release model.Release) error {
	algo, err := algoForURL(release.ChecksumURL)
	if err != nil {
		return err
	}
	data, err := in.fetchChecksum(ctx, release.ChecksumURL)
	if err != nil {
		return err
	}
	want, err := parseChecksum(data, algo, release.ArchiveName())
	if err != nil {
		return types.Wrap(types.ErrVerification, err, "unparseable checksum file")
	}

	f, err := in.fs.Open(archivePath)
	if err != nil {
		return types.Wrap(types.ErrFilesystem, err, "failed to open %s", archivePath)
	}
	defer f.Close()

	h := algo.new()
	if _, err := io.CopyBuffer(h, &contextReader{ctx: ctx, r: f}, make([]byte, copyBufferSize)); err != nil {
		if errors.Is(err, ErrCancelled) {
			return err
		}
		return types.Wrap(types.ErrFilesystem, err, "failed to hash %s", archivePath)
	}
	got := hex.EncodeToString(h.Sum(nil))
	if got != want {
		return types.Wrap(types.ErrVerification, nil, "%s mismatch for %s: expected %s, got %s",
			algo.name, release.ArchiveName(), want, got)
	}
	return nil
}
