package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"protonup-go/model"
	"protonup-go/types"
	"protonup-go/variants"

	version "github.com/hashicorp/go-version"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// LatestTag is the symbolic tag resolving to the newest stable release.
const LatestTag = "latest"

// maxFeedBytes bounds the release listing read into memory.
const maxFeedBytes = 16 << 20

type githubRelease struct {
	TagName     string        `json:"tag_name"`
	Name        string        `json:"name"`
	Draft       bool          `json:"draft"`
	Prerelease  bool          `json:"prerelease"`
	PublishedAt time.Time     `json:"published_at"`
	Assets      []githubAsset `json:"assets"`
}

type githubAsset struct {
	Name               string `json:"name"`
	Size               int64  `json:"size"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Client reads release feeds from a GitHub-compatible API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ListReleases fetches the release feed of params, newest first. Releases
// missing an archive or a checksum asset are skipped.
func (c *Client) ListReleases(ctx context.Context, params variants.GithubParameters) ([]model.Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.baseURL, params.Owner, params.Repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, types.Wrap(types.ErrNetwork, err, "failed to create request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	log.Debug().Str("url", url).Msg("fetching release feed")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, types.Wrap(types.ErrNetwork, err, "failed to fetch releases")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, types.Wrap(types.ErrNetwork, err, "failed to read release feed")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	var entries []githubRelease
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, types.Wrap(types.ErrParse, err, "failed to decode release feed of %s/%s", params.Owner, params.Repo)
	}

	releases := make([]model.Release, 0, len(entries))
	for _, entry := range entries {
		release, ok := toRelease(entry, params)
		if !ok {
			log.Debug().Msgf("skipping release %s: no archive or checksum asset", entry.TagName)
			continue
		}
		releases = append(releases, release)
	}
	return releases, nil
}

// ResolveTag returns the release tagged tag. LatestTag selects the first
// release that is neither a draft nor a prerelease.
func (c *Client) ResolveTag(ctx context.Context, tag string, params variants.GithubParameters) (model.Release, error) {
	releases, err := c.ListReleases(ctx, params)
	if err != nil {
		return model.Release{}, err
	}
	return FindTag(releases, tag)
}

// FindTag applies the ResolveTag rules to an already fetched listing.
func FindTag(releases []model.Release, tag string) (model.Release, error) {
	for _, r := range releases {
		if tag == LatestTag {
			if !r.Draft && !r.Prerelease {
				return r, nil
			}
			continue
		}
		if r.TagName == tag {
			return r, nil
		}
	}
	if tag == LatestTag {
		return model.Release{}, types.Wrap(types.ErrAssetNotFound, nil, "no stable release found")
	}
	return model.Release{}, types.Wrap(types.ErrAssetNotFound, nil, "no release tagged %q", tag)
}

// FilterMinVersion drops releases older than minVersion. An empty filter
// keeps everything; releases without a parseable version are kept.
func FilterMinVersion(releases []model.Release, minVersion string) ([]model.Release, error) {
	if minVersion == "" {
		return releases, nil
	}
	floor, err := version.NewVersion(minVersion)
	if err != nil {
		return nil, types.Wrap(types.ErrParse, err, "invalid version filter format '%s'", minVersion)
	}

	filtered := make([]model.Release, 0, len(releases))
	for _, r := range releases {
		v, err := model.ToolVersion(r.TagName)
		if err == nil && v.LessThan(floor) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

func statusError(status int, body []byte) error {
	preview := string(body)
	if len(preview) > 200 {
		preview = preview[:200] + "..."
	}
	if status == http.StatusForbidden || status == http.StatusTooManyRequests {
		return types.Wrap(types.ErrNetwork, nil, "GitHub API returned %d (probably rate limited): %s", status, preview)
	}
	return types.Wrap(types.ErrNetwork, nil, "GitHub API returned %d: %s", status, preview)
}

func toRelease(entry githubRelease, params variants.GithubParameters) (model.Release, bool) {
	archive, ok := findArchive(entry.Assets, params.Extensions)
	if !ok {
		return model.Release{}, false
	}
	ext := model.ArchiveExt(archive.Name)
	stem := archive.Name[:len(archive.Name)-len(ext)]

	checksum, ok := findChecksum(entry.Assets, stem, params.ChecksumSuffixes)
	if !ok {
		return model.Release{}, false
	}

	size := archive.Size
	if size < 0 {
		size = 0
	}
	return model.Release{
		TagName:     entry.TagName,
		Name:        entry.Name,
		Version:     params.InstallName(stem),
		DownloadURL: archive.BrowserDownloadURL,
		ChecksumURL: checksum.BrowserDownloadURL,
		Size:        uint64(size),
		Draft:       entry.Draft,
		Prerelease:  entry.Prerelease,
		PublishedAt: entry.PublishedAt,
	}, true
}

func findArchive(assets []githubAsset, extensions []string) (githubAsset, bool) {
	for _, a := range assets {
		if a.BrowserDownloadURL == "" {
			continue
		}
		lower := strings.ToLower(a.Name)
		for _, ext := range extensions {
			if strings.HasSuffix(lower, ext) {
				return a, true
			}
		}
	}
	return githubAsset{}, false
}

// findChecksum prefers "<stem><suffix>" and falls back to any asset with a
// recognised suffix.
func findChecksum(assets []githubAsset, stem string, suffixes []string) (githubAsset, bool) {
	for _, suffix := range suffixes {
		for _, a := range assets {
			if a.BrowserDownloadURL != "" && a.Name == stem+suffix {
				return a, true
			}
		}
	}
	for _, suffix := range suffixes {
		for _, a := range assets {
			if a.BrowserDownloadURL != "" && strings.HasSuffix(strings.ToLower(a.Name), suffix) {
				return a, true
			}
		}
	}
	return githubAsset{}, false
}
