package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"protonup-go/model"
	"protonup-go/types"
	"protonup-go/variants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedJSON = `[
	{
		"tag_name": "v3-rc1",
		"name": "v3 release candidate",
		"draft": false,
		"prerelease": true,
		"published_at": "2024-03-01T10:00:00Z",
		"assets": [
			{"name": "GE-Proton3-rc1.tar.gz", "size": 300, "browser_download_url": "%[1]s/dl/GE-Proton3-rc1.tar.gz"},
			{"name": "GE-Proton3-rc1.sha512sum", "size": 160, "browser_download_url": "%[1]s/dl/GE-Proton3-rc1.sha512sum"}
		]
	},
	{
		"tag_name": "v2",
		"name": "GE-Proton2",
		"draft": false,
		"prerelease": false,
		"published_at": "2024-02-01T10:00:00Z",
		"assets": [
			{"name": "GE-Proton2.sha512sum", "size": 150, "browser_download_url": "%[1]s/dl/GE-Proton2.sha512sum"},
			{"name": "GE-Proton2.tar.gz", "size": 200, "browser_download_url": "%[1]s/dl/GE-Proton2.tar.gz"}
		]
	},
	{
		"tag_name": "broken",
		"name": "missing checksum",
		"assets": [
			{"name": "GE-ProtonBroken.tar.gz", "size": 10, "browser_download_url": "%[1]s/dl/GE-ProtonBroken.tar.gz"}
		]
	},
	{
		"tag_name": "v1",
		"name": "GE-Proton1",
		"draft": false,
		"prerelease": false,
		"published_at": "2024-01-01T10:00:00Z",
		"assets": [
			{"name": "wine-lutris-GE-Proton1-x86_64.tar.xz", "size": 100, "browser_download_url": "%[1]s/dl/wine-lutris-GE-Proton1-x86_64.tar.xz"},
			{"name": "wine-lutris-GE-Proton1-x86_64.sha512sum", "size": 150, "browser_download_url": "%[1]s/dl/wine-lutris-GE-Proton1-x86_64.sha512sum"}
		]
	}
]`

var testParams = variants.GithubParameters{
	Owner:            "owner",
	Repo:             "repo",
	Extensions:       []string{variants.ExtTarGz, variants.ExtTarXz},
	ChecksumSuffixes: []string{variants.SuffixSha512, variants.SuffixSha256},
	AssetPrefix:      "wine-",
}

func newFeedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET request, got %s", r.Method)
		}
		if r.URL.Path != "/repos/owner/repo/releases" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if body == feedJSON {
			_, _ = fmt.Fprintf(w, body, server.URL)
			return
		}
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestListReleases(t *testing.T) {
	server := newFeedServer(t, http.StatusOK, feedJSON)
	client := NewClient(server.Client(), server.URL)

	releases, err := client.ListReleases(context.Background(), testParams)
	require.NoError(t, err)
	require.Len(t, releases, 3, "release without checksum should be dropped")

	assert.Equal(t, []string{"v3-rc1", "v2", "v1"}, []string{releases[0].TagName, releases[1].TagName, releases[2].TagName})

	v2 := releases[1]
	assert.Equal(t, "GE-Proton2", v2.Version)
	assert.Equal(t, server.URL+"/dl/GE-Proton2.tar.gz", v2.DownloadURL)
	assert.Equal(t, server.URL+"/dl/GE-Proton2.sha512sum", v2.ChecksumURL)
	assert.Equal(t, uint64(200), v2.Size)
	assert.False(t, v2.Prerelease)

	v1 := releases[2]
	assert.Equal(t, "lutris-GE-Proton1-x86_64", v1.Version, "version is the directory the archive unpacks to")
	assert.Equal(t, "wine-lutris-GE-Proton1-x86_64.tar.xz", v1.ArchiveName())
	assert.Equal(t, server.URL+"/dl/wine-lutris-GE-Proton1-x86_64.sha512sum", v1.ChecksumURL)
	assert.Equal(t, ".tar.xz", v1.ArchiveExt())
}

func TestResolveTag(t *testing.T) {
	server := newFeedServer(t, http.StatusOK, feedJSON)
	client := NewClient(server.Client(), server.URL)
	ctx := context.Background()

	latest, err := client.ResolveTag(ctx, LatestTag, testParams)
	require.NoError(t, err)
	assert.Equal(t, "v2", latest.TagName, "prerelease must be skipped for latest")

	v1, err := client.ResolveTag(ctx, "v1", testParams)
	require.NoError(t, err)
	assert.Equal(t, "v1", v1.TagName)

	rc, err := client.ResolveTag(ctx, "v3-rc1", testParams)
	require.NoError(t, err)
	assert.True(t, rc.Prerelease)

	_, err = client.ResolveTag(ctx, "v3", testParams)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAssetNotFound)
}

func TestFindTagSkipsDrafts(t *testing.T) {
	releases := []model.Release{
		{TagName: "v3", Draft: true},
		{TagName: "v2", Prerelease: true},
		{TagName: "v1"},
	}

	got, err := FindTag(releases, LatestTag)
	require.NoError(t, err)
	assert.Equal(t, "v1", got.TagName)

	_, err = FindTag(releases[:2], LatestTag)
	assert.ErrorIs(t, err, types.ErrAssetNotFound)

	_, err = FindTag(nil, "v1")
	assert.ErrorIs(t, err, types.ErrAssetNotFound)
}

func TestListReleasesErrors(t *testing.T) {
	testCases := []struct {
		name     string
		status   int
		body     string
		expected error
		contains string
	}{
		{"invalid json", http.StatusOK, `[{"tag_name": `, types.ErrParse, ""},
		{"object instead of list", http.StatusOK, `{"message": "Not Found"}`, types.ErrParse, ""},
		{"not found", http.StatusNotFound, `{"message": "Not Found"}`, types.ErrNetwork, "404"},
		{"rate limited", http.StatusForbidden, `{"message": "API rate limit exceeded"}`, types.ErrNetwork, "rate limited"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := newFeedServer(t, tc.status, tc.body)
			client := NewClient(server.Client(), server.URL)

			_, err := client.ListReleases(context.Background(), testParams)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expected)
			if tc.contains != "" {
				assert.Contains(t, err.Error(), tc.contains)
			}
		})
	}
}

func TestListReleasesTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(nil, url)
	_, err := client.ListReleases(context.Background(), testParams)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrNetwork)
	assert.True(t, types.Retryable(err))
}

func TestListReleasesEmptyFeed(t *testing.T) {
	server := newFeedServer(t, http.StatusOK, `[]`)
	client := NewClient(server.Client(), server.URL)

	releases, err := client.ListReleases(context.Background(), testParams)
	require.NoError(t, err)
	assert.Empty(t, releases)

	_, err = client.ResolveTag(context.Background(), LatestTag, testParams)
	assert.ErrorIs(t, err, types.ErrAssetNotFound)
}

func TestFindChecksumPrefersMatchingStem(t *testing.T) {
	assets := []githubAsset{
		{Name: "other.sha512sum", BrowserDownloadURL: "u1"},
		{Name: "GE-Proton9-1.sha256sum", BrowserDownloadURL: "u2"},
		{Name: "GE-Proton9-1.sha512sum", BrowserDownloadURL: "u3"},
	}

	got, ok := findChecksum(assets, "GE-Proton9-1", testParams.ChecksumSuffixes)
	require.True(t, ok)
	assert.Equal(t, "u3", got.BrowserDownloadURL)

	got, ok = findChecksum(assets[:1], "GE-Proton9-1", testParams.ChecksumSuffixes)
	require.True(t, ok)
	assert.Equal(t, "u1", got.BrowserDownloadURL)
}

func TestFilterMinVersion(t *testing.T) {
	releases := []model.Release{
		{TagName: "GE-Proton10-1"},
		{TagName: "GE-Proton9-5"},
		{TagName: "GE-Proton8-32"},
		{TagName: "experimental"},
	}

	filtered, err := FilterMinVersion(releases, "9.0")
	require.NoError(t, err)
	var tags []string
	for _, r := range filtered {
		tags = append(tags, r.TagName)
	}
	assert.Equal(t, []string{"GE-Proton10-1", "GE-Proton9-5", "experimental"}, tags)

	all, err := FilterMinVersion(releases, "")
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = FilterMinVersion(releases, "not.a.version")
	assert.ErrorIs(t, err, types.ErrParse)
}
