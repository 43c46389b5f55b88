package config

import (
	"os"
	"path/filepath"
	"testing"

	"protonup-go/apps"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "steam", cfg.DefaultInstallation)
	assert.Equal(t, "https://api.github.com", cfg.GithubAPIURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.VersionFilter)
	assert.Empty(t, cfg.TempDir)
	assert.NoError(t, cfg.Validate())
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	assert.True(t, filepath.IsAbs(path), "config path should be absolute: %s", path)
	assert.Equal(t, filepath.Join(AppName, "config.toml"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfigFrom(filepath.Join(t.TempDir(), "nope", "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
default_installation = "lutris-flatpak"
temp_dir = "~/scratch"
version_filter = "8.0"
log_level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfigFrom(path)
	require.NoError(t, err)

	assert.Equal(t, apps.LutrisFlatpak, cfg.Installation())
	assert.Equal(t, filepath.Join(home, "scratch"), cfg.TempDir)
	assert.Equal(t, "8.0", cfg.VersionFilter)
	assert.Equal(t, "debug", cfg.LogLevel)
	// keys absent from the file keep their defaults
	assert.Equal(t, "https://api.github.com", cfg.GithubAPIURL)
}

func TestLoadConfigInvalid(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "bad toml", content: "default_installation = "},
		{name: "unknown installation", content: `default_installation = "heroic"`},
		{name: "unknown log level", content: `log_level = "loud"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))

			_, err := LoadConfigFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), AppName, "config.toml")

	cfg := DefaultConfig()
	cfg.DefaultInstallation = apps.SteamFlatpak.Slug()
	cfg.VersionFilter = "9.0"
	require.NoError(t, SaveConfigTo(path, cfg))

	loaded, err := LoadConfigFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestInstallationFallback(t *testing.T) {
	cfg := Config{DefaultInstallation: ""}
	assert.Equal(t, apps.SteamNative, cfg.Installation())
}
