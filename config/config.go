package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"protonup-go/api"
	"protonup-go/apps"
	"protonup-go/util"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
)

// AppName is used for the config and cache directories
const AppName = "protonup-go"

// Config holds the application settings.
type Config struct {
	DefaultInstallation string `toml:"default_installation"` // slug, e.g. "steam" or "lutris-flatpak"
	TempDir             string `toml:"temp_dir"`             // where archives are staged; empty uses the OS temp dir
	GithubAPIURL        string `toml:"github_api_url"`
	VersionFilter       string `toml:"version_filter"` // e.g. "9.0"; empty for no filter
	LogLevel            string `toml:"log_level"`
}

// DefaultConfig returns a Config struct with default values.
func DefaultConfig() Config {
	return Config{
		DefaultInstallation: apps.SteamNative.Slug(),
		GithubAPIURL:        api.DefaultBaseURL,
		LogLevel:            zerolog.InfoLevel.String(),
	}
}

// GetConfigPath returns the full path to the config file.
func GetConfigPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.toml")
}

// LoadConfig loads the configuration from the default path.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(GetConfigPath())
}

// LoadConfigFrom loads the configuration at path. A missing file yields the
// defaults without error.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("could not stat config file %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not decode config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	expanded, err := util.ExpandTilde(cfg.TempDir)
	if err != nil {
		return cfg, err
	}
	cfg.TempDir = expanded
	return cfg, nil
}

// Validate checks the fields that have a closed set of values.
func (c Config) Validate() error {
	if c.DefaultInstallation != "" {
		if _, err := apps.ParseInstallation(c.DefaultInstallation); err != nil {
			return err
		}
	}
	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	return nil
}

// Installation returns the configured default installation.
func (c Config) Installation() apps.Installation {
	inst, err := apps.ParseInstallation(c.DefaultInstallation)
	if err != nil {
		return apps.SteamNative
	}
	return inst
}

// SaveConfig saves the configuration to the default path.
func SaveConfig(cfg Config) error {
	return SaveConfigTo(GetConfigPath(), cfg)
}

// SaveConfigTo writes cfg to path, creating its directory if needed.
func SaveConfigTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", dir, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create config file %s: %w", path, err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("could not encode config to file %s: %w", path, err)
	}
	return nil
}
