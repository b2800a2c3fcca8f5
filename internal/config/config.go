// Package config provides pixelpick settings and data locations.
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/pixelpick/internal/colour"
	"github.com/jmylchreest/pixelpick/internal/store"
)

// Environment variables read by pixelpick.
const (
	EnvDataDir       = "PIXELPICK_DATA_DIR"
	EnvAutoClipboard = "PIXELPICK_AUTO_CLIPBOARD"
	EnvDefaultFormat = "PIXELPICK_DEFAULT_FORMAT"
	EnvSampler       = "PIXELPICK_SAMPLER"
)

// AppDirName is the directory created under the user config dir.
const AppDirName = "pixelpick"

// Settings are the persisted user preferences.
type Settings struct {
	// AutoClipboard copies every picked colour to the clipboard.
	AutoClipboard bool `toml:"auto_clipboard"`
	// DefaultFormat is the format copied after a pick.
	DefaultFormat colour.Format `toml:"default_format"`
}

// Defaults returns the settings written on first run.
func Defaults() Settings {
	return Settings{
		AutoClipboard: true,
		DefaultFormat: colour.FormatHex,
	}
}

// Validate checks that the settings are usable.
func (s Settings) Validate() error {
	if _, err := colour.ParseFormat(string(s.DefaultFormat)); err != nil {
		return fmt.Errorf("invalid default_format: %w", err)
	}
	return nil
}

// DataDir returns the directory for stored state: $PIXELPICK_DATA_DIR when
// set, otherwise pixelpick/ under the user config directory.
func DataDir() (string, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, AppDirName), nil
}

// Install seeds an empty history and default settings the first time
// pixelpick runs against s. Each key is seeded only when it is absent, so
// existing data is never replaced. It reports whether anything was seeded.
func Install(ctx context.Context, s store.Store, logger hclog.Logger) (bool, error) {
	seeds := []struct {
		key   string
		value any
	}{
		{store.KeyColorHistory, struct {
			Colors []string `toml:"colors"`
		}{Colors: []string{}}},
		{store.KeySettings, Defaults()},
	}

	seeded := false
	for _, seed := range seeds {
		var existing map[string]any
		found, err := s.Get(ctx, seed.key, &existing)
		if err != nil {
			return seeded, err
		}
		if found {
			continue
		}
		if err := s.Set(ctx, seed.key, seed.value); err != nil {
			return seeded, err
		}
		seeded = true
	}

	if seeded && logger != nil {
		logger.Info("pixelpick installed", "reason", "install")
	}
	return seeded, nil
}

// LoadSettings reads settings from s, falling back to Defaults when they are
// missing, unreadable or invalid, then applies environment overrides.
func LoadSettings(ctx context.Context, s store.Store, logger hclog.Logger) Settings {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	settings := Defaults()
	stored := Defaults()
	found, err := s.Get(ctx, store.KeySettings, &stored)
	switch {
	case err != nil:
		logger.Error("failed to load settings", "error", err)
	case !found:
	case stored.Validate() != nil:
		logger.Warn("ignoring invalid settings", "error", stored.Validate())
	default:
		settings = stored
	}

	return ApplyEnv(settings, logger)
}

// ApplyEnv overrides settings from the environment. Invalid values are
// logged and ignored.
func ApplyEnv(settings Settings, logger hclog.Logger) Settings {
	if v := os.Getenv(EnvAutoClipboard); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("ignoring invalid environment value", "var", EnvAutoClipboard, "value", v)
		} else {
			settings.AutoClipboard = b
		}
	}
	if v := os.Getenv(EnvDefaultFormat); v != "" {
		f, err := colour.ParseFormat(v)
		if err != nil {
			logger.Warn("ignoring invalid environment value", "var", EnvDefaultFormat, "value", v)
		} else {
			settings.DefaultFormat = f
		}
	}
	return settings
}
