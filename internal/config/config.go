package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone the feed is authored in
	// (e.g. "America/New_York"). Event dates are timezone-neutral;
	// this zone is used when combining them with wall-clock times.
	Timezone string `yaml:"timezone" json:"timezone"`

	// SheetID is the spreadsheet document id of the event feed.
	SheetID string `yaml:"sheet_id" json:"sheet_id"`

	// FeedGID is the tab id of the events tab inside the feed sheet.
	FeedGID string `yaml:"feed_gid" json:"feed_gid"`

	// ColorGIDs are candidate tab ids probed for the color palette tab.
	// The palette tab is recognized by its "id" and "hex" headers.
	ColorGIDs []string `yaml:"color_gids" json:"color_gids"`

	// RefreshCron is a cron-style schedule string (e.g. "*/15 * * * *")
	// used for periodic feed reloads.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// ProgramFetchTimeoutSeconds bounds each per-event program fetch.
	ProgramFetchTimeoutSeconds int `yaml:"program_fetch_timeout_seconds" json:"program_fetch_timeout_seconds"`

	// SampleFallback substitutes the built-in sample dataset when the
	// bulk feed load fails. Disable to serve an empty feed instead.
	SampleFallback bool `yaml:"sample_fallback" json:"sample_fallback"`

	// TranslationCacheDays is the expiry of the translation cache.
	TranslationCacheDays int `yaml:"translation_cache_days" json:"translation_cache_days"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:                     "127.0.0.1:8080",
		Timezone:                   "America/New_York",
		FeedGID:                    "0",
		ColorGIDs:                  defaultColorGIDs(),
		RefreshCron:                "*/15 * * * *",
		ProgramFetchTimeoutSeconds: 10,
		SampleFallback:             true,
		TranslationCacheDays:       30,
		BasicAuth:                  nil,
	}
}

// The palette tab's gid is not stable across spreadsheet copies, so the
// loader probes a known-good gid first and then the first few tabs.
func defaultColorGIDs() []string {
	return []string{"1646991692", "0", "1", "2", "3", "4", "5"}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	if c.FeedGID == "" {
		c.FeedGID = "0"
	}
	if len(c.ColorGIDs) == 0 {
		c.ColorGIDs = defaultColorGIDs()
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.ProgramFetchTimeoutSeconds <= 0 {
		c.ProgramFetchTimeoutSeconds = 10
	}
	if c.TranslationCacheDays <= 0 {
		c.TranslationCacheDays = 30
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".sheetcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
