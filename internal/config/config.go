// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

// DefaultAlbum is the gallery album every download and saved status lands in.
// Previously saved libraries depend on it, so it must not change.
const DefaultAlbum = "ReelMate"

// Config is the root configuration structure.
type Config struct {
	Log        LogConfig        `toml:"log"`
	Library    LibraryConfig    `toml:"library"`
	Extractor  ExtractorConfig  `toml:"extractor"`
	Download   DownloadConfig   `toml:"download"`
	Permission PermissionConfig `toml:"permission"`
	Status     StatusConfig     `toml:"status"`
}

type LogConfig struct {
	Level string `toml:"level" env:"REELMATE_LOG_LEVEL" env-default:"info"`
	File  string `toml:"file" env:"REELMATE_LOG_FILE"`
	// ActivityRetention prunes the activity history. Zero keeps everything.
	ActivityRetention time.Duration `toml:"activity_retention" env-default:"2160h"`
}

type LibraryConfig struct {
	Root       string `toml:"root" env:"REELMATE_LIBRARY_ROOT" env-default:"~/Pictures"`
	Album      string `toml:"album" env-default:"ReelMate"`
	Database   string `toml:"database" env:"REELMATE_DATABASE" env-default:"~/.local/share/reelmate/reelmate.db"`
	FetchLimit int    `toml:"fetch_limit" env-default:"2000"`
}

type ExtractorConfig struct {
	Endpoint     string        `toml:"endpoint" env:"REELMATE_EXTRACTOR_URL" env-default:"https://reelmate-jet.vercel.app/"`
	Timeout      time.Duration `toml:"timeout" env-default:"30s"`
	CacheTTL     time.Duration `toml:"cache_ttl" env-default:"10m"` // negative disables the cache
	BlockedHosts []string      `toml:"blocked_hosts" env-default:"youtube.com,youtu.be" env-separator:","`
}

type DownloadConfig struct {
	CacheDir   string        `toml:"cache_dir" env:"REELMATE_CACHE_DIR" env-default:"~/.cache/reelmate"`
	KeepCache  bool          `toml:"keep_cache"`
	Timeout    time.Duration `toml:"timeout"` // zero means no limit
	UserAgent  string        `toml:"user_agent" env-default:"reelmate/1.0"`
	StaleAfter time.Duration `toml:"stale_after" env-default:"24h"` // abandoned .part files
}

type PermissionConfig struct {
	AutoGrant bool   `toml:"auto_grant" env:"REELMATE_AUTO_GRANT"`
	InMemory  bool   `toml:"in_memory"` // do not persist the media grant between runs
	GrantFile string `toml:"grant_file" env-default:"~/.local/share/reelmate/media_grant"`
}

type StatusConfig struct {
	StorageRoot         string   `toml:"storage_root" env:"REELMATE_STORAGE_ROOT" env-default:"/sdcard"`
	GrantFile           string   `toml:"grant_file" env-default:"~/.local/share/reelmate/wa_statuses_uri"`
	ClearGrantOnFailure bool     `toml:"clear_grant_on_failure"`
	Extensions          []string `toml:"extensions" env-default:"jpg,jpeg,png,mp4" env-separator:","`
}

// Load reads, parses, and validates the configuration file.
// Returns *Error when environment variables are missing or validation fails.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &Error{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration without validating it.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

// Default returns a configuration built from defaults and environment overrides only.
func Default() (*Config, error) {
	var cfg Config
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, &Error{Errors: errs}
	}
	return &cfg, nil
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, nil, err
	}
	return &cfg, missing, nil
}

// applyDefaults fills zero fields from env-default tags, applies REELMATE_*
// overrides, and expands a leading ~ in paths.
func (c *Config) applyDefaults() error {
	if err := cleanenv.ReadEnv(c); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	paths := []*string{
		&c.Log.File,
		&c.Library.Root,
		&c.Library.Database,
		&c.Download.CacheDir,
		&c.Permission.GrantFile,
		&c.Status.StorageRoot,
		&c.Status.GrantFile,
	}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}
