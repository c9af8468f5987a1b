// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if c.Log.ActivityRetention < 0 {
		errs = append(errs, "log.activity_retention: must not be negative")
	}

	// Library
	if c.Library.Root == "" {
		errs = append(errs, "library.root: required")
	}
	if c.Library.Database == "" {
		errs = append(errs, "library.database: required")
	}
	if c.Library.Album == "" {
		errs = append(errs, "library.album: required")
	} else if strings.ContainsAny(c.Library.Album, `/\`) || c.Library.Album == "." || c.Library.Album == ".." {
		errs = append(errs, fmt.Sprintf("library.album: must be a plain name, got %q", c.Library.Album))
	}
	if c.Library.FetchLimit < 1 {
		errs = append(errs, fmt.Sprintf("library.fetch_limit: must be positive, got %d", c.Library.FetchLimit))
	}

	// Extractor
	if u, err := url.Parse(c.Extractor.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("extractor.endpoint: must be an http(s) URL, got %q", c.Extractor.Endpoint))
	}
	if c.Extractor.Timeout < 0 {
		errs = append(errs, "extractor.timeout: must not be negative")
	}

	// Download
	if c.Download.CacheDir == "" {
		errs = append(errs, "download.cache_dir: required")
	}
	if c.Download.Timeout < 0 {
		errs = append(errs, "download.timeout: must not be negative")
	}
	if c.Download.StaleAfter < 0 {
		errs = append(errs, "download.stale_after: must not be negative")
	}

	// Status
	if len(c.Status.Extensions) == 0 {
		errs = append(errs, "status.extensions: at least one extension required")
	}
	for _, ext := range c.Status.Extensions {
		if ext == "" || strings.ContainsAny(ext, `/\ `) {
			errs = append(errs, fmt.Sprintf("status.extensions: invalid extension %q", ext))
		}
	}
	if c.Status.GrantFile == "" {
		errs = append(errs, "status.grant_file: required")
	}

	return errs
}
