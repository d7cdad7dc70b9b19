package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks value ranges. Every problem is reported, joined.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: must be text or json (got %q)", c.Log.Format))
	}

	if c.Dictionary.AutoDownload && c.Dictionary.Path == "" {
		errs = append(errs, errors.New("dictionary.auto_download requires dictionary.path"))
	}

	if c.Ingest.Workers < 1 {
		errs = append(errs, fmt.Errorf("ingest.workers must be >= 1 (got %d)", c.Ingest.Workers))
	}
	if c.Ingest.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("ingest.batch_size must be >= 1 (got %d)", c.Ingest.BatchSize))
	}
	if c.Ingest.FlushInterval < 0 {
		errs = append(errs, fmt.Errorf("ingest.flush_interval must be >= 0 (got %s)", c.Ingest.FlushInterval))
	}

	if c.Index.ExamplesPerSource < 0 {
		errs = append(errs, fmt.Errorf("index.examples_per_source must be >= 0 (got %d)", c.Index.ExamplesPerSource))
	}

	return errors.Join(errs...)
}
