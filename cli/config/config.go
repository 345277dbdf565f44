package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/pithecene-io/splimer/memval"
	"github.com/pithecene-io/splimer/store"
)

// Config represents a splimer.yaml configuration file.
// All values are optional defaults; command-line flags always win.
type Config struct {
	// FragmentSize and BufferSize are memory values ("512m", "64k", "4096").
	FragmentSize    string       `yaml:"fragment_size"`
	BufferSize      string       `yaml:"buffer_size"`
	Units           string       `yaml:"units"`
	OutputDirectory string       `yaml:"output_directory"`
	Manifest        bool         `yaml:"manifest"`
	LogLevel        string       `yaml:"log_level"`
	Format          string       `yaml:"format"`
	Store           store.Config `yaml:"store"`
	Notify          NotifyConfig `yaml:"notify"`
}

// NotifyConfig holds completion notification defaults.
type NotifyConfig struct {
	Type    string            `yaml:"type"`
	URL     string            `yaml:"url"`
	Channel string            `yaml:"channel,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Timeout Duration          `yaml:"timeout,omitempty"`
	// Retries is a pointer so that an explicit 0 is distinguishable from unset.
	Retries *int `yaml:"retries,omitempty"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks enumerated values and memory values. Errors from all
// fields are joined.
func (c *Config) Validate() error {
	var errs []error

	units, err := memval.ParseUnits(c.Units)
	if err != nil {
		errs = append(errs, err)
	}
	for _, f := range []struct{ key, val string }{
		{"fragment_size", c.FragmentSize},
		{"buffer_size", c.BufferSize},
	} {
		if f.val == "" {
			continue
		}
		if _, err := memval.ParseWithUnits(f.val, units); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.key, err))
		}
	}

	switch c.Format {
	case "", "json", "table", "yaml":
	default:
		errs = append(errs, fmt.Errorf("format: invalid value %q (must be json, table or yaml)", c.Format))
	}

	switch c.Notify.Type {
	case "", "webhook", "redis":
	default:
		errs = append(errs, fmt.Errorf("notify.type: invalid value %q (must be webhook or redis)", c.Notify.Type))
	}
	if c.Notify.Retries != nil && *c.Notify.Retries < 0 {
		errs = append(errs, fmt.Errorf("notify.retries: must be >= 0, got %d", *c.Notify.Retries))
	}

	if err := c.Store.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}

	return errors.Join(errs...)
}
