package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "splimer.yaml"

// Load reads a YAML config file, expands environment variables, and
// decodes it. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader([]byte(ExpandEnv(string(data)))))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadOptional loads path when explicit is true, and DefaultPath only if
// it exists otherwise. A missing default file yields an empty Config.
func LoadOptional(path string, explicit bool) (*Config, error) {
	if explicit {
		return Load(path)
	}
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return Load(path)
}
