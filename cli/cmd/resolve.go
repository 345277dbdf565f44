package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/splimer/cli/config"
)

// resolveString returns the CLI value if explicitly set, else the config
// value if non-empty, else the urfave default.
func resolveString(c *cli.Context, name, cfgVal string) string {
	if c.IsSet(name) {
		return c.String(name)
	}
	if cfgVal != "" {
		return cfgVal
	}
	return c.String(name)
}

// resolveInt returns the CLI value if explicitly set, else the config value
// if non-zero, else the urfave default.
func resolveInt(c *cli.Context, name string, cfgVal int) int {
	if c.IsSet(name) {
		return c.Int(name)
	}
	if cfgVal != 0 {
		return cfgVal
	}
	return c.Int(name)
}

// resolveIntPtr is resolveInt for config values where an explicit zero is
// meaningful.
func resolveIntPtr(c *cli.Context, name string, cfgVal *int) int {
	if c.IsSet(name) || cfgVal == nil {
		return c.Int(name)
	}
	return *cfgVal
}

// resolveBool returns the CLI value if explicitly set, else true if the
// config enables it, else the urfave default.
func resolveBool(c *cli.Context, name string, cfgVal bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	if cfgVal {
		return true
	}
	return c.Bool(name)
}

// resolveDuration returns the CLI value if explicitly set, else the config
// value if non-zero, else the urfave default.
func resolveDuration(c *cli.Context, name string, cfgVal time.Duration) time.Duration {
	if c.IsSet(name) {
		return c.Duration(name)
	}
	if cfgVal != 0 {
		return cfgVal
	}
	return c.Duration(name)
}

// configVal reads a field from an optional config.
func configVal[T any](cfg *config.Config, get func(*config.Config) T) T {
	if cfg == nil {
		var zero T
		return zero
	}
	return get(cfg)
}
