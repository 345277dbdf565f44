package cmd

import (
	"flag"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/splimer/cli/config"
)

// newTestCLIContext builds a context with string flags. Only flagValues are
// marked as set; defaultFlags are registered with their defaults.
func newTestCLIContext(t *testing.T, flagValues map[string]string, defaultFlags map[string]string) *cli.Context {
	t.Helper()
	app := cli.NewApp()

	allFlags := make(map[string]string)
	for k, v := range defaultFlags {
		allFlags[k] = v
	}
	for k, v := range flagValues {
		allFlags[k] = v
	}

	var cliFlags []cli.Flag
	for name, val := range allFlags {
		cliFlags = append(cliFlags, &cli.StringFlag{Name: name, Value: val})
	}
	app.Flags = cliFlags

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	for name, val := range allFlags {
		fs.String(name, val, "")
	}
	for name, val := range flagValues {
		if err := fs.Set(name, val); err != nil {
			t.Fatalf("failed to set flag %s: %v", name, err)
		}
	}

	return cli.NewContext(app, fs, nil)
}

func TestResolveString_CLIWins(t *testing.T) {
	c := newTestCLIContext(t, map[string]string{"fragment-size": "512m"}, nil)
	if got := resolveString(c, "fragment-size", "2g"); got != "512m" {
		t.Errorf("expected CLI to win, got %q", got)
	}
}

func TestResolveString_ConfigFallback(t *testing.T) {
	c := newTestCLIContext(t, nil, map[string]string{"fragment-size": "1g"})
	if got := resolveString(c, "fragment-size", "2g"); got != "2g" {
		t.Errorf("expected config fallback, got %q", got)
	}
}

func TestResolveString_UrfaveDefault(t *testing.T) {
	c := newTestCLIContext(t, nil, map[string]string{"units": "binary"})
	if got := resolveString(c, "units", ""); got != "binary" {
		t.Errorf("expected urfave default, got %q", got)
	}
}

func TestConfigVal_NilConfig(t *testing.T) {
	got := configVal(nil, func(c *config.Config) string { return c.FragmentSize })
	if got != "" {
		t.Errorf("expected empty for nil config, got %q", got)
	}
}

func TestConfigVal_NonNil(t *testing.T) {
	cfg := &config.Config{FragmentSize: "4m"}
	got := configVal(cfg, func(c *config.Config) string { return c.FragmentSize })
	if got != "4m" {
		t.Errorf("expected 4m, got %q", got)
	}
}

func TestResolveInt(t *testing.T) {
	newCtx := func(set string) *cli.Context {
		app := cli.NewApp()
		app.Flags = []cli.Flag{&cli.IntFlag{Name: "notify-retries", Value: 3}}
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fs.Int("notify-retries", 3, "")
		if set != "" {
			_ = fs.Set("notify-retries", set)
		}
		return cli.NewContext(app, fs, nil)
	}

	if got := resolveInt(newCtx("5"), "notify-retries", 1); got != 5 {
		t.Errorf("CLI should win, got %d", got)
	}
	if got := resolveInt(newCtx(""), "notify-retries", 1); got != 1 {
		t.Errorf("config should win over default, got %d", got)
	}
	if got := resolveInt(newCtx(""), "notify-retries", 0); got != 3 {
		t.Errorf("default expected, got %d", got)
	}

	zero := 0
	if got := resolveIntPtr(newCtx(""), "notify-retries", &zero); got != 0 {
		t.Errorf("explicit config zero should win, got %d", got)
	}
	if got := resolveIntPtr(newCtx(""), "notify-retries", nil); got != 3 {
		t.Errorf("default expected for unset config, got %d", got)
	}
	if got := resolveIntPtr(newCtx("1"), "notify-retries", &zero); got != 1 {
		t.Errorf("CLI should win over config, got %d", got)
	}
}

func TestResolveBool_CLIWins(t *testing.T) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{&cli.BoolFlag{Name: "store-s3-path-style"}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Bool("store-s3-path-style", false, "")
	_ = fs.Set("store-s3-path-style", "true")
	c := cli.NewContext(app, fs, nil)

	if !resolveBool(c, "store-s3-path-style", false) {
		t.Error("expected CLI true to win")
	}
}

func TestResolveBool_ConfigFallback(t *testing.T) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{&cli.BoolFlag{Name: "manifest"}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Bool("manifest", false, "")
	c := cli.NewContext(app, fs, nil)

	if !resolveBool(c, "manifest", true) {
		t.Error("expected config true")
	}
	if resolveBool(c, "manifest", false) {
		t.Error("expected default false")
	}
}

func TestResolveDuration_CLIWins(t *testing.T) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{&cli.DurationFlag{Name: "notify-timeout"}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Duration("notify-timeout", 0, "")
	_ = fs.Set("notify-timeout", "30s")
	c := cli.NewContext(app, fs, nil)

	if got := resolveDuration(c, "notify-timeout", 10*time.Second); got != 30*time.Second {
		t.Errorf("expected CLI 30s to win, got %v", got)
	}
}

func TestResolveDuration_ConfigFallback(t *testing.T) {
	app := cli.NewApp()
	app.Flags = []cli.Flag{&cli.DurationFlag{Name: "notify-timeout"}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Duration("notify-timeout", 0, "")
	c := cli.NewContext(app, fs, nil)

	if got := resolveDuration(c, "notify-timeout", 10*time.Second); got != 10*time.Second {
		t.Errorf("expected config fallback 10s, got %v", got)
	}
}
