package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"

	"github.com/pithecene-io/splimer/cli/config"
	"github.com/pithecene-io/splimer/cli/render"
	"github.com/pithecene-io/splimer/log"
	"github.com/pithecene-io/splimer/memval"
	"github.com/pithecene-io/splimer/naming"
	"github.com/pithecene-io/splimer/planner"
	"github.com/pithecene-io/splimer/store"
	"github.com/pithecene-io/splimer/types"
)

// options is the fully resolved command line: flags over config file over
// flag defaults.
type options struct {
	config types.Config
	units  memval.Units
	// extra holds positional arguments after the input, which are ignored.
	extra []string

	store  store.Config
	notify notifyOptions

	format   string
	noColor  bool
	tui      bool
	quiet    bool
	logLevel zapcore.Level
}

type notifyOptions struct {
	kind    string
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
	retries int
}

// resolveOptions merges flags and the optional config file. Every error it
// returns is a configuration error.
func resolveOptions(c *cli.Context, cfg *config.Config) (*options, error) {
	opts := &options{}

	input := c.Args().First()
	if input == "" {
		return nil, errors.New("no input file given (usage: splimer [options] <input>)")
	}
	if _, err := naming.FragmentPath(input, "", 1); err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	opts.extra = c.Args().Tail()
	for _, a := range opts.extra {
		if len(a) > 1 && strings.HasPrefix(a, "-") {
			return nil, fmt.Errorf("flag %s after the input was not parsed", a)
		}
	}

	mode := types.ModeSplit
	switch {
	case c.Bool("split") && c.Bool("merge"):
		return nil, errors.New("--split and --merge are mutually exclusive")
	case c.Bool("merge"):
		mode = types.ModeMerge
	}

	units, err := memval.ParseUnits(resolveString(c, "units", configVal(cfg, func(c *config.Config) string { return c.Units })))
	if err != nil {
		return nil, err
	}
	opts.units = units

	fragmentSize, err := memval.ParseWithUnits(resolveString(c, "fragment-size", configVal(cfg, func(c *config.Config) string { return c.FragmentSize })), units)
	if err != nil {
		return nil, fmt.Errorf("--fragment-size: %w", err)
	}
	bufferSize, err := memval.ParseWithUnits(resolveString(c, "buffer-size", configVal(cfg, func(c *config.Config) string { return c.BufferSize })), units)
	if err != nil {
		return nil, fmt.Errorf("--buffer-size: %w", err)
	}

	opts.config = types.Config{
		Mode:            mode,
		InputPath:       input,
		FragmentSize:    fragmentSize,
		Parts:           c.Int("parts"),
		PartNumber:      c.Int("part-number"),
		OutputDirectory: resolveString(c, "output-directory", configVal(cfg, func(c *config.Config) string { return c.OutputDirectory })),
		BufferSize:      bufferSize,
		Manifest:        resolveBool(c, "manifest", configVal(cfg, func(c *config.Config) bool { return c.Manifest })),
	}
	if err := planner.Validate(opts.config); err != nil {
		switch {
		case errors.Is(err, planner.ErrTooFewParts):
			return nil, fmt.Errorf("--parts: %w", err)
		default:
			return nil, fmt.Errorf("--fragment-size: %w", err)
		}
	}

	opts.store = store.Config{
		Backend:     resolveString(c, "store-backend", configVal(cfg, func(c *config.Config) string { return c.Store.Backend })),
		Path:        resolveString(c, "store-path", configVal(cfg, func(c *config.Config) string { return c.Store.Path })),
		Region:      resolveString(c, "store-s3-region", configVal(cfg, func(c *config.Config) string { return c.Store.Region })),
		Endpoint:    resolveString(c, "store-s3-endpoint", configVal(cfg, func(c *config.Config) string { return c.Store.Endpoint })),
		S3PathStyle: resolveBool(c, "store-s3-path-style", configVal(cfg, func(c *config.Config) bool { return c.Store.S3PathStyle })),
	}
	if err := opts.store.Validate(); err != nil {
		return nil, err
	}

	notify, err := resolveNotify(c, configVal(cfg, func(c *config.Config) config.NotifyConfig { return c.Notify }))
	if err != nil {
		return nil, err
	}
	opts.notify = notify

	opts.format = resolveString(c, "format", configVal(cfg, func(c *config.Config) string { return c.Format }))
	if _, err := render.ParseFormat(opts.format); err != nil {
		return nil, err
	}
	opts.noColor = c.Bool("no-color")
	opts.tui = c.Bool("tui")
	opts.quiet = c.Bool("quiet")
	if opts.tui && opts.quiet {
		return nil, errors.New("--tui and --quiet are mutually exclusive")
	}

	level, err := log.ParseLevel(resolveString(c, "log-level", configVal(cfg, func(c *config.Config) string { return c.LogLevel })))
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	opts.logLevel = level

	return opts, nil
}

func resolveNotify(c *cli.Context, cfg config.NotifyConfig) (notifyOptions, error) {
	n := notifyOptions{
		kind:    resolveString(c, "notify", cfg.Type),
		url:     resolveString(c, "notify-url", cfg.URL),
		channel: resolveString(c, "notify-channel", cfg.Channel),
		timeout: resolveDuration(c, "notify-timeout", cfg.Timeout.Duration),
		retries: resolveIntPtr(c, "notify-retries", cfg.Retries),
	}

	switch n.kind {
	case "":
		return n, nil
	case "webhook", "redis":
	default:
		return n, fmt.Errorf("invalid notify adapter: %q (must be webhook or redis)", n.kind)
	}
	if n.url == "" {
		return n, fmt.Errorf("--notify %s requires --notify-url", n.kind)
	}
	if n.retries < 0 {
		return n, fmt.Errorf("--notify-retries must be >= 0, got %d", n.retries)
	}

	headers, err := parseHeaders(c.StringSlice("notify-header"))
	if err != nil {
		return n, err
	}
	if len(cfg.Headers) > 0 || len(headers) > 0 {
		n.headers = make(map[string]string, len(cfg.Headers)+len(headers))
		for k, v := range cfg.Headers {
			n.headers[k] = v
		}
		for k, v := range headers {
			n.headers[k] = v
		}
	}
	return n, nil
}

// parseHeaders parses KEY=VALUE pairs.
func parseHeaders(pairs []string) (map[string]string, error) {
	headers := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --notify-header %q (expected KEY=VALUE)", p)
		}
		headers[k] = strings.TrimSpace(v)
	}
	return headers, nil
}
