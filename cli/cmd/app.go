package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/splimer/adapter"
	redisadapter "github.com/pithecene-io/splimer/adapter/redis"
	"github.com/pithecene-io/splimer/adapter/webhook"
	"github.com/pithecene-io/splimer/cli/config"
	"github.com/pithecene-io/splimer/cli/render"
	"github.com/pithecene-io/splimer/cli/tui"
	"github.com/pithecene-io/splimer/engine"
	"github.com/pithecene-io/splimer/log"
	"github.com/pithecene-io/splimer/metrics"
	"github.com/pithecene-io/splimer/planner"
	"github.com/pithecene-io/splimer/store"
	"github.com/pithecene-io/splimer/types"
)

// NewApp returns the splimer application. Callers set ExitErrHandler.
func NewApp(version string) *cli.App {
	return &cli.App{
		Name:            "splimer",
		Usage:           "Split a large file into fragments and merge them back",
		UsageText:       "splimer [options] <input>",
		ArgsUsage:       "<input>",
		Version:         version,
		HideHelpCommand: true,
		Flags:           Flags(),
		Action:          action,
		OnUsageError:    usageError,
	}
}

// action runs one split or merge.
func action(c *cli.Context) error {
	fileCfg, err := config.LoadOptional(c.String("config"), c.IsSet("config"))
	if err != nil {
		return configError(err)
	}
	opts, err := resolveOptions(c, fileCfg)
	if err != nil {
		return configError(err)
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	r, err := newRunner(ctx, opts, c.App.Writer, c.App.ErrWriter)
	if err != nil {
		return err
	}
	defer r.close()

	return r.run(ctx)
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// runner holds everything one operation needs.
type runner struct {
	opts        *options
	operationID string
	stdout      io.Writer
	stderr      io.Writer

	logger   *log.Logger
	metrics  *metrics.Collector
	store    *store.Store
	notifier adapter.Adapter
	renderer *render.Renderer
}

func newRunner(ctx context.Context, opts *options, stdout, stderr io.Writer) (*runner, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	r := &runner{
		opts:        opts,
		operationID: uuid.NewString(),
		stdout:      stdout,
		stderr:      stderr,
	}

	if opts.tui {
		if f, ok := stderr.(*os.File); !ok || !render.IsTerminal(f) {
			return nil, configError(fmt.Errorf("--tui requires a terminal on stderr"))
		}
	}

	renderer, err := newRenderer(stdout, opts.format, opts.noColor)
	if err != nil {
		return nil, configError(err)
	}
	r.renderer = renderer

	r.logger = log.NewLogger(log.OperationMeta{
		OperationID: r.operationID,
		Mode:        string(opts.config.Mode),
		Input:       opts.config.InputPath,
	}, opts.logLevel).WithOutput(stderr)
	r.metrics = metrics.NewCollector(string(opts.config.Mode), opts.store.Backend, r.operationID)

	if len(opts.extra) > 0 {
		r.logger.Warn("ignoring extra arguments", map[string]any{"args": opts.extra})
	}
	r.logger.Debug("configuration resolved", map[string]any{
		"fragment_size":    opts.config.FragmentSize,
		"parts":            opts.config.Parts,
		"part_number":      opts.config.PartNumber,
		"output_directory": opts.config.OutputDirectory,
		"buffer_size":      opts.config.BufferSize,
		"units":            string(opts.units),
		"manifest":         opts.config.Manifest,
		"store_backend":    opts.store.Backend,
		"notify":           opts.notify.kind,
	})

	if opts.store.Enabled() {
		st, err := store.New(ctx, opts.store, store.Options{Logger: r.logger, Metrics: r.metrics})
		if err != nil {
			return nil, ioError(fmt.Errorf("fragment store: %w", err))
		}
		r.store = st
	}

	notifier, err := buildNotifier(opts.notify)
	if err != nil {
		return nil, configError(err)
	}
	r.notifier = notifier

	return r, nil
}

func (r *runner) close() {
	if r.notifier != nil {
		if err := r.notifier.Close(); err != nil {
			r.logger.Debug("notifier close failed", map[string]any{"error": err.Error()})
		}
	}
	_ = r.logger.Sync()
}

func (r *runner) run(ctx context.Context) error {
	var (
		report *types.Report
		err    error
	)
	if r.opts.config.Mode == types.ModeMerge {
		report, err = r.merge(ctx)
	} else {
		report, err = r.split(ctx)
	}
	if err != nil {
		return err
	}

	if r.notifier != nil {
		event := adapter.NewOperationCompletedEvent(report, time.Now())
		adapter.Notify(ctx, r.notifier, event, r.logger, r.metrics)
	}

	report.Metrics = r.metrics.Snapshot()
	if r.opts.quiet {
		return nil
	}
	if err := r.renderer.Render(report); err != nil {
		return ioError(fmt.Errorf("write report: %w", err))
	}
	return nil
}

func (r *runner) split(ctx context.Context) (*types.Report, error) {
	cfg := r.opts.config

	info, err := os.Stat(cfg.InputPath)
	if err != nil {
		return nil, ioError(fmt.Errorf("open %s: %w", cfg.InputPath, err))
	}
	if info.IsDir() {
		return nil, configError(fmt.Errorf("%s is a directory", cfg.InputPath))
	}

	plan, err := planner.Plan(cfg, info.Size())
	if err != nil {
		return nil, configError(err)
	}
	r.logger.Debug("plan computed", map[string]any{
		"file_size":     plan.FileSize,
		"fragment_size": plan.FragmentSize,
		"total_parts":   plan.TotalParts,
		"skip":          plan.Skip,
	})

	if cfg.OutputDirectory != "" && !plan.Skip {
		if err := os.MkdirAll(cfg.OutputDirectory, 0o755); err != nil {
			return nil, ioError(fmt.Errorf("mkdir %s: %w", cfg.OutputDirectory, err))
		}
	}

	report, err := r.execute(ctx, "splitting "+filepath.Base(cfg.InputPath), "written",
		func(ctx context.Context, obs engine.Observer) (*types.Report, error) {
			return engine.NewSplitter(r.engineOptions(obs)).Split(ctx, plan)
		})
	if err != nil {
		return nil, operationError(types.ModeSplit, err)
	}

	if r.store != nil && !report.Skipped {
		keys, err := r.store.Publish(ctx, report.Fragments, report.Manifest)
		if err != nil {
			return nil, ioError(fmt.Errorf("publish fragments: %w", err))
		}
		r.logger.Sugar().Infof("%d file(s) published to %s store", len(keys), r.store.Backend())
	}
	return report, nil
}

func (r *runner) merge(ctx context.Context) (*types.Report, error) {
	cfg := r.opts.config

	if r.store != nil {
		dir := cfg.OutputDirectory
		if dir == "" {
			dir = filepath.Dir(cfg.InputPath)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, ioError(fmt.Errorf("mkdir %s: %w", dir, err))
		}
		paths, err := r.store.Fetch(ctx, cfg.InputPath, dir)
		if err != nil {
			return nil, ioError(fmt.Errorf("fetch fragments: %w", err))
		}
		r.logger.Sugar().Infof("%d file(s) fetched from %s store", len(paths), r.store.Backend())
	}

	report, err := r.execute(ctx, "merging "+filepath.Base(cfg.InputPath), "merged",
		func(ctx context.Context, obs engine.Observer) (*types.Report, error) {
			return engine.NewMerger(r.engineOptions(obs)).Merge(ctx, cfg)
		})
	if err != nil {
		return nil, operationError(types.ModeMerge, err)
	}
	return report, nil
}

// execute runs op with the progress surface the options select.
func (r *runner) execute(ctx context.Context, title, verb string, op tui.Operation) (*types.Report, error) {
	switch {
	case r.opts.quiet:
		return op(ctx, nil)
	case r.opts.tui:
		return tui.Run(ctx, title, r.stderr, op)
	default:
		return op(ctx, &linePrinter{w: r.stderr, verb: verb})
	}
}

func (r *runner) engineOptions(obs engine.Observer) engine.Options {
	return engine.Options{
		OperationID: r.operationID,
		Logger:      r.logger,
		Metrics:     r.metrics,
		Observer:    obs,
	}
}

// newRenderer picks a terminal-aware renderer when w is a file.
func newRenderer(w io.Writer, format string, noColor bool) (*render.Renderer, error) {
	if f, ok := w.(*os.File); ok {
		return render.NewRenderer(format, noColor, f)
	}
	parsed, err := render.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if parsed == "" {
		parsed = render.FormatJSON
	}
	return render.NewRendererWithWriter(parsed, noColor, w), nil
}

func buildNotifier(n notifyOptions) (adapter.Adapter, error) {
	switch n.kind {
	case "":
		return nil, nil
	case "webhook":
		a, err := webhook.New(webhook.Config{
			URL:     n.url,
			Headers: n.headers,
			Timeout: n.timeout,
			Retries: n.retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	case "redis":
		a, err := redisadapter.New(redisadapter.Config{
			URL:     n.url,
			Channel: n.channel,
			Timeout: n.timeout,
			Retries: n.retries,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown notify adapter: %s", n.kind)
	}
}
