// Package cmd provides the splimer command-line application.
//
// splimer has no subcommands: flags select the mode and the single
// positional argument names the input file. Flags may follow the input;
// see PermuteArgs.
package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/splimer/adapter/webhook"
)

// Flag categories shown in --help.
const (
	categoryOperation = "Operation:"
	categoryOutput    = "Output:"
	categoryStore     = "Fragment store:"
	categoryNotify    = "Notification:"
)

// Shared output flags.
var (
	// FormatFlag selects the report format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:     "format",
		Usage:    "Report format: json, table, yaml (default: table on a terminal, json otherwise)",
		Category: categoryOutput,
	}

	// NoColorFlag disables colored table output.
	NoColorFlag = &cli.BoolFlag{
		Name:     "no-color",
		Usage:    "Disable colored output",
		Category: categoryOutput,
	}

	// TUIFlag replaces progress lines with a Bubble Tea progress bar.
	TUIFlag = &cli.BoolFlag{
		Name:     "tui",
		Usage:    "Show an interactive progress bar on stderr",
		Category: categoryOutput,
	}

	// QuietFlag suppresses the report and progress output.
	QuietFlag = &cli.BoolFlag{
		Name:     "quiet",
		Aliases:  []string{"q"},
		Usage:    "Suppress the report and progress output",
		Category: categoryOutput,
	}
)

// OperationFlags returns the flags that shape a split or merge.
func OperationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     "split",
			Aliases:  []string{"s"},
			Usage:    "Split the input into fragments (default)",
			Category: categoryOperation,
		},
		&cli.BoolFlag{
			Name:     "merge",
			Aliases:  []string{"m"},
			Usage:    "Merge fragments of the input back into one file",
			Category: categoryOperation,
		},
		&cli.StringFlag{
			Name:     "fragment-size",
			Aliases:  []string{"S"},
			Usage:    "Fragment size as a memory value (e.g. 512m, 1.5g, 4096)",
			Value:    "1g",
			Category: categoryOperation,
		},
		&cli.IntFlag{
			Name:     "parts",
			Aliases:  []string{"n"},
			Usage:    "Split into `N` equal parts (N >= 2), overrides --fragment-size",
			Category: categoryOperation,
		},
		&cli.IntFlag{
			Name:     "part-number",
			Aliases:  []string{"N"},
			Usage:    "Write only the `N`th fragment",
			Category: categoryOperation,
		},
		&cli.StringFlag{
			Name:     "output-directory",
			Aliases:  []string{"o"},
			Usage:    "Directory for fragments (created if absent)",
			Category: categoryOperation,
		},
		&cli.StringFlag{
			Name:     "buffer-size",
			Usage:    "Read buffer size as a memory value",
			Value:    "64k",
			Category: categoryOperation,
		},
		&cli.StringFlag{
			Name:     "units",
			Usage:    "Suffix scaling for memory values: binary or decimal",
			Value:    "binary",
			Category: categoryOperation,
		},
		&cli.BoolFlag{
			Name:     "manifest",
			Usage:    "Write a fragment manifest on split; require and verify it on merge",
			Category: categoryOperation,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML config file (default: splimer.yaml if present)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
			Value: "warn",
		},
	}
}

// StoreFlags returns the fragment store flags.
func StoreFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "store-backend",
			Usage:    "Publish fragments after split and fetch them before merge: fs, s3",
			Category: categoryStore,
		},
		&cli.StringFlag{
			Name:     "store-path",
			Usage:    "Store root directory (fs) or bucket/prefix (s3)",
			Category: categoryStore,
		},
		&cli.StringFlag{
			Name:     "store-s3-region",
			Usage:    "AWS region for the s3 backend (default: AWS credential chain)",
			Category: categoryStore,
		},
		&cli.StringFlag{
			Name:     "store-s3-endpoint",
			Usage:    "Custom S3 endpoint URL (e.g. R2, MinIO)",
			Category: categoryStore,
		},
		&cli.BoolFlag{
			Name:     "store-s3-path-style",
			Usage:    "Use path-style S3 addressing",
			Category: categoryStore,
		},
	}
}

// NotifyFlags returns the completion notification flags.
func NotifyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "notify",
			Usage:    "Completion notification adapter: webhook, redis",
			Category: categoryNotify,
		},
		&cli.StringFlag{
			Name:     "notify-url",
			Usage:    "Webhook endpoint or redis://host:port URL",
			Category: categoryNotify,
		},
		&cli.StringFlag{
			Name:     "notify-channel",
			Usage:    "Redis pub/sub channel",
			Category: categoryNotify,
		},
		&cli.DurationFlag{
			Name:     "notify-timeout",
			Usage:    "Per-attempt notification timeout",
			Category: categoryNotify,
		},
		&cli.IntFlag{
			Name:     "notify-retries",
			Usage:    "Notification retries after the first attempt",
			Value:    webhook.DefaultRetries,
			Category: categoryNotify,
		},
		&cli.StringSliceFlag{
			Name:     "notify-header",
			Usage:    "Webhook header as `KEY=VALUE` (repeatable)",
			Category: categoryNotify,
		},
	}
}

// Flags returns every flag of the splimer application.
func Flags() []cli.Flag {
	flags := OperationFlags()
	flags = append(flags, StoreFlags()...)
	flags = append(flags, NotifyFlags()...)
	return append(flags, FormatFlag, NoColorFlag, TUIFlag, QuietFlag)
}
