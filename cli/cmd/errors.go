package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/splimer/memval"
	"github.com/pithecene-io/splimer/naming"
	"github.com/pithecene-io/splimer/planner"
	"github.com/pithecene-io/splimer/types"
)

// Exit codes.
const (
	exitIOError     = 1
	exitConfigError = 2
)

// configError aborts before any file is touched.
func configError(err error) error {
	return cli.Exit(err.Error(), exitConfigError)
}

// ioError aborts a pass that has started touching files.
func ioError(err error) error {
	return cli.Exit(err.Error(), exitIOError)
}

// operationError maps an engine error to its exit code.
func operationError(mode types.Mode, err error) error {
	switch {
	case errors.Is(err, memval.ErrInvalid),
		errors.Is(err, naming.ErrInvalidPath),
		errors.Is(err, planner.ErrFragmentSizeTooSmall),
		errors.Is(err, planner.ErrTooFewParts),
		errors.Is(err, planner.ErrPartNumberOutOfRange):
		return configError(err)
	case errors.Is(err, context.Canceled):
		return cli.Exit(fmt.Sprintf("%s canceled", mode), exitIOError)
	default:
		return ioError(fmt.Errorf("%s failed: %w", mode, err))
	}
}

// usageError turns flag parsing failures (unknown flag, missing value)
// into configuration errors.
func usageError(_ *cli.Context, err error, _ bool) error {
	return configError(err)
}
