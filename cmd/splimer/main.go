// Package main provides the splimer CLI entrypoint.
//
// Usage:
//
//	splimer [options] <input>
//
// Exit codes:
//   - 0: success, including a skipped split
//   - 1: I/O error (open, read, write, create, mkdir, store, cancellation)
//   - 2: configuration error, reported before any file is touched
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/splimer/cli/cmd"
	"github.com/pithecene-io/splimer/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := cmd.NewApp(fmt.Sprintf("%s (commit: %s)", types.Version, commit))
	app.ExitErrHandler = exitErrHandler

	if err := app.Run(cmd.PermuteArgs(app.Flags, os.Args)); err != nil {
		// ExitErrHandler already exited for every error it saw.
		os.Exit(1)
	}
}

// exitErrHandler exits with the code carried by cli.Exit errors.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	os.Exit(exitStatus(err, os.Stderr))
}

// exitStatus prints err to w and returns its exit code. Errors that are not
// cli.ExitCoder exit with 1.
func exitStatus(err error, w io.Writer) int {
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"; skip those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(w, msg)
		}
		return code
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}
