package cmd

import (
	"strings"

	"github.com/urfave/cli/v2"
)

// PermuteArgs moves flags ahead of positional arguments so that flags given
// after the input still apply. args[0] is the program name. Everything after
// a "--" terminator stays positional.
func PermuteArgs(flags []cli.Flag, args []string) []string {
	if len(args) == 0 {
		return args
	}

	takesValue := make(map[string]bool)
	for _, f := range flags {
		tv, ok := f.(interface{ TakesValue() bool })
		for _, name := range f.Names() {
			takesValue[name] = ok && tv.TakesValue()
		}
	}

	out := []string{args[0]}
	var positional []string
	dashed := false
	for i := 1; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			for _, p := range args[i+1:] {
				dashed = dashed || strings.HasPrefix(p, "-")
			}
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positional = append(positional, a)
			continue
		}

		out = append(out, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if takesValue[name] && i+1 < len(args) {
			i++
			out = append(out, args[i])
		}
	}

	if dashed {
		out = append(out, "--")
	}
	return append(out, positional...)
}
