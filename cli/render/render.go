// Package render writes operation reports for the splimer CLI.
//
// Format selection:
//   - --format always wins; invalid formats are errors
//   - otherwise a terminal gets table, anything else gets json
//
// --no-color affects table output only.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/pithecene-io/splimer/cli/tui"
	"github.com/pithecene-io/splimer/types"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a format string. Empty returns "" so the caller can
// pick the default.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "table":
		return FormatTable, nil
	case "yaml":
		return FormatYAML, nil
	case "":
		return "", nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, table, or yaml)", s)
	}
}

// Renderer writes reports in one format.
type Renderer struct {
	format  Format
	noColor bool
	out     io.Writer
}

// NewRenderer creates a renderer writing to out. An empty format selects
// table when out is a terminal and json otherwise.
func NewRenderer(format string, noColor bool, out *os.File) (*Renderer, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if f == "" {
		if IsTerminal(out) {
			f = FormatTable
		} else {
			f = FormatJSON
		}
	}
	return &Renderer{format: f, noColor: noColor, out: out}, nil
}

// NewRendererWithWriter creates a renderer with a custom writer (for testing).
func NewRendererWithWriter(format Format, noColor bool, out io.Writer) *Renderer {
	return &Renderer{format: format, noColor: noColor, out: out}
}

// Format returns the selected format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render writes the report in the configured format.
func (r *Renderer) Render(report *types.Report) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		return r.renderTable(report)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

func (r *Renderer) renderTable(report *types.Report) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)

	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s:\t%s\n", label, value)
		}
	}
	row("operation", report.OperationID)
	row("mode", string(report.Mode))
	row("input", report.Input)
	row("output", report.Output)
	row("outcome", r.outcome(report.Outcome()))
	row("file size", Bytes(report.FileSize))
	if report.FragmentSize > 0 {
		row("fragment size", Bytes(report.FragmentSize))
	}
	row("fragments", fmt.Sprint(len(report.Fragments)))
	row("written", Bytes(report.BytesWritten))
	row("manifest", report.Manifest)
	row("duration", report.Duration.Round(time.Millisecond).String())
	row("message", report.Message)
	if err := w.Flush(); err != nil {
		return err
	}

	if len(report.Fragments) == 0 {
		return nil
	}

	fmt.Fprintln(r.out)
	w = tabwriter.NewWriter(r.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "#\tstart\tend\tsize\tpath\t")
	for _, f := range report.Fragments {
		fmt.Fprintf(w, "%d\t%d\t%d\t%s\t%s\t\n", f.Index, f.Start, f.End, Bytes(f.Size()), f.Path)
	}
	return w.Flush()
}

func (r *Renderer) outcome(s string) string {
	if r.noColor {
		return s
	}
	return tui.OutcomeStyle(s).Render(s)
}

// Bytes formats n in IEC units ("9.8 KiB").
func Bytes(n int64) string {
	if n < 0 {
		return fmt.Sprint(n)
	}
	return humanize.IBytes(uint64(n))
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
