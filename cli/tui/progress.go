package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/pithecene-io/splimer/engine"
	"github.com/pithecene-io/splimer/types"
)

// maxBarWidth caps the progress bar on wide terminals.
const maxBarWidth = 60

// ProgressMsg carries one engine progress update into the model.
type ProgressMsg engine.Progress

// DoneMsg ends the view once the operation returns.
type DoneMsg struct {
	Report *types.Report
	Err    error
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "abort"),
	),
}

// ProgressModel is a Bubble Tea model for a running split or merge.
type ProgressModel struct {
	title   string
	bar     progress.Model
	last    engine.Progress
	updates int
	done    bool
	err     error
	aborted bool
}

// NewProgressModel creates a progress model with the given title.
func NewProgressModel(title string) ProgressModel {
	return ProgressModel{
		title: title,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
	}
}

// Init implements tea.Model.
func (m ProgressModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(10, min(msg.Width-4, maxBarWidth))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.aborted = true
			return m, tea.Quit
		}

	case ProgressMsg:
		m.last = engine.Progress(msg)
		m.updates++
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// Aborted reports whether the user quit before the operation finished.
func (m ProgressModel) Aborted() bool {
	return m.aborted && !m.done
}

// Percent returns the completed fraction, or -1 when the total is unknown.
func (m ProgressModel) Percent() float64 {
	if m.last.BytesTotal <= 0 {
		return -1
	}
	return float64(m.last.BytesDone) / float64(m.last.BytesTotal)
}

// View implements tea.Model.
func (m ProgressModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")

	if pct := m.Percent(); pct >= 0 {
		b.WriteString(m.bar.ViewAs(pct))
		b.WriteString("\n")
	}

	done := humanize.IBytes(uint64(max(m.last.BytesDone, 0)))
	if m.last.BytesTotal > 0 {
		done += " / " + humanize.IBytes(uint64(m.last.BytesTotal))
	}
	fmt.Fprintf(&b, "%s%d\n", LabelStyle.Render("fragments"), m.updates)
	fmt.Fprintf(&b, "%s%s\n", LabelStyle.Render("bytes"), done)

	switch {
	case m.done && m.err != nil:
		b.WriteString(ErrorStyle.Render("failed: " + m.err.Error()))
		b.WriteString("\n")
	case m.done:
		b.WriteString(SuccessStyle.Render("done"))
		b.WriteString("\n")
	case m.aborted:
		b.WriteString(WarningStyle.Render("aborting"))
		b.WriteString("\n")
	default:
		b.WriteString(HelpStyle.Render("Press q or Ctrl+C to abort"))
		b.WriteString("\n")
	}
	return b.String()
}

// Operation is a split or merge pass reporting to obs.
type Operation func(ctx context.Context, obs engine.Observer) (*types.Report, error)

// Run executes op while drawing progress to out. Quitting the view cancels
// the context op runs under; Run always waits for op to return and yields
// its result. Extra options are passed to the Bubble Tea program.
func Run(ctx context.Context, title string, out io.Writer, op Operation, opts ...tea.ProgramOption) (*types.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts = append([]tea.ProgramOption{tea.WithOutput(out), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewProgressModel(title), opts...)

	var (
		report *types.Report
		opErr  error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		report, opErr = op(ctx, engine.ObserverFunc(func(pr engine.Progress) {
			p.Send(ProgressMsg(pr))
		}))
		p.Send(DoneMsg{Report: report, Err: opErr})
	}()

	final, err := p.Run()
	if fm, ok := final.(ProgressModel); (ok && fm.Aborted()) || errors.Is(err, tea.ErrInterrupted) {
		cancel()
	}
	<-finished
	return report, opErr
}
