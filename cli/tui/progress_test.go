package tui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pithecene-io/splimer/engine"
	"github.com/pithecene-io/splimer/types"
)

func update(t *testing.T, m ProgressModel, msg tea.Msg) (ProgressModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(ProgressModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return pm, cmd
}

func TestProgressModel_Progress(t *testing.T) {
	m := NewProgressModel("splitting movie.mkv")

	m, cmd := update(t, m, ProgressMsg{Index: 1, FragmentBytes: 1024, BytesDone: 1024, BytesTotal: 4096})
	if cmd != nil {
		t.Error("progress update should not return a command")
	}
	m, _ = update(t, m, ProgressMsg{Index: 2, FragmentBytes: 1024, BytesDone: 2048, BytesTotal: 4096})

	if got := m.Percent(); got != 0.5 {
		t.Errorf("Percent = %v, want 0.5", got)
	}

	view := m.View()
	for _, want := range []string{"splitting movie.mkv", "2.0 KiB / 4.0 KiB", "abort"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestProgressModel_UnknownTotal(t *testing.T) {
	m := NewProgressModel("merging")
	m, _ = update(t, m, ProgressMsg{Index: 1, BytesDone: 3000})

	if m.Percent() != -1 {
		t.Errorf("Percent = %v, want -1 when total is unknown", m.Percent())
	}
	if view := m.View(); strings.Contains(view, " / ") {
		t.Errorf("view should not show a total:\n%s", view)
	}
}

func TestProgressModel_Done(t *testing.T) {
	m := NewProgressModel("splitting")
	m, cmd := update(t, m, DoneMsg{Report: &types.Report{}})
	if cmd == nil {
		t.Fatal("DoneMsg should quit")
	}
	if !strings.Contains(m.View(), "done") {
		t.Errorf("expected done in view:\n%s", m.View())
	}

	m = NewProgressModel("splitting")
	m, _ = update(t, m, DoneMsg{Err: errors.New("disk full")})
	if !strings.Contains(m.View(), "disk full") {
		t.Errorf("expected error in view:\n%s", m.View())
	}
}

func TestProgressModel_Quit(t *testing.T) {
	m := NewProgressModel("splitting")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if !m.Aborted() {
		t.Error("expected Aborted after q")
	}

	m, _ = update(t, m, DoneMsg{})
	if m.Aborted() {
		t.Error("a finished operation is not aborted")
	}
}

func TestProgressModel_WindowSize(t *testing.T) {
	m := NewProgressModel("x")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 10})
	if m.bar.Width != 26 {
		t.Errorf("bar width = %d, want 26", m.bar.Width)
	}
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 500, Height: 10})
	if m.bar.Width != maxBarWidth {
		t.Errorf("bar width = %d, want %d", m.bar.Width, maxBarWidth)
	}
}

func TestOutcomeStyle(t *testing.T) {
	for _, outcome := range []string{"success", "skipped", "failed", "other"} {
		if got := OutcomeStyle(outcome).Render(outcome); !strings.Contains(got, outcome) {
			t.Errorf("OutcomeStyle(%q) lost its text: %q", outcome, got)
		}
	}
}

func TestRun_ReturnsOperationResult(t *testing.T) {
	want := &types.Report{OperationID: "op-1"}
	var calls int

	report, err := Run(t.Context(), "splitting", io.Discard, func(ctx context.Context, obs engine.Observer) (*types.Report, error) {
		obs.FragmentDone(engine.Progress{Index: 1, BytesDone: 10, BytesTotal: 10})
		calls++
		return want, nil
	}, tea.WithInput(nil))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if report != want {
		t.Errorf("Run returned %v, want the operation's report", report)
	}
	if calls != 1 {
		t.Errorf("operation called %d times, want 1", calls)
	}
}
