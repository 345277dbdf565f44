package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pithecene-io/splimer/metrics"
	"github.com/pithecene-io/splimer/types"
)

type stubAdapter struct {
	err    error
	events []*OperationCompletedEvent
}

func (s *stubAdapter) Publish(_ context.Context, event *OperationCompletedEvent) error {
	s.events = append(s.events, event)
	return s.err
}

func (s *stubAdapter) Close() error { return nil }

func TestNewOperationCompletedEvent(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	report := &types.Report{
		OperationID:  "op-42",
		Mode:         types.ModeSplit,
		Input:        "movie.mkv",
		Output:       "out",
		BytesWritten: 3000,
		Fragments:    []types.Fragment{{Index: 1, End: 1024}, {Index: 2, Start: 1024, End: 2048}, {Index: 3, Start: 2048, End: 3000}},
		Duration:     1500 * time.Millisecond,
	}

	ev := NewOperationCompletedEvent(report, at)
	if ev.EventType != EventSplitCompleted {
		t.Errorf("EventType = %q, want %q", ev.EventType, EventSplitCompleted)
	}
	if ev.ContractVersion != types.ContractVersion {
		t.Errorf("ContractVersion = %q", ev.ContractVersion)
	}
	if ev.FragmentCount != 3 {
		t.Errorf("FragmentCount = %d, want 3", ev.FragmentCount)
	}
	if ev.Outcome != "success" {
		t.Errorf("Outcome = %q, want success", ev.Outcome)
	}
	if ev.Timestamp != "2026-03-01T11:00:00Z" {
		t.Errorf("Timestamp = %q, want UTC RFC 3339", ev.Timestamp)
	}
	if ev.DurationMs != 1500 {
		t.Errorf("DurationMs = %d, want 1500", ev.DurationMs)
	}

	report.Mode = types.ModeMerge
	report.Skipped = true
	ev = NewOperationCompletedEvent(report, at)
	if ev.EventType != EventMergeCompleted {
		t.Errorf("EventType = %q, want %q", ev.EventType, EventMergeCompleted)
	}
	if ev.Outcome != "skipped" {
		t.Errorf("Outcome = %q, want skipped", ev.Outcome)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(t.Context(), "test", 3, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Retry error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_Exhausts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Retry(t.Context(), "test", 2, time.Millisecond, func(context.Context) error {
		calls++
		return boom
	}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_PermanentStops(t *testing.T) {
	permanent := errors.New("bad request")
	calls := 0
	err := Retry(t.Context(), "test", 5, time.Millisecond, func(context.Context) error {
		calls++
		return permanent
	}, func(err error) bool { return errors.Is(err, permanent) })
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	calls := 0
	err := Retry(ctx, "test", 3, time.Millisecond, func(context.Context) error {
		calls++
		return nil
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no calls, got %d", calls)
	}
}

func TestNotify(t *testing.T) {
	ev := &OperationCompletedEvent{EventType: EventSplitCompleted}

	ok := &stubAdapter{}
	collector := metrics.NewCollector("split", "", "op")
	if !Notify(t.Context(), ok, ev, nil, collector) {
		t.Error("expected delivery")
	}
	if len(ok.events) != 1 {
		t.Errorf("expected 1 published event, got %d", len(ok.events))
	}

	failing := &stubAdapter{err: errors.New("down")}
	if Notify(t.Context(), failing, ev, nil, collector) {
		t.Error("expected failed delivery")
	}

	snap := collector.Snapshot()
	if snap.NotifySuccess != 1 || snap.NotifyFailure != 1 {
		t.Errorf("notify success/failure = %d/%d, want 1/1", snap.NotifySuccess, snap.NotifyFailure)
	}

	if Notify(t.Context(), nil, ev, nil, nil) {
		t.Error("nil adapter should not report delivery")
	}
}
