// Package adapter defines the completion notification boundary.
//
// Adapters publish one OperationCompletedEvent after a split or merge
// finishes. Notification is best effort: Notify logs and counts failures
// but never turns a completed operation into a failed one.
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/pithecene-io/splimer/log"
	"github.com/pithecene-io/splimer/metrics"
	"github.com/pithecene-io/splimer/types"
)

// Event types.
const (
	EventSplitCompleted = "split_completed"
	EventMergeCompleted = "merge_completed"
)

// DefaultBackoff is the delay before the first retry; each further retry
// doubles it.
const DefaultBackoff = 500 * time.Millisecond

// OperationCompletedEvent is the payload published when an operation finishes.
type OperationCompletedEvent struct {
	ContractVersion string `json:"contract_version"`
	EventType       string `json:"event_type"`
	OperationID     string `json:"operation_id"`
	Mode            string `json:"mode"`
	Input           string `json:"input"`
	Output          string `json:"output"`
	Outcome         string `json:"outcome"` // success or skipped
	FragmentCount   int    `json:"fragment_count"`
	BytesWritten    int64  `json:"bytes_written"`
	Timestamp       string `json:"timestamp"` // RFC 3339, UTC
	DurationMs      int64  `json:"duration_ms"`
}

// NewOperationCompletedEvent builds the event for a finished report.
func NewOperationCompletedEvent(r *types.Report, at time.Time) *OperationCompletedEvent {
	eventType := EventSplitCompleted
	if r.Mode == types.ModeMerge {
		eventType = EventMergeCompleted
	}
	return &OperationCompletedEvent{
		ContractVersion: types.ContractVersion,
		EventType:       eventType,
		OperationID:     r.OperationID,
		Mode:            string(r.Mode),
		Input:           r.Input,
		Output:          r.Output,
		Outcome:         r.Outcome(),
		FragmentCount:   len(r.Fragments),
		BytesWritten:    r.BytesWritten,
		Timestamp:       at.UTC().Format(time.RFC3339),
		DurationMs:      r.Duration.Milliseconds(),
	}
}

// Adapter publishes completion events to a downstream system.
type Adapter interface {
	// Publish sends one event. Must respect context cancellation and deadlines.
	Publish(ctx context.Context, event *OperationCompletedEvent) error

	// Close releases adapter resources.
	Close() error
}

// Retry runs op up to 1+retries times with exponential backoff starting at
// base. It stops early when ctx is done or permanent reports the error as
// not worth retrying. name prefixes returned errors.
func Retry(ctx context.Context, name string, retries int, base time.Duration, op func(context.Context) error, permanent func(error) bool) error {
	attempts := 1 + retries
	var lastErr error
	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: context canceled: %w", name, err)
		}
		if i > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: context canceled during backoff: %w", name, ctx.Err())
			case <-time.After(time.Duration(1<<uint(i-1)) * base):
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if permanent != nil && permanent(lastErr) {
			return fmt.Errorf("%s: non-retriable error: %w", name, lastErr)
		}
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", name, attempts, lastErr)
}

// Notify publishes event through a and reports whether it was delivered.
// Failures are logged at warn level and counted, never returned.
func Notify(ctx context.Context, a Adapter, event *OperationCompletedEvent, logger *log.Logger, collector *metrics.Collector) bool {
	if a == nil {
		return false
	}
	if logger == nil {
		logger = log.Nop()
	}
	if err := a.Publish(ctx, event); err != nil {
		collector.IncNotifyFailure()
		logger.Warn("completion notification failed", map[string]any{
			"event_type": event.EventType,
			"error":      err.Error(),
		})
		return false
	}
	collector.IncNotifySuccess()
	logger.Debug("completion notification sent", map[string]any{"event_type": event.EventType})
	return true
}
