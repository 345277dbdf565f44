package types

import (
	"time"

	"github.com/pithecene-io/splimer/metrics"
)

// Report describes the result of one split or merge operation.
// It is the payload rendered by the CLI and summarized in completion events.
type Report struct {
	OperationID string `json:"operation_id" yaml:"operation_id"`
	Mode        Mode   `json:"mode" yaml:"mode"`
	Input       string `json:"input" yaml:"input"`
	// Output is the merged file for merges, the fragment directory for splits.
	Output string `json:"output" yaml:"output"`

	FileSize     int64 `json:"file_size" yaml:"file_size"`
	FragmentSize int64 `json:"fragment_size,omitempty" yaml:"fragment_size,omitempty"`
	BytesWritten int64 `json:"bytes_written" yaml:"bytes_written"`

	Fragments []Fragment `json:"fragments" yaml:"fragments"`
	// Manifest is the manifest path when one was written or verified.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty"`

	// Skipped is set when no work was necessary.
	Skipped bool   `json:"skipped" yaml:"skipped"`
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	Duration time.Duration    `json:"duration" yaml:"duration"`
	Metrics  metrics.Snapshot `json:"metrics" yaml:"metrics"`
}

// Outcome returns "skipped" for no-op runs and "success" otherwise.
func (r *Report) Outcome() string {
	if r.Skipped {
		return "skipped"
	}
	return "success"
}
