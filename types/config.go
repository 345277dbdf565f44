package types

import "fmt"

// Size constants in bytes.
const (
	// DefaultFragmentSize is used when neither --fragment-size nor --parts is given.
	DefaultFragmentSize int64 = 1 << 30
	// MinimumFragmentSize is the smallest fragment a plan may produce.
	MinimumFragmentSize int64 = 1024
	// DefaultBufferSize is the default read buffer for split and merge.
	DefaultBufferSize int64 = 64 * 1024
)

// Mode selects the operation performed by a run.
type Mode string

// Supported modes.
const (
	ModeSplit Mode = "split"
	ModeMerge Mode = "merge"
)

// ParseMode parses a mode string. Empty means split.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", string(ModeSplit):
		return ModeSplit, nil
	case string(ModeMerge):
		return ModeMerge, nil
	default:
		return "", fmt.Errorf("invalid mode: %q (must be split or merge)", s)
	}
}

// Config is the run configuration assembled by the CLI.
// It is built once and not mutated afterwards; the planner derives a Plan
// from it instead.
type Config struct {
	// Mode is split or merge.
	Mode Mode `json:"mode" yaml:"mode"`
	// InputPath is the file to split, or the original file name whose
	// fragments are merged.
	InputPath string `json:"input_path" yaml:"input_path"`
	// FragmentSize is the requested fragment size in bytes.
	FragmentSize int64 `json:"fragment_size" yaml:"fragment_size"`
	// Parts, when > 0, requests exactly that many equal parts and overrides
	// FragmentSize.
	Parts int `json:"parts,omitempty" yaml:"parts,omitempty"`
	// PartNumber, when > 0, limits a split to that single 1-based fragment.
	PartNumber int `json:"part_number,omitempty" yaml:"part_number,omitempty"`
	// OutputDirectory holds fragments (split) or is searched for them (merge).
	// Empty means the input's own directory.
	OutputDirectory string `json:"output_directory,omitempty" yaml:"output_directory,omitempty"`
	// BufferSize bounds each read. Zero means DefaultBufferSize.
	BufferSize int64 `json:"buffer_size,omitempty" yaml:"buffer_size,omitempty"`
	// Manifest enables writing (split) and verifying (merge) a fragment manifest.
	Manifest bool `json:"manifest,omitempty" yaml:"manifest,omitempty"`
}

// EffectiveBufferSize returns the read buffer size for a given fragment size:
// the configured buffer, capped at the fragment size.
func (c Config) EffectiveBufferSize(fragmentSize int64) int64 {
	size := c.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	if fragmentSize > 0 && size > fragmentSize {
		size = fragmentSize
	}
	return size
}
