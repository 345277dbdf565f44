// Package planner resolves the effective fragment size of a split and
// validates size, part-count and part-number options against the input's
// actual size before any file is touched.
package planner

import (
	"errors"
	"fmt"

	"github.com/pithecene-io/splimer/types"
)

// Sentinel errors for plan validation. Use errors.Is for typed assertions.
var (
	// ErrFragmentSizeTooSmall indicates a fragment size below types.MinimumFragmentSize.
	ErrFragmentSizeTooSmall = errors.New("fragment size is too small")
	// ErrTooFewParts indicates a part count below 2.
	ErrTooFewParts = errors.New("number of parts should be more than one")
	// ErrPartNumberOutOfRange indicates a part number outside 1..TotalParts.
	ErrPartNumberOutOfRange = errors.New("part number out of range")
)

// Error carries the offending value and the limit it violated.
type Error struct {
	// Kind is the sentinel error for classification.
	Kind error
	// Value is the rejected value.
	Value int64
	// Limit is the bound that was violated.
	Limit int64
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrFragmentSizeTooSmall:
		return fmt.Sprintf("%v: %d bytes (minimum %d)", e.Kind, e.Value, e.Limit)
	case ErrTooFewParts:
		return fmt.Sprintf("%v: got %d", e.Kind, e.Value)
	case ErrPartNumberOutOfRange:
		return fmt.Sprintf("%v: part %d requested, file has %d parts", e.Kind, e.Value, e.Limit)
	default:
		return fmt.Sprintf("%v: %d (limit %d)", e.Kind, e.Value, e.Limit)
	}
}

// Is reports whether the error matches the target sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// Validate checks the options that do not depend on the input's size. It
// applies to merges too, which never reach Plan.
func Validate(cfg types.Config) error {
	if cfg.Parts != 0 && cfg.Parts < 2 {
		return &Error{Kind: ErrTooFewParts, Value: int64(cfg.Parts), Limit: 2}
	}
	if cfg.FragmentSize < types.MinimumFragmentSize {
		return &Error{Kind: ErrFragmentSizeTooSmall, Value: cfg.FragmentSize, Limit: types.MinimumFragmentSize}
	}
	return nil
}

// Plan computes the effective configuration for splitting a file of
// fileSize bytes. A plan with Skip set means the file is already smaller
// than one fragment and no work is needed.
func Plan(cfg types.Config, fileSize int64) (*types.Plan, error) {
	if fileSize < 0 {
		return nil, fmt.Errorf("invalid file size %d", fileSize)
	}

	if cfg.Parts != 0 {
		if cfg.Parts < 2 {
			return nil, &Error{Kind: ErrTooFewParts, Value: int64(cfg.Parts), Limit: 2}
		}
		cfg.FragmentSize = CeilDiv(fileSize, int64(cfg.Parts))
	}

	if cfg.FragmentSize < types.MinimumFragmentSize {
		return nil, &Error{Kind: ErrFragmentSizeTooSmall, Value: cfg.FragmentSize, Limit: types.MinimumFragmentSize}
	}

	plan := &types.Plan{
		Config:     cfg,
		FileSize:   fileSize,
		TotalParts: int(CeilDiv(fileSize, cfg.FragmentSize)),
	}

	if fileSize < cfg.FragmentSize {
		plan.Skip = true
		return plan, nil
	}

	if cfg.PartNumber < 0 || int64(cfg.PartNumber) > int64(plan.TotalParts) {
		return nil, &Error{Kind: ErrPartNumberOutOfRange, Value: int64(cfg.PartNumber), Limit: int64(plan.TotalParts)}
	}

	return plan, nil
}

// CeilDiv returns ceil(a / b) for a >= 0, b > 0.
func CeilDiv(a, b int64) int64 {
	if a == 0 {
		return 0
	}
	return (a-1)/b + 1
}
