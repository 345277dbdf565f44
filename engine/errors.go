package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Sentinel errors for I/O failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrNotFound indicates a file that does not exist (ENOENT).
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied indicates a permission failure (EACCES, EPERM).
	ErrPermissionDenied = errors.New("permission denied")
	// ErrDiskFull indicates the destination is out of space (ENOSPC).
	ErrDiskFull = errors.New("no space left on device")
	// ErrIO is the kind of every other I/O failure.
	ErrIO = errors.New("i/o error")
)

// Sentinel errors for fragment-set problems.
var (
	// ErrNoFragments indicates a merge found no fragment with index 1.
	ErrNoFragments = errors.New("no fragments found")
	// ErrManifestMismatch indicates the fragments on disk disagree with
	// the manifest written at split time.
	ErrManifestMismatch = errors.New("fragments do not match manifest")
	// ErrManifestMissing indicates a manifest was required but not found.
	ErrManifestMissing = errors.New("manifest not found")
	// ErrInputChanged indicates the input size changed after planning.
	ErrInputChanged = errors.New("input changed during split")
)

// IOError wraps an underlying error with an operation, a path and a
// classification. It preserves the original error for errors.As.
type IOError struct {
	// Kind is the sentinel error for classification (e.g. ErrDiskFull).
	Kind error
	// Op is the operation that failed (e.g. "open", "read", "write", "close").
	Op string
	// Path is the file involved.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *IOError) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// wrapIO classifies and wraps err. Returns nil if err is nil.
func wrapIO(err error, op, path string) error {
	if err == nil {
		return nil
	}
	return &IOError{Kind: classify(err), Op: op, Path: path, Err: err}
}

// classify determines the sentinel kind for a filesystem error.
func classify(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return ErrPermissionDenied
	case errors.Is(err, syscall.ENOSPC):
		return ErrDiskFull
	default:
		return ErrIO
	}
}
