package store

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for storage failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrPermissionDenied indicates a permission failure (EACCES).
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound indicates the object or fragment does not exist (ENOENT, 404).
	ErrNotFound = errors.New("not found")

	// ErrDiskFull indicates storage is out of space (ENOSPC).
	ErrDiskFull = errors.New("no space left on device")

	// ErrTimeout indicates an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrThrottled indicates rate limiting (429, SlowDown).
	ErrThrottled = errors.New("rate limited")

	// ErrAuth indicates authentication failure (no credentials, expired token).
	ErrAuth = errors.New("authentication failed")

	// ErrAccessDenied indicates authorization failure (valid creds but no permission).
	ErrAccessDenied = errors.New("access denied")

	// ErrNetwork indicates a network-level failure (connection refused, DNS).
	ErrNetwork = errors.New("network error")

	// ErrUnclassified is the kind of every other storage failure.
	ErrUnclassified = errors.New("storage error")
)

// Error wraps an underlying error with storage classification.
// It preserves the original error in the chain for inspection via errors.As.
type Error struct {
	// Kind is the sentinel error for classification (e.g. ErrThrottled).
	Kind error
	// Op is the operation that failed: "init", "put", "get", "exists".
	Op string
	// Key is the object key involved, if any.
	Key string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("store %s %s: %v: %v", e.Op, e.Key, e.Kind, e.Err)
	}
	return fmt.Sprintf("store %s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches the target sentinel.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Kind, target)
}

// wrap classifies err. Returns nil if err is nil.
func wrap(err error, op, key string) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: classify(err), Op: op, Key: key, Err: err}
}

// classify maps an error to a sentinel by type, then by message.
// Backends report failures as opaque strings, so message patterns are the
// only signal for most S3 conditions.
func classify(err error) error {
	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "permission denied", "eacces"):
		return ErrPermissionDenied
	case containsAny(msg, "no such file", "does not exist", "not found", "enoent", "404", "nosuchkey", "nosuchbucket"):
		return ErrNotFound
	case containsAny(msg, "no space left", "disk full", "enospc", "quota exceeded"):
		return ErrDiskFull
	case containsAny(msg, "timeout", "timed out", "deadline exceeded"):
		return ErrTimeout
	case containsAny(msg, "slowdown", "rate exceeded", "throttl", "429", "toomanyrequests"):
		return ErrThrottled
	case containsAny(msg, "nocredentialproviders", "credentials", "invalidaccesskeyid",
		"signaturedoesnotmatch", "expiredtoken", "401", "unauthorized"):
		return ErrAuth
	case containsAny(msg, "accessdenied", "access denied", "forbidden", "403"):
		return ErrAccessDenied
	case containsAny(msg, "connection refused", "no route to host", "network unreachable",
		"dns", "dial tcp"):
		return ErrNetwork
	default:
		return ErrUnclassified
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
