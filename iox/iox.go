// Package iox provides I/O helpers for resource cleanup.
package iox

import (
	"errors"
	"io"
)

// DiscardClose closes c and discards the error.
// Use in defer statements on read-only handles where close errors are
// unactionable:
//
//	defer iox.DiscardClose(f)
func DiscardClose(c io.Closer) { _ = c.Close() }

// CloseFunc returns a cleanup function that closes c.
// Designed for t.Cleanup registration:
//
//	t.Cleanup(iox.CloseFunc(client))
func CloseFunc(c io.Closer) func() {
	return func() { _ = c.Close() }
}

// CloseInto closes c and stores its error in *errp unless *errp already
// holds an error. Use with named returns on handles that were written to,
// where a failed close means lost data:
//
//	defer iox.CloseInto(out, &err)
func CloseInto(c io.Closer, errp *error) {
	cerr := c.Close()
	if cerr == nil {
		return
	}
	if *errp == nil {
		*errp = cerr
		return
	}
	*errp = errors.Join(*errp, cerr)
}
