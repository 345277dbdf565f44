package engine

import (
	"bufio"
	"errors"
	"os"
)

// errSessionOpen guards the single-writer invariant.
var errSessionOpen = errors.New("output session already holds an open file")

// session owns the one output handle an engine may have open.
// Switching files requires close before the next open.
type session struct {
	bufSize int

	f    *os.File
	w    *bufio.Writer
	path string
	n    int64
}

func newSession(bufSize int) *session {
	return &session{bufSize: bufSize}
}

// open truncate-creates path and makes it the current output.
func (s *session) open(path string) error {
	if s.f != nil {
		return errSessionOpen
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return wrapIO(err, "create", path)
	}
	s.f = f
	s.w = bufio.NewWriterSize(f, s.bufSize)
	s.path = path
	s.n = 0
	return nil
}

// write appends p to the current output.
func (s *session) write(p []byte) error {
	n, err := s.w.Write(p)
	s.n += int64(n)
	if err != nil {
		return wrapIO(err, "write", s.path)
	}
	return nil
}

// flush pushes buffered bytes to the file.
func (s *session) flush() error {
	return wrapIO(s.w.Flush(), "write", s.path)
}

// close flushes and closes the current output. It returns the number of
// bytes written to the file.
func (s *session) close() (int64, error) {
	path, n := s.path, s.n
	ferr := s.w.Flush()
	cerr := s.f.Close()
	s.f, s.w = nil, nil
	if ferr != nil {
		return n, wrapIO(ferr, "write", path)
	}
	return n, wrapIO(cerr, "close", path)
}

// abort closes any open output without flushing. Partially written files
// are left on disk.
func (s *session) abort() {
	if s.f == nil {
		return
	}
	_ = s.f.Close()
	s.f, s.w = nil, nil
}

// isOpen reports whether an output is currently open.
func (s *session) isOpen() bool {
	return s.f != nil
}
