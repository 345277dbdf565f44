// Package engine implements the streaming split and merge passes.
//
// Both passes are sequential: one read buffer, one output session, blocking
// I/O. A split rotates its session from fragment to fragment as each fills;
// a merge keeps one session on the merged file and reads fragments into it
// until the next index is missing.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pithecene-io/splimer/iox"
	"github.com/pithecene-io/splimer/log"
	"github.com/pithecene-io/splimer/manifest"
	"github.com/pithecene-io/splimer/metrics"
	"github.com/pithecene-io/splimer/naming"
	"github.com/pithecene-io/splimer/types"
)

// Options configure an engine. Zero values are valid.
type Options struct {
	// OperationID is stamped on the report.
	OperationID string
	// Logger receives debug entries for every fragment opened and closed.
	Logger *log.Logger
	// Metrics records counters; nil disables them.
	Metrics *metrics.Collector
	// Observer receives one Progress per completed fragment.
	Observer Observer
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Nop()
	}
	if o.Observer == nil {
		o.Observer = nopObserver{}
	}
	return o
}

// Splitter writes fixed-size fragments of one input file.
type Splitter struct {
	opts Options
}

// NewSplitter creates a Splitter.
func NewSplitter(opts Options) *Splitter {
	return &Splitter{opts: opts.withDefaults()}
}

// Split streams plan.InputPath into fragment files.
//
// A plan with Skip set produces a report and no files. A plan with a
// PartNumber writes only that fragment. Any I/O error aborts the pass and
// may leave a truncated last fragment on disk.
func (s *Splitter) Split(ctx context.Context, plan *types.Plan) (*types.Report, error) {
	started := time.Now()
	report := &types.Report{
		OperationID:  s.opts.OperationID,
		Mode:         types.ModeSplit,
		Input:        plan.InputPath,
		Output:       outputDir(plan.InputPath, plan.OutputDirectory),
		FileSize:     plan.FileSize,
		FragmentSize: plan.FragmentSize,
		Fragments:    []types.Fragment{},
	}
	finish := func() *types.Report {
		report.Duration = time.Since(started)
		report.Metrics = s.opts.Metrics.Snapshot()
		return report
	}

	in, err := os.Open(plan.InputPath)
	if err != nil {
		return nil, s.fail(wrapIO(err, "open", plan.InputPath))
	}
	defer iox.DiscardClose(in)

	info, err := in.Stat()
	if err != nil {
		return nil, s.fail(wrapIO(err, "stat", plan.InputPath))
	}
	if info.Size() != plan.FileSize {
		return nil, s.fail(fmt.Errorf("%w: planned %d bytes, found %d", ErrInputChanged, plan.FileSize, info.Size()))
	}

	if plan.Skip {
		s.opts.Metrics.IncSkipped()
		report.Skipped = true
		report.Message = fmt.Sprintf("file %s is already less than %d bytes, no work is done", plan.InputPath, plan.FragmentSize)
		s.opts.Logger.Info("split skipped", map[string]any{"file_size": plan.FileSize, "fragment_size": plan.FragmentSize})
		return finish(), nil
	}

	start, end, first := plan.Range()
	if start > 0 {
		if _, err := in.Seek(start, io.SeekStart); err != nil {
			return nil, s.fail(wrapIO(err, "seek", plan.InputPath))
		}
	}

	fragments, err := s.stream(ctx, in, plan, start, end, first)
	report.Fragments = fragments
	for _, f := range fragments {
		report.BytesWritten += f.Size()
	}
	if err != nil {
		return nil, s.fail(err)
	}

	if plan.Manifest {
		path, err := naming.ManifestPath(plan.InputPath, plan.OutputDirectory)
		if err != nil {
			return nil, err
		}
		m := manifest.New(filepath.Base(plan.InputPath), plan)
		if err := manifest.WriteFile(path, m); err != nil {
			return nil, s.fail(wrapIO(err, "write", path))
		}
		report.Manifest = path
	}

	report.Message = fmt.Sprintf("%d fragment(s) written", len(report.Fragments))
	return finish(), nil
}

// stream copies [start, end) of in into fragments numbered from first.
// It returns every fragment closed so far, also on error.
func (s *Splitter) stream(ctx context.Context, in io.Reader, plan *types.Plan, start, end int64, first int) ([]types.Fragment, error) {
	fragSize := plan.FragmentSize
	bufSize := plan.EffectiveBufferSize(fragSize)
	buf := make([]byte, bufSize)
	total := end - start

	sess := newSession(int(bufSize))
	defer sess.abort()

	var (
		fragments []types.Fragment
		done      int64 // bytes written in this pass
		current   int64 // bytes written to the open fragment
		index     = first
	)

	openFragment := func() error {
		path, err := naming.FragmentPath(plan.InputPath, plan.OutputDirectory, index)
		if err != nil {
			return err
		}
		s.opts.Logger.Debug("fragment opened", map[string]any{"index": index, "path": path})
		return sess.open(path)
	}

	closeFragment := func() error {
		path := sess.path
		n, err := sess.close()
		if err != nil {
			return err
		}
		fragStart := start + done - n
		fragments = append(fragments, types.Fragment{Index: index, Start: fragStart, End: fragStart + n, Path: path})
		s.opts.Metrics.IncFragmentWritten()
		s.opts.Logger.Debug("fragment closed", map[string]any{"index": index, "bytes": n})
		s.opts.Observer.FragmentDone(Progress{
			Index:         index,
			Path:          path,
			FragmentBytes: n,
			BytesDone:     done,
			BytesTotal:    total,
		})
		return nil
	}

	if err := openFragment(); err != nil {
		return fragments, err
	}

	for done < total {
		if err := ctx.Err(); err != nil {
			return fragments, err
		}

		want := min(int64(len(buf)), total-done)
		n, rerr := in.Read(buf[:want])
		s.opts.Metrics.AddBytesRead(int64(n))

		chunk := buf[:n]
		for len(chunk) > 0 {
			k := min(int64(len(chunk)), fragSize-current)
			if err := sess.write(chunk[:k]); err != nil {
				return fragments, err
			}
			s.opts.Metrics.AddBytesWritten(k)
			chunk = chunk[k:]
			current += k
			done += k

			if current == fragSize {
				if err := closeFragment(); err != nil {
					return fragments, err
				}
				current = 0
				if done < total {
					index++
					if err := openFragment(); err != nil {
						return fragments, err
					}
				}
			}
		}

		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return fragments, wrapIO(rerr, "read", plan.InputPath)
		}
	}

	if done < total {
		return fragments, wrapIO(io.ErrUnexpectedEOF, "read", plan.InputPath)
	}
	if sess.isOpen() {
		if err := closeFragment(); err != nil {
			return fragments, err
		}
	}
	return fragments, nil
}

// fail records an I/O failure and passes err through.
func (s *Splitter) fail(err error) error {
	s.opts.Metrics.IncIOFailure()
	s.opts.Logger.Error("split failed", map[string]any{"error": err.Error()})
	return err
}

// outputDir returns the directory fragments live in.
func outputDir(input, dir string) string {
	if dir != "" {
		return dir
	}
	return filepath.Dir(input)
}
