package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/pithecene-io/splimer/iox"
	"github.com/pithecene-io/splimer/manifest"
	"github.com/pithecene-io/splimer/naming"
	"github.com/pithecene-io/splimer/types"
)

// Merger concatenates sequential fragments back into one file.
type Merger struct {
	opts Options
}

// NewMerger creates a Merger.
func NewMerger(opts Options) *Merger {
	return &Merger{opts: opts.withDefaults()}
}

// Merge rebuilds cfg.InputPath from its fragments into the merged output
// path. Fragments are looked up in cfg.OutputDirectory, or next to the
// input when empty, starting at index 1; the first missing index ends the
// merge. A missing first fragment is ErrNoFragments and creates nothing.
//
// A manifest beside the fragments, when present, is checked against the
// fragment count and merged size. cfg.Manifest makes the manifest required.
func (m *Merger) Merge(ctx context.Context, cfg types.Config) (*types.Report, error) {
	started := time.Now()

	firstPath, err := naming.FragmentPath(cfg.InputPath, cfg.OutputDirectory, 1)
	if err != nil {
		return nil, err
	}
	exists, err := probe(firstPath)
	if err != nil {
		return nil, m.fail(err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s does not exist", ErrNoFragments, firstPath)
	}

	man, manPath, err := m.loadManifest(cfg)
	if err != nil {
		return nil, m.fail(err)
	}

	outPath, err := naming.MergedPath(cfg.InputPath)
	if err != nil {
		return nil, err
	}

	report := &types.Report{
		OperationID: m.opts.OperationID,
		Mode:        types.ModeMerge,
		Input:       cfg.InputPath,
		Output:      outPath,
		Manifest:    manPath,
		Fragments:   []types.Fragment{},
	}
	var total int64
	if man != nil {
		total = man.FileSize
		report.FragmentSize = man.FragmentSize
	}

	bufSize := cfg.EffectiveBufferSize(0)
	buf := make([]byte, bufSize)

	sess := newSession(int(bufSize))
	defer sess.abort()
	if err := sess.open(outPath); err != nil {
		return nil, m.fail(err)
	}
	m.opts.Logger.Debug("merge output opened", map[string]any{"path": outPath})

	var done int64
	for index := 1; ; index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path, err := naming.FragmentPath(cfg.InputPath, cfg.OutputDirectory, index)
		if err != nil {
			return nil, err
		}
		ok, err := probe(path)
		if err != nil {
			return nil, m.fail(err)
		}
		if !ok {
			m.opts.Logger.Debug("fragment probe ended merge", map[string]any{"missing_index": index})
			break
		}

		n, err := m.appendFragment(ctx, sess, path, buf)
		if err != nil {
			return nil, m.fail(err)
		}
		if err := sess.flush(); err != nil {
			return nil, m.fail(err)
		}

		report.Fragments = append(report.Fragments, types.Fragment{Index: index, Start: done, End: done + n, Path: path})
		done += n
		m.opts.Metrics.IncFragmentRead()
		m.opts.Observer.FragmentDone(Progress{
			Index:         index,
			Path:          path,
			FragmentBytes: n,
			BytesDone:     done,
			BytesTotal:    total,
		})
	}

	if _, err := sess.close(); err != nil {
		return nil, m.fail(err)
	}

	report.FileSize = done
	report.BytesWritten = done
	if report.FragmentSize == 0 && len(report.Fragments) > 0 {
		report.FragmentSize = report.Fragments[0].Size()
	}

	if man != nil {
		if err := verifyManifest(man, len(report.Fragments), done); err != nil {
			return nil, m.fail(err)
		}
	}

	report.Message = fmt.Sprintf("%d fragment(s) merged into %s", len(report.Fragments), outPath)
	report.Duration = time.Since(started)
	report.Metrics = m.opts.Metrics.Snapshot()
	return report, nil
}

// appendFragment copies one fragment file into the session in bounded
// chunks and returns the number of bytes copied.
func (m *Merger) appendFragment(ctx context.Context, sess *session, path string, buf []byte) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, wrapIO(err, "open", path)
	}
	defer iox.DiscardClose(f)

	var n int64
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		r, rerr := f.Read(buf)
		if r > 0 {
			m.opts.Metrics.AddBytesRead(int64(r))
			if err := sess.write(buf[:r]); err != nil {
				return n, err
			}
			m.opts.Metrics.AddBytesWritten(int64(r))
			n += int64(r)
		}
		if rerr == io.EOF {
			return n, nil
		}
		if rerr != nil {
			return n, wrapIO(rerr, "read", path)
		}
	}
}

// loadManifest reads the manifest beside the fragments if there is one.
func (m *Merger) loadManifest(cfg types.Config) (*manifest.Manifest, string, error) {
	path, err := naming.ManifestPath(cfg.InputPath, cfg.OutputDirectory)
	if err != nil {
		return nil, "", err
	}
	ok, err := probe(path)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		if cfg.Manifest {
			return nil, "", fmt.Errorf("%w: %s", ErrManifestMissing, path)
		}
		return nil, "", nil
	}
	man, err := manifest.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read manifest %s: %w", path, err)
	}
	m.opts.Logger.Debug("manifest loaded", map[string]any{"path": path, "fragment_count": man.FragmentCount})
	return man, path, nil
}

// verifyManifest compares what was merged with what the split recorded.
func verifyManifest(man *manifest.Manifest, count int, size int64) error {
	if count != man.FragmentCount {
		return fmt.Errorf("%w: merged %d fragment(s), manifest lists %d", ErrManifestMismatch, count, man.FragmentCount)
	}
	if size != man.FileSize {
		return fmt.Errorf("%w: merged %d bytes, manifest records %d", ErrManifestMismatch, size, man.FileSize)
	}
	return nil
}

// probe reports whether a regular file exists at path. Errors other than
// not-exist are returned classified.
func probe(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, wrapIO(err, "stat", path)
	}
	if !info.Mode().IsRegular() {
		return false, &IOError{Kind: ErrIO, Op: "stat", Path: path, Err: errors.New("not a regular file")}
	}
	return true, nil
}

// fail records an I/O failure and passes err through.
func (m *Merger) fail(err error) error {
	m.opts.Metrics.IncIOFailure()
	m.opts.Logger.Error("merge failed", map[string]any{"error": err.Error()})
	return err
}
