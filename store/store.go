// Package store publishes split fragments to, and fetches them from, a
// lode object store.
//
// Objects are stored flat under the fragment's base file name, so a store
// holds the same names a local output directory would. Fetch follows the
// merge rule: indices are probed from 1 until the first missing one.
package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/justapithecus/lode/lode"

	"github.com/pithecene-io/splimer/iox"
	"github.com/pithecene-io/splimer/log"
	"github.com/pithecene-io/splimer/metrics"
	"github.com/pithecene-io/splimer/naming"
	"github.com/pithecene-io/splimer/types"
)

// Supported backends.
const (
	BackendFS     = "fs"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// Config selects and configures a backend. An empty Backend disables the
// store.
type Config struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// Enabled reports whether a backend is configured.
func (c Config) Enabled() bool {
	return c.Backend != ""
}

// Validate checks the backend name and its required settings.
func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendMemory:
		return nil
	case BackendFS:
		if c.Path == "" {
			return fmt.Errorf("store backend %q requires a path", c.Backend)
		}
		return nil
	case BackendS3:
		bucket, _ := ParseS3Path(c.Path)
		if bucket == "" {
			return fmt.Errorf("store backend %q requires a path of the form bucket/prefix", c.Backend)
		}
		return nil
	default:
		return fmt.Errorf("invalid store backend: %q (must be fs, s3 or memory)", c.Backend)
	}
}

// Options carry the ambient dependencies of a Store. Zero values are valid.
type Options struct {
	Logger  *log.Logger
	Metrics *metrics.Collector
}

// Store moves fragment files between the local filesystem and a lode store.
type Store struct {
	backend string
	factory lode.StoreFactory
	logger  *log.Logger
	metrics *metrics.Collector

	once     sync.Once
	store    lode.Store
	storeErr error
}

// New builds a Store for cfg. The underlying lode store is created lazily
// on first use.
func New(ctx context.Context, cfg Config, opts Options) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var factory lode.StoreFactory
	switch cfg.Backend {
	case BackendFS:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, wrap(err, "init", cfg.Path)
		}
		factory = lode.NewFSFactory(cfg.Path)
	case BackendS3:
		bucket, prefix := ParseS3Path(cfg.Path)
		f, err := newS3Factory(ctx, S3Config{
			Bucket:       bucket,
			Prefix:       prefix,
			Region:       cfg.Region,
			Endpoint:     cfg.Endpoint,
			UsePathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, wrap(err, "init", cfg.Path)
		}
		factory = f
	case BackendMemory:
		factory = lode.NewMemoryFactory()
	default:
		return nil, fmt.Errorf("store backend not configured")
	}

	return NewWithFactory(cfg.Backend, factory, opts), nil
}

// NewWithFactory builds a Store over an arbitrary lode store factory.
func NewWithFactory(backend string, factory lode.StoreFactory, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	return &Store{
		backend: backend,
		factory: factory,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// Backend returns the backend name.
func (s *Store) Backend() string {
	return s.backend
}

func (s *Store) get() (lode.Store, error) {
	s.once.Do(func() {
		s.store, s.storeErr = s.factory()
	})
	if s.storeErr != nil {
		return nil, wrap(s.storeErr, "init", "")
	}
	return s.store, nil
}

// Publish uploads every fragment, and the manifest when manifestPath is
// not empty, under its base file name. It returns the keys written, in
// order, and stops at the first failure.
func (s *Store) Publish(ctx context.Context, fragments []types.Fragment, manifestPath string) ([]string, error) {
	st, err := s.get()
	if err != nil {
		s.metrics.IncStoreFailure()
		return nil, err
	}

	paths := make([]string, 0, len(fragments)+1)
	for _, f := range fragments {
		paths = append(paths, f.Path)
	}
	if manifestPath != "" {
		paths = append(paths, manifestPath)
	}

	keys := make([]string, 0, len(paths))
	for _, path := range paths {
		key := filepath.Base(path)
		if err := s.upload(ctx, st, path, key); err != nil {
			s.metrics.IncStoreFailure()
			s.logger.Error("store upload failed", map[string]any{"key": key, "error": err.Error()})
			return keys, err
		}
		s.metrics.IncStoreUpload()
		s.logger.Debug("fragment uploaded", map[string]any{"key": key, "backend": s.backend})
		keys = append(keys, key)
	}
	return keys, nil
}

func (s *Store) upload(ctx context.Context, st lode.Store, path, key string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s for upload: %w", path, err)
	}
	defer iox.DiscardClose(f)
	return wrap(st.Put(ctx, key, f), "put", key)
}

// Fetch downloads the fragments of input into dir: indices 1, 2, ... while
// the store has them, plus the manifest if the store has one. It returns
// the local paths written. A store without fragment 1 is ErrNotFound.
func (s *Store) Fetch(ctx context.Context, input, dir string) ([]string, error) {
	st, err := s.get()
	if err != nil {
		s.metrics.IncStoreFailure()
		return nil, err
	}
	if dir == "" {
		dir = filepath.Dir(input)
	}

	var paths []string
	for index := 1; ; index++ {
		key, err := naming.FragmentName(input, index)
		if err != nil {
			return paths, err
		}
		ok, err := s.exists(ctx, st, key)
		if err != nil {
			return paths, err
		}
		if !ok {
			if index == 1 {
				return nil, &Error{Kind: ErrNotFound, Op: "get", Key: key, Err: fmt.Errorf("no fragments in %s store", s.backend)}
			}
			break
		}
		path, err := s.fetchOne(ctx, st, key, dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	key, err := naming.ManifestName(input)
	if err != nil {
		return paths, err
	}
	ok, err := s.exists(ctx, st, key)
	if err != nil {
		return paths, err
	}
	if ok {
		path, err := s.fetchOne(ctx, st, key, dir)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (s *Store) exists(ctx context.Context, st lode.Store, key string) (bool, error) {
	ok, err := st.Exists(ctx, key)
	if err != nil {
		s.metrics.IncStoreFailure()
		return false, wrap(err, "exists", key)
	}
	return ok, nil
}

func (s *Store) fetchOne(ctx context.Context, st lode.Store, key, dir string) (path string, err error) {
	rc, err := st.Get(ctx, key)
	if err != nil {
		s.metrics.IncStoreFailure()
		return "", wrap(err, "get", key)
	}
	defer iox.DiscardClose(rc)

	path = filepath.Join(dir, key)
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer iox.CloseInto(out, &err)

	if _, err := io.Copy(out, rc); err != nil {
		s.metrics.IncStoreFailure()
		return "", wrap(err, "get", key)
	}
	s.metrics.IncStoreDownload()
	s.logger.Debug("fragment downloaded", map[string]any{"key": key, "path": path})
	return path, nil
}
