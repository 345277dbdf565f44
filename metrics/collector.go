// Package metrics provides per-operation counters for split and merge runs.
//
// The Collector accumulates counters during a single operation. It is a leaf
// package with no internal dependencies. Engines, the fragment store and the
// notification path all record into the same Collector; the CLI embeds the
// final Snapshot in the operation report.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all counters.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Fragments
	FragmentsWritten int64 `json:"fragments_written" yaml:"fragments_written"`
	FragmentsRead    int64 `json:"fragments_read" yaml:"fragments_read"`
	Skipped          int64 `json:"skipped" yaml:"skipped"`

	// Bytes
	BytesRead    int64 `json:"bytes_read" yaml:"bytes_read"`
	BytesWritten int64 `json:"bytes_written" yaml:"bytes_written"`

	// Failures
	IOFailures int64 `json:"io_failures" yaml:"io_failures"`

	// Fragment store (counted per fragment, not per byte)
	StoreUploads   int64 `json:"store_uploads" yaml:"store_uploads"`
	StoreDownloads int64 `json:"store_downloads" yaml:"store_downloads"`
	StoreFailures  int64 `json:"store_failures" yaml:"store_failures"`

	// Notifications
	NotifySuccess int64 `json:"notify_success" yaml:"notify_success"`
	NotifyFailure int64 `json:"notify_failure" yaml:"notify_failure"`

	// Dimensions (informational, set at construction)
	Mode         string `json:"mode" yaml:"mode"`
	StoreBackend string `json:"store_backend,omitempty" yaml:"store_backend,omitempty"`
	OperationID  string `json:"operation_id" yaml:"operation_id"`
}

// Collector accumulates counters during a single operation.
// Thread-safe via sync.Mutex. All methods are nil-receiver safe so callers
// may pass a nil *Collector when metrics are not wanted.
type Collector struct {
	mu sync.Mutex

	fragmentsWritten int64
	fragmentsRead    int64
	skipped          int64

	bytesRead    int64
	bytesWritten int64

	ioFailures int64

	storeUploads   int64
	storeDownloads int64
	storeFailures  int64

	notifySuccess int64
	notifyFailure int64

	mode         string
	storeBackend string
	operationID  string
}

// NewCollector creates a Collector with dimension labels.
// storeBackend is empty when no fragment store is configured.
func NewCollector(mode, storeBackend, operationID string) *Collector {
	return &Collector{
		mode:         mode,
		storeBackend: storeBackend,
		operationID:  operationID,
	}
}

// --- Fragments ---

// IncFragmentWritten records a fragment file closed after writing.
func (c *Collector) IncFragmentWritten() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.fragmentsWritten++
	c.mu.Unlock()
}

// IncFragmentRead records a fragment fully consumed by a merge.
func (c *Collector) IncFragmentRead() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.fragmentsRead++
	c.mu.Unlock()
}

// IncSkipped records a split that found nothing to do.
func (c *Collector) IncSkipped() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.skipped++
	c.mu.Unlock()
}

// --- Bytes ---

// AddBytesRead adds n to the bytes-read counter.
func (c *Collector) AddBytesRead(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.mu.Lock()
	c.bytesRead += n
	c.mu.Unlock()
}

// AddBytesWritten adds n to the bytes-written counter.
func (c *Collector) AddBytesWritten(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.mu.Lock()
	c.bytesWritten += n
	c.mu.Unlock()
}

// IncIOFailure records an I/O error that aborted an engine pass.
func (c *Collector) IncIOFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.ioFailures++
	c.mu.Unlock()
}

// --- Fragment store ---

// IncStoreUpload records one object uploaded to the fragment store.
func (c *Collector) IncStoreUpload() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.storeUploads++
	c.mu.Unlock()
}

// IncStoreDownload records one object downloaded from the fragment store.
func (c *Collector) IncStoreDownload() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.storeDownloads++
	c.mu.Unlock()
}

// IncStoreFailure records a failed store call.
func (c *Collector) IncStoreFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.storeFailures++
	c.mu.Unlock()
}

// --- Notifications ---

// IncNotifySuccess records a delivered completion event.
func (c *Collector) IncNotifySuccess() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifySuccess++
	c.mu.Unlock()
}

// IncNotifyFailure records a completion event that could not be delivered.
func (c *Collector) IncNotifyFailure() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.notifyFailure++
	c.mu.Unlock()
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all counters.
// The Collector can continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		FragmentsWritten: c.fragmentsWritten,
		FragmentsRead:    c.fragmentsRead,
		Skipped:          c.skipped,

		BytesRead:    c.bytesRead,
		BytesWritten: c.bytesWritten,

		IOFailures: c.ioFailures,

		StoreUploads:   c.storeUploads,
		StoreDownloads: c.storeDownloads,
		StoreFailures:  c.storeFailures,

		NotifySuccess: c.notifySuccess,
		NotifyFailure: c.notifyFailure,

		Mode:         c.mode,
		StoreBackend: c.storeBackend,
		OperationID:  c.operationID,
	}
}
