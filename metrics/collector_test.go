package metrics

import (
	"sync"
	"testing"
)

func TestCollector_IncrementMethods(t *testing.T) {
	c := NewCollector("split", "fs", "op-001")

	c.IncFragmentWritten()
	c.IncFragmentWritten()
	c.IncFragmentRead()
	c.IncSkipped()
	c.AddBytesRead(4096)
	c.AddBytesWritten(3000)
	c.AddBytesWritten(1096)
	c.IncIOFailure()
	c.IncStoreUpload()
	c.IncStoreUpload()
	c.IncStoreDownload()
	c.IncStoreFailure()
	c.IncNotifySuccess()
	c.IncNotifyFailure()
	c.IncNotifyFailure()

	s := c.Snapshot()

	if s.FragmentsWritten != 2 {
		t.Errorf("FragmentsWritten = %d, want 2", s.FragmentsWritten)
	}
	if s.FragmentsRead != 1 {
		t.Errorf("FragmentsRead = %d, want 1", s.FragmentsRead)
	}
	if s.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", s.Skipped)
	}
	if s.BytesRead != 4096 {
		t.Errorf("BytesRead = %d, want 4096", s.BytesRead)
	}
	if s.BytesWritten != 4096 {
		t.Errorf("BytesWritten = %d, want 4096", s.BytesWritten)
	}
	if s.IOFailures != 1 {
		t.Errorf("IOFailures = %d, want 1", s.IOFailures)
	}
	if s.StoreUploads != 2 {
		t.Errorf("StoreUploads = %d, want 2", s.StoreUploads)
	}
	if s.StoreDownloads != 1 {
		t.Errorf("StoreDownloads = %d, want 1", s.StoreDownloads)
	}
	if s.StoreFailures != 1 {
		t.Errorf("StoreFailures = %d, want 1", s.StoreFailures)
	}
	if s.NotifySuccess != 1 {
		t.Errorf("NotifySuccess = %d, want 1", s.NotifySuccess)
	}
	if s.NotifyFailure != 2 {
		t.Errorf("NotifyFailure = %d, want 2", s.NotifyFailure)
	}
}

func TestCollector_Dimensions(t *testing.T) {
	s := NewCollector("merge", "s3", "op-xyz").Snapshot()

	if s.Mode != "merge" {
		t.Errorf("Mode = %q, want merge", s.Mode)
	}
	if s.StoreBackend != "s3" {
		t.Errorf("StoreBackend = %q, want s3", s.StoreBackend)
	}
	if s.OperationID != "op-xyz" {
		t.Errorf("OperationID = %q, want op-xyz", s.OperationID)
	}
}

func TestCollector_NegativeBytesIgnored(t *testing.T) {
	c := NewCollector("split", "", "op")
	c.AddBytesRead(-5)
	c.AddBytesWritten(0)

	s := c.Snapshot()
	if s.BytesRead != 0 || s.BytesWritten != 0 {
		t.Errorf("expected zero byte counters, got read=%d written=%d", s.BytesRead, s.BytesWritten)
	}
}

func TestCollector_NilReceiver(_ *testing.T) {
	var c *Collector

	// None of these should panic.
	c.IncFragmentWritten()
	c.IncFragmentRead()
	c.IncSkipped()
	c.AddBytesRead(1)
	c.AddBytesWritten(1)
	c.IncIOFailure()
	c.IncStoreUpload()
	c.IncStoreDownload()
	c.IncStoreFailure()
	c.IncNotifySuccess()
	c.IncNotifyFailure()
	_ = c.Snapshot()
}

func TestCollector_SnapshotIsolation(t *testing.T) {
	c := NewCollector("split", "", "op")
	c.IncFragmentWritten()

	before := c.Snapshot()
	c.IncFragmentWritten()

	if before.FragmentsWritten != 1 {
		t.Errorf("snapshot mutated after collector change: %d", before.FragmentsWritten)
	}
	if got := c.Snapshot().FragmentsWritten; got != 2 {
		t.Errorf("FragmentsWritten = %d, want 2", got)
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	c := NewCollector("split", "", "op")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncFragmentWritten()
			c.AddBytesWritten(10)
			_ = c.Snapshot()
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.FragmentsWritten != 50 {
		t.Errorf("FragmentsWritten = %d, want 50", s.FragmentsWritten)
	}
	if s.BytesWritten != 500 {
		t.Errorf("BytesWritten = %d, want 500", s.BytesWritten)
	}
}
