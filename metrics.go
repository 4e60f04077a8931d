package tuplego

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives engine events. Implementations must be safe
// for concurrent use.
type MetricsCollector interface {
	// RecordScan is called after every scan with its duration, the rows
	// materialized and whether the index fast path served it.
	RecordScan(duration time.Duration, rows int, pointLookup bool)

	// RecordWrite is called after every successful write with its
	// duration and the rows appended.
	RecordWrite(duration time.Duration, rows int64)

	// RecordLookup is called after every point lookup with its duration
	// and whether the key was found.
	RecordLookup(duration time.Duration, found bool)

	// RecordSnapshot is called after every snapshot save or load.
	RecordSnapshot(duration time.Duration, err error)
}

// NoopMetricsCollector discards all events.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordScan(time.Duration, int, bool) {}
func (NoopMetricsCollector) RecordWrite(time.Duration, int64)    {}
func (NoopMetricsCollector) RecordLookup(time.Duration, bool)    {}
func (NoopMetricsCollector) RecordSnapshot(time.Duration, error) {}

// BasicMetricsCollector keeps lock-free counters suitable for
// scraping from a stats endpoint.
type BasicMetricsCollector struct {
	scanCount        atomic.Int64
	scanRows         atomic.Int64
	scanNanos        atomic.Int64
	pointLookupScans atomic.Int64

	writeCount atomic.Int64
	writeRows  atomic.Int64
	writeNanos atomic.Int64

	lookupCount atomic.Int64
	lookupFound atomic.Int64
	lookupNanos atomic.Int64

	snapshotCount  atomic.Int64
	snapshotErrors atomic.Int64
	snapshotNanos  atomic.Int64
}

// NewBasicMetricsCollector creates a zeroed collector.
func NewBasicMetricsCollector() *BasicMetricsCollector {
	return &BasicMetricsCollector{}
}

func (c *BasicMetricsCollector) RecordScan(d time.Duration, rows int, pointLookup bool) {
	c.scanCount.Add(1)
	c.scanRows.Add(int64(rows))
	c.scanNanos.Add(int64(d))
	if pointLookup {
		c.pointLookupScans.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordWrite(d time.Duration, rows int64) {
	c.writeCount.Add(1)
	c.writeRows.Add(rows)
	c.writeNanos.Add(int64(d))
}

func (c *BasicMetricsCollector) RecordLookup(d time.Duration, found bool) {
	c.lookupCount.Add(1)
	c.lookupNanos.Add(int64(d))
	if found {
		c.lookupFound.Add(1)
	}
}

func (c *BasicMetricsCollector) RecordSnapshot(d time.Duration, err error) {
	c.snapshotCount.Add(1)
	c.snapshotNanos.Add(int64(d))
	if err != nil {
		c.snapshotErrors.Add(1)
	}
}

// Stats is a point-in-time view of the collected counters.
type Stats struct {
	ScanCount        int64
	ScanRows         int64
	ScanDuration     time.Duration
	PointLookupScans int64

	WriteCount    int64
	WriteRows     int64
	WriteDuration time.Duration

	LookupCount    int64
	LookupFound    int64
	LookupDuration time.Duration

	SnapshotCount    int64
	SnapshotErrors   int64
	SnapshotDuration time.Duration
}

// GetStats returns a consistent-enough snapshot of the counters. Each
// field is read atomically; the set as a whole is not.
func (c *BasicMetricsCollector) GetStats() Stats {
	return Stats{
		ScanCount:        c.scanCount.Load(),
		ScanRows:         c.scanRows.Load(),
		ScanDuration:     time.Duration(c.scanNanos.Load()),
		PointLookupScans: c.pointLookupScans.Load(),

		WriteCount:    c.writeCount.Load(),
		WriteRows:     c.writeRows.Load(),
		WriteDuration: time.Duration(c.writeNanos.Load()),

		LookupCount:    c.lookupCount.Load(),
		LookupFound:    c.lookupFound.Load(),
		LookupDuration: time.Duration(c.lookupNanos.Load()),

		SnapshotCount:    c.snapshotCount.Load(),
		SnapshotErrors:   c.snapshotErrors.Load(),
		SnapshotDuration: time.Duration(c.snapshotNanos.Load()),
	}
}
