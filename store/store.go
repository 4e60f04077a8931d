package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/tuplego/model"
	"github.com/hupe1980/tuplego/pk"
	"github.com/hupe1980/tuplego/schema"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	// ErrSchemaMismatch is returned when batch data is incompatible with
	// the declared table schema.
	ErrSchemaMismatch = errors.New("store: mismatch between schema and batches")

	// ErrOverwriteNotSupported is returned when a write requests
	// overwrite mode. Overwriting fails loudly instead of silently
	// truncating existing data.
	ErrOverwriteNotSupported = errors.New("store: overwrite not implemented")

	// ErrNoPartitions is returned when a store is constructed without
	// any partitions. Writes distribute round-robin over the partition
	// count, so a store needs at least one.
	ErrNoPartitions = errors.New("store: at least one partition required")
)

// WriteMode selects how a write treats existing data.
type WriteMode int

const (
	// ModeAppend appends the incoming record groups.
	ModeAppend WriteMode = iota
	// ModeOverwrite would replace existing data; unsupported.
	ModeOverwrite
)

// partition is an independently lockable subset of the stored batches.
type partition struct {
	mu      sync.RWMutex
	batches []*Batch
}

// Store groups record batches into partitions and owns the primary-key
// index built over the initial dataset.
//
// There is no global lock: scans hold one shared lock per partition,
// writes one exclusive lock per partition. A write spanning multiple
// partitions is not atomic as a unit; if it fails midway, partitions
// already appended keep their data.
type Store struct {
	schema     *schema.Schema
	partitions []*partition
	index      *pk.Index
	limiter    *rate.Limiter
}

// Option configures a Store.
type Option func(*Store)

// WithRateLimiter throttles the write path. Each incoming record group
// consumes tokens equal to its row count, so the limiter's burst must
// cover the largest expected group.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(s *Store) { s.limiter = l }
}

// New builds a store over the initial dataset and constructs the
// primary-key index in one pass over every partition, batch and row, in
// that nested order.
//
// Every batch must have been built against the given schema; otherwise
// New fails with ErrSchemaMismatch. A repeated primary key anywhere in
// the dataset aborts construction with pk.ErrDuplicateKey — there is no
// partial index and no usable store.
func New(s *schema.Schema, parts [][]*Batch, opts ...Option) (*Store, error) {
	if len(parts) == 0 {
		return nil, ErrNoPartitions
	}
	for _, batches := range parts {
		for _, b := range batches {
			if !s.Equal(b.Schema()) {
				return nil, ErrSchemaMismatch
			}
		}
	}

	st := &Store{
		schema:     s,
		partitions: make([]*partition, len(parts)),
		index:      pk.NewIndex(),
	}
	for i, batches := range parts {
		p := &partition{batches: make([]*Batch, len(batches))}
		copy(p.batches, batches)
		st.partitions[i] = p
	}
	for _, opt := range opts {
		opt(st)
	}

	err := st.index.Build(func(yield func(model.Key, model.Location) error) error {
		for partIdx, p := range st.partitions {
			for batchIdx, b := range p.batches {
				for row := 0; row < b.NumRows(); row++ {
					loc := model.Location{Partition: partIdx, Batch: batchIdx, Row: row}
					if err := yield(b.KeyAt(row), loc); err != nil {
						return err
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return st, nil
}

// Schema returns the store's schema.
func (s *Store) Schema() *schema.Schema { return s.schema }

// NumPartitions returns the number of partitions.
func (s *Store) NumPartitions() int { return len(s.partitions) }

// Index exposes the primary-key index. It reflects the initial dataset
// only: later writes do not maintain it.
func (s *Store) Index() *pk.Index { return s.index }

// NumRows returns the total row count across all partitions.
func (s *Store) NumRows() int {
	var n int
	for _, p := range s.partitions {
		p.mu.RLock()
		for _, b := range p.batches {
			n += b.NumRows()
		}
		p.mu.RUnlock()
	}
	return n
}

// Result is the outcome of a scan: either a single sliced row from a
// point lookup or a fully materialized view of every partition.
type Result struct {
	// Partitions holds the materialized batches, one slice per
	// partition. For a point lookup there is exactly one partition with
	// one single-row batch; for a missing key it is empty.
	Partitions [][]*Batch

	// PointLookup reports whether the index fast path produced the
	// result.
	PointLookup bool
}

// NumRows returns the total row count of the result.
func (r *Result) NumRows() int {
	var n int
	for _, batches := range r.Partitions {
		for _, b := range batches {
			n += b.NumRows()
		}
	}
	return n
}

// Scan materializes the store's contents.
//
// If one of the filters is an equality between the primary-key column
// and a literal, the scan short-circuits into an index lookup: an
// existing key yields exactly that row, a missing key yields an empty
// result. Every other filter shape is ignored here and left to the
// caller — the scan falls back to materializing all partitions, taking
// a shared lock on each.
func (s *Store) Scan(ctx context.Context, filters ...Expr) (*Result, error) {
	for _, f := range filters {
		key, ok := s.primaryKeyFilter(f)
		if !ok {
			continue
		}
		loc, found := s.index.Lookup(key)
		if !found {
			return &Result{PointLookup: true}, nil
		}
		p := s.partitions[loc.Partition]
		p.mu.RLock()
		row := p.batches[loc.Batch].Slice(loc.Row)
		p.mu.RUnlock()
		return &Result{
			Partitions:  [][]*Batch{{row}},
			PointLookup: true,
		}, nil
	}

	out := make([][]*Batch, len(s.partitions))
	g, _ := errgroup.WithContext(ctx)
	for i, p := range s.partitions {
		g.Go(func() error {
			p.mu.RLock()
			batches := make([]*Batch, len(p.batches))
			copy(batches, p.batches)
			p.mu.RUnlock()
			out[i] = batches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Result{Partitions: out}, nil
}

// Lookup materializes the single row stored under key, going through
// the primary-key index.
func (s *Store) Lookup(key model.Key) (model.ProjectedRow, bool) {
	loc, found := s.index.Lookup(key)
	if !found {
		return model.ProjectedRow{}, false
	}
	p := s.partitions[loc.Partition]
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.batches[loc.Batch].Row(loc.Row), true
}

// Write distributes the incoming record groups round-robin across the
// partitions: group i goes to partition i mod P, preserving arrival
// order within each partition. All groups destined for one partition
// are appended under a single exclusive lock acquisition to bound lock
// contention. It returns the total row count of the incoming groups.
//
// The primary-key index is NOT updated; see Index.
func (s *Store) Write(ctx context.Context, groups []*Batch, mode WriteMode) (int64, error) {
	if mode == ModeOverwrite {
		return 0, ErrOverwriteNotSupported
	}

	numPartitions := len(s.partitions)
	buffered := make([][]*Batch, numPartitions)
	var rowCount int64
	for i, g := range groups {
		if !s.schema.Equal(g.Schema()) {
			return 0, fmt.Errorf("%w: group %d", ErrSchemaMismatch, i)
		}
		if s.limiter != nil {
			if err := s.limiter.WaitN(ctx, g.NumRows()); err != nil {
				return 0, err
			}
		}
		target := i % numPartitions
		buffered[target] = append(buffered[target], g)
		rowCount += int64(g.NumRows())
	}

	for i, newBatches := range buffered {
		if len(newBatches) == 0 {
			continue
		}
		p := s.partitions[i]
		p.mu.Lock()
		p.batches = append(p.batches, newBatches...)
		p.mu.Unlock()
	}

	return rowCount, nil
}
