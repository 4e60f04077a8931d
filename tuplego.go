package tuplego

import (
	"context"
	"time"

	"github.com/hupe1980/tuplego/blobstore"
	"github.com/hupe1980/tuplego/block"
	"github.com/hupe1980/tuplego/model"
	"github.com/hupe1980/tuplego/schema"
	"github.com/hupe1980/tuplego/store"
)

// DB is the facade over a partitioned batch store. It adds logging,
// metrics and snapshot plumbing around the store's operations; all
// semantics live in the store package.
type DB struct {
	store   *store.Store
	logger  *Logger
	metrics MetricsCollector
	opts    options
}

// Open builds a DB over the initial dataset. The primary-key index is
// constructed here, in one pass; a duplicate key aborts with
// ErrDuplicateKey, a batch built against a different schema with
// ErrSchemaMismatch.
func Open(s *schema.Schema, parts [][]*store.Batch, opts ...Option) (*DB, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var storeOpts []store.Option
	if o.writeLimit != nil {
		storeOpts = append(storeOpts, store.WithRateLimiter(o.writeLimit))
	}

	st, err := store.New(s, parts, storeOpts...)
	if err != nil {
		return nil, err
	}

	o.logger.Info("store opened",
		"partitions", st.NumPartitions(),
		"rows", st.NumRows(),
		"indexed_keys", st.Index().Len(),
	)

	return &DB{
		store:   st,
		logger:  o.logger,
		metrics: o.metrics,
		opts:    o,
	}, nil
}

// Load reads a snapshot from the blob store and opens a DB over it.
// The primary-key index is rebuilt from the snapshot's dataset.
func Load(ctx context.Context, bs blobstore.BlobStore, name string, opts ...Option) (*DB, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var storeOpts []store.Option
	if o.writeLimit != nil {
		storeOpts = append(storeOpts, store.WithRateLimiter(o.writeLimit))
	}

	start := time.Now()
	st, err := store.Load(ctx, bs, name, storeOpts...)
	o.metrics.RecordSnapshot(time.Since(start), err)
	o.logger.LogSnapshot(ctx, name, err)
	if err != nil {
		return nil, err
	}

	return &DB{
		store:   st,
		logger:  o.logger,
		metrics: o.metrics,
		opts:    o,
	}, nil
}

// Store exposes the underlying store for callers that need direct
// access to the index or the partition layout.
func (db *DB) Store() *store.Store { return db.store }

// Schema returns the table schema.
func (db *DB) Schema() *schema.Schema { return db.store.Schema() }

// NumPartitions returns the number of partitions.
func (db *DB) NumPartitions() int { return db.store.NumPartitions() }

// NumRows returns the total row count across all partitions.
func (db *DB) NumRows() int { return db.store.NumRows() }

// Scan materializes the store's contents, short-circuiting into a point
// lookup when a filter pins the primary key to a literal.
func (db *DB) Scan(ctx context.Context, filters ...store.Expr) (*store.Result, error) {
	start := time.Now()
	res, err := db.store.Scan(ctx, filters...)
	if err != nil {
		db.logger.LogScan(ctx, false, 0, err)
		return nil, err
	}
	db.metrics.RecordScan(time.Since(start), res.NumRows(), res.PointLookup)
	db.logger.LogScan(ctx, res.PointLookup, res.NumRows(), nil)
	return res, nil
}

// Lookup fetches the single row stored under key through the
// primary-key index. The index reflects the dataset the DB was opened
// over; rows appended later are invisible to it.
func (db *DB) Lookup(key model.Key) (model.ProjectedRow, bool) {
	start := time.Now()
	row, found := db.store.Lookup(key)
	db.metrics.RecordLookup(time.Since(start), found)
	return row, found
}

// Write appends the record groups round-robin across partitions and
// returns the total row count appended. Overwrite mode fails with
// ErrOverwriteNotSupported.
func (db *DB) Write(ctx context.Context, groups []*store.Batch, mode store.WriteMode) (int64, error) {
	start := time.Now()
	rows, err := db.store.Write(ctx, groups, mode)
	if err != nil {
		db.logger.LogWrite(ctx, len(groups), 0, err)
		return 0, err
	}
	db.metrics.RecordWrite(time.Since(start), rows)
	db.logger.LogWrite(ctx, len(groups), rows, nil)
	return rows, nil
}

// Save writes a snapshot of the DB to the named blob using the
// configured compression codec.
func (db *DB) Save(ctx context.Context, bs blobstore.BlobStore, name string) error {
	start := time.Now()
	err := db.store.Save(ctx, bs, name, db.opts.compression)
	db.metrics.RecordSnapshot(time.Since(start), err)
	db.logger.LogSnapshot(ctx, name, err)
	return err
}

// Close logs final stats. The store holds no external resources, so
// Close never fails.
func (db *DB) Close() error {
	db.logger.Info("store closed", "rows", db.store.NumRows())
	return nil
}

// NewTable creates an empty mutable block table for the schema. Tables
// are the write-optimized side of the engine; the DB's batch store is
// the read-optimized side.
func NewTable(s *schema.Schema) *block.Table {
	return block.NewTable(s)
}
