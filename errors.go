package tuplego

import (
	"github.com/hupe1980/tuplego/block"
	"github.com/hupe1980/tuplego/pk"
	"github.com/hupe1980/tuplego/store"
)

// Re-exported engine sentinels, so callers matching with errors.Is can
// depend on the facade alone.
var (
	// ErrBlockFull is returned when inserting into a block whose 1000
	// slots are all allocated.
	ErrBlockFull = block.ErrBlockFull

	// ErrNoSuchRecord is returned when updating or deleting a slot that
	// was never allocated.
	ErrNoSuchRecord = block.ErrNoSuchRecord

	// ErrDuplicateKey is returned when primary-key index construction
	// encounters a repeated key; the whole build aborts.
	ErrDuplicateKey = pk.ErrDuplicateKey

	// ErrSchemaMismatch is returned when batch data is incompatible
	// with the declared table schema.
	ErrSchemaMismatch = store.ErrSchemaMismatch

	// ErrOverwriteNotSupported is returned when a write requests
	// overwrite mode.
	ErrOverwriteNotSupported = store.ErrOverwriteNotSupported

	// ErrNoPartitions is returned when a DB is opened without any
	// partitions.
	ErrNoPartitions = store.ErrNoPartitions
)
