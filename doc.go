// Package tuplego is a small in-memory tuple storage engine: fixed
// capacity columnar blocks with bitmap-tracked validity, a primary-key
// index for point lookups, and a partitioned batch store for an
// external query-execution layer.
//
// The root package is a thin facade. The engine itself lives in the
// block, pk, store and schema packages; snapshots travel through the
// blobstore package.
//
// tuplego is not a transactional engine: there is no MVCC, no
// write-ahead log and no crash recovery. Deleted slots are tombstoned
// forever — slot reclamation and compaction are out of scope.
package tuplego
