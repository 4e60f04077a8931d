// Package store implements the partitioned batch store: record batches
// grouped into independently lockable partitions, a primary-key index
// built once over the initial dataset, and scan/write operations for an
// external query-execution layer.
//
// Scans take a shared lock on every partition they read; writes take
// one exclusive lock per partition, for the duration of appending that
// partition's buffered groups. A scan whose filter is an equality on
// the primary-key column short-circuits into a single-row point lookup
// through the index.
package store
