// Package pk provides the primary-key index: an ordered map from a
// key scalar to the row's location in the partitioned store.
//
// The index is built exactly once, over the entire initial dataset, and
// enforces global key uniqueness at build time. It is immutable
// afterwards: row mutations in the storage core do not maintain it.
package pk
