// Package blobstore abstracts where store snapshots live: in memory,
// on the local file system, or in S3-compatible object storage.
//
// The storage core itself defines no on-disk format; snapshots are an
// optional, self-describing export surface layered on top of it.
package blobstore
