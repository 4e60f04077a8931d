// Package s3 implements blobstore.BlobStore on top of Amazon S3 using
// the AWS SDK v2. Uploads stream through the S3 transfer manager, so
// snapshots larger than a single PUT are handled transparently.
package s3
