package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/tuplego/blobstore"
	"github.com/hupe1980/tuplego/schema"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/errgroup"
)

// Snapshot format: a 6-byte header (magic, version, compression)
// followed by the compressed body. The body carries the schema, then
// every partition's batches: raw column bytes plus serialized validity
// bitmaps. The primary-key index is rebuilt on load rather than stored.
//
// Changing this layout is a breaking change; bump snapshotVersion.
var snapshotMagic = [4]byte{'T', 'P', 'G', 'S'}

const snapshotVersion = 1

// Compression selects the snapshot body codec.
type Compression uint8

const (
	// CompressionNone stores the body uncompressed.
	CompressionNone Compression = iota
	// CompressionZstd compresses the body with zstd.
	CompressionZstd
	// CompressionLZ4 compresses the body with lz4.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// Save writes a snapshot of the store to the named blob.
//
// Each partition is encoded under its own shared lock, concurrently;
// the combined body is then streamed through the selected compressor.
// A write that has appended to some partitions while Save holds others
// is observed partially, matching the store's cross-partition
// consistency model.
func (s *Store) Save(ctx context.Context, bs blobstore.BlobStore, name string, comp Compression) error {
	schemaBuf := &bytes.Buffer{}
	if err := encodeSchema(schemaBuf, s.schema); err != nil {
		return err
	}

	partBufs := make([][]byte, len(s.partitions))
	g, _ := errgroup.WithContext(ctx)
	for i, p := range s.partitions {
		g.Go(func() error {
			buf := &bytes.Buffer{}
			p.mu.RLock()
			err := encodePartition(buf, p.batches)
			p.mu.RUnlock()
			if err != nil {
				return err
			}
			partBufs[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	blob, err := bs.Create(ctx, name)
	if err != nil {
		return err
	}

	header := []byte{snapshotMagic[0], snapshotMagic[1], snapshotMagic[2], snapshotMagic[3], snapshotVersion, byte(comp)}
	if _, err := blob.Write(header); err != nil {
		_ = blob.Close()
		return err
	}

	body, closeBody, err := compressingWriter(blob, comp)
	if err != nil {
		_ = blob.Close()
		return err
	}

	werr := func() error {
		if _, err := body.Write(schemaBuf.Bytes()); err != nil {
			return err
		}
		if err := writeU32(body, uint32(len(partBufs))); err != nil {
			return err
		}
		for _, pb := range partBufs {
			if _, err := body.Write(pb); err != nil {
				return err
			}
		}
		return closeBody()
	}()
	if werr != nil {
		_ = blob.Close()
		return werr
	}

	if err := blob.Sync(); err != nil {
		_ = blob.Close()
		return err
	}
	return blob.Close()
}

// Load reads a snapshot back into a fresh store. The primary-key index
// is rebuilt from the loaded dataset.
func Load(ctx context.Context, bs blobstore.BlobStore, name string, opts ...Option) (*Store, error) {
	blob, err := bs.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	data, err := blobBytes(blob)
	if err != nil {
		return nil, err
	}
	if len(data) < 6 {
		return nil, fmt.Errorf("store: snapshot too short (%d bytes)", len(data))
	}
	if !bytes.Equal(data[:4], snapshotMagic[:]) {
		return nil, fmt.Errorf("store: bad snapshot magic %q", data[:4])
	}
	if data[4] != snapshotVersion {
		return nil, fmt.Errorf("store: unsupported snapshot version %d", data[4])
	}

	body, closeBody, err := decompressingReader(bytes.NewReader(data[6:]), Compression(data[5]))
	if err != nil {
		return nil, err
	}
	defer closeBody()
	br := bufio.NewReader(body)

	sch, err := decodeSchema(br)
	if err != nil {
		return nil, err
	}
	numParts, err := readU32(br)
	if err != nil {
		return nil, err
	}
	parts := make([][]*Batch, numParts)
	for i := range parts {
		batches, err := decodePartition(br, sch)
		if err != nil {
			return nil, fmt.Errorf("store: partition %d: %w", i, err)
		}
		parts[i] = batches
	}

	return New(sch, parts, opts...)
}

func compressingWriter(w io.Writer, comp Compression) (io.Writer, func() error, error) {
	switch comp {
	case CompressionNone:
		bw := bufio.NewWriter(w)
		return bw, bw.Flush, nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		return zw, zw.Close, nil
	case CompressionLZ4:
		lw := lz4.NewWriter(w)
		return lw, lw.Close, nil
	default:
		return nil, nil, fmt.Errorf("store: unknown compression %d", comp)
	}
}

func decompressingReader(r io.Reader, comp Compression) (io.Reader, func(), error) {
	switch comp {
	case CompressionNone:
		return r, func() {}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("store: unknown compression %d", comp)
	}
}

func encodeSchema(w io.Writer, s *schema.Schema) error {
	if err := writeU32(w, uint32(s.NumColumns())); err != nil {
		return err
	}
	for _, col := range s.Columns() {
		if err := writeBytes(w, []byte(col.Name)); err != nil {
			return err
		}
		if err := writeU32(w, uint32(col.Width)); err != nil {
			return err
		}
	}
	return writeBytes(w, []byte(s.PrimaryKey()))
}

func decodeSchema(r io.Reader) (*schema.Schema, error) {
	numCols, err := readU32(r)
	if err != nil {
		return nil, err
	}
	columns := make([]schema.Column, numCols)
	for i := range columns {
		name, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		width, err := readU32(r)
		if err != nil {
			return nil, err
		}
		columns[i] = schema.Column{Name: string(name), Width: int(width)}
	}
	pkName, err := readBytes(r)
	if err != nil {
		return nil, err
	}
	return schema.New(columns, string(pkName))
}

func encodePartition(w io.Writer, batches []*Batch) error {
	if err := writeU32(w, uint32(len(batches))); err != nil {
		return err
	}
	for _, b := range batches {
		if err := writeU32(w, uint32(b.numRows)); err != nil {
			return err
		}
		for col := range b.cols {
			if err := writeBytes(w, b.cols[col]); err != nil {
				return err
			}
			bm, err := b.valid[col].ToBytes()
			if err != nil {
				return err
			}
			if err := writeBytes(w, bm); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodePartition(r io.Reader, sch *schema.Schema) ([]*Batch, error) {
	numBatches, err := readU32(r)
	if err != nil {
		return nil, err
	}
	batches := make([]*Batch, numBatches)
	for i := range batches {
		numRows, err := readU32(r)
		if err != nil {
			return nil, err
		}
		n := sch.NumColumns()
		cols := make([][]byte, n)
		valid := make([]*roaring.Bitmap, n)
		for col := 0; col < n; col++ {
			raw, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			if len(raw) != int(numRows)*sch.Column(col).Width {
				return nil, fmt.Errorf("column %d has %d bytes, want %d", col, len(raw), int(numRows)*sch.Column(col).Width)
			}
			cols[col] = raw
			bmRaw, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			bm := roaring.New()
			if _, err := bm.ReadFrom(bytes.NewReader(bmRaw)); err != nil {
				return nil, fmt.Errorf("column %d bitmap: %w", col, err)
			}
			valid[col] = bm
		}
		batches[i] = &Batch{schema: sch, numRows: int(numRows), cols: cols, valid: valid}
	}
	return batches, nil
}

func blobBytes(blob blobstore.Blob) ([]byte, error) {
	if m, ok := blob.(blobstore.Mappable); ok {
		return m.Bytes()
	}
	data := make([]byte, blob.Size())
	if _, err := blob.ReadAt(data, 0); err != nil && err != io.EOF {
		return nil, err
	}
	return data, nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeU32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readU32(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
