package store

import (
	"encoding/binary"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/tuplego/model"
	"github.com/hupe1980/tuplego/schema"
)

// Batch is one immutable columnar record group: per-column byte arrays
// with fixed widths plus one validity bitmap per column. Batches are
// never mutated after construction; the store only appends new ones.
type Batch struct {
	schema  *schema.Schema
	numRows int
	cols    [][]byte
	valid   []*roaring.Bitmap
}

// NumRows returns the number of rows in the batch.
func (b *Batch) NumRows() int { return b.numRows }

// Schema returns the schema the batch was built against.
func (b *Batch) Schema() *schema.Schema { return b.schema }

// ValueAt returns the value of the given column in the given row, or
// false if the cell is null.
func (b *Batch) ValueAt(col model.ColumnID, row int) ([]byte, bool) {
	if !b.valid[col].Contains(uint32(row)) {
		return nil, false
	}
	width := b.schema.Column(col).Width
	start := row * width
	value := make([]byte, width)
	copy(value, b.cols[col][start:start+width])
	return value, true
}

// KeyAt decodes the primary-key scalar of the given row. The raw bytes
// of the key column are read little-endian and zero-extended, the same
// way the value was encoded; validity is not consulted.
func (b *Batch) KeyAt(row int) model.Key {
	col := b.schema.PrimaryKeyIndex()
	width := b.schema.Column(col).Width
	start := row * width

	var raw [8]byte
	copy(raw[:], b.cols[col][start:start+width])
	return model.Key(binary.LittleEndian.Uint64(raw[:]))
}

// Row materializes one full row as a ProjectedRow over all columns.
func (b *Batch) Row(row int) model.ProjectedRow {
	n := b.schema.NumColumns()
	ids := make([]model.ColumnID, n)
	values := make([][]byte, n)
	for col := 0; col < n; col++ {
		ids[col] = col
		if v, ok := b.ValueAt(col, row); ok {
			values[col] = v
		}
	}
	return model.ProjectedRow{ColumnIDs: ids, Values: values}
}

// Slice returns a new single-row batch holding a copy of the given row.
func (b *Batch) Slice(row int) *Batch {
	builder := NewBatchBuilder(b.schema)
	values := make([][]byte, b.schema.NumColumns())
	for col := range values {
		if v, ok := b.ValueAt(col, row); ok {
			values[col] = v
		}
	}
	// A single existing row always satisfies the schema.
	_ = builder.AppendRow(values)
	return builder.Build()
}

// EncodeKey writes a key scalar into dst little-endian, truncated to
// the destination width. Helper for building key columns.
func EncodeKey(dst []byte, key model.Key) {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], uint64(key))
	copy(dst, raw[:len(dst)])
}

// BatchBuilder assembles a Batch row by row.
type BatchBuilder struct {
	schema  *schema.Schema
	numRows int
	cols    [][]byte
	valid   []*roaring.Bitmap
}

// NewBatchBuilder creates a builder for the given schema.
func NewBatchBuilder(s *schema.Schema) *BatchBuilder {
	n := s.NumColumns()
	cols := make([][]byte, n)
	valid := make([]*roaring.Bitmap, n)
	for i := 0; i < n; i++ {
		valid[i] = roaring.New()
	}
	return &BatchBuilder{schema: s, cols: cols, valid: valid}
}

// AppendRow appends one row. values must hold one entry per schema
// column, in schema order; nil denotes a null cell. Values must be at
// least as wide as their column; exactly width bytes are stored.
//
// A rejected row leaves the builder unchanged, so callers can skip the
// bad row and keep appending.
func (b *BatchBuilder) AppendRow(values [][]byte) error {
	if len(values) != b.schema.NumColumns() {
		return fmt.Errorf("store: row has %d values, schema has %d columns", len(values), b.schema.NumColumns())
	}
	for col, value := range values {
		if width := b.schema.Column(col).Width; value != nil && len(value) < width {
			return fmt.Errorf("store: column %d expects %d bytes, got %d", col, width, len(value))
		}
	}
	for col, value := range values {
		width := b.schema.Column(col).Width
		if value == nil {
			b.cols[col] = append(b.cols[col], make([]byte, width)...)
			continue
		}
		b.cols[col] = append(b.cols[col], value[:width]...)
		b.valid[col].Add(uint32(b.numRows))
	}
	b.numRows++
	return nil
}

// Build finalizes the batch. The builder must not be reused afterwards.
func (b *BatchBuilder) Build() *Batch {
	return &Batch{
		schema:  b.schema,
		numRows: b.numRows,
		cols:    b.cols,
		valid:   b.valid,
	}
}
