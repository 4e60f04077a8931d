package block

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/tuplego/model"
)

// SlotsPerBlock is the fixed capacity of every block.
const SlotsPerBlock = 1000

var (
	// ErrBlockFull is returned when inserting into a block whose slots
	// are all allocated.
	ErrBlockFull = errors.New("block: cannot add a row to a full block")

	// ErrNoSuchRecord is returned when updating or deleting a slot that
	// was never allocated.
	ErrNoSuchRecord = errors.New("block: record does not exist")
)

// Block is a fixed-capacity columnar storage unit.
//
// numRecords is a monotonically non-decreasing high-water mark of slots
// ever allocated: deletion tombstones a slot but never reclaims it. A
// slot below the high-water mark whose liveness bit is unset is a
// deleted row; a live slot whose validity bit for a column is unset
// holds an explicit null in that column.
type Block struct {
	numSlots   int
	numRecords int
	sizes      []int
	offsets    []int // start offset of each column region in the arena
	arena      []byte
	valid      []*roaring.Bitmap // one validity bitmap per column
	live       *roaring.Bitmap   // block-liveness bitmap
}

// New creates an empty block for the given fixed column byte widths.
// All arenas and bitmaps start zeroed.
func New(columnSizes []int) *Block {
	valid := make([]*roaring.Bitmap, len(columnSizes))
	for i := range valid {
		valid[i] = roaring.New()
	}
	offsets := make([]int, len(columnSizes))
	var offset int
	for i, size := range columnSizes {
		offsets[i] = offset
		offset += SlotsPerBlock * size
	}
	sizes := make([]int, len(columnSizes))
	copy(sizes, columnSizes)
	return &Block{
		numSlots: SlotsPerBlock,
		sizes:    sizes,
		offsets:  offsets,
		arena:    make([]byte, offset),
		valid:    valid,
		live:     roaring.New(),
	}
}

// NumRecords returns the high-water mark of allocated slots.
func (b *Block) NumRecords() int { return b.numRecords }

// NumSlots returns the fixed slot capacity.
func (b *Block) NumSlots() int { return b.numSlots }

// NumLive returns the number of live (not deleted) rows.
func (b *Block) NumLive() int { return int(b.live.GetCardinality()) }

// Full reports whether every slot has been allocated.
func (b *Block) Full() bool { return b.numRecords == b.numSlots }

// Insert allocates the next slot and stores the given row in it.
//
// The row's column ids are merged against the full column range in one
// ascending walk; columns the row does not mention are left untouched
// and read back as null, exactly like columns the row explicitly nulls.
// Insert cannot distinguish the two — only Update can clear a validity
// bit that is already set.
func (b *Block) Insert(row model.ProjectedRow) (model.RowID, error) {
	if b.numRecords == b.numSlots {
		return 0, ErrBlockFull
	}
	if err := b.checkWidths(row); err != nil {
		return 0, err
	}
	recordIndex := b.numRecords
	rowIdx := 0
	for colIdx := 0; colIdx < len(b.sizes); colIdx++ {
		if rowIdx >= len(row.ColumnIDs) {
			break
		}
		if row.ColumnIDs[rowIdx] != colIdx {
			continue
		}
		if value := row.Values[rowIdx]; value != nil {
			b.storeValue(colIdx, recordIndex, value)
			b.valid[colIdx].Add(uint32(recordIndex))
		}
		rowIdx++
	}
	b.numRecords++
	b.live.Add(uint32(recordIndex))
	return model.RowID(recordIndex), nil
}

// Update overwrites the listed columns of an existing slot.
//
// Unlike Insert, every column id present in the row is authoritative:
// a value overwrites the stored bytes and sets the validity bit, while
// an explicit null clears it.
func (b *Block) Update(recordIndex model.RowID, row model.ProjectedRow) error {
	if int(recordIndex) >= b.numRecords {
		return fmt.Errorf("%w: cannot update slot %d", ErrNoSuchRecord, recordIndex)
	}
	if err := b.checkWidths(row); err != nil {
		return err
	}
	for i, colIdx := range row.ColumnIDs {
		if value := row.Values[i]; value != nil {
			b.storeValue(colIdx, int(recordIndex), value)
			b.valid[colIdx].Add(uint32(recordIndex))
		} else {
			b.valid[colIdx].Remove(uint32(recordIndex))
		}
	}
	return nil
}

// Delete tombstones a slot: every validity bit is cleared, the byte
// ranges are zero-filled and the liveness bit is unset. The slot index
// remains permanently consumed; there is no free list.
func (b *Block) Delete(recordIndex model.RowID) error {
	if int(recordIndex) >= b.numRecords {
		return fmt.Errorf("%w: cannot delete slot %d", ErrNoSuchRecord, recordIndex)
	}
	for _, bm := range b.valid {
		bm.Remove(uint32(recordIndex))
	}
	for colIdx, size := range b.sizes {
		start := b.offsets[colIdx] + size*int(recordIndex)
		clear(b.arena[start : start+size])
	}
	b.live.Remove(uint32(recordIndex))
	// numRecords is intentionally not decremented; reclaiming slots is
	// a compaction concern this engine does not implement.
	return nil
}

// RowAtIndex materializes the requested columns of a slot.
//
// columnIDs must be strictly ascending and unique; violating that is a
// caller bug and panics. The second return value is false when the slot
// was never allocated, when the row was deleted, or when none of the
// requested columns holds a value. Callers cannot distinguish these
// three conditions from the result alone.
func (b *Block) RowAtIndex(index model.RowID, columnIDs []model.ColumnID) (model.ProjectedRow, bool) {
	if int(index) >= b.numRecords {
		return model.ProjectedRow{}, false
	}
	if !b.live.Contains(uint32(index)) {
		return model.ProjectedRow{}, false
	}
	model.MustSortedColumnIDs(columnIDs)

	values := make([][]byte, 0, len(columnIDs))
	hasValue := false
	for _, colIdx := range columnIDs {
		if b.valid[colIdx].Contains(uint32(index)) {
			hasValue = true
			size := b.sizes[colIdx]
			start := b.offsets[colIdx] + int(index)*size
			value := make([]byte, size)
			copy(value, b.arena[start:start+size])
			values = append(values, value)
		} else {
			values = append(values, nil)
		}
	}
	if !hasValue {
		return model.ProjectedRow{}, false
	}
	ids := make([]model.ColumnID, len(columnIDs))
	copy(ids, columnIDs)
	return model.ProjectedRow{ColumnIDs: ids, Values: values}, true
}

// checkWidths rejects rows carrying a value narrower than its column,
// before any arena bytes or bitmap bits are touched. A failed Insert or
// Update must leave the block exactly as it was.
func (b *Block) checkWidths(row model.ProjectedRow) error {
	for i, colIdx := range row.ColumnIDs {
		if colIdx < 0 || colIdx >= len(b.sizes) {
			continue
		}
		if value := row.Values[i]; value != nil && len(value) < b.sizes[colIdx] {
			return fmt.Errorf("block: column %d expects %d bytes, got %d", colIdx, b.sizes[colIdx], len(value))
		}
	}
	return nil
}

func (b *Block) storeValue(colIdx, recordIndex int, value []byte) {
	size := b.sizes[colIdx]
	start := b.offsets[colIdx] + recordIndex*size
	copy(b.arena[start:start+size], value[:size])
}
