package block

import (
	"sync"

	"github.com/hupe1980/tuplego/model"
	"github.com/hupe1980/tuplego/schema"
)

// Table is an ordered sequence of blocks sharing one column layout.
// Rows never move between blocks; a Locator stays valid for as long as
// the addressed block exists.
//
// Table is safe for concurrent use. Reads take a shared lock, mutations
// an exclusive one.
type Table struct {
	mu     sync.RWMutex
	widths []int
	blocks []*Block
}

// NewTable creates an empty table for the given schema.
func NewTable(s *schema.Schema) *Table {
	return &Table{widths: s.Widths()}
}

// GetRow resolves a locator and materializes the requested columns.
//
// An out-of-range block index yields absence, the same signal as a
// deleted row or a row whose requested columns are all null.
func (t *Table) GetRow(loc model.Locator, columnIDs []model.ColumnID) (model.ProjectedRow, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if int(loc.Block) >= len(t.blocks) {
		return model.ProjectedRow{}, false
	}
	return t.blocks[loc.Block].RowAtIndex(loc.Row, columnIDs)
}

// Insert appends a row to the newest block, allocating a fresh block
// when the table is empty or the newest block is full. It returns the
// locator of the stored row.
func (t *Table) Insert(row model.ProjectedRow) (model.Locator, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.blocks) == 0 || t.blocks[len(t.blocks)-1].Full() {
		t.blocks = append(t.blocks, New(t.widths))
	}
	blockIdx := len(t.blocks) - 1
	rowID, err := t.blocks[blockIdx].Insert(row)
	if err != nil {
		return model.Locator{}, err
	}
	return model.Locator{Block: model.BlockID(blockIdx), Row: rowID}, nil
}

// Update overwrites the listed columns of the row addressed by loc.
func (t *Table) Update(loc model.Locator, row model.ProjectedRow) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if int(loc.Block) >= len(t.blocks) {
		return ErrNoSuchRecord
	}
	return t.blocks[loc.Block].Update(loc.Row, row)
}

// Delete tombstones the row addressed by loc.
func (t *Table) Delete(loc model.Locator) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if int(loc.Block) >= len(t.blocks) {
		return ErrNoSuchRecord
	}
	return t.blocks[loc.Block].Delete(loc.Row)
}

// NumBlocks returns the number of allocated blocks.
func (t *Table) NumBlocks() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.blocks)
}

// NumRecords returns the total slot high-water mark across all blocks.
func (t *Table) NumRecords() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var n int
	for _, b := range t.blocks {
		n += b.NumRecords()
	}
	return n
}
