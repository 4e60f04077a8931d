package model

import "fmt"

// ColumnID identifies a column by its position in the table schema.
type ColumnID = int

// BlockID is the position of a block within a table.
type BlockID uint32

// RowID is a block-local slot index. Slots are allocated densely and
// never reused after deletion.
type RowID uint32

// Locator is an opaque handle addressing a row inside a Table.
// It is an arena-index pair, not a memory address, and stays valid only
// as long as the referenced block has not been structurally changed.
type Locator struct {
	Block BlockID
	Row   RowID
}

// String returns a string representation of the Locator.
func (l Locator) String() string {
	return fmt.Sprintf("Loc(%d:%d)", l.Block, l.Row)
}

// Location identifies a row inside the partitioned batch store.
// It is the value type of the primary-key index.
type Location struct {
	Partition int
	Batch     int
	Row       int
}

// String returns a string representation of the Location.
func (l Location) String() string {
	return fmt.Sprintf("Loc(%d:%d:%d)", l.Partition, l.Batch, l.Row)
}

// Key is a primary-key scalar decoded from a fixed-width key column.
type Key int64
