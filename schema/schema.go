package schema

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tuplego/model"
)

var (
	// ErrNoPrimaryKey is returned when a schema does not name a primary key.
	ErrNoPrimaryKey = errors.New("schema: every table must have a primary key")

	// ErrUnknownColumn is returned when the primary key names no column.
	ErrUnknownColumn = errors.New("schema: unknown column")
)

// Column describes one fixed-width column of a table.
type Column struct {
	Name  string
	Width int // fixed byte width of every value in this column
}

// Schema is the fixed per-table layout consumed at construction time:
// column order, fixed byte width per column and the designated primary
// key column. A Schema is immutable after New.
type Schema struct {
	columns []Column
	pk      string
	pkIdx   model.ColumnID
}

// New validates and builds a schema. The primary key must name one of
// the columns, and its width must fit a signed 64-bit scalar.
func New(columns []Column, primaryKey string) (*Schema, error) {
	if primaryKey == "" {
		return nil, ErrNoPrimaryKey
	}
	pkIdx := -1
	seen := make(map[string]struct{}, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("schema: column %d has no name", i)
		}
		if c.Width <= 0 {
			return nil, fmt.Errorf("schema: column %q has invalid width %d", c.Name, c.Width)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("schema: duplicate column %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Name == primaryKey {
			pkIdx = i
		}
	}
	if pkIdx < 0 {
		return nil, fmt.Errorf("%w: primary key %q", ErrUnknownColumn, primaryKey)
	}
	if columns[pkIdx].Width > 8 {
		return nil, fmt.Errorf("schema: primary key %q wider than 8 bytes", primaryKey)
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Schema{columns: cols, pk: primaryKey, pkIdx: pkIdx}, nil
}

// MustNew is like New but panics on error. Intended for tests and examples.
func MustNew(columns []Column, primaryKey string) *Schema {
	s, err := New(columns, primaryKey)
	if err != nil {
		panic(err)
	}
	return s
}

// NumColumns returns the number of columns.
func (s *Schema) NumColumns() int { return len(s.columns) }

// Column returns the column at position i.
func (s *Schema) Column(i model.ColumnID) Column { return s.columns[i] }

// Columns returns a copy of the column list.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Widths returns the fixed byte width of every column, in schema order.
func (s *Schema) Widths() []int {
	widths := make([]int, len(s.columns))
	for i, c := range s.columns {
		widths[i] = c.Width
	}
	return widths
}

// ColumnIndex returns the position of the named column.
func (s *Schema) ColumnIndex(name string) (model.ColumnID, bool) {
	for i, c := range s.columns {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// PrimaryKey returns the name of the primary-key column.
func (s *Schema) PrimaryKey() string { return s.pk }

// PrimaryKeyIndex returns the position of the primary-key column.
func (s *Schema) PrimaryKeyIndex() model.ColumnID { return s.pkIdx }

// Equal reports whether two schemas have identical column order, names,
// widths and primary key.
func (s *Schema) Equal(other *Schema) bool {
	if other == nil || len(s.columns) != len(other.columns) || s.pk != other.pk {
		return false
	}
	for i := range s.columns {
		if s.columns[i] != other.columns[i] {
			return false
		}
	}
	return true
}

// RowWidth returns the total byte width of one row.
func (s *Schema) RowWidth() int {
	var w int
	for _, c := range s.columns {
		w += c.Width
	}
	return w
}
