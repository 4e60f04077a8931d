package model

// ProjectedRow is a row view restricted to a subset of columns.
//
// Column ids must be strictly ascending and duplicate-free; the values
// slice is positional, with nil denoting an explicit null. Violating the
// ordering contract is a caller bug, not a data condition, and panics.
type ProjectedRow struct {
	ColumnIDs []ColumnID
	Values    [][]byte
}

// NewProjectedRow builds a ProjectedRow from sorted column ids and
// positionally matching optional values.
//
// It panics if columnIDs are not strictly ascending (which also rules
// out duplicates) or if the slices differ in length.
func NewProjectedRow(columnIDs []ColumnID, values [][]byte) ProjectedRow {
	if len(columnIDs) != len(values) {
		panic("model: column ids and values length mismatch")
	}
	MustSortedColumnIDs(columnIDs)
	return ProjectedRow{ColumnIDs: columnIDs, Values: values}
}

// MustSortedColumnIDs panics unless ids are strictly ascending.
func MustSortedColumnIDs(ids []ColumnID) {
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			panic("model: column ids must be strictly ascending and unique")
		}
	}
}

// Value returns the value stored for the given column id and whether the
// column is part of the projection at all. A (nil, true) result means the
// column is projected but null.
func (r ProjectedRow) Value(id ColumnID) ([]byte, bool) {
	for i, cid := range r.ColumnIDs {
		if cid == id {
			return r.Values[i], true
		}
		if cid > id {
			break
		}
	}
	return nil, false
}

// IsNull reports whether the value at position i is an explicit null.
func (r ProjectedRow) IsNull(i int) bool {
	return r.Values[i] == nil
}

// Equal reports whether two projected rows have the same column ids and
// byte-identical values (nil compares equal only to nil).
func (r ProjectedRow) Equal(other ProjectedRow) bool {
	if len(r.ColumnIDs) != len(other.ColumnIDs) {
		return false
	}
	for i := range r.ColumnIDs {
		if r.ColumnIDs[i] != other.ColumnIDs[i] {
			return false
		}
		a, b := r.Values[i], other.Values[i]
		if (a == nil) != (b == nil) {
			return false
		}
		if string(a) != string(b) {
			return false
		}
	}
	return true
}
