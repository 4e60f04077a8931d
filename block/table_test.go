package block

import (
	"testing"

	"github.com/hupe1980/tuplego/model"
	"github.com/hupe1980/tuplego/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table {
	t.Helper()
	s := schema.MustNew([]schema.Column{
		{Name: "id", Width: 8},
		{Name: "payload", Width: 2},
	}, "id")
	return NewTable(s)
}

func keyRow(k byte) model.ProjectedRow {
	return model.NewProjectedRow(
		[]model.ColumnID{0, 1},
		[][]byte{{k, 0, 0, 0, 0, 0, 0, 0}, {k, k}},
	)
}

func TestTableInsertGetRow(t *testing.T) {
	tbl := newTestTable(t)

	loc, err := tbl.Insert(keyRow(7))
	require.NoError(t, err)
	assert.EqualValues(t, 0, loc.Block)
	assert.EqualValues(t, 0, loc.Row)

	got, ok := tbl.GetRow(loc, []model.ColumnID{1})
	require.True(t, ok)
	assert.Equal(t, []byte{7, 7}, got.Values[0])
}

func TestTableGetRowOutOfRangeBlock(t *testing.T) {
	tbl := newTestTable(t)

	_, ok := tbl.GetRow(model.Locator{Block: 9, Row: 0}, []model.ColumnID{0})
	assert.False(t, ok)
}

func TestTableUpdateDeleteByLocator(t *testing.T) {
	tbl := newTestTable(t)

	loc, err := tbl.Insert(keyRow(1))
	require.NoError(t, err)

	err = tbl.Update(loc, model.NewProjectedRow([]model.ColumnID{1}, [][]byte{{9, 9}}))
	require.NoError(t, err)
	got, ok := tbl.GetRow(loc, []model.ColumnID{1})
	require.True(t, ok)
	assert.Equal(t, []byte{9, 9}, got.Values[0])

	require.NoError(t, tbl.Delete(loc))
	_, ok = tbl.GetRow(loc, []model.ColumnID{1})
	assert.False(t, ok)
}

func TestTableUpdateDeleteOutOfRangeBlock(t *testing.T) {
	tbl := newTestTable(t)

	bad := model.Locator{Block: 3, Row: 0}
	assert.ErrorIs(t, tbl.Update(bad, keyRow(1)), ErrNoSuchRecord)
	assert.ErrorIs(t, tbl.Delete(bad), ErrNoSuchRecord)
}

func TestTableGrowsPastBlockCapacity(t *testing.T) {
	tbl := newTestTable(t)

	n := SlotsPerBlock + 10
	locs := make([]model.Locator, 0, n)
	for i := 0; i < n; i++ {
		loc, err := tbl.Insert(keyRow(byte(i)))
		require.NoError(t, err)
		locs = append(locs, loc)
	}

	assert.Equal(t, 2, tbl.NumBlocks())
	assert.Equal(t, n, tbl.NumRecords())

	// The overflow rows land in the second block, starting at slot 0.
	assert.EqualValues(t, 1, locs[SlotsPerBlock].Block)
	assert.EqualValues(t, 0, locs[SlotsPerBlock].Row)

	got, ok := tbl.GetRow(locs[n-1], []model.ColumnID{1})
	require.True(t, ok)
	assert.Equal(t, []byte{byte(n - 1), byte(n - 1)}, got.Values[0])
}

func TestTableLocatorsStableAcrossDeletes(t *testing.T) {
	tbl := newTestTable(t)

	a, err := tbl.Insert(keyRow(1))
	require.NoError(t, err)
	b, err := tbl.Insert(keyRow(2))
	require.NoError(t, err)

	require.NoError(t, tbl.Delete(a))

	// Deleting a row never moves its neighbors.
	got, ok := tbl.GetRow(b, []model.ColumnID{1})
	require.True(t, ok)
	assert.Equal(t, []byte{2, 2}, got.Values[0])

	// The deleted slot is not reused.
	c, err := tbl.Insert(keyRow(3))
	require.NoError(t, err)
	assert.EqualValues(t, 2, c.Row)
}
