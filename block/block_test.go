package block

import (
	"errors"
	"testing"

	"github.com/hupe1980/tuplego/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allColumns(n int) []model.ColumnID {
	ids := make([]model.ColumnID, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func TestBlockInsertRoundTrip(t *testing.T) {
	b := New([]int{1, 2})

	row := model.NewProjectedRow(
		[]model.ColumnID{0, 1},
		[][]byte{{0xAA}, {0xDE, 0xAD}},
	)
	id, err := b.Insert(row)
	require.NoError(t, err)
	assert.EqualValues(t, 0, id)
	assert.Equal(t, 1, b.NumRecords())

	got, ok := b.RowAtIndex(id, []model.ColumnID{0, 1})
	require.True(t, ok)
	assert.Equal(t, []byte{0xAA}, got.Values[0])
	assert.Equal(t, []byte{0xDE, 0xAD}, got.Values[1])
}

func TestBlockInsertPartialProjection(t *testing.T) {
	b := New([]int{4, 4, 4})

	// Only the middle column is populated.
	row := model.NewProjectedRow(
		[]model.ColumnID{1},
		[][]byte{{1, 2, 3, 4}},
	)
	id, err := b.Insert(row)
	require.NoError(t, err)

	got, ok := b.RowAtIndex(id, allColumns(3))
	require.True(t, ok)
	assert.Nil(t, got.Values[0])
	assert.Equal(t, []byte{1, 2, 3, 4}, got.Values[1])
	assert.Nil(t, got.Values[2])
}

func TestBlockInsertNullLeavesValidityUnset(t *testing.T) {
	b := New([]int{2, 2})

	// Explicit null on insert reads back exactly like an omitted column.
	row := model.NewProjectedRow(
		[]model.ColumnID{0, 1},
		[][]byte{{7, 7}, nil},
	)
	id, err := b.Insert(row)
	require.NoError(t, err)

	got, ok := b.RowAtIndex(id, allColumns(2))
	require.True(t, ok)
	assert.Equal(t, []byte{7, 7}, got.Values[0])
	assert.Nil(t, got.Values[1])
}

func TestBlockUpdateOverwritesAndClears(t *testing.T) {
	b := New([]int{2, 2})

	id, err := b.Insert(model.NewProjectedRow(
		[]model.ColumnID{0, 1},
		[][]byte{{1, 1}, {2, 2}},
	))
	require.NoError(t, err)

	// Overwrite column 0, null out column 1.
	err = b.Update(id, model.NewProjectedRow(
		[]model.ColumnID{0, 1},
		[][]byte{{9, 9}, nil},
	))
	require.NoError(t, err)

	got, ok := b.RowAtIndex(id, allColumns(2))
	require.True(t, ok)
	assert.Equal(t, []byte{9, 9}, got.Values[0])
	assert.Nil(t, got.Values[1])
}

func TestBlockUpdateSetsPreviouslyNullColumn(t *testing.T) {
	b := New([]int{2, 2})

	id, err := b.Insert(model.NewProjectedRow(
		[]model.ColumnID{0},
		[][]byte{{1, 1}},
	))
	require.NoError(t, err)

	err = b.Update(id, model.NewProjectedRow(
		[]model.ColumnID{1},
		[][]byte{{5, 5}},
	))
	require.NoError(t, err)

	got, ok := b.RowAtIndex(id, allColumns(2))
	require.True(t, ok)
	assert.Equal(t, []byte{1, 1}, got.Values[0])
	assert.Equal(t, []byte{5, 5}, got.Values[1])
}

func TestBlockUpdateOutOfRange(t *testing.T) {
	b := New([]int{2})

	err := b.Update(0, model.NewProjectedRow([]model.ColumnID{0}, [][]byte{{1, 1}}))
	assert.ErrorIs(t, err, ErrNoSuchRecord)
}

func TestBlockDeleteTombstonesSlot(t *testing.T) {
	b := New([]int{2})

	id, err := b.Insert(model.NewProjectedRow([]model.ColumnID{0}, [][]byte{{3, 3}}))
	require.NoError(t, err)
	require.NoError(t, b.Delete(id))

	_, ok := b.RowAtIndex(id, []model.ColumnID{0})
	assert.False(t, ok)

	// The slot stays consumed: the high-water mark does not move and the
	// next insert lands on a fresh slot.
	assert.Equal(t, 1, b.NumRecords())
	assert.Equal(t, 0, b.NumLive())

	next, err := b.Insert(model.NewProjectedRow([]model.ColumnID{0}, [][]byte{{4, 4}}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, next)
}

func TestBlockDeleteOutOfRange(t *testing.T) {
	b := New([]int{2})

	err := b.Delete(5)
	assert.ErrorIs(t, err, ErrNoSuchRecord)
}

func TestBlockCapacityExceeded(t *testing.T) {
	b := New([]int{1})

	for i := 0; i < SlotsPerBlock; i++ {
		_, err := b.Insert(model.NewProjectedRow([]model.ColumnID{0}, [][]byte{{byte(i)}}))
		require.NoError(t, err)
	}
	require.True(t, b.Full())

	_, err := b.Insert(model.NewProjectedRow([]model.ColumnID{0}, [][]byte{{0xFF}}))
	require.ErrorIs(t, err, ErrBlockFull)

	// A failed insert must not disturb stored data.
	assert.Equal(t, SlotsPerBlock, b.NumRecords())
	first, ok := b.RowAtIndex(0, []model.ColumnID{0})
	require.True(t, ok)
	assert.Equal(t, []byte{0}, first.Values[0])
	last, ok := b.RowAtIndex(SlotsPerBlock-1, []model.ColumnID{0})
	require.True(t, ok)
	assert.Equal(t, []byte{byte((SlotsPerBlock - 1) % 256)}, last.Values[0])
}

func TestBlockAbsenceSignalsCoalesce(t *testing.T) {
	b := New([]int{2, 2})

	// Unallocated slot.
	_, okUnallocated := b.RowAtIndex(3, allColumns(2))

	// Deleted row.
	deleted, err := b.Insert(model.NewProjectedRow([]model.ColumnID{0}, [][]byte{{1, 1}}))
	require.NoError(t, err)
	require.NoError(t, b.Delete(deleted))
	_, okDeleted := b.RowAtIndex(deleted, allColumns(2))

	// Live row whose requested columns are all null.
	allNull, err := b.Insert(model.NewProjectedRow([]model.ColumnID{0}, [][]byte{{2, 2}}))
	require.NoError(t, err)
	_, okAllNull := b.RowAtIndex(allNull, []model.ColumnID{1})

	// The three conditions are indistinguishable to the caller.
	assert.False(t, okUnallocated)
	assert.False(t, okDeleted)
	assert.False(t, okAllNull)
}

func TestBlockRowAtIndexPanicsOnUnsortedColumns(t *testing.T) {
	b := New([]int{2, 2})
	_, err := b.Insert(model.NewProjectedRow([]model.ColumnID{0}, [][]byte{{1, 1}}))
	require.NoError(t, err)

	assert.Panics(t, func() {
		b.RowAtIndex(0, []model.ColumnID{1, 0})
	})
	assert.Panics(t, func() {
		b.RowAtIndex(0, []model.ColumnID{0, 0})
	})
}

func TestBlockInsertShortValue(t *testing.T) {
	b := New([]int{4})

	_, err := b.Insert(model.NewProjectedRow([]model.ColumnID{0}, [][]byte{{1, 2}}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBlockFull)
}

func TestBlockFailedInsertLeavesBlockUnchanged(t *testing.T) {
	b := New([]int{2, 2})

	// Column 0 is wide enough, column 1 is short; the insert must fail
	// without writing anything.
	_, err := b.Insert(model.NewProjectedRow(
		[]model.ColumnID{0, 1},
		[][]byte{{0xAA, 0xBB}, {1}},
	))
	require.Error(t, err)
	assert.Equal(t, 0, b.NumRecords())
	assert.Equal(t, 0, b.NumLive())

	// The next insert gets the same slot index. A column it leaves null
	// must not read back the failed insert's bytes.
	id, err := b.Insert(model.NewProjectedRow([]model.ColumnID{1}, [][]byte{{7, 7}}))
	require.NoError(t, err)
	assert.EqualValues(t, 0, id)

	got, ok := b.RowAtIndex(id, allColumns(2))
	require.True(t, ok)
	assert.Nil(t, got.Values[0])
	assert.Equal(t, []byte{7, 7}, got.Values[1])
}

func TestBlockFailedUpdateLeavesRowUnchanged(t *testing.T) {
	b := New([]int{2, 2})

	id, err := b.Insert(model.NewProjectedRow(
		[]model.ColumnID{0, 1},
		[][]byte{{1, 1}, {2, 2}},
	))
	require.NoError(t, err)

	// Column 1 is short; neither the overwrite of column 0 nor the null
	// on column 0 below may be applied.
	err = b.Update(id, model.NewProjectedRow(
		[]model.ColumnID{0, 1},
		[][]byte{{9, 9}, {5}},
	))
	require.Error(t, err)

	err = b.Update(id, model.NewProjectedRow(
		[]model.ColumnID{0, 1},
		[][]byte{nil, {5}},
	))
	require.Error(t, err)

	got, ok := b.RowAtIndex(id, allColumns(2))
	require.True(t, ok)
	assert.Equal(t, []byte{1, 1}, got.Values[0])
	assert.Equal(t, []byte{2, 2}, got.Values[1])
}

func TestBlockDeletedSlotIsZeroFilled(t *testing.T) {
	b := New([]int{2})

	id, err := b.Insert(model.NewProjectedRow([]model.ColumnID{0}, [][]byte{{0xFF, 0xFF}}))
	require.NoError(t, err)
	require.NoError(t, b.Delete(id))

	assert.Equal(t, []byte{0, 0}, b.arena[:2])
}

func TestBlockErrorsWrapSentinels(t *testing.T) {
	b := New([]int{1})
	err := b.Delete(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSuchRecord))
}
