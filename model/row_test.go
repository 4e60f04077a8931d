package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProjectedRow(t *testing.T) {
	row := NewProjectedRow([]ColumnID{0, 2, 5}, [][]byte{{1}, nil, {3}})

	v, ok := row.Value(2)
	require.True(t, ok)
	assert.Nil(t, v)

	v, ok = row.Value(5)
	require.True(t, ok)
	assert.Equal(t, []byte{3}, v)

	_, ok = row.Value(1)
	assert.False(t, ok)

	assert.False(t, row.IsNull(0))
	assert.True(t, row.IsNull(1))
}

func TestNewProjectedRowPanics(t *testing.T) {
	assert.Panics(t, func() {
		NewProjectedRow([]ColumnID{2, 1}, [][]byte{{1}, {2}})
	})
	assert.Panics(t, func() {
		NewProjectedRow([]ColumnID{1, 1}, [][]byte{{1}, {2}})
	})
	assert.Panics(t, func() {
		NewProjectedRow([]ColumnID{0, 1}, [][]byte{{1}})
	})
}

func TestProjectedRowEqual(t *testing.T) {
	a := NewProjectedRow([]ColumnID{0, 1}, [][]byte{{1}, nil})
	b := NewProjectedRow([]ColumnID{0, 1}, [][]byte{{1}, nil})
	c := NewProjectedRow([]ColumnID{0, 1}, [][]byte{{1}, {}})
	d := NewProjectedRow([]ColumnID{0, 2}, [][]byte{{1}, nil})

	assert.True(t, a.Equal(b))
	// nil and empty are distinct: one is a null, the other a zero-length value.
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, "Loc(3:41)", Locator{Block: 3, Row: 41}.String())
	assert.Equal(t, "Loc(1:2:3)", Location{Partition: 1, Batch: 2, Row: 3}.String())
}
