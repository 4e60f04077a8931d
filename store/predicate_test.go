package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPredicateStore(t *testing.T) *Store {
	t.Helper()
	sch := testSchema(t)
	st, err := New(sch, [][]*Batch{{keyedBatch(t, sch, 1, 2, 3)}})
	require.NoError(t, err)
	return st
}

func TestPrimaryKeyFilterBothOrientations(t *testing.T) {
	st := newPredicateStore(t)

	key, ok := st.primaryKeyFilter(Eq(Column("id"), Lit(42)))
	require.True(t, ok)
	assert.EqualValues(t, 42, key)

	key, ok = st.primaryKeyFilter(Eq(Lit(7), Column("id")))
	require.True(t, ok)
	assert.EqualValues(t, 7, key)
}

func TestPrimaryKeyFilterFallThrough(t *testing.T) {
	st := newPredicateStore(t)

	// Non-key column.
	_, ok := st.primaryKeyFilter(Eq(Column("score"), Lit(42)))
	assert.False(t, ok)

	// Non-equality operator.
	_, ok = st.primaryKeyFilter(BinaryExpr{Left: Column("id"), Op: OpGt, Right: Lit(42)})
	assert.False(t, ok)

	// Column on both sides.
	_, ok = st.primaryKeyFilter(Eq(Column("id"), Column("id")))
	assert.False(t, ok)

	// Literal on both sides.
	_, ok = st.primaryKeyFilter(Eq(Lit(1), Lit(1)))
	assert.False(t, ok)

	// Not a binary expression.
	_, ok = st.primaryKeyFilter(Column("id"))
	assert.False(t, ok)
}

func TestOperatorString(t *testing.T) {
	assert.Equal(t, "=", OpEq.String())
	assert.Equal(t, "!=", OpNotEq.String())
	assert.Equal(t, "<", OpLt.String())
	assert.Equal(t, "<=", OpLtEq.String())
	assert.Equal(t, ">", OpGt.String())
	assert.Equal(t, ">=", OpGtEq.String())
	assert.Equal(t, "Operator(99)", Operator(99).String())
}
