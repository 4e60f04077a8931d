package store

import (
	"fmt"

	"github.com/hupe1980/tuplego/model"
)

// Operator is a binary comparison operator in a scan filter.
type Operator int

// Supported comparison operators. Only OpEq on the primary-key column
// is index-accelerated; everything else falls back to a full scan.
const (
	OpEq Operator = iota
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
)

func (op Operator) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNotEq:
		return "!="
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	default:
		return fmt.Sprintf("Operator(%d)", int(op))
	}
}

// Expr is a node of a scan-filter expression tree.
type Expr interface {
	isExpr()
}

// ColumnRef names a schema column.
type ColumnRef struct {
	Name string
}

func (ColumnRef) isExpr() {}

// Literal is a key-scalar constant.
type Literal struct {
	Value model.Key
}

func (Literal) isExpr() {}

// BinaryExpr compares two operands.
type BinaryExpr struct {
	Left  Expr
	Op    Operator
	Right Expr
}

func (BinaryExpr) isExpr() {}

// Column builds a ColumnRef operand.
func Column(name string) ColumnRef { return ColumnRef{Name: name} }

// Lit builds a Literal operand.
func Lit(v model.Key) Literal { return Literal{Value: v} }

// Eq builds an equality comparison.
func Eq(left, right Expr) BinaryExpr {
	return BinaryExpr{Left: left, Op: OpEq, Right: right}
}

// primaryKeyFilter extracts the lookup key when expr has the shape
// `pk == literal` or `literal == pk`. Any other operand combination,
// operator or column falls through to a full scan.
func (s *Store) primaryKeyFilter(expr Expr) (model.Key, bool) {
	be, ok := expr.(BinaryExpr)
	if !ok || be.Op != OpEq {
		return 0, false
	}
	if c, okc := be.Left.(ColumnRef); okc {
		if l, okl := be.Right.(Literal); okl && c.Name == s.schema.PrimaryKey() {
			return l.Value, true
		}
	}
	if l, okl := be.Left.(Literal); okl {
		if c, okc := be.Right.(ColumnRef); okc && c.Name == s.schema.PrimaryKey() {
			return l.Value, true
		}
	}
	return 0, false
}
