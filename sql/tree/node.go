// Package tree is the operator tree: a tagged-variant expression tree
// shared by the Analyzer, TypeSystem, Planner and Executor. Each phase
// rewrites the tree rather than mutating it through virtual dispatch,
// so Node is a plain value type and every transform returns a new *Node.
package tree

import (
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

type Kind int

const (
	ColumnRef Kind = iota
	Param
	Literal
	Binary
	Unary
	Cast
)

// Node is one node of the operator tree. Only the fields relevant to Kind
// are populated; see the constructors below.
type Node struct {
	Kind Kind
	Type types.Type

	// ColumnRef
	ColumnName    string
	ColumnOrdinal int

	// Param
	ParamIndex int

	// Literal
	LiteralKind parser.LiteralKind
	LiteralText string
	LiteralBool bool
	// LiteralBig is set during TypeInference when an IntegerLiteral's text
	// falls outside the int32 range (2147483647 -> Integer,
	// 2147483648 -> BigInt).
	LiteralBig bool

	// Binary
	Op          parser.BinaryOperator
	Left, Right *Node

	// Unary, Cast
	UnaryOp parser.UnaryOperator
	Operand *Node
}

func NewColumnRef(name string, ordinal int, t types.Type) *Node {
	return &Node{Kind: ColumnRef, ColumnName: name, ColumnOrdinal: ordinal, Type: t}
}

func NewParam(index int) *Node {
	return &Node{Kind: Param, ParamIndex: index}
}

func NewLiteral(kind parser.LiteralKind, text string, b bool) *Node {
	return &Node{Kind: Literal, LiteralKind: kind, LiteralText: text, LiteralBool: b}
}

func NewBinary(op parser.BinaryOperator, left, right *Node) *Node {
	return &Node{Kind: Binary, Op: op, Left: left, Right: right}
}

func NewUnary(op parser.UnaryOperator, operand *Node) *Node {
	return &Node{Kind: Unary, UnaryOp: op, Operand: operand}
}

// NewCast wraps n in an explicit ImplicitCast node targeting t. Casting a
// node already of type t is a no-op (returns n unchanged) so repeated
// coercion passes are idempotent.
func NewCast(n *Node, t types.Type) *Node {
	if n.Type == t {
		return n
	}
	return &Node{Kind: Cast, Type: t, Operand: n}
}
