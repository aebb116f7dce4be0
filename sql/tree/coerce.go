package tree

import (
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

// CoerceTree walks n bottom-up (after Infer) and inserts explicit Cast
// nodes. For arithmetic, bitwise and comparison operators, a literal or
// Unknown family operand is cast to its concrete peer's type; operands
// that are both concrete, or both untyped, are left alone. Operands of
// AND/OR/NOT that are not Bool are cast to Bool, and for LIKE and ||
// a non-text operand whose peer is text is cast to Text.
func CoerceTree(n *Node) (*Node, error) {
	if n == nil {
		return nil, nil
	}

	switch n.Kind {
	case ColumnRef, Param, Literal:
		return n, nil

	case Cast:
		operand, err := CoerceTree(n.Operand)
		if err != nil {
			return nil, err
		}
		result := *n
		result.Operand = operand
		return &result, nil

	case Unary:
		operand, err := CoerceTree(n.Operand)
		if err != nil {
			return nil, err
		}
		operand = coerceUnaryOperand(n.UnaryOp, operand)
		result := *n
		result.Operand = operand
		return &result, nil

	case Binary:
		left, err := CoerceTree(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := CoerceTree(n.Right)
		if err != nil {
			return nil, err
		}
		left, right = coerceBinaryOperands(n.Op, left, right)
		result := *n
		result.Left, result.Right = left, right
		return &result, nil
	}

	return n, nil
}

func coerceUnaryOperand(op parser.UnaryOperator, operand *Node) *Node {
	switch op {
	case parser.OpNot:
		return NewCast(operand, types.T(types.Bool))
	}
	return operand
}

// coerceBinaryOperands decides, per operator category, which side (if
// either) needs an inserted Cast to the other's concrete type.
func coerceBinaryOperands(op parser.BinaryOperator, left, right *Node) (*Node, *Node) {
	switch op {
	case parser.OpAnd, parser.OpOr:
		return coerceToBool(left), coerceToBool(right)

	case parser.OpLike, parser.OpNotLike:
		return coerceToTextPeer(left, right)

	case parser.OpConcat:
		return coerceToTextPeer(left, right)

	case parser.OpAdd, parser.OpSub, parser.OpMul, parser.OpDiv, parser.OpMod, parser.OpPow,
		parser.OpBitAnd, parser.OpBitOr, parser.OpShl, parser.OpShr, parser.OpBitXor,
		parser.OpLt, parser.OpLe, parser.OpEq, parser.OpNe, parser.OpGe, parser.OpGt:
		return coerceToConcretePeer(left, right)
	}
	return left, right
}

func coerceToConcretePeer(left, right *Node) (*Node, *Node) {
	leftConcrete := left.Type.Concrete()
	rightConcrete := right.Type.Concrete()
	switch {
	case leftConcrete && !rightConcrete:
		return left, NewCast(right, left.Type)
	case rightConcrete && !leftConcrete:
		return NewCast(left, right.Type), right
	default:
		return left, right
	}
}

// coerceToBool wraps operand in a Cast to Bool unless it is already
// Bool-typed, so a repeated CoerceTree pass over an already-coerced
// and/or operand leaves it alone instead of nesting another Cast.
func coerceToBool(operand *Node) *Node {
	if operand.Type.Family == types.Bool {
		return operand
	}
	return NewCast(operand, types.T(types.Bool))
}

func coerceToTextPeer(left, right *Node) (*Node, *Node) {
	if left.Type.IsTextFamily() && !right.Type.IsTextFamily() {
		return left, NewCast(right, types.T(types.Text))
	}
	if right.Type.IsTextFamily() && !left.Type.IsTextFamily() {
		return NewCast(left, types.T(types.Text)), right
	}
	return left, right
}

// CoerceTo wraps n with an explicit Cast to target when n's inferred
// type is a literal family, Unknown, or a differently-sized concrete
// numeric type. It is used at the points where the planner supplies a
// context type: an INSERT/UPDATE value against its column's declared
// type, a WHERE condition against Bool, or an integer LIMIT against
// BigInt.
func CoerceTo(n *Node, target types.Type) (*Node, error) {
	if n == nil {
		return nil, nil
	}
	if n.Type == target {
		return n, nil
	}
	if !target.Concrete() {
		return n, nil
	}
	if n.Type.IsLiteralFamily() || n.Type.Family == types.Unknown {
		return NewCast(n, target), nil
	}
	if n.Type.IsNumericFamily() && target.IsNumericFamily() {
		return NewCast(n, target), nil
	}
	if n.Type.IsTextFamily() && target.IsTextFamily() {
		return NewCast(n, target), nil
	}
	if n.Type.Family == types.Bool && target.Family == types.Bool {
		return n, nil
	}
	return nil, types.ErrUndefined("cast", n.Type, target)
}
