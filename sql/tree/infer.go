package tree

import (
	"math"
	"strconv"

	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

// Infer assigns a Type to n and every descendant, bottom-up. Leaves
// (ColumnRef, Param) already carry their type from the Analyzer; Literal
// leaves get their literal family here (an integer literal outside the
// int32 range gets BigInt instead), and internal nodes (Binary,
// Unary) get the result type the matrix computes for their operands.
// Infer does not mutate n; it returns a new tree with Type set.
func Infer(n *Node) (*Node, error) {
	if n == nil {
		return nil, nil
	}

	switch n.Kind {
	case ColumnRef, Param:
		return n, nil

	case Literal:
		return inferLiteral(n), nil

	case Binary:
		left, err := Infer(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := Infer(n.Right)
		if err != nil {
			return nil, err
		}
		result := *n
		result.Left, result.Right = left, right
		t, err := inferBinaryResult(n.Op, left, right)
		if err != nil {
			return nil, err
		}
		result.Type = t
		return &result, nil

	case Unary:
		operand, err := Infer(n.Operand)
		if err != nil {
			return nil, err
		}
		result := *n
		result.Operand = operand
		t, err := inferUnaryResult(n.UnaryOp, operand)
		if err != nil {
			return nil, err
		}
		result.Type = t
		return &result, nil

	case Cast:
		operand, err := Infer(n.Operand)
		if err != nil {
			return nil, err
		}
		result := *n
		result.Operand = operand
		return &result, nil
	}

	return n, nil
}

func inferLiteral(n *Node) *Node {
	result := *n
	switch n.LiteralKind {
	case parser.IntegerLiteral:
		result.Type = types.T(types.IntLiteral)
		if v, err := strconv.ParseInt(n.LiteralText, 10, 64); err != nil || v < math.MinInt32 || v > math.MaxInt32 {
			result.LiteralBig = true
			result.Type = types.T(types.BigInt)
		}
	case parser.FloatLiteral:
		result.Type = types.T(types.FloatLiteral)
	case parser.StringLiteral:
		result.Type = types.T(types.StringLiteral)
	case parser.BoolLiteral:
		result.Type = types.T(types.Bool)
	case parser.NullLiteral:
		result.Type = types.T(types.Unknown)
	}
	return &result
}

func inferBinaryResult(op parser.BinaryOperator, left, right *Node) (types.Type, error) {
	switch op {
	case parser.OpAdd, parser.OpSub, parser.OpMul, parser.OpDiv, parser.OpMod, parser.OpPow:
		return types.ArithmeticResult(string(op), left.Type, right.Type, left.LiteralBig, right.LiteralBig)
	case parser.OpLt, parser.OpLe, parser.OpEq, parser.OpNe, parser.OpGe, parser.OpGt:
		return types.ComparisonResult(string(op), left.Type, right.Type)
	case parser.OpAnd, parser.OpOr:
		if !types.LogicalOperandOK(left.Type) {
			return types.Type{}, types.ErrUndefinedUnary(string(op), left.Type)
		}
		if !types.LogicalOperandOK(right.Type) {
			return types.Type{}, types.ErrUndefinedUnary(string(op), right.Type)
		}
		return types.T(types.Bool), nil
	case parser.OpBitAnd, parser.OpBitOr, parser.OpShl, parser.OpShr, parser.OpBitXor:
		return types.BitwiseResult(string(op), left.Type, right.Type)
	case parser.OpConcat:
		return types.ConcatResult(left.Type, right.Type)
	case parser.OpLike, parser.OpNotLike:
		if err := types.LikeOK(left.Type, right.Type); err != nil {
			return types.Type{}, err
		}
		return types.T(types.Bool), nil
	}
	return types.Type{}, types.ErrUndefined(string(op), left.Type, right.Type)
}

func inferUnaryResult(op parser.UnaryOperator, operand *Node) (types.Type, error) {
	switch op {
	case parser.OpNeg, parser.OpPos:
		return types.UnaryArithmeticResult(string(op), operand.Type)
	case parser.OpBitNot:
		return types.UnaryBitNotResult(operand.Type)
	case parser.OpNot:
		return types.UnaryNotResult(operand.Type)
	case parser.OpFactorial, parser.OpSqrt, parser.OpCubeRoot:
		return types.UnaryIntegerFamilyResult(string(op), operand.Type)
	case parser.OpAbs:
		return types.UnaryAbsResult(operand.Type)
	}
	return types.Type{}, types.ErrUndefinedUnary(string(op), operand.Type)
}
