package exec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/tree"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

func typedLiteral(t *testing.T, kind parser.LiteralKind, text string) *tree.Node {
	t.Helper()
	n := tree.NewLiteral(kind, text, false)
	inferred, err := tree.Infer(n)
	require.NoError(t, err)
	return inferred
}

func TestEvalIntegerLiteralBoundary(t *testing.T) {
	n := typedLiteral(t, parser.IntegerLiteral, "2147483647")
	assert.Equal(t, types.T(types.IntLiteral), n.Type)

	n = typedLiteral(t, parser.IntegerLiteral, "2147483648")
	assert.Equal(t, types.T(types.BigInt), n.Type)
}

func TestEvalSmallIntOverflowOnCoercion(t *testing.T) {
	v, err := coerceToInt(parser.DInt(40000), types.T(types.SmallInt))
	require.Error(t, err)
	assert.Nil(t, v)

	v, err = coerceToInt(parser.DInt(32767), types.T(types.SmallInt))
	require.NoError(t, err)
	assert.Equal(t, parser.DInt(32767), v)
}

func TestIntArithOverflowDoesNotWrap(t *testing.T) {
	_, err := intArith(parser.OpAdd, math.MaxInt64, 1)
	require.Error(t, err)

	_, err = intArith(parser.OpMul, math.MaxInt64, 2)
	require.Error(t, err)

	v, err := intArith(parser.OpAdd, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(30), v)
}

func TestIntArithDivisionByZero(t *testing.T) {
	_, err := intArith(parser.OpDiv, 10, 0)
	require.Error(t, err)

	_, err = intArith(parser.OpMod, 10, 0)
	require.Error(t, err)
}

func TestEvalBinaryAddition(t *testing.T) {
	left := typedLiteral(t, parser.IntegerLiteral, "2")
	right := typedLiteral(t, parser.IntegerLiteral, "3")
	n := tree.NewBinary(parser.OpAdd, left, right)
	n, err := tree.Infer(n)
	require.NoError(t, err)

	got, err := Eval(n, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, parser.DInt(5), got)
}

func TestEvalComparisonAcrossFamilies(t *testing.T) {
	left := typedLiteral(t, parser.IntegerLiteral, "3")
	right := typedLiteral(t, parser.FloatLiteral, "3.0")
	n := tree.NewBinary(parser.OpEq, left, right)
	n, err := tree.Infer(n)
	require.NoError(t, err)

	got, err := Eval(n, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, parser.DBool(true), got)
}

func TestEvalConcatRequiresOneTextOperand(t *testing.T) {
	got, err := evalConcat(parser.DString("a"), parser.DInt(1))
	require.NoError(t, err)
	assert.Equal(t, parser.DString("a1"), got)
}

func TestEvalLikePattern(t *testing.T) {
	got, err := evalLike(parser.OpLike, parser.DString("hello"), parser.DString("h%o"))
	require.NoError(t, err)
	assert.Equal(t, parser.DBool(true), got)

	got, err = evalLike(parser.OpNotLike, parser.DString("hello"), parser.DString("h%o"))
	require.NoError(t, err)
	assert.Equal(t, parser.DBool(false), got)
}

func TestEvalAndOrThreeValued(t *testing.T) {
	got, err := evalAnd(parser.DBool(false), parser.DNull)
	require.NoError(t, err)
	assert.Equal(t, parser.DBool(false), got)

	got, err = evalOr(parser.DBool(true), parser.DNull)
	require.NoError(t, err)
	assert.Equal(t, parser.DBool(true), got)

	got, err = evalAnd(parser.DBool(true), parser.DNull)
	require.NoError(t, err)
	assert.Equal(t, parser.DNull, got)
}

func TestCastDatumStringToInt(t *testing.T) {
	got, err := castDatum(parser.DString("42"), types.T(types.Integer))
	require.NoError(t, err)
	assert.Equal(t, parser.DInt(42), got)

	_, err = castDatum(parser.DString("not a number"), types.T(types.Integer))
	require.Error(t, err)
}

func TestEvalParamSubstitution(t *testing.T) {
	n := tree.NewParam(1)
	n.Type = types.T(types.Integer)
	got, err := Eval(n, nil, []parser.Datum{parser.DInt(7)})
	require.NoError(t, err)
	assert.Equal(t, parser.DInt(7), got)
}

func TestLimitCountRoundsFloatToNearest(t *testing.T) {
	n, unlimited, err := limitCount(parser.DFloat(2.9))
	require.NoError(t, err)
	assert.False(t, unlimited)
	assert.Equal(t, 3, n)

	n, unlimited, err = limitCount(parser.DFloat(2.4))
	require.NoError(t, err)
	assert.False(t, unlimited)
	assert.Equal(t, 2, n)
}

func TestLimitCountRejectsNegative(t *testing.T) {
	_, _, err := limitCount(parser.DInt(-1))
	require.Error(t, err)
	serr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, CodeNumericOutOfRange, serr.SQLState())
}

func TestLimitCountNullIsUnlimited(t *testing.T) {
	_, unlimited, err := limitCount(parser.DNull)
	require.NoError(t, err)
	assert.True(t, unlimited)
}
