package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmeticResultWidening(t *testing.T) {
	cases := []struct {
		name   string
		left   Type
		right  Type
		bigL   bool
		bigR   bool
		want   Type
		errors bool
	}{
		{name: "int literal + int literal fits int32", left: T(IntLiteral), right: T(IntLiteral), want: T(Integer)},
		{name: "int literal overflowing widens to bigint", left: T(IntLiteral), right: T(IntLiteral), bigR: true, want: T(BigInt)},
		{name: "smallint + integer widens to integer", left: T(SmallInt), right: T(Integer), want: T(Integer)},
		{name: "integer + bigint widens to bigint", left: T(Integer), right: T(BigInt), want: T(BigInt)},
		{name: "integer + real widens to double", left: T(Integer), right: T(Real), want: T(Double)},
		{name: "real + double widens to double", left: T(Real), right: T(Double), want: T(Double)},
		{name: "numeric dominates", left: T(Integer), right: T(Numeric), want: T(Numeric)},
		{name: "string literal + string literal is ambiguous", left: T(StringLiteral), right: T(StringLiteral), errors: true},
		{name: "bool operand undefined", left: T(Bool), right: T(Integer), errors: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ArithmeticResult("+", tc.left, tc.right, tc.bigL, tc.bigR)
			if tc.errors {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestArithmeticResultModuloRejectsFloat(t *testing.T) {
	_, err := ArithmeticResult("%", T(Real), T(Integer), false, false)
	require.Error(t, err)

	_, err = ArithmeticResult("%", T(Integer), T(Integer), false, false)
	require.NoError(t, err)
}

func TestComparisonResultSameFamily(t *testing.T) {
	got, err := ComparisonResult("<", T(Integer), T(SmallInt))
	require.NoError(t, err)
	assert.Equal(t, T(Bool), got)

	got, err = ComparisonResult("=", T(Text), T(VarChar))
	require.NoError(t, err)
	assert.Equal(t, T(Bool), got)

	_, err = ComparisonResult("<", T(Integer), T(Text))
	assert.Error(t, err)
}

func TestBitwiseResultIntegerOnly(t *testing.T) {
	got, err := BitwiseResult("&", T(Integer), T(SmallInt))
	require.NoError(t, err)
	assert.Equal(t, T(Integer), got)

	_, err = BitwiseResult("&", T(Real), T(Integer))
	assert.Error(t, err)
}

func TestConcatResultRequiresOneTextOperand(t *testing.T) {
	got, err := ConcatResult(T(Text), T(Integer))
	require.NoError(t, err)
	assert.Equal(t, T(Text), got)

	_, err = ConcatResult(T(Integer), T(Bool))
	assert.Error(t, err)
}

func TestLikeOKRequiresTextOperands(t *testing.T) {
	assert.NoError(t, LikeOK(T(Text), T(StringLiteral)))
	assert.Error(t, LikeOK(T(Integer), T(StringLiteral)))
}

func TestUnaryResultFamilies(t *testing.T) {
	_, err := UnaryArithmeticResult("-", T(Integer))
	assert.NoError(t, err)
	_, err = UnaryArithmeticResult("-", T(Text))
	assert.Error(t, err)

	_, err = UnaryBitNotResult(T(Integer))
	assert.NoError(t, err)
	_, err = UnaryBitNotResult(T(Real))
	assert.Error(t, err)
}
