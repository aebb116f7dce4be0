package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

func TestCoerceTreeAndOrIsIdempotent(t *testing.T) {
	and := NewBinary(parser.OpAnd, NewParam(1), NewParam(2))
	and.Type = types.T(types.Bool)

	once, err := CoerceTree(and)
	require.NoError(t, err)
	require.Equal(t, Cast, once.Left.Kind)
	require.Equal(t, Cast, once.Right.Kind)
	require.Equal(t, Param, once.Left.Operand.Kind)

	twice, err := CoerceTree(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
	assert.Equal(t, Param, twice.Left.Operand.Kind)
}
