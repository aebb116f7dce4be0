package pgwire

import (
	"testing"

	"github.com/lib/pq/oid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-dukhno/isomorphicdb/sql/parser"
)

func TestDecodeBinaryInt2(t *testing.T) {
	d, err := decodeOidDatum(oid.T_int2, formatBinary, []byte{0x00, 0x2A})
	require.NoError(t, err)
	assert.Equal(t, parser.DInt(42), d)
}

func TestDecodeBinaryBool(t *testing.T) {
	d, err := decodeOidDatum(oid.T_bool, formatBinary, []byte{1})
	require.NoError(t, err)
	assert.Equal(t, parser.DBool(true), d)
}

func TestDecodeBinaryFloat8(t *testing.T) {
	d, err := decodeOidDatum(oid.T_float8, formatBinary, []byte{0x40, 0x09, 0x21, 0xFB, 0x54, 0x44, 0x2D, 0x18})
	require.NoError(t, err)
	f, ok := d.(parser.DFloat)
	require.True(t, ok)
	assert.InDelta(t, 3.14159265, float64(f), 1e-8)
}

func TestDecodeBinaryWrongLengthErrors(t *testing.T) {
	_, err := decodeOidDatum(oid.T_int4, formatBinary, []byte{0x01})
	require.Error(t, err)
}

func TestDecodeTextInt(t *testing.T) {
	d, err := decodeOidDatum(oid.T_int4, formatText, []byte("42"))
	require.NoError(t, err)
	assert.Equal(t, parser.DInt(42), d)
}

func TestDecodeUnsupportedFormatCode(t *testing.T) {
	_, err := decodeOidDatum(oid.T_int4, formatCode(2), []byte("42"))
	require.Error(t, err)
}
