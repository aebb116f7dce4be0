package pgwire

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/lib/pq/oid"

	"github.com/alex-dukhno/isomorphicdb/sql/parser"
)

// http://www.postgresql.org/docs/9.5/static/protocol-overview.html#PROTOCOL-FORMAT-CODES
type formatCode int16

const (
	formatText   formatCode = 0
	formatBinary formatCode = 1
)

// decodeOidDatum decodes b, encoded under format code, as the scalar
// type id names.
func decodeOidDatum(id oid.Oid, code formatCode, b []byte) (parser.Datum, error) {
	switch code {
	case formatText:
		return decodeTextDatum(id, b)
	case formatBinary:
		return decodeBinaryDatum(id, b)
	default:
		return nil, fmt.Errorf("unsupported format code %d for oid %v", code, id)
	}
}

func decodeTextDatum(id oid.Oid, b []byte) (parser.Datum, error) {
	switch id {
	case oid.T_bool:
		v, err := strconv.ParseBool(string(b))
		if err != nil {
			return nil, err
		}
		return parser.DBool(v), nil

	case oid.T_int2, oid.T_int4, oid.T_int8:
		i, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return nil, err
		}
		return parser.DInt(i), nil

	case oid.T_float4, oid.T_float8:
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return nil, err
		}
		return parser.DFloat(f), nil

	case oid.T_numeric:
		d := &parser.DDecimal{}
		if _, ok := d.SetString(string(b)); !ok {
			return nil, fmt.Errorf("could not parse %q as numeric", b)
		}
		return d, nil

	case oid.T_text, oid.T_varchar, oid.T_bpchar, oid.T_unknown:
		return parser.DString(b), nil

	default:
		return nil, fmt.Errorf("unsupported parameter oid: %v", id)
	}
}

// decodeBinaryDatum decodes b per the PostgreSQL binary wire format:
// network-byte-order fixed-width integers, IEEE-754 floats, raw UTF-8
// bytes for text.
func decodeBinaryDatum(id oid.Oid, b []byte) (parser.Datum, error) {
	switch id {
	case oid.T_bool:
		if len(b) != 1 {
			return nil, fmt.Errorf("invalid binary bool length %d", len(b))
		}
		return parser.DBool(b[0] != 0), nil

	case oid.T_int2:
		if len(b) != 2 {
			return nil, fmt.Errorf("invalid binary int2 length %d", len(b))
		}
		return parser.DInt(int64(int16(binary.BigEndian.Uint16(b)))), nil

	case oid.T_int4:
		if len(b) != 4 {
			return nil, fmt.Errorf("invalid binary int4 length %d", len(b))
		}
		return parser.DInt(int64(int32(binary.BigEndian.Uint32(b)))), nil

	case oid.T_int8:
		if len(b) != 8 {
			return nil, fmt.Errorf("invalid binary int8 length %d", len(b))
		}
		return parser.DInt(int64(binary.BigEndian.Uint64(b))), nil

	case oid.T_float4:
		if len(b) != 4 {
			return nil, fmt.Errorf("invalid binary float4 length %d", len(b))
		}
		return parser.DFloat(float64(math.Float32frombits(binary.BigEndian.Uint32(b)))), nil

	case oid.T_float8:
		if len(b) != 8 {
			return nil, fmt.Errorf("invalid binary float8 length %d", len(b))
		}
		return parser.DFloat(math.Float64frombits(binary.BigEndian.Uint64(b))), nil

	case oid.T_numeric:
		d := &parser.DDecimal{}
		if _, ok := d.SetString(string(b)); !ok {
			return nil, fmt.Errorf("could not parse %q as numeric", b)
		}
		return d, nil

	case oid.T_text, oid.T_varchar, oid.T_bpchar, oid.T_unknown:
		return parser.DString(b), nil

	default:
		return nil, fmt.Errorf("unsupported parameter oid: %v", id)
	}
}
