package types

import "github.com/lib/pq/oid"

// OID returns the PostgreSQL type OID for t. Literal families report
// the "unknown" pseudo-type OID, matching how a real Postgres backend
// describes an as-yet-untyped literal or parameter.
func (t Type) OID() oid.Oid {
	switch t.Family {
	case Bool:
		return oid.T_bool
	case SmallInt:
		return oid.T_int2
	case Integer:
		return oid.T_int4
	case BigInt:
		return oid.T_int8
	case Real:
		return oid.T_float4
	case Double:
		return oid.T_float8
	case Numeric:
		return oid.T_numeric
	case Char:
		return oid.T_bpchar
	case VarChar:
		return oid.T_varchar
	case Text:
		return oid.T_text
	default:
		return oid.T_unknown
	}
}

// FromOID resolves a wire-supplied parameter type OID to a Type, used to
// seed parameter types from Parse's param_type_oids.
func FromOID(o oid.Oid) (Type, bool) {
	switch o {
	case oid.T_bool:
		return T(Bool), true
	case oid.T_int2:
		return T(SmallInt), true
	case oid.T_int4:
		return T(Integer), true
	case oid.T_int8:
		return T(BigInt), true
	case oid.T_float4:
		return T(Real), true
	case oid.T_float8:
		return T(Double), true
	case oid.T_numeric:
		return T(Numeric), true
	case oid.T_bpchar:
		return Type{Family: Char}, true
	case oid.T_varchar:
		return Type{Family: VarChar}, true
	case oid.T_text:
		return T(Text), true
	case oid.T_unknown, 0:
		return Type{}, false
	default:
		return Type{}, false
	}
}
