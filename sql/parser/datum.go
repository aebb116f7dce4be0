package parser

import (
	"gopkg.in/inf.v0"
)

// Datum is a single runtime scalar value flowing through the pipeline:
// literal, column value, or parameter binding, trimmed to the scalar
// families this core supports (no date/time/interval/bytea).
type Datum interface {
	Type() string
}

var (
	DummyBool    Datum = DBool(false)
	DummyInt     Datum = DInt(0)
	DummyFloat   Datum = DFloat(0)
	DummyDecimal Datum = &DDecimal{}
	DummyString  Datum = DString("")
	DNull        Datum = dNull{}
)

// DBool is a boolean scalar.
type DBool bool

func (d DBool) Type() string { return "bool" }

// DInt is an integer scalar, wide enough to hold SmallInt/Integer/BigInt
// values; the declared column or literal family tracks the narrower width.
type DInt int64

func (d DInt) Type() string { return "int" }

// DFloat is a Real/DoublePrecision scalar.
type DFloat float64

func (d DFloat) Type() string { return "float" }

// DDecimal is an arbitrary-precision Numeric scalar, backed by inf.Dec.
type DDecimal struct {
	inf.Dec
}

func (d *DDecimal) Type() string { return "decimal" }

// DString is a Char/VarChar/Text scalar, or an unresolved string literal.
type DString string

func (d DString) Type() string { return "string" }

type dNull struct{}

func (d dNull) Type() string { return "NULL" }

// DValArg is a named/positional bind-variable placeholder ($1, $2, ...)
// that has not yet been bound to a concrete Datum.
type DValArg struct {
	Index int
}

func (DValArg) Type() string { return "parameter" }
