package analyzer

import "fmt"

const (
	CodeUndefinedColumn  = "42703"
	CodeAmbiguousColumn  = "42702"
	CodeUndefinedTable   = "42P01"
	CodeWrongParamCount  = "08P01"
)

// Error is an Analyzer-phase error carrying the SQLSTATE code the
// protocol layer reports it under.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string    { return e.Msg }
func (e *Error) SQLState() string { return e.Code }

func errUndefinedColumn(name string) error {
	return &Error{Code: CodeUndefinedColumn, Msg: fmt.Sprintf("column %q does not exist", name)}
}

func errNoTable() error {
	return &Error{Code: CodeUndefinedTable, Msg: "no table in scope for this column reference"}
}

func errColumnCount(table string, want, got int) error {
	return &Error{Code: "42601", Msg: fmt.Sprintf("table %q has %d columns but %d values were supplied", table, want, got)}
}
