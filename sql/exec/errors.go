package exec

import "fmt"

const (
	CodeDivisionByZero    = "22012"
	CodeNumericOutOfRange = "22003"
	CodeInvalidTextRep    = "22P02"
)

// Error is a runtime (Executor-phase) error carrying the SQLSTATE code
// the protocol layer reports it under.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string    { return e.Msg }
func (e *Error) SQLState() string { return e.Code }

func errDivByZero() error {
	return &Error{Code: CodeDivisionByZero, Msg: "division by zero"}
}

func errOutOfRange(typ string) error {
	return &Error{Code: CodeNumericOutOfRange, Msg: fmt.Sprintf("%s out of range", typ)}
}

func errInvalidText(text, typ string) error {
	return &Error{Code: CodeInvalidTextRep, Msg: fmt.Sprintf("invalid input syntax for type %s: %q", typ, text)}
}
