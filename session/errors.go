package session

import "fmt"

const (
	CodeInFailedTransaction = "25P02"
	CodeNoActiveTransaction = "25P01"
	CodeDuplicateStatement  = "42P05"
	CodeUndefinedStatement  = "26000"
	CodeUndefinedPortal     = "34000"
)

// Error is a session-phase error: protocol sequencing violations and
// transaction-state errors that never make it as far as the catalog or
// type system.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string    { return e.Msg }
func (e *Error) SQLState() string { return e.Code }

var errInFailedTransaction = &Error{
	Code: CodeInFailedTransaction,
	Msg:  "current transaction is aborted, commands ignored until end of transaction block",
}

func errUnknownStatement(name string) error {
	return &Error{Code: CodeUndefinedStatement, Msg: fmt.Sprintf("prepared statement %q does not exist", name)}
}

func errUnknownPortal(name string) error {
	return &Error{Code: CodeUndefinedPortal, Msg: fmt.Sprintf("portal %q does not exist", name)}
}

func errDuplicateStatement(name string) error {
	return &Error{Code: CodeDuplicateStatement, Msg: fmt.Sprintf("prepared statement %q already exists", name)}
}
