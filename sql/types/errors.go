package types

import "fmt"

const (
	CodeOperatorUndefined = "42883"
	CodeAmbiguousOperator = "42725"
)

// Error is a TypeCheck-phase error, carrying the SQLSTATE code the wire
// layer reports it under.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string    { return e.Msg }
func (e *Error) SQLState() string { return e.Code }

// ErrUndefined reports that op has no defined result for the left/right
// operand types. Exported so sql/tree's TypeInference and TypeCoercion
// passes can raise the same error without sql/types importing sql/tree
// (which would create an import cycle).
func ErrUndefined(op string, left, right Type) error {
	return &Error{Code: CodeOperatorUndefined, Msg: fmt.Sprintf("operator does not exist: %s %s %s", left, op, right)}
}

// ErrUndefinedUnary is ErrUndefined for unary operators.
func ErrUndefinedUnary(op string, operand Type) error {
	return &Error{Code: CodeOperatorUndefined, Msg: fmt.Sprintf("operator does not exist: %s %s", op, operand)}
}

func errAmbiguous(op string) error {
	return &Error{Code: CodeAmbiguousOperator, Msg: fmt.Sprintf("operator is not unique: unknown %s unknown", op)}
}
