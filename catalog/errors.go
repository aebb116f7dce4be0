package catalog

import "fmt"

// SQLSTATE codes this package can raise.
const (
	CodeDuplicateSchema  = "42P06"
	CodeDuplicateTable   = "42P07"
	CodeInvalidSchema    = "3F000"
	CodeUndefinedTable   = "42P01"
	CodeUndefinedColumn  = "42703"
)

// Error is a catalog-phase error carrying the SQLSTATE code the protocol
// layer reports it under.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) SQLState() string { return e.Code }

func errSchemaExists(name string) error {
	return &Error{Code: CodeDuplicateSchema, Msg: fmt.Sprintf("schema %q already exists", name)}
}

func errSchemaNotFound(name string) error {
	return &Error{Code: CodeInvalidSchema, Msg: fmt.Sprintf("schema %q does not exist", name)}
}

func errSchemaNotEmpty(name string) error {
	return &Error{Code: "2BP01", Msg: fmt.Sprintf("schema %q is not empty", name)}
}

func errTableExists(schema, name string) error {
	return &Error{Code: CodeDuplicateTable, Msg: fmt.Sprintf("table %q already exists", qualify(schema, name))}
}

func errTableNotFound(schema, name string) error {
	return &Error{Code: CodeUndefinedTable, Msg: fmt.Sprintf("table %q does not exist", qualify(schema, name))}
}

func errColumnNotFound(table, name string) error {
	return &Error{Code: CodeUndefinedColumn, Msg: fmt.Sprintf("column %q of relation %q does not exist", name, table)}
}

func qualify(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}
