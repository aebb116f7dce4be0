package exec

import (
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

type StatementType int

const (
	// Ack indicates the statement has no meaningful return (BEGIN, COMMIT,
	// ROLLBACK, the DDL statements).
	Ack StatementType = iota

	// RowsAffected indicates the statement returns a count of affected
	// rows (INSERT, UPDATE, DELETE).
	RowsAffected

	// Rows indicates the statement returns a result set (SELECT).
	Rows
)

// ResultColumn is the name and declared type of one column of a Rows
// result, as reported in a wire RowDescription.
type ResultColumn struct {
	Name string
	Typ  types.Type
}

type ResultRow struct {
	Values []parser.Datum
}

// Result is everything the protocol layer needs to build
// RowDescription/DataRow/CommandComplete for one executed statement.
type Result struct {
	Type         StatementType
	PGTag        string
	RowsAffected int
	Columns      []ResultColumn
	Rows         []ResultRow
}
