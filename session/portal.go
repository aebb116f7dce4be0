package session

import (
	"github.com/alex-dukhno/isomorphicdb/sql/exec"
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
)

// Portal is a bound, ready-to-Execute instance of a PreparedStatement:
// the statement plus the parameter values Bind supplied. A portal that
// returns rows may be Executed more than once with a row-count limit;
// materialized and cursor remember how much of the result a prior
// Execute already consumed so a PortalSuspended resumes where it left
// off instead of re-running the query.
type Portal struct {
	Name      string
	Statement *PreparedStatement
	Params    []parser.Datum

	materialized *exec.Result
	cursor       int
}
