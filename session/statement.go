package session

import (
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/plan"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

// PreparedStatement is the result of Parse: a statement planned once,
// up front, against whatever parameter types the wire layer declared
// (Unknown for the rest). Bind only supplies parameter values; it never
// re-plans.
type PreparedStatement struct {
	Name       string
	SQL        string
	Stmt       parser.Statement
	Plan       plan.Plan
	ParamTypes []types.Type
	Columns    []ResultColumn
}

// ResultColumn is what Describe reports for one output column: name and
// wire type.
type ResultColumn struct {
	Name string
	Typ  types.Type
}
