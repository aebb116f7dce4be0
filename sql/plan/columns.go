package plan

import "github.com/alex-dukhno/isomorphicdb/sql/analyzer"

// ResultColumns returns the output column list of a SELECT plan, or nil
// for a plan with no result set (DML/DDL/transaction control).
func ResultColumns(p Plan) []analyzer.ProjectionItem {
	switch node := p.(type) {
	case *Project:
		return node.Columns
	case *Filter:
		return ResultColumns(node.Input)
	case *LimitPlan:
		return ResultColumns(node.Input)
	}
	return nil
}
