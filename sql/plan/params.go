package plan

import (
	"github.com/alex-dukhno/isomorphicdb/sql/tree"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

// ParamTypes returns the resolved type of each of the plan's count
// parameters, 1-indexed. A parameter never bound to any concrete
// context falls back to Text, matching how a real Postgres backend
// reports an unconstrained parameter.
func ParamTypes(p Plan, count int) []types.Type {
	found := make(map[int]types.Type)
	collect(p, found)

	out := make([]types.Type, count)
	for i := range out {
		if t, ok := found[i+1]; ok {
			out[i] = t
		} else {
			out[i] = types.T(types.Text)
		}
	}
	return out
}

func collect(p Plan, out map[int]types.Type) {
	switch node := p.(type) {
	case *SeqScan, *Values:
	case *Filter:
		tree.CollectParamTypes(node.Cond, out)
		collect(node.Input, out)
	case *Project:
		for _, c := range node.Columns {
			tree.CollectParamTypes(c.Expr, out)
		}
		collect(node.Input, out)
	case *LimitPlan:
		tree.CollectParamTypes(node.Count, out)
		collect(node.Input, out)
	case *InsertPlan:
		for _, row := range node.Rows {
			for _, v := range row {
				tree.CollectParamTypes(v, out)
			}
		}
	case *UpdatePlan:
		tree.CollectParamTypes(node.Where, out)
		for _, a := range node.Assignments {
			tree.CollectParamTypes(a.Value, out)
		}
	case *DeletePlan:
		tree.CollectParamTypes(node.Where, out)
	}
}
