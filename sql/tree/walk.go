package tree

import "github.com/alex-dukhno/isomorphicdb/sql/types"

// CollectParamTypes walks n and records, for every parameter it finds,
// the type the tree resolved it to: the target of an enclosing Cast if
// one was inserted, or the parameter's own type if it was already
// concrete. The first occurrence of a given index wins; a parameter
// used twice with conflicting context types is not reconciled here.
func CollectParamTypes(n *Node, out map[int]types.Type) {
	if n == nil {
		return
	}
	switch n.Kind {
	case Param:
		if _, ok := out[n.ParamIndex]; !ok && n.Type.Concrete() {
			out[n.ParamIndex] = n.Type
		}
	case Cast:
		if n.Operand != nil && n.Operand.Kind == Param {
			if _, ok := out[n.Operand.ParamIndex]; !ok {
				out[n.Operand.ParamIndex] = n.Type
			}
		}
		CollectParamTypes(n.Operand, out)
	case Binary:
		CollectParamTypes(n.Left, out)
		CollectParamTypes(n.Right, out)
	case Unary:
		CollectParamTypes(n.Operand, out)
	}
}
