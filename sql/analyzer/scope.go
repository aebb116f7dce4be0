package analyzer

import (
	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/sql/tree"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

// scope is the name-resolution context for one statement: at most one
// table (this module has no joins) plus the declared types of any
// parameters the wire layer supplied ahead of Parse.
type scope struct {
	table     catalog.TableHandle
	hasTable  bool
	declared  map[int]types.Type
	maxParam  int
}

func newScope(declared map[int]types.Type) *scope {
	return &scope{declared: declared}
}

func (s *scope) withTable(h catalog.TableHandle) *scope {
	return &scope{table: h, hasTable: true, declared: s.declared}
}

func (s *scope) resolveColumn(table, name string) (*tree.Node, error) {
	if !s.hasTable {
		return nil, errNoTable()
	}
	if table != "" && table != s.table.Name() {
		return nil, errUndefinedColumn(name)
	}
	cols := s.table.Columns()
	for i, c := range cols {
		if c.Name == name {
			return tree.NewColumnRef(c.Name, i, c.Type), nil
		}
	}
	return nil, errUndefinedColumn(name)
}

// paramType returns the declared type for a 1-indexed parameter, or
// Unknown if the wire layer never declared one.
func (s *scope) paramType(index int) types.Type {
	if index > s.maxParam {
		s.maxParam = index
	}
	if t, ok := s.declared[index]; ok {
		return t
	}
	return types.T(types.Unknown)
}
