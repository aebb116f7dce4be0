package catalog

import "github.com/alex-dukhno/isomorphicdb/sql/types"

// ColumnDef is a table's column metadata: name, declared SQL type and
// ordinal position.
type ColumnDef struct {
	Name    string
	Type    types.Type
	Ordinal int
}
