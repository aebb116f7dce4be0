package catalog

import "github.com/alex-dukhno/isomorphicdb/sql/parser"

// Row is a tuple of scalar values aligned positionally to a table's
// column list. Every Row a Table hands back has exactly as
// many values as the table has columns.
type Row []parser.Datum

func (r Row) Clone() Row {
	c := make(Row, len(r))
	copy(c, r)
	return c
}
