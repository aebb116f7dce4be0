package catalog

// TableHandle is a stable reference to a resolved table, returned by
// ResolveTable and cached per transaction. The underlying *Table is
// never relocated once created, so a handle stays valid for the lifetime
// of the table.
type TableHandle struct {
	table *Table
}

func (h TableHandle) Schema() string       { return h.table.Schema }
func (h TableHandle) Name() string         { return h.table.Name }
func (h TableHandle) Columns() []ColumnDef { return h.table.Columns }

func (h TableHandle) ColumnByName(name string) (ColumnDef, bool) {
	for _, c := range h.table.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

func (h TableHandle) cacheKey() string { return h.table.Schema + "." + h.table.Name }
