package catalog

import "sync"

// Catalog is the metadata and storage service for schemas, tables and
// rows. DDL acquires the catalog-wide exclusive lock; DML only needs a
// shared lock to resolve a table and stages its writes in the
// transaction's delta, which is applied under the table's own lock at
// commit.
type Catalog struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// New returns a catalog holding one schema with the empty name, which is
// where unqualified table names are created and resolved.
func New() *Catalog {
	return &Catalog{schemas: map[string]*Schema{"": newSchema("")}}
}

// BeginTxn starts a new transaction context bound to this catalog.
func (c *Catalog) BeginTxn() *TxnContext {
	return newTxnContext(c)
}

func (c *Catalog) CreateSchema(name string, ifNotExists bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.schemas[name]; ok {
		if ifNotExists {
			return nil
		}
		return errSchemaExists(name)
	}
	c.schemas[name] = newSchema(name)
	return nil
}

func (c *Catalog) DropSchema(name string, ifExists, cascade bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schemas[name]
	if !ok {
		if ifExists {
			return nil
		}
		return errSchemaNotFound(name)
	}
	if len(s.Tables) > 0 && !cascade {
		return errSchemaNotEmpty(name)
	}
	delete(c.schemas, name)
	return nil
}

func (c *Catalog) CreateTable(schema, name string, columns []ColumnDef, ifNotExists bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schemas[schema]
	if !ok {
		return errSchemaNotFound(schema)
	}
	if _, ok := s.Tables[name]; ok {
		if ifNotExists {
			return nil
		}
		return errTableExists(schema, name)
	}
	s.Tables[name] = newTable(schema, name, columns)
	return nil
}

// DropTable drops each named table independently: the first failure (when
// ifExists is false) stops the batch and is returned to the caller.
func (c *Catalog) DropTable(schema string, names []string, ifExists bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schemas[schema]
	if !ok {
		return errSchemaNotFound(schema)
	}
	for _, name := range names {
		if _, ok := s.Tables[name]; !ok {
			if ifExists {
				continue
			}
			return errTableNotFound(schema, name)
		}
		delete(s.Tables, name)
	}
	return nil
}

// ResolveTable looks up a table by (schema, name) and returns a handle
// usable for Scan/Insert/Update/Delete. tx's handle cache is consulted
// first and populated on a miss.
func (c *Catalog) ResolveTable(tx *TxnContext, schema, name string) (TableHandle, error) {
	key := schema + "." + name
	if tx != nil {
		if h, ok := tx.handleCache.Get(key); ok {
			return h, nil
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.schemas[schema]
	if !ok {
		return TableHandle{}, errTableNotFound(schema, name)
	}
	t, ok := s.Tables[name]
	if !ok {
		return TableHandle{}, errTableNotFound(schema, name)
	}
	h := TableHandle{table: t}
	if tx != nil {
		tx.handleCache.Add(key, h)
	}
	return h, nil
}

// Scan returns every row visible to tx for h: committed rows, with tx's
// own pending updates/deletes/inserts overlaid, in insertion order.
func (c *Catalog) Scan(tx *TxnContext, h TableHandle) []Row {
	order, committed := h.table.snapshot()

	var d *tableDelta
	if tx != nil {
		d = tx.deltas[h.table]
	}

	rows := make([]Row, 0, len(order))
	for _, id := range order {
		if d != nil {
			if d.deletes[id] {
				continue
			}
			if u, ok := d.updates[id]; ok {
				rows = append(rows, u)
				continue
			}
		}
		rows = append(rows, committed[id])
	}
	if d != nil {
		for _, ins := range d.insertOrder {
			rows = append(rows, ins.row)
		}
	}
	return rows
}

// Insert appends rows to h's pending write set within tx and returns the
// count inserted.
func (c *Catalog) Insert(tx *TxnContext, h TableHandle, rows []Row) int {
	d := tx.deltaFor(h.table)
	for _, r := range rows {
		id := h.table.nextRowID()
		d.insertOrder = append(d.insertOrder, insertedRow{id: id, row: r.Clone()})
	}
	return len(rows)
}

// Predicate evaluates row against a caller-supplied condition; it is
// implemented by the Executor, which has the typed expression evaluator
// the catalog itself does not depend on.
type Predicate func(Row) (bool, error)

// Assigner computes the post-assignment value of row; also owned by the
// Executor.
type Assigner func(Row) (Row, error)

// Update applies assign to every row in h (within tx) for which predicate
// returns true, and returns the count updated.
func (c *Catalog) Update(tx *TxnContext, h TableHandle, predicate Predicate, assign Assigner) (int, error) {
	order, committed := h.table.snapshot()
	d := tx.deltaFor(h.table)

	count := 0
	for _, id := range order {
		if d.deletes[id] {
			continue
		}
		cur, ok := d.updates[id]
		if !ok {
			cur = committed[id]
		}
		ok2, err := predicate(cur)
		if err != nil {
			return count, err
		}
		if !ok2 {
			continue
		}
		next, err := assign(cur)
		if err != nil {
			return count, err
		}
		d.updates[id] = next
		count++
	}

	for i, ins := range d.insertOrder {
		ok, err := predicate(ins.row)
		if err != nil {
			return count, err
		}
		if !ok {
			continue
		}
		next, err := assign(ins.row)
		if err != nil {
			return count, err
		}
		d.insertOrder[i].row = next
		count++
	}

	return count, nil
}

// Delete marks every row in h (within tx) for which predicate returns
// true as deleted, and returns the count removed.
func (c *Catalog) Delete(tx *TxnContext, h TableHandle, predicate Predicate) (int, error) {
	order, committed := h.table.snapshot()
	d := tx.deltaFor(h.table)

	count := 0
	for _, id := range order {
		if d.deletes[id] {
			continue
		}
		cur, ok := d.updates[id]
		if !ok {
			cur = committed[id]
		}
		ok2, err := predicate(cur)
		if err != nil {
			return count, err
		}
		if ok2 {
			d.deletes[id] = true
			delete(d.updates, id)
			count++
		}
	}

	kept := d.insertOrder[:0:0]
	for _, ins := range d.insertOrder {
		ok, err := predicate(ins.row)
		if err != nil {
			return count, err
		}
		if ok {
			count++
			continue
		}
		kept = append(kept, ins)
	}
	d.insertOrder = kept

	return count, nil
}
