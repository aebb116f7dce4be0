package catalog

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

// RowID is the key of the abstract ordered key-value mapping a table is
// built on: a monotonically increasing id, backed by a ULID so insertion
// order within a table is recoverable without a separate sequence
// counter.
type RowID = ulid.ULID

// Table owns its committed rows. Reads take a shared lock; inserts,
// updates and deletes are staged in the writing transaction's delta and
// applied at commit under the exclusive lock, so concurrent commits to
// the same table serialize at the table boundary. Row-id generation also
// takes the exclusive lock, since the entropy source is shared.
type Table struct {
	Schema  string
	Name    string
	Columns []ColumnDef

	mu       sync.RWMutex
	order    []RowID
	rows     map[RowID]Row
	entropy  *ulid.MonotonicEntropy
}

func newTable(schema, name string, columns []ColumnDef) *Table {
	return &Table{
		Schema:  schema,
		Name:    name,
		Columns: columns,
		rows:    make(map[RowID]Row),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (t *Table) nextRowID() RowID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ulid.MustNew(ulid.Now(), t.entropy)
}

// snapshot returns committed rows in insertion order. Callers overlay any
// in-progress transaction's pending writes on top of this.
func (t *Table) snapshot() ([]RowID, map[RowID]Row) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	order := make([]RowID, len(t.order))
	copy(order, t.order)
	rows := make(map[RowID]Row, len(t.rows))
	for id, r := range t.rows {
		rows[id] = r
	}
	return order, rows
}

// applyCommit merges a transaction's write set into committed storage.
func (t *Table) applyCommit(d *tableDelta) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id := range d.deletes {
		delete(t.rows, id)
	}
	if len(d.deletes) > 0 {
		filtered := t.order[:0:0]
		for _, id := range t.order {
			if _, gone := d.deletes[id]; gone {
				continue
			}
			filtered = append(filtered, id)
		}
		t.order = filtered
	}
	for id, r := range d.updates {
		if _, ok := t.rows[id]; ok {
			t.rows[id] = r
		}
	}
	for _, ins := range d.insertOrder {
		t.rows[ins.id] = ins.row
		t.order = append(t.order, ins.id)
	}
}
