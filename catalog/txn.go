package catalog

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/google/uuid"
)

type insertedRow struct {
	id  RowID
	row Row
}

// tableDelta is the write set a transaction has accumulated against one
// table: pending inserts (not yet visible outside the transaction),
// updates and deletes of already-committed rows. It is discarded on
// rollback and merged into the table atomically on commit.
type tableDelta struct {
	insertOrder []insertedRow
	updates     map[RowID]Row
	deletes     map[RowID]bool
}

func newTableDelta() *tableDelta {
	return &tableDelta{updates: make(map[RowID]Row), deletes: make(map[RowID]bool)}
}

// TxnContext is a transaction's identifier plus a cache of resolved
// table handles, carried through the pipeline between BEGIN and
// COMMIT/ROLLBACK (or for a single autocommit statement).
type TxnContext struct {
	ID uuid.UUID

	catalog     *Catalog
	handleCache *lru.Cache[string, TableHandle]
	deltas      map[*Table]*tableDelta
}

func newTxnContext(cat *Catalog) *TxnContext {
	cache, _ := lru.New[string, TableHandle](256)
	return &TxnContext{
		ID:          uuid.New(),
		catalog:     cat,
		handleCache: cache,
		deltas:      make(map[*Table]*tableDelta),
	}
}

func (tx *TxnContext) deltaFor(t *Table) *tableDelta {
	d, ok := tx.deltas[t]
	if !ok {
		d = newTableDelta()
		tx.deltas[t] = d
	}
	return d
}

// Commit publishes every write this transaction made, atomically per
// table, and clears the transaction's caches.
func (tx *TxnContext) Commit() {
	for t, d := range tx.deltas {
		t.applyCommit(d)
	}
	tx.deltas = make(map[*Table]*tableDelta)
	tx.handleCache.Purge()
}

// Rollback discards every write this transaction made.
func (tx *TxnContext) Rollback() {
	tx.deltas = make(map[*Table]*tableDelta)
	tx.handleCache.Purge()
}
