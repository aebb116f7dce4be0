package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
)

func newTestSession() *Session {
	cat := catalog.New()
	return NewSession(ConnectionArgs{Database: "test", User: "test"}, cat)
}

// TestDDLAndDMLRoundTrip exercises spec scenario 1: CREATE SCHEMA/TABLE,
// a multi-row INSERT, then a SELECT * returning the rows in insertion
// order.
func TestDDLAndDMLRoundTrip(t *testing.T) {
	s := newTestSession()

	results, err := s.SimpleQuery(`CREATE SCHEMA s; CREATE TABLE s.t (a smallint, b smallint, c smallint); INSERT INTO s.t VALUES (1,2,3),(4,5,6),(7,8,9); SELECT * FROM s.t;`)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "CREATE SCHEMA", results[0].PGTag)
	assert.Equal(t, "CREATE TABLE", results[1].PGTag)
	assert.Equal(t, "INSERT 0 3", results[2].PGTag)

	sel := results[3]
	assert.Equal(t, "SELECT 3", sel.PGTag)
	require.Len(t, sel.Rows, 3)
	assert.Equal(t, []parser.Datum{parser.DInt(1), parser.DInt(2), parser.DInt(3)}, sel.Rows[0].Values)
	assert.Equal(t, []parser.Datum{parser.DInt(7), parser.DInt(8), parser.DInt(9)}, sel.Rows[2].Values)
	assert.Equal(t, Idle, s.Status())
}

// TestUpdateThenReselect exercises spec scenario 2.
func TestUpdateThenReselect(t *testing.T) {
	s := newTestSession()
	_, err := s.SimpleQuery(`CREATE SCHEMA s; CREATE TABLE s.t (a smallint, b smallint, c smallint); INSERT INTO s.t VALUES (1,2,3),(4,5,6),(7,8,9);`)
	require.NoError(t, err)

	results, err := s.SimpleQuery(`UPDATE s.t SET a=10,b=11,c=12; SELECT * FROM s.t;`)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "UPDATE 3", results[0].PGTag)

	sel := results[1]
	require.Len(t, sel.Rows, 3)
	for _, r := range sel.Rows {
		assert.Equal(t, []parser.Datum{parser.DInt(10), parser.DInt(11), parser.DInt(12)}, r.Values)
	}
}

// TestAmbiguousLiteralOperator exercises spec scenario 3.
func TestAmbiguousLiteralOperator(t *testing.T) {
	s := newTestSession()
	_, err := s.SimpleQuery(`SELECT '1' + '1';`)
	require.Error(t, err)

	type sqlStater interface{ SQLState() string }
	st, ok := err.(sqlStater)
	require.True(t, ok)
	assert.Equal(t, "42725", st.SQLState())
	assert.Equal(t, Idle, s.Status())
}

// TestColumnContextCoercion exercises spec scenario 4: the string
// literal '1' is coerced to Integer under +, and the whole expression is
// coerced to the target column's smallint type.
func TestColumnContextCoercion(t *testing.T) {
	s := newTestSession()
	_, err := s.SimpleQuery(`CREATE TABLE u(x smallint);`)
	require.NoError(t, err)

	results, err := s.SimpleQuery(`INSERT INTO u VALUES ('1' + 2 * 3);`)
	require.NoError(t, err)
	assert.Equal(t, "INSERT 0 1", results[0].PGTag)

	results, err = s.SimpleQuery(`SELECT x FROM u;`)
	require.NoError(t, err)
	require.Len(t, results[0].Rows, 1)
	assert.Equal(t, []parser.Datum{parser.DInt(7)}, results[0].Rows[0].Values)
}

// TestAbortedTransaction exercises spec scenario 6: a failed statement
// inside an explicit transaction puts it in the aborted state until
// ROLLBACK (or COMMIT, which behaves as ROLLBACK).
func TestAbortedTransaction(t *testing.T) {
	s := newTestSession()
	_, err := s.SimpleQuery(`CREATE TABLE u(x smallint);`)
	require.NoError(t, err)

	results, err := s.SimpleQuery(`BEGIN; INSERT INTO nosuch VALUES (1); INSERT INTO u VALUES (1); COMMIT;`)
	require.Error(t, err)
	require.Len(t, results, 1) // BEGIN succeeded before the batch aborted
	assert.Equal(t, Failed, s.Status())

	// the aborted transaction rejects further statements with 25P02
	// until it is explicitly rolled back (or committed, which rolls back).
	_, err = s.SimpleQuery(`ROLLBACK;`)
	require.NoError(t, err)
	assert.Equal(t, Idle, s.Status())

	results, err = s.SimpleQuery(`SELECT * FROM u;`)
	require.NoError(t, err)
	assert.Empty(t, results[0].Rows)
}

// TestEmptyTableDelete exercises the DELETE FROM empty-table boundary
// case: it must return DELETE 0, not an error.
func TestEmptyTableDelete(t *testing.T) {
	s := newTestSession()
	_, err := s.SimpleQuery(`CREATE TABLE t(a smallint);`)
	require.NoError(t, err)

	results, err := s.SimpleQuery(`DELETE FROM t;`)
	require.NoError(t, err)
	assert.Equal(t, "DELETE 0", results[0].PGTag)
}

// TestExtendedQueryPreparedInsert exercises spec scenario 5's Parse/
// Describe/Bind/Execute sequence (sans wire encoding, which pgwire's
// own suite covers).
func TestExtendedQueryPreparedInsert(t *testing.T) {
	s := newTestSession()
	_, err := s.SimpleQuery(`CREATE TABLE u(x smallint);`)
	require.NoError(t, err)

	ps, err := s.Parse("ins", "INSERT INTO u VALUES ($1)", nil)
	require.NoError(t, err)
	require.Len(t, ps.ParamTypes, 1)

	_, err = s.Bind("p", "ins", []parser.Datum{parser.DInt(42)})
	require.NoError(t, err)

	result, suspended, err := s.Execute("p", 0)
	require.NoError(t, err)
	assert.False(t, suspended)
	assert.Equal(t, "INSERT 0 1", result.PGTag)
}

// TestExecuteMaxRowsSuspendsPortal verifies that Execute with a nonzero
// max_rows truncates a SELECT result and leaves the portal usable for a
// follow-up Execute that resumes where the first left off.
func TestExecuteMaxRowsSuspendsPortal(t *testing.T) {
	s := newTestSession()
	_, err := s.SimpleQuery(`CREATE TABLE t(a smallint); INSERT INTO t VALUES (1),(2),(3);`)
	require.NoError(t, err)

	_, err = s.Parse("sel", "SELECT a FROM t", nil)
	require.NoError(t, err)
	_, err = s.Bind("p", "sel", nil)
	require.NoError(t, err)

	first, suspended, err := s.Execute("p", 2)
	require.NoError(t, err)
	assert.True(t, suspended)
	assert.Len(t, first.Rows, 2)

	second, suspended, err := s.Execute("p", 2)
	require.NoError(t, err)
	assert.False(t, suspended)
	assert.Len(t, second.Rows, 1)
}

func TestDeallocateAll(t *testing.T) {
	s := newTestSession()
	_, err := s.Parse("a", "SELECT 1", nil)
	require.NoError(t, err)
	_, err = s.Parse("b", "SELECT 2", nil)
	require.NoError(t, err)

	s.Deallocate("", true)
	_, err = s.Statement("a")
	assert.Error(t, err)
	_, err = s.Statement("b")
	assert.Error(t, err)
}
