package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/sql/analyzer"
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/tree"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

func newTable(t *testing.T, cols ...string) (*catalog.Catalog, *catalog.TxnContext, catalog.TableHandle) {
	t.Helper()
	c := catalog.New()
	require.NoError(t, c.CreateSchema("s", false))
	defs := make([]catalog.ColumnDef, len(cols))
	for i, name := range cols {
		defs[i] = catalog.ColumnDef{Name: name, Type: types.T(types.SmallInt), Ordinal: i}
	}
	require.NoError(t, c.CreateTable("s", "t", defs, false))
	tx := c.BeginTxn()
	h, err := c.ResolveTable(tx, "s", "t")
	require.NoError(t, err)
	return c, tx, h
}

func TestBuildSelectCoercesWhereToBool(t *testing.T) {
	c, tx, _ := newTable(t, "a")
	an := analyzer.New(c)
	stmt, err := parser.Parse("SELECT a FROM s.t WHERE a = 1")
	require.NoError(t, err)

	sel, err := an.AnalyzeSelect(tx, stmt.(*parser.Select), nil)
	require.NoError(t, err)

	p, err := New().BuildSelect(sel)
	require.NoError(t, err)

	filter, ok := p.(*Project).Input.(*Filter)
	require.True(t, ok)
	assert.Equal(t, types.T(types.Bool), filter.Cond.Type)
}

func TestBuildSelectLeavesFloatLimitUncast(t *testing.T) {
	c, tx, _ := newTable(t, "a")
	an := analyzer.New(c)

	stmt, err := parser.Parse("SELECT a FROM s.t LIMIT 2.9")
	require.NoError(t, err)
	sel, err := an.AnalyzeSelect(tx, stmt.(*parser.Select), nil)
	require.NoError(t, err)
	p, err := New().BuildSelect(sel)
	require.NoError(t, err)

	lim := p.(*LimitPlan)
	assert.True(t, lim.Count.Type.IsFloatFamily())

	stmt, err = parser.Parse("SELECT a FROM s.t LIMIT 2")
	require.NoError(t, err)
	sel, err = an.AnalyzeSelect(tx, stmt.(*parser.Select), nil)
	require.NoError(t, err)
	p, err = New().BuildSelect(sel)
	require.NoError(t, err)

	lim = p.(*LimitPlan)
	assert.Equal(t, types.T(types.BigInt), lim.Count.Type)
}

func TestBuildInsertCoercesLiteralsToColumnType(t *testing.T) {
	c, tx, h := newTable(t, "x")
	an := analyzer.New(c)
	stmt, err := parser.Parse("INSERT INTO s.t VALUES ('1' + 2 * 3)")
	require.NoError(t, err)

	ins, err := an.AnalyzeInsert(tx, stmt.(*parser.Insert), nil)
	require.NoError(t, err)
	require.Equal(t, h.Name(), ins.Table.Name())

	p, err := New().BuildInsert(ins)
	require.NoError(t, err)

	insPlan := p.(*InsertPlan)
	require.Len(t, insPlan.Rows, 1)
	value := insPlan.Rows[0][0]
	assert.Equal(t, types.T(types.SmallInt), value.Type)
	assert.Equal(t, tree.Cast, value.Kind)
}

func TestBuildInsertRejectsAmbiguousLiteralAddition(t *testing.T) {
	c, tx, _ := newTable(t, "x")
	an := analyzer.New(c)
	stmt, err := parser.Parse("INSERT INTO s.t VALUES ('1' + '1')")
	require.NoError(t, err)

	ins, err := an.AnalyzeInsert(tx, stmt.(*parser.Insert), nil)
	require.NoError(t, err)

	_, err = New().BuildInsert(ins)
	require.Error(t, err)
}

func TestTypeCoercionIsIdempotent(t *testing.T) {
	n := tree.NewLiteral(parser.IntegerLiteral, "42", false)
	inferred, err := tree.Infer(n)
	require.NoError(t, err)

	once, err := tree.CoerceTo(inferred, types.T(types.BigInt))
	require.NoError(t, err)
	twice, err := tree.CoerceTo(once, types.T(types.BigInt))
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestBuildUpdateResolvesAssignmentOrdinals(t *testing.T) {
	c, tx, h := newTable(t, "a", "b")
	an := analyzer.New(c)
	stmt, err := parser.Parse("UPDATE s.t SET b = 9 WHERE a = 1")
	require.NoError(t, err)

	upd, err := an.AnalyzeUpdate(tx, stmt.(*parser.Update), nil)
	require.NoError(t, err)
	require.Equal(t, h.Name(), upd.Table.Name())

	p, err := New().BuildUpdate(upd)
	require.NoError(t, err)
	updPlan := p.(*UpdatePlan)
	require.Len(t, updPlan.Assignments, 1)
	assert.Equal(t, 1, updPlan.Assignments[0].Ordinal)
}

func TestBuildCreateTableRejectsUnknownType(t *testing.T) {
	stmt, err := parser.Parse("CREATE TABLE t (a nosuchtype)")
	require.NoError(t, err)
	_, err = New().BuildCreateTable(stmt.(*parser.CreateTable))
	require.Error(t, err)
}

func TestParamTypesCollectsAcrossPlan(t *testing.T) {
	c, tx, _ := newTable(t, "a")
	an := analyzer.New(c)
	stmt, err := parser.Parse("SELECT a FROM s.t WHERE a = $1")
	require.NoError(t, err)

	sel, err := an.AnalyzeSelect(tx, stmt.(*parser.Select), map[int]types.Type{1: types.T(types.SmallInt)})
	require.NoError(t, err)

	p, err := New().BuildSelect(sel)
	require.NoError(t, err)

	pts := ParamTypes(p, 1)
	require.Len(t, pts, 1)
	assert.Equal(t, types.T(types.SmallInt), pts[0])
}
