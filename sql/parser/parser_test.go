package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, sql string) Statement {
	t.Helper()
	stmt, err := Parse(sql)
	require.NoError(t, err)
	return stmt
}

func TestLiteralKinds(t *testing.T) {
	stmt := parseOne(t, "SELECT 123, 123.4, 'abc', true")
	sel, ok := stmt.(*Select)
	require.True(t, ok)
	require.Len(t, sel.Projections, 4)

	lit := sel.Projections[0].Expr.(*Literal)
	assert.Equal(t, IntegerLiteral, lit.Kind)
	assert.Equal(t, "123", lit.Text)

	lit = sel.Projections[1].Expr.(*Literal)
	assert.Equal(t, FloatLiteral, lit.Kind)

	lit = sel.Projections[2].Expr.(*Literal)
	assert.Equal(t, StringLiteral, lit.Kind)
	assert.Equal(t, "abc", lit.Text)

	lit = sel.Projections[3].Expr.(*Literal)
	assert.Equal(t, BoolLiteral, lit.Kind)
	assert.True(t, lit.Bool)
}

func TestIdentifiersFoldToLowercaseUnlessQuoted(t *testing.T) {
	stmt := parseOne(t, `SELECT COL1, "COL_1" FROM T`)
	sel := stmt.(*Select)
	require.Len(t, sel.Projections, 2)

	assert.Equal(t, "col1", sel.Projections[0].Expr.(*Identifier).Name)
	assert.Equal(t, "COL_1", sel.Projections[1].Expr.(*Identifier).Name)
	assert.Equal(t, "t", sel.From.Table)
}

func TestSignAttachedIntegerLiteral(t *testing.T) {
	stmt := parseOne(t, "INSERT INTO u VALUES (-32768)")
	ins := stmt.(*Insert)
	lit := ins.Rows[0][0].(*Literal)
	assert.Equal(t, IntegerLiteral, lit.Kind)
	assert.Equal(t, "-32768", lit.Text)
}

func TestDetachedUnaryMinusIsUnaryOp(t *testing.T) {
	stmt := parseOne(t, "SELECT - a")
	sel := stmt.(*Select)
	op, ok := sel.Projections[0].Expr.(*UnaryOp)
	require.True(t, ok)
	assert.Equal(t, OpNeg, op.Op)
}

func TestCreateSchemaIfNotExists(t *testing.T) {
	stmt := parseOne(t, "CREATE SCHEMA IF NOT EXISTS s")
	cs := stmt.(*CreateSchema)
	assert.Equal(t, "s", cs.Name)
	assert.True(t, cs.IfNotExists)
}

func TestCreateTableSchemaQualified(t *testing.T) {
	stmt := parseOne(t, "CREATE TABLE s.t (a smallint, b smallint, c smallint)")
	ct := stmt.(*CreateTable)
	assert.Equal(t, "s", ct.Name.Schema)
	assert.Equal(t, "t", ct.Name.Table)
	require.Len(t, ct.Columns, 3)
	assert.Equal(t, "smallint", ct.Columns[0].Type.Name)
}

func TestCreateTableVarcharLength(t *testing.T) {
	stmt := parseOne(t, "CREATE TABLE t (name varchar(32))")
	ct := stmt.(*CreateTable)
	assert.Equal(t, "varchar", ct.Columns[0].Type.Name)
	assert.Equal(t, 32, ct.Columns[0].Type.Len)
}

func TestDropSchemaCascade(t *testing.T) {
	stmt := parseOne(t, "DROP SCHEMA s CASCADE")
	ds := stmt.(*DropSchema)
	assert.Equal(t, []string{"s"}, ds.Names)
	assert.True(t, ds.Cascade)
}

func TestInsertMultiRow(t *testing.T) {
	stmt := parseOne(t, "INSERT INTO s.t VALUES (1,2,3),(4,5,6),(7,8,9)")
	ins := stmt.(*Insert)
	require.Len(t, ins.Rows, 3)
	assert.Nil(t, ins.Columns)
}

func TestInsertWithParameter(t *testing.T) {
	stmt := parseOne(t, "INSERT INTO u VALUES ($1)")
	ins := stmt.(*Insert)
	param := ins.Rows[0][0].(*Parameter)
	assert.Equal(t, 1, param.Index)
}

func TestUpdateAssignmentsAndWhere(t *testing.T) {
	stmt := parseOne(t, "UPDATE s.t SET a=10, b=11, c=12 WHERE a = 1")
	upd := stmt.(*Update)
	require.Len(t, upd.Assignments, 3)
	assert.Equal(t, "a", upd.Assignments[0].Column)
	require.NotNil(t, upd.Where)
}

func TestSelectStarWithoutTable(t *testing.T) {
	stmt := parseOne(t, "SELECT 1")
	sel := stmt.(*Select)
	assert.Nil(t, sel.From)
	require.Len(t, sel.Projections, 1)
}

func TestBinaryOperatorPrecedence(t *testing.T) {
	stmt := parseOne(t, "SELECT 1 + 2 * 3")
	sel := stmt.(*Select)
	top := sel.Projections[0].Expr.(*BinaryOp)
	assert.Equal(t, OpAdd, top.Op)
	right := top.Right.(*BinaryOp)
	assert.Equal(t, OpMul, right.Op)
}

func TestAmbiguousStringLiteralParsesFine(t *testing.T) {
	// parsing never rejects '1' + '1'; TypeCheck is the phase that does.
	stmt := parseOne(t, "SELECT '1' + '1'")
	sel := stmt.(*Select)
	_, ok := sel.Projections[0].Expr.(*BinaryOp)
	assert.True(t, ok)
}

func TestMultiStatementBatch(t *testing.T) {
	stmts, err := ParseStatements("CREATE SCHEMA s; CREATE TABLE s.t (a smallint); SELECT * FROM s.t;")
	require.NoError(t, err)
	require.Len(t, stmts, 3)
}

func TestSyntaxError(t *testing.T) {
	_, err := Parse("SELEC 1")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestBeginCommitRollback(t *testing.T) {
	_, err := Parse("BEGIN")
	require.NoError(t, err)
	_, err = Parse("COMMIT")
	require.NoError(t, err)
	_, err = Parse("ROLLBACK")
	require.NoError(t, err)
}
