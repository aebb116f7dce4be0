// Package analyzer turns a parsed statement into an untyped operator
// tree bound against the catalog: identifiers become ColumnRef nodes
// with a resolved ordinal and declared type, and every $n parameter is
// counted so the caller can report ParameterDescription before a value
// is ever bound.
package analyzer

import (
	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/tree"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

type Analyzer struct {
	cat *catalog.Catalog
}

func New(cat *catalog.Catalog) *Analyzer {
	return &Analyzer{cat: cat}
}

// ProjectionItem is one resolved output column of a SELECT.
type ProjectionItem struct {
	Expr *tree.Node
	Name string
}

type Select struct {
	Table       catalog.TableHandle
	HasTable    bool
	Projections []ProjectionItem
	Where       *tree.Node
	Limit       *tree.Node
	ParamCount  int
}

type AssignmentTarget struct {
	Ordinal int
	Value   *tree.Node
}

type Insert struct {
	Table      catalog.TableHandle
	Ordinals   []int
	Rows       [][]*tree.Node
	ParamCount int
}

type Update struct {
	Table       catalog.TableHandle
	Assignments []AssignmentTarget
	Where       *tree.Node
	ParamCount  int
}

type Delete struct {
	Table      catalog.TableHandle
	Where      *tree.Node
	ParamCount int
}

func (a *Analyzer) resolveTable(tx *catalog.TxnContext, t parser.TableName) (catalog.TableHandle, error) {
	return a.cat.ResolveTable(tx, t.Schema, t.Table)
}

func (a *Analyzer) AnalyzeSelect(tx *catalog.TxnContext, stmt *parser.Select, declared map[int]types.Type) (*Select, error) {
	sc := newScope(declared)
	out := &Select{}

	if stmt.From != nil {
		h, err := a.resolveTable(tx, *stmt.From)
		if err != nil {
			return nil, err
		}
		out.Table = h
		out.HasTable = true
		sc = sc.withTable(h)
	}

	if stmt.Star && out.HasTable {
		for _, c := range sc.table.Columns() {
			ref, _ := sc.resolveColumn("", c.Name)
			out.Projections = append(out.Projections, ProjectionItem{Expr: ref, Name: c.Name})
		}
	}
	for _, item := range stmt.Projections {
		n, err := a.analyzeExpr(item.Expr, sc)
		if err != nil {
			return nil, err
		}
		name := item.Alias
		if name == "" {
			name = projectionName(item.Expr)
		}
		out.Projections = append(out.Projections, ProjectionItem{Expr: n, Name: name})
	}

	if stmt.Where != nil {
		w, err := a.analyzeExpr(stmt.Where, sc)
		if err != nil {
			return nil, err
		}
		out.Where = w
	}
	if stmt.Limit != nil {
		l, err := a.analyzeExpr(stmt.Limit, sc)
		if err != nil {
			return nil, err
		}
		out.Limit = l
	}

	out.ParamCount = sc.maxParam
	return out, nil
}

func (a *Analyzer) AnalyzeInsert(tx *catalog.TxnContext, stmt *parser.Insert, declared map[int]types.Type) (*Insert, error) {
	h, err := a.resolveTable(tx, stmt.Table)
	if err != nil {
		return nil, err
	}
	cols := h.Columns()

	ordinals := make([]int, 0, len(cols))
	if len(stmt.Columns) == 0 {
		for i := range cols {
			ordinals = append(ordinals, i)
		}
	} else {
		for _, name := range stmt.Columns {
			c, ok := h.ColumnByName(name)
			if !ok {
				return nil, errUndefinedColumn(name)
			}
			ordinals = append(ordinals, c.Ordinal)
		}
	}

	sc := newScope(declared)
	rows := make([][]*tree.Node, 0, len(stmt.Rows))
	for _, row := range stmt.Rows {
		if len(row) != len(ordinals) {
			return nil, errColumnCount(h.Name(), len(ordinals), len(row))
		}
		values := make([]*tree.Node, len(row))
		for i, e := range row {
			n, err := a.analyzeExpr(e, sc)
			if err != nil {
				return nil, err
			}
			values[i] = n
		}
		rows = append(rows, values)
	}

	return &Insert{Table: h, Ordinals: ordinals, Rows: rows, ParamCount: sc.maxParam}, nil
}

func (a *Analyzer) AnalyzeUpdate(tx *catalog.TxnContext, stmt *parser.Update, declared map[int]types.Type) (*Update, error) {
	h, err := a.resolveTable(tx, stmt.Table)
	if err != nil {
		return nil, err
	}
	sc := newScope(declared).withTable(h)

	assignments := make([]AssignmentTarget, 0, len(stmt.Assignments))
	for _, asg := range stmt.Assignments {
		c, ok := h.ColumnByName(asg.Column)
		if !ok {
			return nil, errUndefinedColumn(asg.Column)
		}
		v, err := a.analyzeExpr(asg.Value, sc)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, AssignmentTarget{Ordinal: c.Ordinal, Value: v})
	}

	var where *tree.Node
	if stmt.Where != nil {
		where, err = a.analyzeExpr(stmt.Where, sc)
		if err != nil {
			return nil, err
		}
	}

	return &Update{Table: h, Assignments: assignments, Where: where, ParamCount: sc.maxParam}, nil
}

func (a *Analyzer) AnalyzeDelete(tx *catalog.TxnContext, stmt *parser.Delete, declared map[int]types.Type) (*Delete, error) {
	h, err := a.resolveTable(tx, stmt.Table)
	if err != nil {
		return nil, err
	}
	sc := newScope(declared).withTable(h)

	var where *tree.Node
	if stmt.Where != nil {
		w, err := a.analyzeExpr(stmt.Where, sc)
		if err != nil {
			return nil, err
		}
		where = w
	}

	return &Delete{Table: h, Where: where, ParamCount: sc.maxParam}, nil
}

func (a *Analyzer) analyzeExpr(e parser.Expr, sc *scope) (*tree.Node, error) {
	switch v := e.(type) {
	case *parser.Literal:
		return tree.NewLiteral(v.Kind, v.Text, v.Bool), nil

	case *parser.Identifier:
		return sc.resolveColumn(v.Table, v.Name)

	case *parser.Parameter:
		n := tree.NewParam(v.Index)
		n.Type = sc.paramType(v.Index)
		return n, nil

	case *parser.BinaryOp:
		left, err := a.analyzeExpr(v.Left, sc)
		if err != nil {
			return nil, err
		}
		right, err := a.analyzeExpr(v.Right, sc)
		if err != nil {
			return nil, err
		}
		return tree.NewBinary(v.Op, left, right), nil

	case *parser.UnaryOp:
		operand, err := a.analyzeExpr(v.Operand, sc)
		if err != nil {
			return nil, err
		}
		return tree.NewUnary(v.Op, operand), nil
	}
	return nil, errUndefinedColumn("<expr>")
}

func projectionName(e parser.Expr) string {
	if id, ok := e.(*parser.Identifier); ok {
		return id.Name
	}
	return "?column?"
}
