// Package exec is the Executor: it walks a plan.Plan against the
// catalog, evaluating every expression tree hanging off it, and returns
// a Result the protocol layer turns into RowDescription/DataRow/
// CommandComplete messages.
package exec

import (
	"fmt"
	"math"
	"strconv"

	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/sql/analyzer"
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/plan"
	"github.com/alex-dukhno/isomorphicdb/sql/tree"
)

type Executor struct {
	cat *catalog.Catalog
}

func New(cat *catalog.Catalog) *Executor {
	return &Executor{cat: cat}
}

func (e *Executor) Run(tx *catalog.TxnContext, p plan.Plan, params []parser.Datum) (*Result, error) {
	switch node := p.(type) {
	case *plan.SeqScan, *plan.Values, *plan.Filter, *plan.Project, *plan.LimitPlan:
		return e.runSelect(tx, p, params)

	case *plan.InsertPlan:
		return e.runInsert(tx, node, params)

	case *plan.UpdatePlan:
		return e.runUpdate(tx, node, params)

	case *plan.DeletePlan:
		return e.runDelete(tx, node, params)

	case *plan.CreateSchemaPlan:
		if err := e.cat.CreateSchema(node.Name, node.IfNotExists); err != nil {
			return nil, err
		}
		return &Result{Type: Ack, PGTag: "CREATE SCHEMA"}, nil

	case *plan.DropSchemaPlan:
		for _, name := range node.Names {
			if err := e.cat.DropSchema(name, node.IfExists, node.Cascade); err != nil {
				return nil, err
			}
		}
		return &Result{Type: Ack, PGTag: "DROP SCHEMA"}, nil

	case *plan.CreateTablePlan:
		if err := e.cat.CreateTable(node.Schema, node.Name, node.Columns, node.IfNotExists); err != nil {
			return nil, err
		}
		return &Result{Type: Ack, PGTag: "CREATE TABLE"}, nil

	case *plan.DropTablePlan:
		if err := e.cat.DropTable(node.Schema, node.Names, node.IfExists); err != nil {
			return nil, err
		}
		return &Result{Type: Ack, PGTag: "DROP TABLE"}, nil

	case *plan.BeginPlan:
		return &Result{Type: Ack, PGTag: "BEGIN"}, nil
	case *plan.CommitPlan:
		return &Result{Type: Ack, PGTag: "COMMIT"}, nil
	case *plan.RollbackPlan:
		return &Result{Type: Ack, PGTag: "ROLLBACK"}, nil
	}

	return nil, fmt.Errorf("exec: unsupported plan node %T", p)
}

func (e *Executor) runSelect(tx *catalog.TxnContext, p plan.Plan, params []parser.Datum) (*Result, error) {
	rows, cols, err := e.evalRows(tx, p, params)
	if err != nil {
		return nil, err
	}

	resultCols := make([]ResultColumn, len(cols))
	for i, c := range cols {
		resultCols[i] = ResultColumn{Name: c.Name, Typ: c.Expr.Type}
	}

	resultRows := make([]ResultRow, len(rows))
	for i, r := range rows {
		resultRows[i] = ResultRow{Values: []parser.Datum(r)}
	}

	return &Result{
		Type:    Rows,
		PGTag:   fmt.Sprintf("SELECT %d", len(rows)),
		Columns: resultCols,
		Rows:    resultRows,
	}, nil
}

// evalRows walks a query plan bottom-up. Below Project, rows are in the
// underlying table's column order; Project re-materializes them into the
// projection list's order, and everything above (currently only Limit)
// operates on that materialized shape.
func (e *Executor) evalRows(tx *catalog.TxnContext, p plan.Plan, params []parser.Datum) ([]catalog.Row, []analyzer.ProjectionItem, error) {
	switch node := p.(type) {
	case *plan.SeqScan:
		return e.cat.Scan(tx, node.Table), nil, nil

	case *plan.Values:
		return []catalog.Row{{}}, nil, nil

	case *plan.Filter:
		rows, cols, err := e.evalRows(tx, node.Input, params)
		if err != nil {
			return nil, nil, err
		}
		kept := rows[:0:0]
		for _, r := range rows {
			ok, err := evalPredicate(node.Cond, r, params)
			if err != nil {
				return nil, nil, err
			}
			if ok {
				kept = append(kept, r)
			}
		}
		return kept, cols, nil

	case *plan.Project:
		rows, _, err := e.evalRows(tx, node.Input, params)
		if err != nil {
			return nil, nil, err
		}
		out := make([]catalog.Row, len(rows))
		for i, r := range rows {
			vals := make(catalog.Row, len(node.Columns))
			for j, c := range node.Columns {
				v, err := Eval(c.Expr, r, params)
				if err != nil {
					return nil, nil, err
				}
				vals[j] = v
			}
			out[i] = vals
		}
		return out, node.Columns, nil

	case *plan.LimitPlan:
		rows, cols, err := e.evalRows(tx, node.Input, params)
		if err != nil {
			return nil, nil, err
		}
		v, err := Eval(node.Count, nil, params)
		if err != nil {
			return nil, nil, err
		}
		n, unlimited, err := limitCount(v)
		if err != nil {
			return nil, nil, err
		}
		if !unlimited && n < len(rows) {
			rows = rows[:n]
		}
		return rows, cols, nil
	}

	return nil, nil, fmt.Errorf("exec: unsupported select plan node %T", p)
}

// limitCount resolves a LIMIT clause's evaluated value to a row count.
// A float or numeric operand is rounded to the nearest integer rather
// than truncated, a NULL operand means no limit at all, and a negative
// count is a DataError rather than a panic on the later slice.
func limitCount(v parser.Datum) (n int, unlimited bool, err error) {
	if v == parser.DNull {
		return 0, true, nil
	}

	var f float64
	switch d := v.(type) {
	case parser.DInt:
		f = float64(d)
	case parser.DFloat:
		f = float64(d)
	case *parser.DDecimal:
		f, _ = strconv.ParseFloat(d.String(), 64)
	default:
		return 0, false, errInvalidText(fmt.Sprint(v), "bigint")
	}

	rounded := math.Round(f)
	if rounded < 0 {
		return 0, false, errOutOfRange("bigint")
	}
	if rounded > math.MaxInt32 {
		return int(math.MaxInt32), false, nil
	}
	return int(rounded), false, nil
}

func evalPredicate(cond *tree.Node, r catalog.Row, params []parser.Datum) (bool, error) {
	if cond == nil {
		return true, nil
	}
	v, err := Eval(cond, r, params)
	if err != nil {
		return false, err
	}
	b, ok := v.(parser.DBool)
	return ok && bool(b), nil
}

func (e *Executor) runInsert(tx *catalog.TxnContext, node *plan.InsertPlan, params []parser.Datum) (*Result, error) {
	width := len(node.Table.Columns())
	rows := make([]catalog.Row, len(node.Rows))
	for i, values := range node.Rows {
		r := make(catalog.Row, width)
		for j := range r {
			r[j] = parser.DNull
		}
		for j, ord := range node.Ordinals {
			v, err := Eval(values[j], nil, params)
			if err != nil {
				return nil, err
			}
			r[ord] = v
		}
		rows[i] = r
	}
	n := e.cat.Insert(tx, node.Table, rows)
	return &Result{Type: RowsAffected, PGTag: fmt.Sprintf("INSERT 0 %d", n), RowsAffected: n}, nil
}

func (e *Executor) runUpdate(tx *catalog.TxnContext, node *plan.UpdatePlan, params []parser.Datum) (*Result, error) {
	predicate := func(r catalog.Row) (bool, error) {
		return evalPredicate(node.Where, r, params)
	}
	assign := func(r catalog.Row) (catalog.Row, error) {
		out := r.Clone()
		for _, a := range node.Assignments {
			v, err := Eval(a.Value, r, params)
			if err != nil {
				return nil, err
			}
			out[a.Ordinal] = v
		}
		return out, nil
	}
	n, err := e.cat.Update(tx, node.Table, predicate, assign)
	if err != nil {
		return nil, err
	}
	return &Result{Type: RowsAffected, PGTag: fmt.Sprintf("UPDATE %d", n), RowsAffected: n}, nil
}

func (e *Executor) runDelete(tx *catalog.TxnContext, node *plan.DeletePlan, params []parser.Datum) (*Result, error) {
	predicate := func(r catalog.Row) (bool, error) {
		return evalPredicate(node.Where, r, params)
	}
	n, err := e.cat.Delete(tx, node.Table, predicate)
	if err != nil {
		return nil, err
	}
	return &Result{Type: RowsAffected, PGTag: fmt.Sprintf("DELETE %d", n), RowsAffected: n}, nil
}
