package plan

import (
	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/sql/analyzer"
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/tree"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

// Planner turns an Analyzer result into a Plan, running TypeInference,
// TypeCheck and TypeCoercion over every expression tree it carries
// along the way: by the time a Plan reaches the Executor, every node in
// it is fully typed and every implicit conversion is an explicit Cast.
type Planner struct{}

func New() *Planner { return &Planner{} }

func typeCheck(n *tree.Node) (*tree.Node, error) {
	if n == nil {
		return nil, nil
	}
	n, err := tree.Infer(n)
	if err != nil {
		return nil, err
	}
	return tree.CoerceTree(n)
}

func (p *Planner) BuildSelect(sel *analyzer.Select) (Plan, error) {
	var src Plan
	if sel.HasTable {
		src = &SeqScan{Table: sel.Table}
	} else {
		src = &Values{}
	}

	if sel.Where != nil {
		cond, err := typeCheck(sel.Where)
		if err != nil {
			return nil, err
		}
		cond, err = tree.CoerceTo(cond, types.T(types.Bool))
		if err != nil {
			return nil, err
		}
		src = &Filter{Input: src, Cond: cond}
	}

	cols := make([]analyzer.ProjectionItem, len(sel.Projections))
	for i, proj := range sel.Projections {
		n, err := typeCheck(proj.Expr)
		if err != nil {
			return nil, err
		}
		cols[i] = analyzer.ProjectionItem{Expr: n, Name: proj.Name}
	}
	src = &Project{Input: src, Columns: cols}

	if sel.Limit != nil {
		lim, err := typeCheck(sel.Limit)
		if err != nil {
			return nil, err
		}
		// A float LIMIT is rounded to the nearest row count by the
		// executor, not truncated by a forced BigInt cast here; leave
		// it typed as a float so LimitPlan sees the raw value.
		if !lim.Type.IsFloatFamily() {
			lim, err = tree.CoerceTo(lim, types.T(types.BigInt))
			if err != nil {
				return nil, err
			}
		}
		src = &LimitPlan{Input: src, Count: lim}
	}

	return src, nil
}

func (p *Planner) BuildInsert(ins *analyzer.Insert) (Plan, error) {
	cols := ins.Table.Columns()
	rows := make([][]*tree.Node, len(ins.Rows))
	for r, row := range ins.Rows {
		values := make([]*tree.Node, len(row))
		for i, v := range row {
			n, err := typeCheck(v)
			if err != nil {
				return nil, err
			}
			target := cols[ins.Ordinals[i]].Type
			n, err = tree.CoerceTo(n, target)
			if err != nil {
				return nil, err
			}
			values[i] = n
		}
		rows[r] = values
	}
	return &InsertPlan{Table: ins.Table, Ordinals: ins.Ordinals, Rows: rows}, nil
}

func (p *Planner) BuildUpdate(upd *analyzer.Update) (Plan, error) {
	cols := upd.Table.Columns()
	assigns := make([]analyzer.AssignmentTarget, len(upd.Assignments))
	for i, a := range upd.Assignments {
		n, err := typeCheck(a.Value)
		if err != nil {
			return nil, err
		}
		n, err = tree.CoerceTo(n, cols[a.Ordinal].Type)
		if err != nil {
			return nil, err
		}
		assigns[i] = analyzer.AssignmentTarget{Ordinal: a.Ordinal, Value: n}
	}

	var where *tree.Node
	if upd.Where != nil {
		w, err := typeCheck(upd.Where)
		if err != nil {
			return nil, err
		}
		where, err = tree.CoerceTo(w, types.T(types.Bool))
		if err != nil {
			return nil, err
		}
	}

	return &UpdatePlan{Table: upd.Table, Assignments: assigns, Where: where}, nil
}

func (p *Planner) BuildDelete(del *analyzer.Delete) (Plan, error) {
	var where *tree.Node
	if del.Where != nil {
		w, err := typeCheck(del.Where)
		if err != nil {
			return nil, err
		}
		var err2 error
		where, err2 = tree.CoerceTo(w, types.T(types.Bool))
		if err2 != nil {
			return nil, err2
		}
	}
	return &DeletePlan{Table: del.Table, Where: where}, nil
}

func (p *Planner) BuildCreateSchema(stmt *parser.CreateSchema) Plan {
	return &CreateSchemaPlan{Name: stmt.Name, IfNotExists: stmt.IfNotExists}
}

func (p *Planner) BuildDropSchema(stmt *parser.DropSchema) Plan {
	return &DropSchemaPlan{Names: stmt.Names, IfExists: stmt.IfExists, Cascade: stmt.Cascade}
}

func (p *Planner) BuildCreateTable(stmt *parser.CreateTable) (Plan, error) {
	cols := make([]catalog.ColumnDef, len(stmt.Columns))
	for i, c := range stmt.Columns {
		t, ok := types.ByName(c.Type.Name, c.Type.Len)
		if !ok {
			return nil, &analyzer.Error{Code: "42704", Msg: "unrecognized column type: " + c.Type.Name}
		}
		cols[i] = catalog.ColumnDef{Name: c.Name, Type: t, Ordinal: i}
	}
	return &CreateTablePlan{
		Schema:      stmt.Name.Schema,
		Name:        stmt.Name.Table,
		Columns:     cols,
		IfNotExists: stmt.IfNotExists,
	}, nil
}

func (p *Planner) BuildDropTable(stmt *parser.DropTable) Plan {
	names := make([]string, len(stmt.Names))
	schema := ""
	for i, n := range stmt.Names {
		names[i] = n.Table
		schema = n.Schema
	}
	return &DropTablePlan{Schema: schema, Names: names, IfExists: stmt.IfExists}
}
