// Package plan holds the physical plan nodes the Executor runs. This
// module has no joins, so a plan is a short linear chain: a source
// (SeqScan or nothing, for a FROM-less SELECT) optionally wrapped in
// Filter, Project and Limit, or one of the flat DML/DDL/transaction-
// control nodes.
package plan

import (
	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/sql/analyzer"
	"github.com/alex-dukhno/isomorphicdb/sql/tree"
)

type Plan interface {
	planNode()
}

type SeqScan struct {
	Table catalog.TableHandle
}

func (*SeqScan) planNode() {}

// Values is the source for a FROM-less SELECT such as `SELECT 1`: one
// row with no backing table.
type Values struct{}

func (*Values) planNode() {}

type Filter struct {
	Input Plan
	Cond  *tree.Node
}

func (*Filter) planNode() {}

type Project struct {
	Input   Plan
	Columns []analyzer.ProjectionItem
}

func (*Project) planNode() {}

type LimitPlan struct {
	Input Plan
	Count *tree.Node
}

func (*LimitPlan) planNode() {}

type InsertPlan struct {
	Table    catalog.TableHandle
	Ordinals []int
	Rows     [][]*tree.Node
}

func (*InsertPlan) planNode() {}

type UpdatePlan struct {
	Table       catalog.TableHandle
	Assignments []analyzer.AssignmentTarget
	Where       *tree.Node
}

func (*UpdatePlan) planNode() {}

type DeletePlan struct {
	Table catalog.TableHandle
	Where *tree.Node
}

func (*DeletePlan) planNode() {}

type CreateSchemaPlan struct {
	Name        string
	IfNotExists bool
}

func (*CreateSchemaPlan) planNode() {}

type DropSchemaPlan struct {
	Names    []string
	IfExists bool
	Cascade  bool
}

func (*DropSchemaPlan) planNode() {}

type CreateTablePlan struct {
	Schema      string
	Name        string
	Columns     []catalog.ColumnDef
	IfNotExists bool
}

func (*CreateTablePlan) planNode() {}

type DropTablePlan struct {
	Schema   string
	Names    []string
	IfExists bool
}

func (*DropTablePlan) planNode() {}

type BeginPlan struct{}

func (*BeginPlan) planNode() {}

type CommitPlan struct{}

func (*CommitPlan) planNode() {}

type RollbackPlan struct{}

func (*RollbackPlan) planNode() {}
