// Package session is the per-connection protocol state machine: it
// binds a catalog transaction to the Analyze/Plan/Execute pipeline and
// carries the prepared-statement and portal maps the Extended Query
// Protocol needs across Parse/Bind/Describe/Execute/Close/Sync.
package session

import (
	"github.com/alex-dukhno/isomorphicdb/catalog"
	"github.com/alex-dukhno/isomorphicdb/sql/analyzer"
	"github.com/alex-dukhno/isomorphicdb/sql/exec"
	"github.com/alex-dukhno/isomorphicdb/sql/parser"
	"github.com/alex-dukhno/isomorphicdb/sql/plan"
	"github.com/alex-dukhno/isomorphicdb/sql/types"
)

// TxnStatus mirrors the single-byte status ReadyForQuery reports.
type TxnStatus byte

const (
	Idle          TxnStatus = 'I'
	InTransaction TxnStatus = 'T'
	Failed        TxnStatus = 'E'
)

// ConnectionArgs carries the startup parameters a client sends before
// the first query.
type ConnectionArgs struct {
	Database string
	User     string
}

// Session holds everything that outlives a single statement on one
// connection: transaction state, and the prepared-statement/portal
// maps the Extended Query Protocol addresses by name.
type Session struct {
	Database string
	User     string

	cat      *catalog.Catalog
	analyzer *analyzer.Analyzer
	planner  *plan.Planner
	executor *exec.Executor

	status TxnStatus
	tx     *catalog.TxnContext

	statements map[string]*PreparedStatement
	portals    map[string]*Portal
}

func NewSession(args ConnectionArgs, cat *catalog.Catalog) *Session {
	return &Session{
		Database:   args.Database,
		User:       args.User,
		cat:        cat,
		analyzer:   analyzer.New(cat),
		planner:    plan.New(),
		executor:   exec.New(cat),
		status:     Idle,
		statements: make(map[string]*PreparedStatement),
		portals:    make(map[string]*Portal),
	}
}

func (s *Session) Status() TxnStatus { return s.status }

// workingTxn returns the transaction the next statement should run
// under, and whether the caller is responsible for closing it:
// explicit transactions (opened by BEGIN) are closed by COMMIT/
// ROLLBACK; an autocommit statement opens and closes its own.
func (s *Session) workingTxn() (*catalog.TxnContext, bool) {
	if s.tx != nil {
		return s.tx, false
	}
	return s.cat.BeginTxn(), true
}

// plan runs Analyze and Plan for stmt against declared parameter types.
// DDL and transaction-control statements are planned directly; everything
// else goes through the analyzer first.
func (s *Session) plan(tx *catalog.TxnContext, stmt parser.Statement, declared map[int]types.Type) (plan.Plan, int, []ResultColumn, error) {
	switch v := stmt.(type) {
	case *parser.Select:
		a, err := s.analyzer.AnalyzeSelect(tx, v, declared)
		if err != nil {
			return nil, 0, nil, err
		}
		p, err := s.planner.BuildSelect(a)
		if err != nil {
			return nil, 0, nil, err
		}
		return p, a.ParamCount, resultColumns(p), nil

	case *parser.Insert:
		a, err := s.analyzer.AnalyzeInsert(tx, v, declared)
		if err != nil {
			return nil, 0, nil, err
		}
		p, err := s.planner.BuildInsert(a)
		if err != nil {
			return nil, 0, nil, err
		}
		return p, a.ParamCount, nil, nil

	case *parser.Update:
		a, err := s.analyzer.AnalyzeUpdate(tx, v, declared)
		if err != nil {
			return nil, 0, nil, err
		}
		p, err := s.planner.BuildUpdate(a)
		if err != nil {
			return nil, 0, nil, err
		}
		return p, a.ParamCount, nil, nil

	case *parser.Delete:
		a, err := s.analyzer.AnalyzeDelete(tx, v, declared)
		if err != nil {
			return nil, 0, nil, err
		}
		p, err := s.planner.BuildDelete(a)
		if err != nil {
			return nil, 0, nil, err
		}
		return p, a.ParamCount, nil, nil

	case *parser.CreateSchema:
		return s.planner.BuildCreateSchema(v), 0, nil, nil

	case *parser.DropSchema:
		return s.planner.BuildDropSchema(v), 0, nil, nil

	case *parser.CreateTable:
		p, err := s.planner.BuildCreateTable(v)
		return p, 0, nil, err

	case *parser.DropTable:
		return s.planner.BuildDropTable(v), 0, nil, nil

	case *parser.BeginTxn:
		return &plan.BeginPlan{}, 0, nil, nil
	case *parser.CommitTxn:
		return &plan.CommitPlan{}, 0, nil, nil
	case *parser.RollbackTxn:
		return &plan.RollbackPlan{}, 0, nil, nil
	}

	return nil, 0, nil, &Error{Code: "0A000", Msg: "statement not supported in this context"}
}

func resultColumns(p plan.Plan) []ResultColumn {
	items := plan.ResultColumns(p)
	if items == nil {
		return nil
	}
	cols := make([]ResultColumn, len(items))
	for i, it := range items {
		cols[i] = ResultColumn{Name: it.Name, Typ: it.Expr.Type}
	}
	return cols
}

// applyTxnControl updates session transaction state for BEGIN/COMMIT/
// ROLLBACK; other statements are run against the transaction workingTxn
// returns.
func (s *Session) applyTxnControl(p plan.Plan) {
	switch p.(type) {
	case *plan.BeginPlan:
		if s.tx == nil {
			s.tx = s.cat.BeginTxn()
		}
		s.status = InTransaction
	case *plan.CommitPlan:
		if s.tx != nil {
			s.tx.Commit()
			s.tx = nil
		}
		s.status = Idle
	case *plan.RollbackPlan:
		if s.tx != nil {
			s.tx.Rollback()
			s.tx = nil
		}
		s.status = Idle
	}
}

// ExecuteStatement runs one already-planned statement and updates
// transaction state. It is the shared tail of SimpleQuery and the
// Extended Query Protocol's Execute.
func (s *Session) ExecuteStatement(p plan.Plan, params []parser.Datum) (*exec.Result, error) {
	if s.status == Failed {
		if _, ok := p.(*plan.RollbackPlan); !ok {
			if _, ok := p.(*plan.CommitPlan); !ok {
				return nil, errInFailedTransaction
			}
			// COMMIT on a failed transaction rolls back, per Postgres.
			if s.tx != nil {
				s.tx.Rollback()
				s.tx = nil
			}
			s.status = Idle
			return &exec.Result{Type: exec.Ack, PGTag: "ROLLBACK"}, nil
		}
	}

	if _, isBegin := p.(*plan.BeginPlan); isBegin {
		s.applyTxnControl(p)
		return &exec.Result{Type: exec.Ack, PGTag: "BEGIN"}, nil
	}
	if _, isCommit := p.(*plan.CommitPlan); isCommit {
		s.applyTxnControl(p)
		return &exec.Result{Type: exec.Ack, PGTag: "COMMIT"}, nil
	}
	if _, isRollback := p.(*plan.RollbackPlan); isRollback {
		s.applyTxnControl(p)
		return &exec.Result{Type: exec.Ack, PGTag: "ROLLBACK"}, nil
	}

	tx, autocommit := s.workingTxn()
	result, err := s.executor.Run(tx, p, params)
	if err != nil {
		if s.tx != nil {
			s.status = Failed
		}
		return nil, err
	}
	if autocommit {
		tx.Commit()
	}
	return result, nil
}

// SimpleQuery parses sql as a batch of statements and runs each in
// order, stopping at the first error (the Simple Query flow has no
// Describe/Bind step: every statement plans against an empty parameter
// set and runs immediately).
func (s *Session) SimpleQuery(sql string) ([]*exec.Result, error) {
	stmts, err := parser.ParseStatements(sql)
	if err != nil {
		return nil, err
	}

	var results []*exec.Result
	for _, stmt := range stmts {
		tx, _ := s.workingTxn()
		p, _, _, err := s.plan(tx, stmt, nil)
		if err != nil {
			if s.tx != nil {
				s.status = Failed
			}
			return results, err
		}
		r, err := s.ExecuteStatement(p, nil)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// Parse implements the Extended Query Protocol's Parse: it plans stmt
// once, against the caller's declared parameter types, and stores the
// result under name so later Describe/Bind calls never re-plan.
func (s *Session) Parse(name, sql string, declared map[int]types.Type) (*PreparedStatement, error) {
	if _, exists := s.statements[name]; exists && name != "" {
		return nil, errDuplicateStatement(name)
	}

	stmts, err := parser.ParseStatements(sql)
	if err != nil {
		return nil, err
	}
	var stmt parser.Statement
	if len(stmts) > 0 {
		stmt = stmts[0]
	}

	tx, autocommit := s.workingTxn()
	p, paramCount, cols, err := s.plan(tx, stmt, declared)
	if autocommit {
		tx.Rollback()
	}
	if err != nil {
		return nil, err
	}

	ps := &PreparedStatement{
		Name:       name,
		SQL:        sql,
		Stmt:       stmt,
		Plan:       p,
		ParamTypes: plan.ParamTypes(p, max(paramCount, len(declared))),
		Columns:    cols,
	}
	s.statements[name] = ps
	return ps, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func (s *Session) Statement(name string) (*PreparedStatement, error) {
	ps, ok := s.statements[name]
	if !ok {
		return nil, errUnknownStatement(name)
	}
	return ps, nil
}

// Bind implements Extended Query Protocol Bind: it attaches parameter
// values to a prepared statement under a portal name. No re-planning
// happens here.
func (s *Session) Bind(portalName, stmtName string, params []parser.Datum) (*Portal, error) {
	ps, err := s.Statement(stmtName)
	if err != nil {
		return nil, err
	}
	portal := &Portal{Name: portalName, Statement: ps, Params: params}
	s.portals[portalName] = portal
	return portal, nil
}

func (s *Session) PortalByName(name string) (*Portal, error) {
	p, ok := s.portals[name]
	if !ok {
		return nil, errUnknownPortal(name)
	}
	return p, nil
}

// Execute implements Extended Query Protocol Execute: run the portal's
// plan with its bound parameters, returning at most maxRows rows
// (0 = unlimited). The second return value reports whether the result
// was truncated by maxRows (PortalSuspended); the portal remains usable
// and a later Execute resumes from where this call left off.
func (s *Session) Execute(portalName string, maxRows int) (*exec.Result, bool, error) {
	portal, err := s.PortalByName(portalName)
	if err != nil {
		return nil, false, err
	}

	if portal.materialized == nil {
		r, err := s.ExecuteStatement(portal.Statement.Plan, portal.Params)
		if err != nil {
			return nil, false, err
		}
		portal.materialized = r
		portal.cursor = 0
	}

	full := portal.materialized
	if full.Type != exec.Rows {
		return full, false, nil
	}

	rows := full.Rows
	start := portal.cursor
	if start > len(rows) {
		start = len(rows)
	}
	end := len(rows)
	suspended := false
	if maxRows > 0 && start+maxRows < end {
		end = start + maxRows
		suspended = true
	}
	portal.cursor = end

	return &exec.Result{
		Type:    exec.Rows,
		PGTag:   full.PGTag,
		Columns: full.Columns,
		Rows:    rows[start:end],
	}, suspended, nil
}

func (s *Session) CloseStatement(name string) {
	delete(s.statements, name)
}

func (s *Session) ClosePortal(name string) {
	delete(s.portals, name)
}

// Deallocate implements DEALLOCATE [ALL].
func (s *Session) Deallocate(name string, all bool) {
	if all {
		s.statements = make(map[string]*PreparedStatement)
		return
	}
	delete(s.statements, name)
}
