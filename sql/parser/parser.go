package parser

import (
	"fmt"
)

// ParseError is returned for any syntax error; it reports SQLSTATE 42601.
type ParseError struct {
	Msg string
	Pos int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("syntax error near %s", e.Msg)
}

func (e *ParseError) SQLState() string { return "42601" }

// Parser turns a token stream into an AST. It is not safe for concurrent
// use; callers create one Parser per statement batch.
type Parser struct {
	lex  *Lexer
	cur  Token
	prev Token
}

func NewParser(sql string) *Parser {
	p := &Parser{lex: NewLexer(sql)}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.prev = p.cur
	p.cur = p.lex.Next()
}

func (p *Parser) errf(format string, args ...interface{}) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...), Pos: p.cur.Pos}
}

func (p *Parser) expect(k TokenKind, what string) (Token, error) {
	if p.cur.Kind != k {
		return Token{}, p.errf("%q, expected %s", tokenText(p.cur), what)
	}
	t := p.cur
	p.advance()
	return t, nil
}

func tokenText(t Token) string {
	if t.Kind == EOF {
		return "end of input"
	}
	if t.Lit != "" {
		return t.Lit
	}
	return fmt.Sprintf("token %d", t.Kind)
}

// ParseStatements splits sql on top-level semicolons and parses each
// non-empty statement, mirroring Simple Query's batch semantics.
func ParseStatements(sql string) ([]Statement, error) {
	var stmts []Statement
	p := NewParser(sql)
	for {
		for p.cur.Kind == SEMI {
			p.advance()
		}
		if p.cur.Kind == EOF {
			break
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.cur.Kind != SEMI && p.cur.Kind != EOF {
			return nil, p.errf("%q, expected ';' or end of statement", tokenText(p.cur))
		}
	}
	return stmts, nil
}

// Parse parses exactly one statement; a second statement after it is a
// ParseError.
func Parse(sql string) (Statement, error) {
	p := NewParser(sql)
	if p.cur.Kind == SEMI {
		p.advance()
	}
	if p.cur.Kind == EOF {
		return nil, p.errf("empty statement")
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	for p.cur.Kind == SEMI {
		p.advance()
	}
	if p.cur.Kind != EOF {
		return nil, p.errf("%q, expected end of statement", tokenText(p.cur))
	}
	return stmt, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	if p.cur.Kind == ERROR {
		return nil, p.errf("%s", p.cur.Lit)
	}
	switch p.cur.Kind {
	case CREATE:
		return p.parseCreate()
	case DROP:
		return p.parseDrop()
	case INSERT:
		return p.parseInsert()
	case UPDATE:
		return p.parseUpdate()
	case DELETE:
		return p.parseDelete()
	case SELECT:
		return p.parseSelect()
	case PREPARE:
		return p.parsePrepare()
	case EXECUTE:
		return p.parseExecute()
	case DEALLOCATE:
		return p.parseDeallocate()
	case BEGINTXN:
		p.advance()
		return &BeginTxn{}, nil
	case COMMIT:
		p.advance()
		return &CommitTxn{}, nil
	case ROLLBACK:
		p.advance()
		return &RollbackTxn{}, nil
	default:
		return nil, p.errf("%q, expected a statement", tokenText(p.cur))
	}
}

func (p *Parser) parseTableName() (TableName, error) {
	first, err := p.parseIdentText()
	if err != nil {
		return TableName{}, err
	}
	if p.cur.Kind == DOT {
		p.advance()
		second, err := p.parseIdentText()
		if err != nil {
			return TableName{}, err
		}
		return TableName{Schema: first, Table: second}, nil
	}
	return TableName{Table: first}, nil
}

func (p *Parser) parseIdentText() (string, error) {
	switch p.cur.Kind {
	case IDENT, QIDENT:
		s := p.cur.Lit
		p.advance()
		return s, nil
	default:
		return "", p.errf("%q, expected identifier", tokenText(p.cur))
	}
}

// --- DDL ---

func (p *Parser) parseCreate() (Statement, error) {
	p.advance() // CREATE
	switch p.cur.Kind {
	case SCHEMA:
		p.advance()
		ifNotExists, err := p.parseIfNotExists()
		if err != nil {
			return nil, err
		}
		name, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		return &CreateSchema{Name: name, IfNotExists: ifNotExists}, nil
	case TABLE:
		p.advance()
		ifNotExists, err := p.parseIfNotExists()
		if err != nil {
			return nil, err
		}
		name, err := p.parseTableName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(LPAREN, "'('"); err != nil {
			return nil, err
		}
		var cols []ColumnDef
		for {
			colName, err := p.parseIdentText()
			if err != nil {
				return nil, err
			}
			typ, err := p.parseColumnType()
			if err != nil {
				return nil, err
			}
			cols = append(cols, ColumnDef{Name: colName, Type: typ})
			if p.cur.Kind == COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(RPAREN, "')'"); err != nil {
			return nil, err
		}
		return &CreateTable{Name: name, Columns: cols, IfNotExists: ifNotExists}, nil
	default:
		return nil, p.errf("%q, expected SCHEMA or TABLE", tokenText(p.cur))
	}
}

func (p *Parser) parseIfNotExists() (bool, error) {
	if p.cur.Kind != IF {
		return false, nil
	}
	p.advance()
	if _, err := p.expect(NOT, "NOT"); err != nil {
		return false, err
	}
	if _, err := p.expect(EXISTS, "EXISTS"); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Parser) parseColumnType() (ColumnTypeName, error) {
	switch p.cur.Kind {
	case SMALLINT, BIGINT, REAL, NUMERICKW, BOOLKW, BOOLEANKW, TEXTKW:
		name := p.cur.Lit
		p.advance()
		return ColumnTypeName{Name: name}, nil
	case INTEGERKW:
		p.advance()
		return ColumnTypeName{Name: "integer"}, nil
	case DOUBLE:
		p.advance()
		if _, err := p.expect(PRECISION, "PRECISION"); err != nil {
			return ColumnTypeName{}, err
		}
		return ColumnTypeName{Name: "double precision"}, nil
	case CHAR, VARCHAR:
		name := p.cur.Lit
		p.advance()
		n := 0
		if p.cur.Kind == LPAREN {
			p.advance()
			lenTok, err := p.expect(INT, "a length")
			if err != nil {
				return ColumnTypeName{}, err
			}
			n = atoiMust(lenTok.Lit)
			if _, err := p.expect(RPAREN, "')'"); err != nil {
				return ColumnTypeName{}, err
			}
		}
		return ColumnTypeName{Name: name, Len: n}, nil
	case IDENT:
		// Any other type name is accepted here and checked by the planner.
		name := p.cur.Lit
		p.advance()
		return ColumnTypeName{Name: name}, nil
	default:
		return ColumnTypeName{}, p.errf("%q, expected a column type", tokenText(p.cur))
	}
}

func atoiMust(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

func (p *Parser) parseDrop() (Statement, error) {
	p.advance() // DROP
	switch p.cur.Kind {
	case SCHEMA:
		p.advance()
		ifExists := p.parseIfExists()
		names, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		cascade := false
		if p.cur.Kind == CASCADE {
			cascade = true
			p.advance()
		}
		return &DropSchema{Names: names, IfExists: ifExists, Cascade: cascade}, nil
	case TABLE:
		p.advance()
		ifExists := p.parseIfExists()
		var names []TableName
		for {
			n, err := p.parseTableName()
			if err != nil {
				return nil, err
			}
			names = append(names, n)
			if p.cur.Kind == COMMA {
				p.advance()
				continue
			}
			break
		}
		return &DropTable{Names: names, IfExists: ifExists}, nil
	default:
		return nil, p.errf("%q, expected SCHEMA or TABLE", tokenText(p.cur))
	}
}

func (p *Parser) parseIfExists() bool {
	if p.cur.Kind == IF {
		p.advance()
		if p.cur.Kind == EXISTS {
			p.advance()
		}
		return true
	}
	return false
}

func (p *Parser) parseIdentList() ([]string, error) {
	var names []string
	for {
		n, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		names = append(names, n)
		if p.cur.Kind == COMMA {
			p.advance()
			continue
		}
		break
	}
	return names, nil
}

// --- DML ---

func (p *Parser) parseInsert() (Statement, error) {
	p.advance() // INSERT
	if _, err := p.expect(INTO, "INTO"); err != nil {
		return nil, err
	}
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}

	var columns []string
	if p.cur.Kind == LPAREN {
		p.advance()
		columns, err = p.parseIdentList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "')'"); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(VALUES, "VALUES"); err != nil {
		return nil, err
	}

	var rows [][]Expr
	for {
		if _, err := p.expect(LPAREN, "'('"); err != nil {
			return nil, err
		}
		var row []Expr
		for {
			e, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			row = append(row, e)
			if p.cur.Kind == COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(RPAREN, "')'"); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if p.cur.Kind == COMMA {
			p.advance()
			continue
		}
		break
	}

	return &Insert{Table: table, Columns: columns, Rows: rows}, nil
}

func (p *Parser) parseUpdate() (Statement, error) {
	p.advance() // UPDATE
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SET, "SET"); err != nil {
		return nil, err
	}
	var assigns []Assignment
	for {
		col, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(EQ, "'='"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, Assignment{Column: col, Value: val})
		if p.cur.Kind == COMMA {
			p.advance()
			continue
		}
		break
	}
	var where Expr
	if p.cur.Kind == WHERE {
		p.advance()
		where, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	return &Update{Table: table, Assignments: assigns, Where: where}, nil
}

func (p *Parser) parseDelete() (Statement, error) {
	p.advance() // DELETE
	if _, err := p.expect(FROM, "FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	var where Expr
	if p.cur.Kind == WHERE {
		p.advance()
		where, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}
	return &Delete{Table: table, Where: where}, nil
}

func (p *Parser) parseSelect() (Statement, error) {
	p.advance() // SELECT
	sel := &Select{}
	if p.cur.Kind == STAR {
		sel.Star = true
		p.advance()
	} else {
		for {
			e, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			item := SelectItem{Expr: e}
			if p.cur.Kind == AS {
				p.advance()
				alias, err := p.parseIdentText()
				if err != nil {
					return nil, err
				}
				item.Alias = alias
			} else if p.cur.Kind == IDENT {
				item.Alias = p.cur.Lit
				p.advance()
			}
			sel.Projections = append(sel.Projections, item)
			if p.cur.Kind == COMMA {
				p.advance()
				continue
			}
			break
		}
	}

	if p.cur.Kind == FROM {
		p.advance()
		tn, err := p.parseTableName()
		if err != nil {
			return nil, err
		}
		sel.From = &tn
	}

	if p.cur.Kind == WHERE {
		p.advance()
		w, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		sel.Where = w
	}

	if p.cur.Kind == LIMIT {
		p.advance()
		l, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		sel.Limit = l
	}

	return sel, nil
}

func (p *Parser) parsePrepare() (Statement, error) {
	p.advance() // PREPARE
	name, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	var types []ColumnTypeName
	if p.cur.Kind == LPAREN {
		p.advance()
		for {
			t, err := p.parseColumnType()
			if err != nil {
				return nil, err
			}
			types = append(types, t)
			if p.cur.Kind == COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(RPAREN, "')'"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(AS, "AS"); err != nil {
		return nil, err
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return &Prepare{Name: name, ParamTypes: types, Stmt: stmt}, nil
}

func (p *Parser) parseExecute() (Statement, error) {
	p.advance() // EXECUTE
	name, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	var args []Expr
	if p.cur.Kind == LPAREN {
		p.advance()
		for {
			e, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			args = append(args, e)
			if p.cur.Kind == COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(RPAREN, "')'"); err != nil {
			return nil, err
		}
	}
	return &ExecuteStmt{Name: name, Args: args}, nil
}

func (p *Parser) parseDeallocate() (Statement, error) {
	p.advance() // DEALLOCATE
	if p.cur.Kind == IDENT && p.cur.Lit == "all" {
		p.advance()
		return &Deallocate{All: true}, nil
	}
	name, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	return &Deallocate{Name: name}, nil
}

// --- Expressions: precedence-climbing over binary operators, with a
// prefix parser for unary operators, literals, identifiers, params and
// parenthesized sub-expressions. ---

func binaryPrecedence(k TokenKind) int {
	switch k {
	case OR:
		return 1
	case AND:
		return 2
	case LT, LE, EQ, NE, GE, GT, LIKE:
		return 3
	case NOT: // lookahead for "NOT LIKE" is handled in parseExpr
		return 3
	case PIPE, HASH:
		return 4
	case AMP:
		return 5
	case SHL, SHR:
		return 6
	case PLUS, MINUS, PIPEPIPE:
		return 7
	case STAR, SLASH, PERCENT:
		return 8
	case CARET:
		return 9
	default:
		return -1
	}
}

func binaryOpFor(k TokenKind) BinaryOperator {
	switch k {
	case PLUS:
		return OpAdd
	case MINUS:
		return OpSub
	case STAR:
		return OpMul
	case SLASH:
		return OpDiv
	case PERCENT:
		return OpMod
	case CARET:
		return OpPow
	case AMP:
		return OpBitAnd
	case PIPE:
		return OpBitOr
	case SHL:
		return OpShl
	case SHR:
		return OpShr
	case HASH:
		return OpBitXor
	case LT:
		return OpLt
	case LE:
		return OpLe
	case EQ:
		return OpEq
	case NE:
		return OpNe
	case GE:
		return OpGe
	case GT:
		return OpGt
	case AND:
		return OpAnd
	case OR:
		return OpOr
	case PIPEPIPE:
		return OpConcat
	case LIKE:
		return OpLike
	default:
		return ""
	}
}

func (p *Parser) parseExpr(minPrec int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		if p.cur.Kind == NOT {
			// Only valid as the start of "NOT LIKE"; otherwise it's not a
			// binary continuation and we stop here.
			save := p.cur
			p.advance()
			if p.cur.Kind != LIKE {
				return nil, p.errf("%q, expected LIKE after NOT", tokenText(p.cur))
			}
			_ = save
			p.advance()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = &BinaryOp{Op: OpNotLike, Left: left, Right: right}
			continue
		}

		prec := binaryPrecedence(p.cur.Kind)
		if prec < 0 || prec < minPrec {
			break
		}
		op := binaryOpFor(p.cur.Kind)
		p.advance()
		right, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}

	return left, nil
}

// parseUnary parses a prefix-operator chain. It fuses a MINUS token
// directly onto a following INT/FLOAT token with no whitespace between
// them, per the Open Question
// decision in SPEC_FULL.md: sign-attached literals parse as part of the
// literal, so SmallInt's minimum value can be expressed.
func (p *Parser) parseUnary() (Expr, error) {
	switch p.cur.Kind {
	case MINUS:
		minusEnd := p.cur.EndPos
		p.advance()
		if (p.cur.Kind == INT || p.cur.Kind == FLOAT) && p.cur.Pos == minusEnd {
			kind := IntegerLiteral
			if p.cur.Kind == FLOAT {
				kind = FloatLiteral
			}
			lit := &Literal{Kind: kind, Text: "-" + p.cur.Lit}
			p.advance()
			return lit, nil
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: OpNeg, Operand: operand}, nil
	case PLUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: OpPos, Operand: operand}, nil
	case TILDE:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: OpBitNot, Operand: operand}, nil
	case NOT:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: OpNot, Operand: operand}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (Expr, error) {
	switch p.cur.Kind {
	case INT:
		lit := &Literal{Kind: IntegerLiteral, Text: p.cur.Lit}
		p.advance()
		return lit, nil
	case FLOAT:
		lit := &Literal{Kind: FloatLiteral, Text: p.cur.Lit}
		p.advance()
		return lit, nil
	case STRING:
		lit := &Literal{Kind: StringLiteral, Text: p.cur.Lit}
		p.advance()
		return lit, nil
	case TRUEKW:
		p.advance()
		return &Literal{Kind: BoolLiteral, Bool: true}, nil
	case FALSEKW:
		p.advance()
		return &Literal{Kind: BoolLiteral, Bool: false}, nil
	case NULLKW:
		p.advance()
		return &Literal{Kind: NullLiteral}, nil
	case PARAM:
		n := atoiMust(p.cur.Lit)
		p.advance()
		return &Parameter{Index: n}, nil
	case LPAREN:
		p.advance()
		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	case IDENT, QIDENT:
		name := p.cur.Lit
		p.advance()
		if p.cur.Kind == DOT {
			p.advance()
			col, err := p.parseIdentText()
			if err != nil {
				return nil, err
			}
			return &Identifier{Table: name, Name: col}, nil
		}
		return &Identifier{Name: name}, nil
	default:
		return nil, p.errf("%q, expected an expression", tokenText(p.cur))
	}
}
