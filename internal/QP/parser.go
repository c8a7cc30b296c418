package QP

import (
	sferrors "github.com/sqlvibe/sqlnorm/internal/SF/errors"
	"github.com/sqlvibe/sqlnorm/internal/SF/util"
)

type ASTNode interface {
	NodeType() string
}

type SelectStmt struct {
	Distinct   bool
	Columns    []Expr
	From       *TableRef
	Where      Expr
	GroupBy    []Expr
	Having     Expr
	OrderBy    []OrderBy
	Limit      Expr
	Offset     Expr
	SetOp      string
	SetOpAll   bool
	SetOpRight *SelectStmt
}

func (s *SelectStmt) NodeType() string { return "SelectStmt" }

type OrderBy struct {
	Expr Expr
	Desc bool
}

type TableRef struct {
	Name     string
	Alias    string
	Subquery *SelectStmt
	Join     *Join
}

func (t *TableRef) NodeType() string { return "TableRef" }

type Join struct {
	Type  string
	Left  *TableRef
	Right *TableRef
	Cond  Expr
}

type InsertStmt struct {
	Table   string
	Columns []string
	Values  [][]Expr
}

func (i *InsertStmt) NodeType() string { return "InsertStmt" }

type UpdateStmt struct {
	Table string
	Set   []SetClause
	Where Expr
}

func (u *UpdateStmt) NodeType() string { return "UpdateStmt" }

type SetClause struct {
	Column string
	Value  Expr
}

type DeleteStmt struct {
	Table string
	Where Expr
}

func (d *DeleteStmt) NodeType() string { return "DeleteStmt" }

type BeginStmt struct{}

func (b *BeginStmt) NodeType() string { return "BeginStmt" }

type CommitStmt struct{}

func (c *CommitStmt) NodeType() string { return "CommitStmt" }

type RollbackStmt struct{}

func (r *RollbackStmt) NodeType() string { return "RollbackStmt" }

type Expr interface {
	exprNode()
}

type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (e *BinaryExpr) exprNode() {}

type UnaryExpr struct {
	Op   TokenType
	Expr Expr
}

func (e *UnaryExpr) exprNode() {}

// Literal is a constant appearing verbatim in the query text. Location
// is the byte offset of its first byte in the source, or -1 when the
// node was synthesized during parsing and has no textual origin.
type Literal struct {
	Value    interface{}
	Location int
}

func (e *Literal) exprNode() {}

// ParamExpr is a '?' placeholder. It is already normalized, never a
// constant to replace.
type ParamExpr struct{}

func (e *ParamExpr) exprNode() {}

type ColumnRef struct {
	Table string
	Name  string
}

func (e *ColumnRef) exprNode() {}

type FuncCall struct {
	Name     string
	Args     []Expr
	Distinct bool
}

func (e *FuncCall) exprNode() {}

type SubqueryExpr struct {
	Select *SelectStmt
}

func (e *SubqueryExpr) exprNode() {}

type AliasExpr struct {
	Expr  Expr
	Alias string
}

func (e *AliasExpr) exprNode() {}

// InExpr keeps the list elements as expressions so each keeps its
// source location.
type InExpr struct {
	Left     Expr
	List     []Expr
	Subquery *SelectStmt
	Not      bool
}

func (e *InExpr) exprNode() {}

type BetweenExpr struct {
	Expr Expr
	Low  Expr
	High Expr
	Not  bool
}

func (e *BetweenExpr) exprNode() {}

type ExistsExpr struct {
	Select *SelectStmt
}

func (e *ExistsExpr) exprNode() {}

type CaseExpr struct {
	Operand Expr
	Whens   []CaseWhen
	Else    Expr
}

type CaseWhen struct {
	Condition Expr
	Result    Expr
}

func (e *CaseExpr) exprNode() {}

type CastExpr struct {
	Expr Expr
	Type string
}

func (e *CastExpr) exprNode() {}

type Parser struct {
	tokens []Token
	pos    int
}

func NewParser(tokens []Token) *Parser {
	util.AssertNotNil(tokens, "tokens")
	return &Parser{tokens: tokens}
}

// ParseAll parses a sequence of semicolon-separated statements.
func (p *Parser) ParseAll() ([]ASTNode, error) {
	var stmts []ASTNode
	for {
		for p.current().Type == TokenSemicolon {
			p.advance()
		}
		if p.isEOF() {
			return stmts, nil
		}
		stmt, err := p.Parse()
		if err != nil {
			return nil, err
		}
		if stmt == nil {
			return stmts, nil
		}
		stmts = append(stmts, stmt)
		if tok := p.current(); tok.Type != TokenSemicolon && tok.Type != TokenEOF {
			return nil, sferrors.Syntax(tok.Location, "syntax error at or near %q", tok.Literal)
		}
	}
}

func (p *Parser) Parse() (ASTNode, error) {
	if p.isEOF() {
		return nil, nil
	}

	tok := p.current()
	if tok.Type == TokenKeyword {
		switch tok.Literal {
		case "SELECT":
			return p.parseSelect()
		case "INSERT":
			return p.parseInsert()
		case "UPDATE":
			return p.parseUpdate()
		case "DELETE":
			return p.parseDelete()
		case "BEGIN":
			p.advance()
			if p.current().Type == TokenKeyword && p.current().Literal == "TRANSACTION" {
				p.advance()
			}
			return &BeginStmt{}, nil
		case "COMMIT":
			p.advance()
			return &CommitStmt{}, nil
		case "ROLLBACK":
			p.advance()
			return &RollbackStmt{}, nil
		}
	}
	return nil, sferrors.Syntax(tok.Location, "syntax error at or near %q", tok.Literal)
}

func (p *Parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Type: TokenEOF}
}

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return Token{Type: TokenEOF}
}

func (p *Parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(typ TokenType, what string) (Token, error) {
	tok := p.current()
	if tok.Type != typ {
		return tok, sferrors.Syntax(tok.Location, "expected %s, got %q", what, tok.Literal)
	}
	return p.advance(), nil
}

func (p *Parser) isEOF() bool {
	return p.pos >= len(p.tokens) || p.current().Type == TokenEOF
}

func (p *Parser) atKeyword(kw string) bool {
	tok := p.current()
	return tok.Type == TokenKeyword && tok.Literal == kw
}

func (p *Parser) parseSelect() (*SelectStmt, error) {
	p.advance() // SELECT
	stmt := &SelectStmt{}

	if p.atKeyword("DISTINCT") {
		stmt.Distinct = true
		p.advance()
	} else if p.atKeyword("ALL") {
		p.advance()
	}

	for {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return nil, sferrors.Syntax(p.current().Location, "expected expression in select list")
		}
		if p.atKeyword("AS") {
			p.advance()
			alias, err := p.expect(TokenIdentifier, "alias")
			if err != nil {
				return nil, err
			}
			expr = &AliasExpr{Expr: expr, Alias: alias.Literal}
		} else if p.current().Type == TokenIdentifier {
			expr = &AliasExpr{Expr: expr, Alias: p.advance().Literal}
		}
		stmt.Columns = append(stmt.Columns, expr)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	if p.atKeyword("FROM") {
		p.advance()
		from, err := p.parseTableRef()
		if err != nil {
			return nil, err
		}
		stmt.From = from
	}

	if p.atKeyword("WHERE") {
		p.advance()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	if p.atKeyword("GROUP") {
		p.advance()
		if _, err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.GroupBy = append(stmt.GroupBy, expr)
			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if p.atKeyword("HAVING") {
		p.advance()
		having, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Having = having
	}

	if p.atKeyword("ORDER") {
		p.advance()
		if _, err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			ob := OrderBy{Expr: expr}
			if p.atKeyword("DESC") {
				ob.Desc = true
				p.advance()
			} else if p.atKeyword("ASC") {
				p.advance()
			}
			stmt.OrderBy = append(stmt.OrderBy, ob)
			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if p.atKeyword("LIMIT") {
		p.advance()
		limit, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Limit = limit
	}

	if p.atKeyword("OFFSET") {
		p.advance()
		offset, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Offset = offset
	}

	if p.atKeyword("UNION") || p.atKeyword("EXCEPT") || p.atKeyword("INTERSECT") {
		stmt.SetOp = p.advance().Literal
		if p.atKeyword("ALL") {
			stmt.SetOpAll = true
			p.advance()
		}
		if !p.atKeyword("SELECT") {
			return nil, sferrors.Syntax(p.current().Location,
				"expected SELECT after %s", stmt.SetOp)
		}
		right, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		stmt.SetOpRight = right
	}

	return stmt, nil
}

func (p *Parser) expectKeyword(kw string) (Token, error) {
	tok := p.current()
	if tok.Type != TokenKeyword || tok.Literal != kw {
		return tok, sferrors.Syntax(tok.Location, "expected %s, got %q", kw, tok.Literal)
	}
	return p.advance(), nil
}

func (p *Parser) parseTableRef() (*TableRef, error) {
	left, err := p.parseTableItem()
	if err != nil {
		return nil, err
	}

	for {
		joinType := ""
		switch {
		case p.atKeyword("JOIN"):
			joinType = "INNER"
			p.advance()
		case p.atKeyword("INNER"):
			p.advance()
			joinType = "INNER"
			if _, err := p.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
		case p.atKeyword("LEFT"), p.atKeyword("RIGHT"):
			joinType = p.advance().Literal
			if p.atKeyword("OUTER") {
				p.advance()
			}
			if _, err := p.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
		case p.atKeyword("CROSS"):
			p.advance()
			joinType = "CROSS"
			if _, err := p.expectKeyword("JOIN"); err != nil {
				return nil, err
			}
		case p.current().Type == TokenComma:
			p.advance()
			joinType = "CROSS"
		default:
			return left, nil
		}

		right, err := p.parseTableItem()
		if err != nil {
			return nil, err
		}
		join := &Join{Type: joinType, Left: left, Right: right}
		if p.atKeyword("ON") {
			p.advance()
			cond, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			join.Cond = cond
		}
		left = &TableRef{Join: join}
	}
}

func (p *Parser) parseTableItem() (*TableRef, error) {
	if p.current().Type == TokenLeftParen {
		p.advance()
		if !p.atKeyword("SELECT") {
			return nil, sferrors.Syntax(p.current().Location, "expected SELECT in FROM subquery")
		}
		sub, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		ref := &TableRef{Subquery: sub}
		p.maybeAlias(ref)
		return ref, nil
	}

	name, err := p.expect(TokenIdentifier, "table name")
	if err != nil {
		return nil, err
	}
	ref := &TableRef{Name: name.Literal}
	p.maybeAlias(ref)
	return ref, nil
}

func (p *Parser) maybeAlias(ref *TableRef) {
	if p.atKeyword("AS") {
		p.advance()
	}
	if p.current().Type == TokenIdentifier {
		ref.Alias = p.advance().Literal
	}
}

func (p *Parser) parseInsert() (*InsertStmt, error) {
	p.advance() // INSERT
	if _, err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	name, err := p.expect(TokenIdentifier, "table name")
	if err != nil {
		return nil, err
	}
	stmt := &InsertStmt{Table: name.Literal}

	if p.current().Type == TokenLeftParen {
		p.advance()
		for {
			col, err := p.expect(TokenIdentifier, "column name")
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col.Literal)
			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
		if _, err := p.expect(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
	}

	if _, err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	for {
		if _, err := p.expect(TokenLeftParen, "'('"); err != nil {
			return nil, err
		}
		var row []Expr
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			row = append(row, expr)
			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
		if _, err := p.expect(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, row)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return stmt, nil
}

func (p *Parser) parseUpdate() (*UpdateStmt, error) {
	p.advance() // UPDATE
	name, err := p.expect(TokenIdentifier, "table name")
	if err != nil {
		return nil, err
	}
	stmt := &UpdateStmt{Table: name.Literal}

	if _, err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	for {
		col, err := p.expect(TokenIdentifier, "column name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenEq, "'='"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Set = append(stmt.Set, SetClause{Column: col.Literal, Value: value})
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}

	if p.atKeyword("WHERE") {
		p.advance()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

func (p *Parser) parseDelete() (*DeleteStmt, error) {
	p.advance() // DELETE
	if _, err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	name, err := p.expect(TokenIdentifier, "table name")
	if err != nil {
		return nil, err
	}
	stmt := &DeleteStmt{Table: name.Literal}

	if p.atKeyword("WHERE") {
		p.advance()
		where, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}
