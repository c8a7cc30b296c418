package QP

import (
	"strconv"
	"strings"

	sferrors "github.com/sqlvibe/sqlnorm/internal/SF/errors"
)

func (p *Parser) parseExpr() (Expr, error) {
	return p.parseOrExpr()
}

func (p *Parser) parseOrExpr() (Expr, error) {
	left, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: TokenOr, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseAndExpr() (Expr, error) {
	left, err := p.parseNotExpr()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: TokenAnd, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseNotExpr() (Expr, error) {
	if p.current().Type == TokenNot && p.peek().Type != TokenIn &&
		p.peek().Type != TokenLike && p.peek().Type != TokenBetween {
		p.advance()
		expr, err := p.parseNotExpr()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: TokenNot, Expr: expr}, nil
	}
	return p.parseCmpExpr()
}

func (p *Parser) parseCmpExpr() (Expr, error) {
	left, err := p.parseAddExpr()
	if err != nil {
		return nil, err
	}

	if p.current().Type == TokenIs {
		p.advance()
		isNot := false
		if p.current().Type == TokenNot {
			isNot = true
			p.advance()
		}
		if !p.atKeyword("NULL") {
			return nil, sferrors.Syntax(p.current().Location, "expected NULL after IS")
		}
		p.advance()
		// The NULL in a null test is part of the predicate, not a
		// standalone constant, so the literal carries no location.
		cmp := &BinaryExpr{Op: TokenIs, Left: left, Right: &Literal{Value: nil, Location: -1}}
		if isNot {
			return &UnaryExpr{Op: TokenNot, Expr: cmp}, nil
		}
		return cmp, nil
	}

	negated := false
	if p.current().Type == TokenNot &&
		(p.peek().Type == TokenIn || p.peek().Type == TokenLike || p.peek().Type == TokenBetween) {
		negated = true
		p.advance()
	}

	switch p.current().Type {
	case TokenIn:
		p.advance()
		return p.parseInTail(left, negated)
	case TokenBetween:
		p.advance()
		low, err := p.parseAddExpr()
		if err != nil {
			return nil, err
		}
		if p.current().Type != TokenAnd {
			return nil, sferrors.Syntax(p.current().Location, "expected AND in BETWEEN")
		}
		p.advance()
		high, err := p.parseAddExpr()
		if err != nil {
			return nil, err
		}
		return &BetweenExpr{Expr: left, Low: low, High: high, Not: negated}, nil
	case TokenLike:
		p.advance()
		pattern, err := p.parseAddExpr()
		if err != nil {
			return nil, err
		}
		like := &BinaryExpr{Op: TokenLike, Left: left, Right: pattern}
		if negated {
			return &UnaryExpr{Op: TokenNot, Expr: like}, nil
		}
		return like, nil
	}

	for p.current().Type == TokenEq || p.current().Type == TokenNe ||
		p.current().Type == TokenLt || p.current().Type == TokenLe ||
		p.current().Type == TokenGt || p.current().Type == TokenGe {
		op := p.current().Type
		p.advance()
		right, err := p.parseAddExpr()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseInTail(left Expr, negated bool) (Expr, error) {
	if _, err := p.expect(TokenLeftParen, "'(' after IN"); err != nil {
		return nil, err
	}
	if p.atKeyword("SELECT") {
		sub, err := p.parseSelect()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		return &InExpr{Left: left, Subquery: sub, Not: negated}, nil
	}

	in := &InExpr{Left: left, Not: negated}
	for {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		in.List = append(in.List, expr)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return in, nil
}

func (p *Parser) parseAddExpr() (Expr, error) {
	left, err := p.parseMulExpr()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenPlus || p.current().Type == TokenMinus ||
		p.current().Type == TokenConcat {
		op := p.current().Type
		p.advance()
		right, err := p.parseMulExpr()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseMulExpr() (Expr, error) {
	left, err := p.parseUnaryExpr()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenAsterisk || p.current().Type == TokenSlash ||
		p.current().Type == TokenPercent {
		op := p.current().Type
		p.advance()
		right, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}

	return left, nil
}

func (p *Parser) parseUnaryExpr() (Expr, error) {
	if p.current().Type == TokenMinus {
		minus := p.advance()
		// A minus directly before a numeric token folds into a single
		// negative constant located at the sign byte, so the sign and
		// magnitude normalize as one unit.
		if p.current().Type == TokenNumber {
			tok := p.advance()
			lit := numberLiteral(tok)
			switch v := lit.Value.(type) {
			case int64:
				lit.Value = -v
			case float64:
				lit.Value = -v
			}
			lit.Location = minus.Location
			return lit, nil
		}
		expr, err := p.parseUnaryExpr()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: TokenMinus, Expr: expr}, nil
	}
	if p.current().Type == TokenPlus {
		p.advance()
		return p.parseUnaryExpr()
	}
	return p.parsePrimaryExpr()
}

func numberLiteral(tok Token) *Literal {
	if iv, err := strconv.ParseInt(tok.Literal, 10, 64); err == nil {
		return &Literal{Value: iv, Location: tok.Location}
	}
	if fv, err := strconv.ParseFloat(tok.Literal, 64); err == nil {
		return &Literal{Value: fv, Location: tok.Location}
	}
	return &Literal{Value: tok.Literal, Location: tok.Location}
}

func (p *Parser) parsePrimaryExpr() (Expr, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		return numberLiteral(tok), nil

	case TokenString:
		p.advance()
		return &Literal{Value: tok.Literal, Location: tok.Location}, nil

	case TokenBlob:
		p.advance()
		return &Literal{Value: []byte(tok.Literal), Location: tok.Location}, nil

	case TokenQuestion:
		p.advance()
		return &ParamExpr{}, nil

	case TokenLeftParen:
		p.advance()
		if p.atKeyword("SELECT") {
			sub, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRightParen, "')'"); err != nil {
				return nil, err
			}
			return &SubqueryExpr{Select: sub}, nil
		}
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, "')'"); err != nil {
			return nil, err
		}
		return expr, nil

	case TokenAsterisk:
		p.advance()
		return &ColumnRef{Name: "*"}, nil

	case TokenIdentifier:
		p.advance()
		if p.current().Type == TokenLeftParen {
			return p.parseFuncCall(tok.Literal)
		}
		if p.current().Type == TokenDot {
			p.advance()
			if p.current().Type == TokenAsterisk {
				p.advance()
				return &ColumnRef{Table: tok.Literal, Name: "*"}, nil
			}
			col, err := p.expect(TokenIdentifier, "column name")
			if err != nil {
				return nil, err
			}
			return &ColumnRef{Table: tok.Literal, Name: col.Literal}, nil
		}
		return &ColumnRef{Name: tok.Literal}, nil

	case TokenKeyword:
		switch tok.Literal {
		case "NULL":
			p.advance()
			return &Literal{Value: nil, Location: tok.Location}, nil
		case "TRUE":
			p.advance()
			return &Literal{Value: true, Location: tok.Location}, nil
		case "FALSE":
			p.advance()
			return &Literal{Value: false, Location: tok.Location}, nil
		case "CASE":
			return p.parseCaseExpr()
		case "CAST":
			return p.parseCastExpr()
		case "EXISTS":
			p.advance()
			if _, err := p.expect(TokenLeftParen, "'(' after EXISTS"); err != nil {
				return nil, err
			}
			if !p.atKeyword("SELECT") {
				return nil, sferrors.Syntax(p.current().Location, "expected SELECT after EXISTS")
			}
			sub, err := p.parseSelect()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenRightParen, "')'"); err != nil {
				return nil, err
			}
			return &ExistsExpr{Select: sub}, nil
		}
		// Keywords followed by '(' parse as generic function calls
		// (e.g. DATE('now')).
		if p.peek().Type == TokenLeftParen {
			p.advance()
			return p.parseFuncCall(tok.Literal)
		}
	}

	return nil, sferrors.Syntax(tok.Location, "unexpected token %q", tok.Literal)
}

func (p *Parser) parseFuncCall(name string) (Expr, error) {
	p.advance() // consume (
	fc := &FuncCall{Name: name}

	if p.atKeyword("DISTINCT") {
		fc.Distinct = true
		p.advance()
	}

	for !p.isEOF() && p.current().Type != TokenRightParen {
		argPos := p.pos
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		// Safety: if parseExpr didn't advance, break to prevent infinite loop
		if p.pos == argPos {
			break
		}
		fc.Args = append(fc.Args, arg)
		if p.current().Type == TokenComma {
			p.advance()
		} else {
			break
		}
	}
	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return fc, nil
}

func (p *Parser) parseCaseExpr() (Expr, error) {
	p.advance() // CASE
	ce := &CaseExpr{}

	if !p.atKeyword("WHEN") {
		operand, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Operand = operand
	}

	for p.atKeyword("WHEN") {
		p.advance()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectKeyword("THEN"); err != nil {
			return nil, err
		}
		result, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Whens = append(ce.Whens, CaseWhen{Condition: cond, Result: result})
	}

	if p.atKeyword("ELSE") {
		p.advance()
		elseExpr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		ce.Else = elseExpr
	}

	if _, err := p.expectKeyword("END"); err != nil {
		return nil, err
	}
	return ce, nil
}

func (p *Parser) parseCastExpr() (Expr, error) {
	p.advance() // CAST
	if _, err := p.expect(TokenLeftParen, "'(' after CAST"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	tok := p.current()
	if tok.Type != TokenIdentifier && tok.Type != TokenKeyword {
		return nil, sferrors.Syntax(tok.Location, "expected type name in CAST")
	}
	p.advance()
	typeName := strings.ToUpper(tok.Literal)
	// Type parameters like VARCHAR(20) are part of the type, not constants.
	if p.current().Type == TokenLeftParen {
		p.advance()
		for p.current().Type == TokenNumber || p.current().Type == TokenComma {
			p.advance()
		}
		if _, err := p.expect(TokenRightParen, "')' after type parameters"); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(TokenRightParen, "')' after CAST"); err != nil {
		return nil, err
	}
	return &CastExpr{Expr: expr, Type: typeName}, nil
}
