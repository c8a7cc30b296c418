package QP

import (
	"strings"
	"unicode"

	sferrors "github.com/sqlvibe/sqlnorm/internal/SF/errors"
)

type TokenType int

const (
	TokenInvalid TokenType = iota
	TokenEOF
	TokenIdentifier
	TokenString
	TokenBlob
	TokenNumber
	TokenKeyword
	TokenQuestion
	TokenLeftParen
	TokenRightParen
	TokenComma
	TokenSemicolon
	TokenDot
	TokenAsterisk
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenPlus
	TokenMinus
	TokenSlash
	TokenPercent
	TokenConcat
	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenLike
	TokenBetween
	TokenIs
)

var keywords = map[string]TokenType{
	"SELECT":      TokenKeyword,
	"FROM":        TokenKeyword,
	"WHERE":       TokenKeyword,
	"AND":         TokenAnd,
	"OR":          TokenOr,
	"NOT":         TokenNot,
	"IN":          TokenIn,
	"LIKE":        TokenLike,
	"BETWEEN":     TokenBetween,
	"IS":          TokenIs,
	"NULL":        TokenKeyword,
	"TRUE":        TokenKeyword,
	"FALSE":       TokenKeyword,
	"INSERT":      TokenKeyword,
	"INTO":        TokenKeyword,
	"VALUES":      TokenKeyword,
	"UPDATE":      TokenKeyword,
	"SET":         TokenKeyword,
	"DELETE":      TokenKeyword,
	"JOIN":        TokenKeyword,
	"INNER":       TokenKeyword,
	"LEFT":        TokenKeyword,
	"RIGHT":       TokenKeyword,
	"OUTER":       TokenKeyword,
	"CROSS":       TokenKeyword,
	"ON":          TokenKeyword,
	"AS":          TokenKeyword,
	"ORDER":       TokenKeyword,
	"BY":          TokenKeyword,
	"GROUP":       TokenKeyword,
	"HAVING":      TokenKeyword,
	"LIMIT":       TokenKeyword,
	"OFFSET":      TokenKeyword,
	"ASC":         TokenKeyword,
	"DESC":        TokenKeyword,
	"UNION":       TokenKeyword,
	"ALL":         TokenKeyword,
	"EXCEPT":      TokenKeyword,
	"INTERSECT":   TokenKeyword,
	"CASE":        TokenKeyword,
	"WHEN":        TokenKeyword,
	"THEN":        TokenKeyword,
	"ELSE":        TokenKeyword,
	"END":         TokenKeyword,
	"EXISTS":      TokenKeyword,
	"CAST":        TokenKeyword,
	"DISTINCT":    TokenKeyword,
	"BEGIN":       TokenKeyword,
	"COMMIT":      TokenKeyword,
	"ROLLBACK":    TokenKeyword,
	"TRANSACTION": TokenKeyword,
}

// Token is one lexical unit. Location is the byte offset of the first
// byte of the lexeme in the input (the opening quote for strings and
// blobs), End the offset one past the last byte. Literal holds the
// token text with quoting stripped.
type Token struct {
	Type     TokenType
	Literal  string
	Location int
	End      int
}

// Tokenizer is a single forward-only cursor over one input string.
// Next never rewinds; one instance makes exactly one left-to-right pass.
type Tokenizer struct {
	input string
	pos   int
	start int
}

func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// Next returns the next token. At end of input it returns a TokenEOF
// token located at len(input).
func (t *Tokenizer) Next() (Token, error) {
	t.skipWhitespace()
	if t.pos >= len(t.input) {
		return Token{Type: TokenEOF, Location: len(t.input), End: len(t.input)}, nil
	}

	ch := t.input[t.pos]
	switch {
	case unicode.IsLetter(rune(ch)) || ch == '_':
		return t.readIdentifier()
	case unicode.IsDigit(rune(ch)),
		ch == '.' && t.pos+1 < len(t.input) && unicode.IsDigit(rune(t.input[t.pos+1])):
		return t.readNumber()
	case ch == '\'':
		return t.readString()
	case ch == '"':
		return t.readQuotedIdentifier()
	default:
		return t.readOperator()
	}
}

// Tokenize consumes the whole input, including the trailing EOF token.
func (t *Tokenizer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := t.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			t.pos++
		} else if ch == '-' && t.pos+1 < len(t.input) && t.input[t.pos+1] == '-' {
			for t.pos < len(t.input) && t.input[t.pos] != '\n' {
				t.pos++
			}
		} else if ch == '/' && t.pos+1 < len(t.input) && t.input[t.pos+1] == '*' {
			t.pos += 2
			for t.pos+1 < len(t.input) {
				if t.input[t.pos] == '*' && t.input[t.pos+1] == '/' {
					t.pos += 2
					break
				}
				t.pos++
			}
		} else {
			break
		}
	}
}

func (t *Tokenizer) readIdentifier() (Token, error) {
	t.start = t.pos

	// x'..' and b'..' are blob/bit-string literals, not identifiers
	ch := t.input[t.pos]
	if (ch == 'x' || ch == 'X' || ch == 'b' || ch == 'B') &&
		t.pos+1 < len(t.input) && t.input[t.pos+1] == '\'' {
		return t.readBlob()
	}

	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_' {
			t.pos++
		} else {
			break
		}
	}

	literal := t.input[t.start:t.pos]
	upper := strings.ToUpper(literal)

	if tokenType, ok := keywords[upper]; ok {
		return t.token(tokenType, upper), nil
	}
	return t.token(TokenIdentifier, literal), nil
}

func (t *Tokenizer) readNumber() (Token, error) {
	t.start = t.pos
	hasDot := false

	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if unicode.IsDigit(rune(ch)) {
			t.pos++
		} else if ch == '.' && !hasDot {
			hasDot = true
			t.pos++
		} else if ch == 'e' || ch == 'E' {
			t.pos++
			if t.pos < len(t.input) && (t.input[t.pos] == '+' || t.input[t.pos] == '-') {
				t.pos++
			}
		} else {
			break
		}
	}

	return t.token(TokenNumber, t.input[t.start:t.pos]), nil
}

// readString lexes a single-quoted string constant. A doubled quote is
// the SQL escape for one quote; a backslash escapes the next byte.
func (t *Tokenizer) readString() (Token, error) {
	t.start = t.pos
	t.pos++ // opening quote

	var sb strings.Builder
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == '\'' {
			if t.pos+1 < len(t.input) && t.input[t.pos+1] == '\'' {
				sb.WriteByte('\'')
				t.pos += 2
				continue
			}
			t.pos++ // closing quote
			return t.token(TokenString, sb.String()), nil
		}
		if ch == '\\' && t.pos+1 < len(t.input) {
			sb.WriteByte(t.input[t.pos+1])
			t.pos += 2
			continue
		}
		sb.WriteByte(ch)
		t.pos++
	}
	return Token{}, sferrors.Lex(sferrors.SN_UNTERMINATED, t.start,
		"unterminated string literal")
}

// readQuotedIdentifier lexes a double-quoted identifier. These name
// columns and tables, so they are never constants.
func (t *Tokenizer) readQuotedIdentifier() (Token, error) {
	t.start = t.pos
	t.pos++

	var sb strings.Builder
	for t.pos < len(t.input) {
		ch := t.input[t.pos]
		if ch == '"' {
			if t.pos+1 < len(t.input) && t.input[t.pos+1] == '"' {
				sb.WriteByte('"')
				t.pos += 2
				continue
			}
			t.pos++
			return t.token(TokenIdentifier, sb.String()), nil
		}
		sb.WriteByte(ch)
		t.pos++
	}
	return Token{}, sferrors.Lex(sferrors.SN_UNTERMINATED, t.start,
		"unterminated quoted identifier")
}

// readBlob lexes x'ABCD' / b'0101'. No escapes inside.
func (t *Tokenizer) readBlob() (Token, error) {
	t.pos += 2 // marker letter and opening quote
	contentStart := t.pos
	for t.pos < len(t.input) {
		if t.input[t.pos] == '\'' {
			literal := t.input[contentStart:t.pos]
			t.pos++
			return t.token(TokenBlob, literal), nil
		}
		t.pos++
	}
	return Token{}, sferrors.Lex(sferrors.SN_UNTERMINATED, t.start,
		"unterminated blob literal")
}

func (t *Tokenizer) readOperator() (Token, error) {
	t.start = t.pos
	ch := t.input[t.pos]
	t.pos++

	switch ch {
	case '(':
		return t.token(TokenLeftParen, "("), nil
	case ')':
		return t.token(TokenRightParen, ")"), nil
	case ',':
		return t.token(TokenComma, ","), nil
	case ';':
		return t.token(TokenSemicolon, ";"), nil
	case '.':
		return t.token(TokenDot, "."), nil
	case '*':
		return t.token(TokenAsterisk, "*"), nil
	case '?':
		return t.token(TokenQuestion, "?"), nil
	case '=':
		return t.token(TokenEq, "="), nil
	case '<':
		if t.pos < len(t.input) {
			switch t.input[t.pos] {
			case '=':
				t.pos++
				return t.token(TokenLe, "<="), nil
			case '>':
				t.pos++
				return t.token(TokenNe, "<>"), nil
			}
		}
		return t.token(TokenLt, "<"), nil
	case '>':
		if t.pos < len(t.input) && t.input[t.pos] == '=' {
			t.pos++
			return t.token(TokenGe, ">="), nil
		}
		return t.token(TokenGt, ">"), nil
	case '!':
		if t.pos < len(t.input) && t.input[t.pos] == '=' {
			t.pos++
			return t.token(TokenNe, "!="), nil
		}
		return Token{}, sferrors.Lex(sferrors.SN_BADCHAR, t.start, "invalid operator '!'")
	case '+':
		return t.token(TokenPlus, "+"), nil
	case '-':
		return t.token(TokenMinus, "-"), nil
	case '/':
		return t.token(TokenSlash, "/"), nil
	case '%':
		return t.token(TokenPercent, "%"), nil
	case '|':
		if t.pos < len(t.input) && t.input[t.pos] == '|' {
			t.pos++
			return t.token(TokenConcat, "||"), nil
		}
		return Token{}, sferrors.Lex(sferrors.SN_BADCHAR, t.start, "invalid operator '|'")
	default:
		return Token{}, sferrors.Lex(sferrors.SN_BADCHAR, t.start, "invalid character %q", ch)
	}
}

func (t *Tokenizer) token(tokenType TokenType, literal string) Token {
	return Token{
		Type:     tokenType,
		Literal:  literal,
		Location: t.start,
		End:      t.pos,
	}
}
