package QP

import (
	"strings"
	"testing"

	sferrors "github.com/sqlvibe/sqlnorm/internal/SF/errors"
)

// Helper function to parse SQL
func parseSQL(t *testing.T, sql string) ASTNode {
	t.Helper()
	tokens, err := NewTokenizer(sql).Tokenize()
	if err != nil {
		t.Fatalf("tokenize %q: %v", sql, err)
	}
	ast, err := NewParser(tokens).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", sql, err)
	}
	return ast
}

func TestParser_SelectSimple(t *testing.T) {
	ast := parseSQL(t, "SELECT 1")
	stmt, ok := ast.(*SelectStmt)
	if !ok {
		t.Fatalf("expected SelectStmt, got %T", ast)
	}
	if len(stmt.Columns) != 1 {
		t.Fatalf("expected 1 column, got %d", len(stmt.Columns))
	}
	lit, ok := stmt.Columns[0].(*Literal)
	if !ok {
		t.Fatalf("expected Literal, got %T", stmt.Columns[0])
	}
	if lit.Value != int64(1) {
		t.Errorf("expected int64 1, got %v", lit.Value)
	}
	if lit.Location != 7 {
		t.Errorf("expected literal location 7, got %d", lit.Location)
	}
}

func TestParser_NegativeNumberFolds(t *testing.T) {
	ast := parseSQL(t, "SELECT -5")
	stmt := ast.(*SelectStmt)
	lit, ok := stmt.Columns[0].(*Literal)
	if !ok {
		t.Fatalf("expected folded Literal, got %T", stmt.Columns[0])
	}
	if lit.Value != int64(-5) {
		t.Errorf("expected -5, got %v", lit.Value)
	}
	// The constant's location is the minus sign, not the digit.
	if lit.Location != 7 {
		t.Errorf("expected location 7 (the '-'), got %d", lit.Location)
	}
}

func TestParser_NegativeFloat(t *testing.T) {
	ast := parseSQL(t, "SELECT -2.5")
	stmt := ast.(*SelectStmt)
	lit := stmt.Columns[0].(*Literal)
	if lit.Value != float64(-2.5) {
		t.Errorf("expected -2.5, got %v", lit.Value)
	}
}

func TestParser_UnaryMinusOnColumnStaysUnary(t *testing.T) {
	ast := parseSQL(t, "SELECT -a FROM t")
	stmt := ast.(*SelectStmt)
	if _, ok := stmt.Columns[0].(*UnaryExpr); !ok {
		t.Fatalf("expected UnaryExpr, got %T", stmt.Columns[0])
	}
}

func TestParser_StringLiteralLocation(t *testing.T) {
	ast := parseSQL(t, "SELECT a FROM t WHERE b = 'x'")
	stmt := ast.(*SelectStmt)
	cmp, ok := stmt.Where.(*BinaryExpr)
	if !ok || cmp.Op != TokenEq {
		t.Fatalf("expected equality in WHERE, got %T", stmt.Where)
	}
	lit, ok := cmp.Right.(*Literal)
	if !ok {
		t.Fatalf("expected Literal, got %T", cmp.Right)
	}
	if lit.Location != 26 {
		t.Errorf("expected location 26 (the opening quote), got %d", lit.Location)
	}
}

func TestParser_IsNullLiteralHasNoLocation(t *testing.T) {
	ast := parseSQL(t, "SELECT a FROM t WHERE b IS NULL")
	stmt := ast.(*SelectStmt)
	cmp := stmt.Where.(*BinaryExpr)
	lit := cmp.Right.(*Literal)
	if lit.Location != -1 {
		t.Errorf("NULL in a null test must have no location, got %d", lit.Location)
	}
}

func TestParser_BareNullHasLocation(t *testing.T) {
	ast := parseSQL(t, "SELECT NULL")
	stmt := ast.(*SelectStmt)
	lit := stmt.Columns[0].(*Literal)
	if lit.Location != 7 {
		t.Errorf("expected location 7, got %d", lit.Location)
	}
}

func TestParser_InList(t *testing.T) {
	ast := parseSQL(t, "SELECT a FROM t WHERE b IN (1, 2, 3)")
	stmt := ast.(*SelectStmt)
	in, ok := stmt.Where.(*InExpr)
	if !ok {
		t.Fatalf("expected InExpr, got %T", stmt.Where)
	}
	if len(in.List) != 3 {
		t.Fatalf("expected 3 list items, got %d", len(in.List))
	}
	for i, item := range in.List {
		lit, ok := item.(*Literal)
		if !ok {
			t.Fatalf("item %d: expected Literal, got %T", i, item)
		}
		if lit.Location < 0 {
			t.Errorf("item %d: list element lost its location", i)
		}
	}
}

func TestParser_InSubquery(t *testing.T) {
	ast := parseSQL(t, "SELECT a FROM t WHERE b IN (SELECT c FROM u WHERE d = 9)")
	stmt := ast.(*SelectStmt)
	in, ok := stmt.Where.(*InExpr)
	if !ok || in.Subquery == nil {
		t.Fatalf("expected IN subquery, got %#v", stmt.Where)
	}
}

func TestParser_Between(t *testing.T) {
	ast := parseSQL(t, "SELECT a FROM t WHERE b BETWEEN 1 AND 10")
	stmt := ast.(*SelectStmt)
	btw, ok := stmt.Where.(*BetweenExpr)
	if !ok {
		t.Fatalf("expected BetweenExpr, got %T", stmt.Where)
	}
	if btw.Low.(*Literal).Value != int64(1) || btw.High.(*Literal).Value != int64(10) {
		t.Error("between bounds not parsed as literals")
	}
}

func TestParser_NotIn(t *testing.T) {
	ast := parseSQL(t, "SELECT a FROM t WHERE b NOT IN (1)")
	stmt := ast.(*SelectStmt)
	in, ok := stmt.Where.(*InExpr)
	if !ok || !in.Not {
		t.Fatalf("expected negated InExpr, got %#v", stmt.Where)
	}
}

func TestParser_Placeholder(t *testing.T) {
	ast := parseSQL(t, "SELECT a FROM t WHERE b = ?")
	stmt := ast.(*SelectStmt)
	cmp := stmt.Where.(*BinaryExpr)
	if _, ok := cmp.Right.(*ParamExpr); !ok {
		t.Fatalf("expected ParamExpr, got %T", cmp.Right)
	}
}

func TestParser_Joins(t *testing.T) {
	ast := parseSQL(t, "SELECT a FROM t LEFT JOIN u ON t.id = u.id WHERE u.x = 3")
	stmt := ast.(*SelectStmt)
	if stmt.From == nil || stmt.From.Join == nil {
		t.Fatal("expected join in FROM")
	}
	if stmt.From.Join.Type != "LEFT" {
		t.Errorf("expected LEFT join, got %s", stmt.From.Join.Type)
	}
	if stmt.From.Join.Cond == nil {
		t.Error("join condition lost")
	}
}

func TestParser_GroupOrderLimit(t *testing.T) {
	ast := parseSQL(t, "SELECT a, COUNT(b) FROM t GROUP BY a HAVING COUNT(b) > 2 ORDER BY a DESC LIMIT 10 OFFSET 5")
	stmt := ast.(*SelectStmt)
	if len(stmt.GroupBy) != 1 || stmt.Having == nil {
		t.Error("GROUP BY / HAVING not parsed")
	}
	if len(stmt.OrderBy) != 1 || !stmt.OrderBy[0].Desc {
		t.Error("ORDER BY DESC not parsed")
	}
	if stmt.Limit == nil || stmt.Offset == nil {
		t.Error("LIMIT / OFFSET not parsed")
	}
}

func TestParser_Union(t *testing.T) {
	ast := parseSQL(t, "SELECT 1 UNION ALL SELECT 2")
	stmt := ast.(*SelectStmt)
	if stmt.SetOp != "UNION" || !stmt.SetOpAll || stmt.SetOpRight == nil {
		t.Fatalf("UNION ALL not parsed: %#v", stmt)
	}
}

func TestParser_CaseCastExists(t *testing.T) {
	ast := parseSQL(t, "SELECT CASE WHEN a > 1 THEN 'hi' ELSE 'lo' END FROM t WHERE EXISTS (SELECT 1 FROM u) AND b = CAST('7' AS INTEGER)")
	stmt := ast.(*SelectStmt)
	if _, ok := stmt.Columns[0].(*CaseExpr); !ok {
		t.Fatalf("expected CaseExpr, got %T", stmt.Columns[0])
	}
}

func TestParser_Insert(t *testing.T) {
	ast := parseSQL(t, "INSERT INTO users (name, age) VALUES ('John', 25), ('Jane', 26)")
	stmt, ok := ast.(*InsertStmt)
	if !ok {
		t.Fatalf("expected InsertStmt, got %T", ast)
	}
	if stmt.Table != "users" || len(stmt.Columns) != 2 || len(stmt.Values) != 2 {
		t.Errorf("insert parsed badly: %#v", stmt)
	}
}

func TestParser_UpdateDelete(t *testing.T) {
	ast := parseSQL(t, "UPDATE t SET a = 1, b = 'x' WHERE id = 2")
	upd, ok := ast.(*UpdateStmt)
	if !ok || len(upd.Set) != 2 || upd.Where == nil {
		t.Fatalf("update parsed badly: %#v", ast)
	}

	ast = parseSQL(t, "DELETE FROM t WHERE id = 3")
	del, ok := ast.(*DeleteStmt)
	if !ok || del.Where == nil {
		t.Fatalf("delete parsed badly: %#v", ast)
	}
}

func TestParser_ParseAll(t *testing.T) {
	tokens, err := NewTokenizer("SELECT 1; SELECT 2;").Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	stmts, err := NewParser(tokens).ParseAll()
	if err != nil {
		t.Fatalf("parse all: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
}

func TestParser_SyntaxErrorHasPosition(t *testing.T) {
	tokens, err := NewTokenizer("SELECT FROM t").Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	_, err = NewParser(tokens).Parse()
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if sferrors.ErrorCodeOf(err) != sferrors.SN_SYNTAX {
		t.Errorf("expected SN_SYNTAX, got %v", sferrors.ErrorCodeOf(err))
	}
	if sferrors.PositionOf(err) != 7 {
		t.Errorf("expected cursor at byte 7, got %d", sferrors.PositionOf(err))
	}
	if !strings.Contains(err.Error(), "FROM") {
		t.Errorf("message should name the offending token: %s", err.Error())
	}
}

func TestParser_UnknownStatement(t *testing.T) {
	tokens, err := NewTokenizer("SELEKT 1").Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	_, err = NewParser(tokens).Parse()
	if err == nil {
		t.Fatal("expected syntax error")
	}
	if sferrors.PositionOf(err) != 0 {
		t.Errorf("expected cursor at byte 0, got %d", sferrors.PositionOf(err))
	}
}
