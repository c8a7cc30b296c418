// Package QN rewrites SQL query text into its normalized form: every
// literal constant found by the parser is replaced with a single '?'
// placeholder while all other bytes, whitespace and comments included,
// are preserved verbatim. Queries that differ only in literal values
// therefore collapse to one canonical string.
package QN

import (
	"github.com/sqlvibe/sqlnorm/internal/QP"
	"github.com/sqlvibe/sqlnorm/internal/SF/util"
	"github.com/sqlvibe/sqlnorm/internal/log"
)

// constSpan identifies one constant in the source text. length stays -1
// until the resolver fills it in; it also stays -1 for duplicate
// locations and for constants past the last lexable token, and such
// spans are ignored by the rewriter.
type constSpan struct {
	location int
	length   int
}

const initialSpanCap = 32

// constLocations is the working set of constant spans for one
// normalization call. Capacity doubles on overflow; count tracks the
// valid prefix. Never shared between calls.
type constLocations struct {
	spans []constSpan
	count int
}

func newConstLocations() *constLocations {
	return &constLocations{spans: make([]constSpan, initialSpanCap)}
}

func (c *constLocations) record(location int) {
	util.Assert(location >= 0, "recorded constant location must be non-negative, got %d", location)
	if c.count >= len(c.spans) {
		grown := make([]constSpan, len(c.spans)*2)
		copy(grown, c.spans)
		c.spans = grown
	}
	c.spans[c.count] = constSpan{location: location, length: -1}
	c.count++
}

// recordConstants walks one statement and records the source location of
// every literal constant that has one. It reports false when any subtree
// could not be fully visited; the constants found elsewhere are kept
// either way.
func recordConstants(node QP.ASTNode, locs *constLocations) bool {
	return walkStmtGuarded(node, locs)
}

// walkStmtGuarded isolates one subtree visit: a panic while walking it
// is swallowed, that subtree contributes no further constants, and the
// walk of its siblings continues.
func walkStmtGuarded(node QP.ASTNode, locs *constLocations) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("constant collection abandoned a subtree: %v", r)
			ok = false
		}
	}()
	return walkStmt(node, locs)
}

func walkExprGuarded(e QP.Expr, locs *constLocations) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug("constant collection abandoned a subtree: %v", r)
			ok = false
		}
	}()
	return walkExpr(e, locs)
}

func walkStmt(node QP.ASTNode, locs *constLocations) bool {
	if node == nil {
		return true
	}

	ok := true
	switch n := node.(type) {
	case *QP.SelectStmt:
		ok = walkSelect(n, locs)
	case *QP.InsertStmt:
		for _, row := range n.Values {
			for _, e := range row {
				ok = walkExprGuarded(e, locs) && ok
			}
		}
	case *QP.UpdateStmt:
		for _, set := range n.Set {
			ok = walkExprGuarded(set.Value, locs) && ok
		}
		ok = walkExprGuarded(n.Where, locs) && ok
	case *QP.DeleteStmt:
		ok = walkExprGuarded(n.Where, locs) && ok
	case *QP.BeginStmt, *QP.CommitStmt, *QP.RollbackStmt:
		// no expressions
	default:
		panic("unrecognized statement node: " + node.NodeType())
	}
	return ok
}

func walkSelect(stmt *QP.SelectStmt, locs *constLocations) bool {
	if stmt == nil {
		return true
	}
	ok := true
	for _, col := range stmt.Columns {
		ok = walkExprGuarded(col, locs) && ok
	}
	ok = walkTableRef(stmt.From, locs) && ok
	ok = walkExprGuarded(stmt.Where, locs) && ok
	for _, g := range stmt.GroupBy {
		ok = walkExprGuarded(g, locs) && ok
	}
	ok = walkExprGuarded(stmt.Having, locs) && ok
	for _, ob := range stmt.OrderBy {
		ok = walkExprGuarded(ob.Expr, locs) && ok
	}
	ok = walkExprGuarded(stmt.Limit, locs) && ok
	ok = walkExprGuarded(stmt.Offset, locs) && ok
	if stmt.SetOpRight != nil {
		ok = walkSelect(stmt.SetOpRight, locs) && ok
	}
	return ok
}

func walkTableRef(ref *QP.TableRef, locs *constLocations) bool {
	if ref == nil {
		return true
	}
	ok := true
	if ref.Subquery != nil {
		ok = walkSelect(ref.Subquery, locs) && ok
	}
	if ref.Join != nil {
		ok = walkTableRef(ref.Join.Left, locs) && ok
		ok = walkTableRef(ref.Join.Right, locs) && ok
		ok = walkExprGuarded(ref.Join.Cond, locs) && ok
	}
	return ok
}

func walkExpr(e QP.Expr, locs *constLocations) bool {
	if e == nil {
		return true
	}

	ok := true
	switch n := e.(type) {
	case *QP.Literal:
		if n.Location >= 0 {
			locs.record(n.Location)
		}
	case *QP.ParamExpr, *QP.ColumnRef:
		// never constants
	case *QP.BinaryExpr:
		ok = walkExprGuarded(n.Left, locs) && ok
		ok = walkExprGuarded(n.Right, locs) && ok
	case *QP.UnaryExpr:
		ok = walkExprGuarded(n.Expr, locs) && ok
	case *QP.AliasExpr:
		ok = walkExprGuarded(n.Expr, locs) && ok
	case *QP.FuncCall:
		for _, arg := range n.Args {
			ok = walkExprGuarded(arg, locs) && ok
		}
	case *QP.InExpr:
		ok = walkExprGuarded(n.Left, locs) && ok
		for _, item := range n.List {
			ok = walkExprGuarded(item, locs) && ok
		}
		if n.Subquery != nil {
			ok = walkSelect(n.Subquery, locs) && ok
		}
	case *QP.BetweenExpr:
		ok = walkExprGuarded(n.Expr, locs) && ok
		ok = walkExprGuarded(n.Low, locs) && ok
		ok = walkExprGuarded(n.High, locs) && ok
	case *QP.SubqueryExpr:
		ok = walkSelect(n.Select, locs) && ok
	case *QP.ExistsExpr:
		ok = walkSelect(n.Select, locs) && ok
	case *QP.CaseExpr:
		ok = walkExprGuarded(n.Operand, locs) && ok
		for _, w := range n.Whens {
			ok = walkExprGuarded(w.Condition, locs) && ok
			ok = walkExprGuarded(w.Result, locs) && ok
		}
		ok = walkExprGuarded(n.Else, locs) && ok
	case *QP.CastExpr:
		ok = walkExprGuarded(n.Expr, locs) && ok
	default:
		panic("unrecognized expression node")
	}
	return ok
}
