package QN

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlvibe/sqlnorm/internal/QP"
)

func TestRecordGrowsByDoubling(t *testing.T) {
	locs := newConstLocations()
	require.Equal(t, initialSpanCap, len(locs.spans))

	for i := 0; i < initialSpanCap+8; i++ {
		locs.record(i * 3)
	}

	assert.Equal(t, initialSpanCap+8, locs.count)
	assert.Equal(t, initialSpanCap*2, len(locs.spans))
	for i := 0; i < locs.count; i++ {
		assert.Equal(t, -1, locs.spans[i].length, "length must start unresolved")
	}
}

func TestRecordRejectsNegativeLocation(t *testing.T) {
	locs := newConstLocations()
	assert.Panics(t, func() { locs.record(-1) })
}

func TestCollectConstants(t *testing.T) {
	stmts := mustParse(t, "SELECT a, 'x' FROM t WHERE b = 1 AND c IN (2, 3)")

	locs := newConstLocations()
	for _, stmt := range stmts {
		assert.True(t, recordConstants(stmt, locs))
	}

	// 'x', 1, 2, 3
	assert.Equal(t, 4, locs.count)
}

func TestCollectSkipsPlaceholdersAndNullTests(t *testing.T) {
	stmts := mustParse(t, "SELECT a FROM t WHERE b = ? AND c IS NULL")

	locs := newConstLocations()
	for _, stmt := range stmts {
		recordConstants(stmt, locs)
	}
	assert.Equal(t, 0, locs.count)
}

func TestCollectOrderFollowsTraversal(t *testing.T) {
	// Collection order is traversal order, not source order; the
	// resolver sorts later.
	stmts := mustParse(t, "SELECT 2, 1")
	locs := newConstLocations()
	recordConstants(stmts[0], locs)

	require.Equal(t, 2, locs.count)
	assert.Equal(t, 7, locs.spans[0].location)
	assert.Equal(t, 10, locs.spans[1].location)
}

type badNode struct{}

func (badNode) NodeType() string { return "badNode" }

func TestWalkFailureIsContained(t *testing.T) {
	locs := newConstLocations()
	assert.NotPanics(t, func() {
		assert.False(t, recordConstants(badNode{}, locs))
	})
	assert.Equal(t, 0, locs.count)
}

func TestWalkFailureKeepsSiblings(t *testing.T) {
	good := mustParse(t, "SELECT 7")[0]

	locs := newConstLocations()
	okBad := recordConstants(badNode{}, locs)
	okGood := recordConstants(good, locs)

	assert.False(t, okBad)
	assert.True(t, okGood)
	assert.Equal(t, 1, locs.count, "constants from healthy statements must survive")
}

func mustParse(t *testing.T, sql string) []QP.ASTNode {
	t.Helper()
	stmts, err := parseSQL(sql)
	require.NoError(t, err)
	return stmts
}
