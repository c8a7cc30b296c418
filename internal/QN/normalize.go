package QN

import (
	"github.com/sqlvibe/sqlnorm/internal/QP"
)

// Normalize parses sql and rewrites every literal constant to a '?'
// placeholder. Only a parse failure is reported as an error; a query
// whose constants cannot all be resolved still yields a best-effort
// result. All working state is scoped to this call.
func Normalize(sql string) (string, error) {
	stmts, err := parseSQL(sql)
	if err != nil {
		return "", err
	}

	locs := newConstLocations()
	for _, stmt := range stmts {
		recordConstants(stmt, locs)
	}

	fillConstantLengths(locs, sql)
	return generateNormalized(locs, sql), nil
}

func parseSQL(sql string) ([]QP.ASTNode, error) {
	tokens, err := QP.NewTokenizer(sql).Tokenize()
	if err != nil {
		return nil, err
	}
	return QP.NewParser(tokens).ParseAll()
}
