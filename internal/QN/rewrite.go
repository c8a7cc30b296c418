package QN

import (
	"github.com/sqlvibe/sqlnorm/internal/SF/util"
)

// placeholder replaces every constant. Fixed by contract.
const placeholder = '?'

// generateNormalized rewrites query using the resolved span set: bytes
// outside constant spans are copied verbatim, each resolved constant
// becomes one placeholder byte. Spans with length -1 (duplicates,
// unresolved tails) are ignored entirely. The spans must already be
// sorted ascending by location.
//
// The output can never be longer than the input: every replaced
// constant is at least one byte wide and becomes exactly one byte.
func generateNormalized(locs *constLocations, query string) string {
	norm := make([]byte, 0, len(query))

	var (
		querLoc    = 0 // source byte cursor
		lastOff    = 0 // location of the previous replaced constant
		lastTokLen = 0 // its resolved length
	)

	for i := 0; i < locs.count; i++ {
		off := locs.spans[i].location
		tokLen := locs.spans[i].length

		if tokLen < 0 {
			continue // duplicates and unresolved spans stay as-is in the text
		}

		// Copy what precedes this constant, excluding the bytes the
		// previous constant already consumed.
		lenToWrite := off - lastOff - lastTokLen
		util.Assert(lenToWrite >= 0,
			"constant spans overlap or are mis-ordered: offset %d follows %d+%d",
			off, lastOff, lastTokLen)
		norm = append(norm, query[querLoc:querLoc+lenToWrite]...)
		norm = append(norm, placeholder)

		querLoc = off + tokLen
		lastOff = off
		lastTokLen = tokLen
	}

	// Remaining bytes after the last replaced constant.
	norm = append(norm, query[querLoc:]...)

	util.Assert(len(norm) <= len(query),
		"normalized text longer than source: %d > %d", len(norm), len(query))
	return string(norm)
}
