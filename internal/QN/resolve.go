package QN

import (
	"sort"

	"github.com/sqlvibe/sqlnorm/internal/QP"
	"github.com/sqlvibe/sqlnorm/internal/log"
)

func (c *constLocations) sortByLocation() {
	if c.count > 1 {
		spans := c.spans[:c.count]
		sort.Slice(spans, func(i, j int) bool {
			return spans[i].location < spans[j].location
		})
	}
}

// fillConstantLengths re-tokenizes query to find the byte length of each
// recorded constant. The parser only reports where a constant starts;
// its end is wherever the tokenizer ends the token found there.
//
// One tokenizer cursor is initialized over the whole text and advanced
// monotonically across every span, so the total cost is one pass over
// the query's tokens no matter how many constants there are. The cursor
// is never rewound or re-initialized.
//
// Duplicate locations keep length -1 and are skipped. If the tokenizer
// runs out of input (or fails) before an expected constant is found,
// resolution stops and every remaining span keeps length -1: a partial
// result, not an error.
//
// A '-' byte at a constant's location means the parser folded a
// negative numeric constant whose sign was lexed as a separate token;
// one more token is consumed so sign and magnitude resolve as one unit.
// That way "WHERE x = 1" and "WHERE x = -2" normalize identically.
func fillConstantLengths(locs *constLocations, query string) {
	locs.sortByLocation()

	tz := QP.NewTokenizer(query)
	lastLoc := -1

	for i := 0; i < locs.count; i++ {
		loc := locs.spans[i].location

		if loc <= lastLoc {
			continue // duplicate constant, leave length -1
		}

		tok, exhausted := lexTo(tz, loc)
		if exhausted {
			log.Debug("tokenizer exhausted at constant %d of %d (location %d), leaving rest unresolved",
				i+1, locs.count, loc)
			return
		}

		if query[loc] == '-' {
			next, err := tz.Next()
			if err != nil || next.Type == QP.TokenEOF {
				log.Debug("tokenizer exhausted inside negative constant at location %d", loc)
				return
			}
			tok = next
		}

		locs.spans[i].length = tok.End - loc
		lastLoc = loc
	}
}

// lexTo advances the cursor until a token starting at or after loc.
// The token position should match exactly, but if the cursor somehow
// runs past it, the overshooting token is used.
func lexTo(tz *QP.Tokenizer, loc int) (QP.Token, bool) {
	for {
		tok, err := tz.Next()
		if err != nil || tok.Type == QP.TokenEOF {
			return QP.Token{}, true
		}
		if tok.Location >= loc {
			return tok, false
		}
	}
}
