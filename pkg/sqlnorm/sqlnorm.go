// Package sqlnorm normalizes SQL query text for fingerprinting: every
// literal constant is replaced with a '?' placeholder, everything else
// is preserved byte for byte. Use it to group structurally identical
// queries regardless of their literal values.
package sqlnorm

import (
	"errors"
	"fmt"

	"github.com/sqlvibe/sqlnorm/internal/QN"
	sferrors "github.com/sqlvibe/sqlnorm/internal/SF/errors"
)

// ParseError is returned when the input cannot be parsed. CursorPos is
// the byte offset into the query where the failure was detected, or -1
// when unknown.
type ParseError struct {
	Message   string
	CursorPos int
}

func (e *ParseError) Error() string {
	if e.CursorPos >= 0 {
		return fmt.Sprintf("%s (at byte %d)", e.Message, e.CursorPos)
	}
	return e.Message
}

// Normalize returns the canonical form of sql with every literal
// constant replaced by '?'. Whitespace, comments and identifier casing
// are untouched, so len(result) <= len(sql). A query that fails to
// parse returns a *ParseError and no output.
func Normalize(sql string) (string, error) {
	norm, err := QN.Normalize(sql)
	if err != nil {
		return "", asParseError(err)
	}
	return norm, nil
}

// Fingerprint returns a 64-bit hash of the normalized form of sql.
// Queries differing only in literal values share a fingerprint.
func Fingerprint(sql string) (uint64, error) {
	fp, err := QN.Fingerprint(sql)
	if err != nil {
		return 0, asParseError(err)
	}
	return fp, nil
}

// FingerprintString is Fingerprint formatted as fixed-width hex.
func FingerprintString(sql string) (string, error) {
	fp, err := Fingerprint(sql)
	if err != nil {
		return "", err
	}
	return QN.FingerprintString(fp), nil
}

// IsParseError reports whether err is a parse failure and unwraps it.
func IsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

func asParseError(err error) error {
	var se *sferrors.Error
	if errors.As(err, &se) {
		return &ParseError{Message: se.Message, CursorPos: se.Pos}
	}
	return err
}
