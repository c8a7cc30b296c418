package errors

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	SN_OK ErrorCode = iota
	SN_ERROR
	SN_SYNTAX
	SN_UNTERMINATED
	SN_BADCHAR
)

var codeNames = map[ErrorCode]string{
	SN_OK:           "SN_OK",
	SN_ERROR:        "SN_ERROR",
	SN_SYNTAX:       "SN_SYNTAX",
	SN_UNTERMINATED: "SN_UNTERMINATED",
	SN_BADCHAR:      "SN_BADCHAR",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// Error is the structured error surfaced by the tokenizer and parser.
// Pos is the byte offset into the query text where the failure was
// detected, or -1 when unknown.
type Error struct {
	Code     ErrorCode
	Message  string
	Pos      int
	SQLState string
	Err      error
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s (at byte %d)", e.Message, e.Pos)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Syntax reports a parse failure at the given byte position.
func Syntax(pos int, format string, args ...interface{}) *Error {
	return &Error{
		Code:     SN_SYNTAX,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		SQLState: SQLState_SyntaxError,
	}
}

// Lex reports a lexical failure (unterminated literal, stray character).
func Lex(code ErrorCode, pos int, format string, args ...interface{}) *Error {
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		SQLState: SQLState_SyntaxError,
	}
}

// ErrorCodeOf returns the code carried by err, or SN_ERROR for foreign errors.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return SN_OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return SN_ERROR
}

// PositionOf returns the byte position carried by err, or -1.
func PositionOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Pos
	}
	return -1
}
