package errors

import "errors"

// SQLSTATE codes (SQL standard ISO/IEC 9075)
const (
	SQLState_OK          = "00000"
	SQLState_SyntaxError = "42601"
)

// SQLStateOf returns the SQLSTATE code for the error, or "00000" if nil.
func SQLStateOf(err error) string {
	if err == nil {
		return SQLState_OK
	}
	var e *Error
	if errors.As(err, &e) && e.SQLState != "" {
		return e.SQLState
	}
	switch ErrorCodeOf(err) {
	case SN_SYNTAX, SN_UNTERMINATED, SN_BADCHAR:
		return SQLState_SyntaxError
	default:
		return "HY000" // General error
	}
}
