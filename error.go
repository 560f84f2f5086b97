package inlay

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINTERNAL  = "internal"
	EINVALID   = "invalid"
	EMISSING   = "missing_input"
	EUNMATCHED = "required_rule_unmatched"
	EWRITE     = "write_failed"
)

// Error represents an application-specific error. Fatal extraction failures
// are always reported as *Error so callers can branch on Code.
type Error struct {
	Code    string
	Message string

	// Rule names the extraction rule that failed, if any.
	Rule string

	// Widget names the widget being extracted when several run together.
	Widget string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	s := "inlay error: code=" + e.Code
	if e.Widget != "" {
		s += " widget=" + e.Widget
	}
	if e.Rule != "" {
		s += " rule=" + e.Rule
	}
	return s + " message=" + e.Message
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// RuleErrorf is like Errorf but records the failing rule.
func RuleErrorf(code, rule string, format string, args ...interface{}) *Error {
	e := Errorf(code, format, args...)
	e.Rule = rule
	return e
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// ErrorRule unwraps an application error and returns the failing rule name.
func ErrorRule(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Rule
	}
	return ""
}

// ErrorWidget unwraps an application error and returns the widget it
// belongs to.
func ErrorWidget(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Widget
	}
	return ""
}

// Warning is a non-fatal extraction finding, such as an optional rule that
// matched nothing. Warnings never block completion.
type Warning struct {
	Rule    string
	Message string
}

func (w Warning) String() string {
	return w.Rule + ": " + w.Message
}
