package model

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownAlertType   = errors.New("unknown alert type")
	ErrInvalidWindow      = errors.New("invalid alert window")
	ErrTermsCountMismatch = errors.New("terms count mismatch")
	ErrTermCycle          = errors.New("term cycle")
	ErrInvalidTermID      = errors.New("invalid term id")
	ErrPathMismatch       = errors.New("term path mismatch")
	ErrEmptyPayload       = errors.New("empty payload")
	ErrServerError        = errors.New("server error")
)

// ValidationError reports a single taxonomy violation.
type ValidationError struct {
	Kind   error
	TermID string
	Msg    string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	prefix := e.Kind.Error()
	if e.TermID != "" {
		prefix = fmt.Sprintf("%s (term %s)", prefix, e.TermID)
	}
	if e.Msg == "" {
		return prefix
	}
	return prefix + ": " + e.Msg
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// Violation builds a ValidationError of the given kind.
func Violation(kind error, termID, format string, args ...any) error {
	return &ValidationError{Kind: kind, TermID: termID, Msg: fmt.Sprintf(format, args...)}
}
