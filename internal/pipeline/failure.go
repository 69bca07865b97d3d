package pipeline

import (
	"errors"
	"strings"
)

// Code classifies a domain failure so terminal handlers can branch on it.
type Code string

const (
	CodeDuplicateEmail   Code = "duplicate_email"
	CodeNotFound         Code = "not_found"
	CodePasswordMismatch Code = "password_mismatch"
	CodeInvalidLink      Code = "invalid_link"
	CodeTokenExpired     Code = "token_expired"
	CodeTokenUsed        Code = "token_used"
	CodeRejected         Code = "rejected"
)

// Failure is the domain outcome that stops a pipeline. Messages are the
// human-readable errors rendered back on the form.
type Failure struct {
	Code     Code
	Messages []string
}

func (f *Failure) Error() string {
	return string(f.Code) + ": " + strings.Join(f.Messages, " ")
}

// Fail builds a Failure error.
func Fail(code Code, messages ...string) error {
	return &Failure{Code: code, Messages: messages}
}

// AsFailure reports whether err is a domain failure. Store errors are not.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
