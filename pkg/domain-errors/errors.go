// Package domainerrors defines the typed error taxonomy shared by all four stores.
//
// Every public operation returns either a success value or exactly one of
// these coded errors. The numeric discriminants are stable and preserved for
// wire compatibility with existing callers; each distinct failure condition
// gets its own value rather than reusing an ambiguous code across operations.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a failure condition.
type Code string

const (
	// CodeNotAuthorized: the caller lacks the required role.
	CodeNotAuthorized Code = "not_authorized"
	// CodeInvalidInput: malformed hash, identifier, or policy id.
	CodeInvalidInput Code = "invalid_input"
	// CodeAlreadyExists: the hash, identifier, or proof is already consumed.
	CodeAlreadyExists Code = "already_exists"
	// CodeNotTrusted: the issuer contract is not on the relevant trust list.
	CodeNotTrusted Code = "not_trusted"
	// CodeNotFound: no such record.
	CodeNotFound Code = "not_found"
	// CodeZeroAddress: a null account was supplied where a real one is required.
	CodeZeroAddress Code = "zero_address"
	// CodeMisconfiguredDependency: a required cross-store reference is unset.
	CodeMisconfiguredDependency Code = "misconfigured_dependency"
	// CodePaused: the store is unavailable for mutation.
	CodePaused Code = "paused"
	// CodeInvalidCredential: the referenced credential failed its validity check.
	CodeInvalidCredential Code = "invalid_credential"
	// CodeAlreadyVerified: the proof has already made its single transition.
	CodeAlreadyVerified Code = "already_verified"
	// CodeInternal: unexpected infrastructure failure.
	CodeInternal Code = "internal"
)

// codeNumbers carries the stable numeric discriminants existing callers rely
// on. NotAuthorized=100, InvalidInput=101, NotFound=104, and Paused=107 match
// the idioms shared across all stores.
var codeNumbers = map[Code]int{
	CodeNotAuthorized:           100,
	CodeInvalidInput:            101,
	CodeAlreadyExists:           102,
	CodeNotTrusted:              103,
	CodeNotFound:                104,
	CodeZeroAddress:             105,
	CodeMisconfiguredDependency: 106,
	CodePaused:                  107,
	CodeInvalidCredential:       108,
	CodeAlreadyVerified:         109,
	CodeInternal:                199,
}

// Number returns the stable numeric discriminant for the code.
func (c Code) Number() int {
	if n, ok := codeNumbers[c]; ok {
		return n
	}
	return codeNumbers[CodeInternal]
}

// Error is a coded domain error. Compare with HasCode, not string matching.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Code.Number(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// New builds a coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a coded error around an underlying cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// CodeOf extracts the code from an error chain; CodeInternal when uncoded.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether the error chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
