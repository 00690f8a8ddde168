package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain layer operations.
var (
	// ErrNotFound indicates that a requested entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrUnknownBook indicates that no book exists for the isbn
	ErrUnknownBook = errors.New("unknown book")

	// ErrBookMismatch indicates an add for an existing isbn with different details
	ErrBookMismatch = errors.New("book data mismatch")

	// ErrNoCopiesAvailable indicates every copy of the title is checked out
	ErrNoCopiesAvailable = errors.New("no copies available")

	// ErrAlreadyCheckedOut indicates the patron already holds a copy of the title
	ErrAlreadyCheckedOut = errors.New("already checked out")

	// ErrNotCheckedOut indicates the patron holds no copy of the title
	ErrNotCheckedOut = errors.New("not checked out")
)

// Code classifies an Error.
type Code string

const (
	// CodeMissing marks a required field that is absent.
	CodeMissing Code = "MISSING"
	// CodeBadType marks a field that is present but invalid, including
	// state conflicts reported against a field.
	CodeBadType Code = "BAD_TYPE"
	// CodeBadReq marks a malformed request not attributable to one field.
	CodeBadReq Code = "BAD_REQ"
	// CodeDB marks a persistence failure.
	CodeDB Code = "DB"
	// CodeConfig marks a programming or configuration mistake, such as an
	// unknown command.
	CodeConfig Code = "CONFIG"
)

// Error is a structured failure carrying a code, a human readable message
// and the dotted path of the offending field (empty when not field specific).
type Error struct {
	Code    Code
	Message string
	Path    string
	Err     error
}

// Error returns a formatted error message.
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s; path=%s", e.Code, e.Message, e.Path)
}

// Unwrap returns the cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// NewError builds an Error.
func NewError(code Code, path, message string) *Error {
	return &Error{Code: code, Path: path, Message: message}
}

// ConflictError reports a state-invariant violation on isbn.
func ConflictError(cause error, message string) *Error {
	return &Error{Code: CodeBadType, Path: "isbn", Message: message, Err: cause}
}

// DBError wraps a persistence failure.
func DBError(err error) *Error {
	return &Error{Code: CodeDB, Message: err.Error(), Err: err}
}

// WrapDB passes structured errors through and turns anything else into a
// DB error. Use cases call it on every error leaving the persistence layer.
func WrapDB(err error) error {
	if err == nil {
		return nil
	}
	var list Errors
	var one *Error
	if errors.As(err, &list) || errors.As(err, &one) {
		return err
	}
	return DBError(err)
}

// Errors is a list of structured errors returned together, typically every
// failing field of one request.
type Errors []*Error

// Error joins the individual messages.
func (es Errors) Error() string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes every element to errors.Is and errors.As.
func (es Errors) Unwrap() []error {
	out := make([]error, 0, len(es))
	for _, e := range es {
		out = append(out, e)
	}
	return out
}

// AsErrors flattens err into structured errors. Unstructured errors become a
// single DB error since they can only originate below the use-case layer.
func AsErrors(err error) Errors {
	if err == nil {
		return nil
	}
	var list Errors
	if errors.As(err, &list) {
		return list
	}
	var one *Error
	if errors.As(err, &one) {
		return Errors{one}
	}
	return Errors{DBError(err)}
}

// HasCode reports whether any structured error in err carries code.
func HasCode(err error, code Code) bool {
	var list Errors
	if errors.As(err, &list) {
		for _, e := range list {
			if e.Code == code {
				return true
			}
		}
		return false
	}
	var one *Error
	return errors.As(err, &one) && one.Code == code
}
