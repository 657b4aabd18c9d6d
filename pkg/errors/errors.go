// Package errors wraps github.com/pkg/errors with the helpers used throughout
// fss. Errors are annotated with short context strings as they travel up the
// stack, so that the final message reads like "load pairs: open: ...".
package errors

import (
	"fmt"

	pkgErrors "github.com/pkg/errors"
)

// New returns an error with the supplied message.
func New(msg string) error {
	return pkgErrors.New(msg)
}

// Errorf formats according to a format specifier and returns the string as
// an error.
func Errorf(format string, args ...interface{}) error {
	return pkgErrors.Errorf(format, args...)
}

// WithContext annotates err with the given context. It returns nil if err is
// nil.
func WithContext(err error, context string) error {
	return pkgErrors.WithMessage(err, context)
}

// RootCause returns the underlying cause of the error, if possible.
func RootCause(err error) error {
	return pkgErrors.Cause(err)
}

// FriendlyError is an error whose message is meant to be shown to the user
// verbatim, without any of the context that was added while unwinding.
type FriendlyError struct {
	msg string
}

// NewFriendlyError creates a FriendlyError with the formatted message.
func NewFriendlyError(format string, args ...interface{}) error {
	return FriendlyError{fmt.Sprintf(format, args...)}
}

func (err FriendlyError) Error() string {
	return err.msg
}

// FriendlyMessage returns the message that should be shown to the user.
func (err FriendlyError) FriendlyMessage() string {
	return err.msg
}

// Friendly is implemented by errors that carry a user-facing message.
type Friendly interface {
	FriendlyMessage() string
}
