package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// InternalError carries a user safe hint and reportable details alongside
// the wrapped cause. The cause keeps its full cockroachdb stack trace.
type InternalError struct {
	cause             error
	hint              string
	reportableDetails map[string]interface{}
}

func (e *InternalError) Error() string {
	return e.cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Hint returns the user safe hint attached to the error, if any.
func (e *InternalError) Hint() string {
	return e.hint
}

// ReportableDetails returns structured details safe to expose in API
// responses and logs.
func (e *InternalError) ReportableDetails() map[string]interface{} {
	return e.reportableDetails
}

// ErrorBuilder builds an InternalError fluently. Terminate the chain with
// Mark to classify the error with one of the package sentinels.
type ErrorBuilder struct {
	err *InternalError
}

// NewError starts a builder from a fresh error message.
func NewError(message string) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{cause: errors.NewWithDepth(1, message)},
	}
}

// NewErrorf starts a builder from a formatted error message.
func NewErrorf(format string, args ...interface{}) *ErrorBuilder {
	return &ErrorBuilder{
		err: &InternalError{cause: errors.NewWithDepth(1, fmt.Sprintf(format, args...))},
	}
}

// WithError starts a builder wrapping an existing error.
func WithError(err error) *ErrorBuilder {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &ErrorBuilder{
		err: &InternalError{cause: err},
	}
}

// WithHint attaches a user safe hint.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

// WithHintf attaches a formatted user safe hint.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.err.hint = fmt.Sprintf(format, args...)
	return b
}

// WithReportableDetails attaches structured details safe to surface to the
// caller.
func (b *ErrorBuilder) WithReportableDetails(details map[string]interface{}) *ErrorBuilder {
	b.err.reportableDetails = details
	return b
}

// Mark classifies the built error with the given sentinel and returns it.
func (b *ErrorBuilder) Mark(mark error) error {
	return errors.Mark(b.err, mark)
}

// Hint extracts the hint from an error chain, or "" when absent.
func Hint(err error) string {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.Hint()
	}
	return ""
}

// ReportableDetails extracts the reportable details from an error chain.
func ReportableDetails(err error) map[string]interface{} {
	var ie *InternalError
	if errors.As(err, &ie) {
		return ie.ReportableDetails()
	}
	return nil
}
