package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors. Every error leaving a service or repository is marked
// with exactly one of these so callers and the HTTP layer can classify it
// without string matching.
var (
	ErrValidation       = errors.New("validation_error")
	ErrNotFound         = errors.New("not_found")
	ErrAlreadyExists    = errors.New("already_exists")
	ErrInvalidOperation = errors.New("invalid_operation")
	ErrPermissionDenied = errors.New("permission_denied")
	ErrDatabase         = errors.New("database_error")
	ErrGateway          = errors.New("gateway_error")
	ErrInternal         = errors.New("internal_error")
	ErrSystem           = errors.New("system_error")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func IsGateway(err error) bool {
	return errors.Is(err, ErrGateway)
}
