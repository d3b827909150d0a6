package validator

import (
	"sync"

	"github.com/go-playground/validator/v10"

	ierr "github.com/recouphq/recoup/internal/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateRequest validates a request struct against its `validate` tags and
// converts failures into a validation error with field level details.
func ValidateRequest(req interface{}) error {
	err := GetValidator().Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ierr.WithError(err).
			WithHint("Request validation failed").
			Mark(ierr.ErrValidation)
	}

	details := make(map[string]interface{}, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}

	return ierr.WithError(err).
		WithHint("Request validation failed").
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}
