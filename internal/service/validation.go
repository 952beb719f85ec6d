package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/attendance-agent/pkg/util/errorutil"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct turns validator failures into the shared validation error
// shape, with one detail entry per failing field.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		return apperrors.NewValidationError("missing or invalid fields", details)
	}
	return apperrors.NewValidationError(err.Error(), nil)
}
