package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RequestValidationError aggregates the per-field failures of one request.
type RequestValidationError struct {
	Fields []string
}

func (e *RequestValidationError) Error() string {
	return "request validation failed: " + strings.Join(e.Fields, "; ")
}

// ValidateRequest runs struct-tag validation on a request DTO.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s failed on %q", fe.Field(), fe.Tag()))
	}
	return &RequestValidationError{Fields: fields}
}
