package config

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var identPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("ident", validateIdent)
}

// validateIdent accepts connection and module identifiers.
func validateIdent(fl validator.FieldLevel) bool {
	return identPattern.MatchString(fl.Field().String())
}
