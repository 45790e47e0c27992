package usecase

import (
	"strings"

	"workzone_backend/internal/shared/validation"
)

// validateStruct runs the struct validator and folds every failure into ve.
func validateStruct(ve *ValidationError, s any) error {
	fields, err := validation.Struct(s)
	if err != nil {
		return err
	}
	for field, msg := range fields {
		ve.add(field, msg)
	}
	return nil
}

// normalizeEmail lower-cases and trims an address. Uniqueness is case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
