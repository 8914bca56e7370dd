package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator runs the struct-tag checks the ingest pipeline applies to
// normalized listings before they are persisted.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the library's default tag set, which covers
// the required and url constraints the listing models declare.
func New() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// ValidateStruct checks one struct against its validate tags. A listing that
// fails here is counted as a parse failure and never reaches storage.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}
