package forms

import "errors"

var (
	// ErrNotFound is returned when no mapping configuration exists for the
	// (org, form) pair. Distinct from transient load failures so callers can
	// fall back to defaults only on genuine absence.
	ErrNotFound = errors.New("form mappings not found")

	// ErrInvalidMappings is returned when a mapping set fails validation with
	// hard errors.
	ErrInvalidMappings = errors.New("invalid field mappings")
)
