package contacts

import "errors"

var (
	// ErrMissingOrgID is returned when a contact has no owning organization.
	ErrMissingOrgID = errors.New("org id is required")

	// ErrMissingIdentity is returned when a contact has no email, phone, or name.
	ErrMissingIdentity = errors.New("email, phone, or name is required")

	// ErrNotFound is returned when a contact does not exist.
	ErrNotFound = errors.New("contact not found")
)
