package store

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer. Callers classify failures with errors.Is
// against ErrValidation and ErrNotFound, anything else is unhandled.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
)

// Sentinel errors for group and person store operations
var (
	ErrGroupNotFound         = fmt.Errorf("group %w", ErrNotFound)
	ErrPersonNotFound        = fmt.Errorf("person %w", ErrNotFound)
	ErrGroupNameTaken        = fmt.Errorf("%w: group name must be unique", ErrValidation)
	ErrDuplicatePerson       = fmt.Errorf("%w: person already exists", ErrValidation)
	ErrUnknownGroupReference = fmt.Errorf("%w: referenced group does not exist", ErrValidation)
)

// IsValidation reports whether err belongs to the validation family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err belongs to the not found family.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
