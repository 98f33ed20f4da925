package services

import (
	"errors"
	"fmt"
)

var (
	ErrFormNotFound         = errors.New("registration form not found or inactive")
	ErrFormMissing          = errors.New("form not found")
	ErrFormExists           = errors.New("form already exists for this event")
	ErrEventNotFound        = errors.New("event not found")
	ErrSlugTaken            = errors.New("an event with this slug already exists")
	ErrDeadlinePassed       = errors.New("registration deadline has passed")
	ErrAlreadyRegistered    = errors.New("this email has already registered for this event")
	ErrLimitReached         = errors.New("registration limit reached")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrNoRegistrations      = errors.New("no registrations found")

	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("admin access required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// ValidationError is a rejected input; Reason is safe to show to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
