package domain

import (
	"errors"
	"fmt"
)

// Typed failures surfaced by services and repositories. Handlers translate
// these into status codes; nothing below knows about HTTP.

// NotFoundError indicates a referenced entity is absent
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// NotFound builds a NotFoundError
func NotFound(format string, args ...any) error {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// AlreadyExistsError indicates a uniqueness violation at the persistence layer
type AlreadyExistsError struct {
	Message string
}

func (e *AlreadyExistsError) Error() string { return e.Message }

// AlreadyExists builds an AlreadyExistsError
func AlreadyExists(format string, args ...any) error {
	return &AlreadyExistsError{Message: fmt.Sprintf(format, args...)}
}

// BusinessRuleError indicates a domain rule violation, e.g. an overlapping
// lease period
type BusinessRuleError struct {
	Message string
}

func (e *BusinessRuleError) Error() string { return e.Message }

// BusinessRuleViolation builds a BusinessRuleError
func BusinessRuleViolation(format string, args ...any) error {
	return &BusinessRuleError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError indicates malformed or out-of-range input, rejected before
// any persistence attempt
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation builds a ValidationError
func Validation(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UnauthorizedError indicates missing or invalid credentials
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string { return e.Message }

// Unauthorized builds an UnauthorizedError
func Unauthorized(format string, args ...any) error {
	return &UnauthorizedError{Message: fmt.Sprintf(format, args...)}
}

// ForbiddenError indicates the authenticated user lacks permission
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// Forbidden builds a ForbiddenError
func Forbidden(format string, args ...any) error {
	return &ForbiddenError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsAlreadyExists reports whether err is an AlreadyExistsError
func IsAlreadyExists(err error) bool {
	var e *AlreadyExistsError
	return errors.As(err, &e)
}

// IsBusinessRule reports whether err is a BusinessRuleError
func IsBusinessRule(err error) bool {
	var e *BusinessRuleError
	return errors.As(err, &e)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsForbidden reports whether err is a ForbiddenError
func IsForbidden(err error) bool {
	var e *ForbiddenError
	return errors.As(err, &e)
}
