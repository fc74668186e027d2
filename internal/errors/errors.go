// Package errors provides consistent error types for Remindly.
// It defines two main categories: UserError (fixable by the user) and
// SystemError (I/O and platform issues). LoadError and SaveError are the
// SystemError flavours produced by the reminder document.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common conditions.
var (
	ErrEmptyText         = errors.New("reminder text cannot be empty")
	ErrIndexOutOfRange   = errors.New("reminder index out of range")
	ErrNotFound          = errors.New("no reminder for that date")
	ErrInvalidDateFormat = errors.New("invalid date format")
	ErrDiskFull          = errors.New("disk full")
	ErrDocumentCorrupted = errors.New("reminder file corrupted")
	ErrLockHeld          = errors.New("reminder file locked by another process")
	ErrPermissionDenied  = errors.New("permission denied")
)

// UserError represents an error that the user can fix.
type UserError struct {
	Message    string // What happened
	Suggestion string // How to fix it
	Field      string // The field/input that caused the error (optional)
	Value      string // The invalid value (optional)
	Cause      error  // Sentinel the error corresponds to (optional)
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Field != "" && e.Value != "" {
		msg = fmt.Sprintf("%s: '%s'", e.Message, e.Value)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Cause
}

// NewUserError creates a new UserError.
func NewUserError(message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Suggestion: suggestion,
	}
}

// NewUserErrorWithField creates a new UserError with field context.
func NewUserErrorWithField(field, value, message, suggestion string) *UserError {
	return &UserError{
		Message:    message,
		Field:      field,
		Value:      value,
		Suggestion: suggestion,
	}
}

// SystemError represents a system-level error that the user cannot directly fix.
type SystemError struct {
	Message string // What happened
	Cause   error  // The underlying error
	Op      string // The operation that failed (optional)
}

func (e *SystemError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s during %s", e.Message, e.Op)
	}
	return e.Message
}

func (e *SystemError) Unwrap() error {
	return e.Cause
}

// NewSystemError creates a new SystemError.
func NewSystemError(message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
	}
}

// NewSystemErrorWithOp creates a new SystemError with operation context.
func NewSystemErrorWithOp(op, message string, cause error) *SystemError {
	return &SystemError{
		Message: message,
		Cause:   cause,
		Op:      op,
	}
}

// LoadError reports a reminder document that exists but could not be read
// or decoded. It is never fatal: the store resets to empty collections.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load reminders from %s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// SaveError reports a failed write of the reminder document. The in-memory
// state is unaffected.
type SaveError struct {
	Path  string
	Cause error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save reminders to %s: %v", e.Path, e.Cause)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}

// IsUserError checks if an error is a UserError or one of the user-facing sentinels.
func IsUserError(err error) bool {
	var ue *UserError
	if errors.As(err, &ue) {
		return true
	}
	return errors.Is(err, ErrEmptyText) ||
		errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidDateFormat)
}

// IsSystemError checks if an error is a SystemError, LoadError or SaveError.
func IsSystemError(err error) bool {
	var se *SystemError
	var le *LoadError
	var sv *SaveError
	return errors.As(err, &se) || errors.As(err, &le) || errors.As(err, &sv)
}

// AsUserError extracts a UserError from an error chain.
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	ok := errors.As(err, &ue)
	return ue, ok
}

// AsLoadError extracts a LoadError from an error chain.
func AsLoadError(err error) (*LoadError, bool) {
	var le *LoadError
	ok := errors.As(err, &le)
	return le, ok
}

// AsSaveError extracts a SaveError from an error chain.
func AsSaveError(err error) (*SaveError, bool) {
	var se *SaveError
	ok := errors.As(err, &se)
	return se, ok
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// Chain returns the full error chain as a slice of error messages.
func Chain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}
