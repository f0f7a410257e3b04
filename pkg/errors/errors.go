// Package errors provides custom error types for the modelwatch system.
// These errors classify failures at the region and step boundaries of a
// detection run so callers can decide what is fatal and what is not.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As re-export the standard library helpers so callers need a single
// errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors for the modelwatch system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable indicates the catalog API could not be read for a region
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrPersistence indicates a state store read or write failed
	ErrPersistence = errors.New("persistence failure")

	// ErrNotification indicates the notifier could not be invoked
	ErrNotification = errors.New("notification dispatch failed")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")

	// ErrIncompleteRun indicates a run finished but recorded errors
	ErrIncompleteRun = errors.New("run completed with errors")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error. It is the only error class
// that aborts a detection run before any work starts.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// UpstreamFetchError is returned when listing a region's catalog fails after
// the client's own retry policy is exhausted.
type UpstreamFetchError struct {
	Region string
	Err    error
}

// Error implements the error interface
func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetch catalog for region %s: %v", e.Region, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UpstreamFetchError) Is(target error) bool {
	return target == ErrUpstreamUnavailable
}

// NewUpstreamFetchError creates a new UpstreamFetchError
func NewUpstreamFetchError(region string, err error) *UpstreamFetchError {
	return &UpstreamFetchError{Region: region, Err: err}
}

// Persistence operations.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// PersistenceError represents a state store failure for one region.
// Op is OpRead or OpWrite.
type PersistenceError struct {
	Op     string
	Region string
	Err    error
}

// Error implements the error interface
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("state %s for region %s: %v", e.Op, e.Region, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// NewPersistenceReadError creates a PersistenceError for a failed read
func NewPersistenceReadError(region string, err error) *PersistenceError {
	return &PersistenceError{Op: OpRead, Region: region, Err: err}
}

// NewPersistenceWriteError creates a PersistenceError for a failed write
func NewPersistenceWriteError(region string, err error) *PersistenceError {
	return &PersistenceError{Op: OpWrite, Region: region, Err: err}
}

// NotificationError is returned when the notifier gateway cannot complete
// its invocation.
type NotificationError struct {
	Target string
	Err    error
}

// Error implements the error interface
func (e *NotificationError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("notify %s: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("notify: %v", e.Err)
}

// Unwrap implements errors.Unwrap
func (e *NotificationError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *NotificationError) Is(target error) bool {
	return target == ErrNotification
}

// NewNotificationError creates a new NotificationError
func NewNotificationError(target string, err error) *NotificationError {
	return &NotificationError{Target: target, Err: err}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation or configuration error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsUpstreamFetch checks if an error is an upstream fetch failure
func IsUpstreamFetch(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

// IsPersistence checks if an error is a state store failure
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsNotification checks if an error is a notification dispatch failure
func IsNotification(err error) bool {
	return errors.Is(err, ErrNotification)
}

// IsTimeout checks if an error is a timeout error
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", etc.
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "delete", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "open", "load", "put"
	Resource  string // "state store", "notifier", "client"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// NewResourceError creates a new ResourceError
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ResourceError{
		Operation: operation,
		Resource:  resource,
		ID:        id,
		Message:   message,
		Err:       err,
	}
}

// Helper wrapping functions for common patterns

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
