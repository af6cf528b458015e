package domain

import (
	"errors"
	"fmt"
)

// Error codes for categorization
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeConflict   = "CONFLICT"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeDatabase   = "DATABASE_ERROR"

	// Pipeline errors
	ErrCodeFetchFailed       = "FETCH_FAILED"
	ErrCodeRobotsDisallowed  = "ROBOTS_DISALLOWED"
	ErrCodeDiffFailed        = "DIFF_FAILED"
	ErrCodePersistenceFailed = "PERSISTENCE_FAILED"
	ErrCodeJobConflict       = "JOB_CONFLICT"
)

// DomainError is a structured error for domain operations
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for error comparison
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel domain errors (used with errors.Is)
var (
	ErrNotFoundVal         = &DomainError{Code: ErrCodeNotFound, Message: "not found"}
	ErrAlreadyExistsVal    = &DomainError{Code: ErrCodeConflict, Message: "already exists"}
	ErrInvalidInputVal     = &DomainError{Code: ErrCodeValidation, Message: "invalid input"}
	ErrJobConflictVal      = &DomainError{Code: ErrCodeJobConflict, Message: "job already active"}
	ErrRobotsDisallowedVal = &DomainError{Code: ErrCodeRobotsDisallowed, Message: "disallowed by robots.txt"}
)

// NotFoundError creates a not found domain error
func NotFoundError(resource string, id any) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Details: map[string]any{"resource": resource, "id": id},
		Err:     ErrNotFoundVal,
	}
}

// AlreadyExistsError creates an already exists domain error
func AlreadyExistsError(resource, field, value string) *DomainError {
	return &DomainError{
		Code:    ErrCodeConflict,
		Message: fmt.Sprintf("%s with %s '%s' already exists", resource, field, value),
		Details: map[string]any{"resource": resource, "field": field, "value": value},
		Err:     ErrAlreadyExistsVal,
	}
}

// ValidationError creates a validation domain error
func ValidationError(field, message string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: message,
		Details: map[string]any{"field": field},
		Err:     ErrInvalidInputVal,
	}
}

// JobConflictError signals that a competitor already has an active crawl job
func JobConflictError(competitorID any) *DomainError {
	return &DomainError{
		Code:    ErrCodeJobConflict,
		Message: fmt.Sprintf("competitor %v already has an active crawl job", competitorID),
		Details: map[string]any{"competitor_id": competitorID},
		Err:     ErrJobConflictVal,
	}
}

// FetchError is the typed failure returned when a page fetch exhausts all
// retry attempts. The last attempt's error message is preserved for the job
// error log.
type FetchError struct {
	URL      string
	Attempts int
	LastErr  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("[%s] fetching %s failed after %d attempts: %v",
		ErrCodeFetchFailed, e.URL, e.Attempts, e.LastErr)
}

func (e *FetchError) Unwrap() error {
	return e.LastErr
}

// RobotsDisallowedError signals that robots.txt forbids fetching the URL.
// An informational skip, not a crawl failure.
type RobotsDisallowedError struct {
	URL string
}

func (e *RobotsDisallowedError) Error() string {
	return fmt.Sprintf("[%s] %s disallowed by robots.txt", ErrCodeRobotsDisallowed, e.URL)
}

// IsRobotsDisallowed reports whether err is a robots.txt skip
func IsRobotsDisallowed(err error) bool {
	var rd *RobotsDisallowedError
	return errors.As(err, &rd)
}

// IsFetchFailure reports whether err is an exhausted-retries fetch failure
func IsFetchFailure(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsSentinelError checks if err matches a sentinel error
func IsSentinelError(err error, sentinel *DomainError) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == sentinel.Code
	}
	return false
}
