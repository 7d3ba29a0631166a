package repository

import (
	"strings"
)

// ErrorType represents the type of database error that occurred
type ErrorType string

const (
	DuplicateKeyError ErrorType = "duplicate_key"
	LockError         ErrorType = "lock"
	TransientError    ErrorType = "transient"
)

// duplicateKeyMarkers covers the unique-violation wording of the supported
// drivers (postgres and sqlite)
var duplicateKeyMarkers = []string{
	"duplicate key",
	"unique constraint",
}

// lockMarkers are contention failures that resolve on replay
var lockMarkers = []string{
	"deadlock",
	"lock wait timeout",
	"could not serialize access",
	"serialization failure",
	"database is locked",
}

// transientMarkers are connectivity failures worth one more attempt
var transientMarkers = []string{
	"connection reset",
	"connection refused",
	"timeout",
	"eof",
	"server closed",
	"broken pipe",
	"too many connections",
}

// ErrorClassifier maps raw driver errors onto the categories the
// repositories and the retrying unit of work act on
type ErrorClassifier struct{}

// NewErrorClassifier creates a new ErrorClassifier
func NewErrorClassifier() *ErrorClassifier {
	return &ErrorClassifier{}
}

// Classify returns the type of error
func (c *ErrorClassifier) Classify(err error) ErrorType {
	switch {
	case c.IsDuplicateKeyError(err):
		return DuplicateKeyError
	case c.IsLockError(err):
		return LockError
	case c.IsTransientError(err):
		return TransientError
	default:
		return ""
	}
}

// IsDuplicateKeyError checks if the error is a unique-index violation.
// These map to business errors and must never be retried.
func (c *ErrorClassifier) IsDuplicateKeyError(err error) bool {
	return matchesAny(err, duplicateKeyMarkers)
}

// IsLockError checks if the error is due to lock contention
func (c *ErrorClassifier) IsLockError(err error) bool {
	return matchesAny(err, lockMarkers)
}

// IsTransientError checks if an error is transient and can be retried
func (c *ErrorClassifier) IsTransientError(err error) bool {
	return matchesAny(err, transientMarkers)
}

func matchesAny(err error, markers []string) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
