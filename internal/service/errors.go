package service

import (
	"errors"
	"fmt"

	"github.com/lshigami/wellrelay/internal/repository"
	"gorm.io/gorm"
)

// ErrNotFound is returned by read operations when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports a request the service refused before touching the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DependencyError wraps a store failure that aborted an operation.
// UserAssessmentID is set when an aggregate row was already written and its
// itemized responses were not.
type DependencyError struct {
	Op               string
	Err              error
	UserAssessmentID string
}

func (e *DependencyError) Error() string {
	if e.UserAssessmentID != "" {
		return fmt.Sprintf("%s (user_assessment %s): %v", e.Op, e.UserAssessmentID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// scopedRepos resolves the caller's identity. A token that cannot be read is
// a bad request, not a store failure.
func scopedRepos(store repository.Provider, authToken string) (*repository.Repositories, error) {
	repos, err := store.For(authToken)
	if err != nil {
		return nil, newValidationError("authorization", err.Error())
	}
	return repos, nil
}

// readError maps a repository read failure for a single row.
func readError(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return &DependencyError{Op: op, Err: err}
}
