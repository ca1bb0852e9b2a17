// Package storage persists the extraction audit log.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/kharcha/internal/engine"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrInvalidResult = errors.New("invalid extraction result")
	ErrNotFound      = errors.New("extraction not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateResult checks that a result carries what the audit log needs.
func validateResult(result engine.Result) error {
	if err := validateString(result.ID, "id"); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}

	switch result.Status {
	case engine.StatusAccepted, engine.StatusRetrySuggested:
		if result.Data == nil {
			return fmt.Errorf("%w: %s result without data", ErrInvalidResult, result.Status)
		}
	case engine.StatusRejected:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidResult, result.Status)
	}

	return nil
}
