// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Extraction errors.
var (
	// ErrNoAmountFound means no stage could derive a numeral from the transcript.
	ErrNoAmountFound = errors.New("no amount found")
	// ErrAmountOutOfBounds means a numeral was present but is not a plausible expense.
	ErrAmountOutOfBounds = errors.New("amount out of bounds")
	// ErrInvalidCategory is recovered locally by coercion to "other" and never surfaced.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrLowConfidence is a soft signal asking the caller to re-capture the utterance.
	ErrLowConfidence = errors.New("low confidence, retry suggested")
)

// Provider errors.
var (
	// ErrProviderUnavailable covers network failures talking to the AI provider.
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	// ErrProviderTimeout is a provider call that hit its deadline.
	ErrProviderTimeout = fmt.Errorf("%w: timed out", ErrProviderUnavailable)
	// ErrMalformedProviderResponse means a response arrived but did not hold the expected JSON.
	ErrMalformedProviderResponse = errors.New("malformed provider response")
	// ErrProviderNotConfigured is returned when no provider client was wired in.
	ErrProviderNotConfigured = fmt.Errorf("%w: not configured", ErrProviderUnavailable)
)

// Configuration errors.
var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// ErrorKind classifies extraction failures for callers and telemetry.
type ErrorKind string

// Error kinds.
const (
	KindNone                        ErrorKind = ""
	KindNoAmountFound               ErrorKind = "NoAmountFound"
	KindAmountOutOfBounds           ErrorKind = "AmountOutOfBounds"
	KindProviderUnavailable         ErrorKind = "ProviderUnavailable"
	KindProviderTimeout             ErrorKind = "ProviderTimeout"
	KindMalformedProviderResponse   ErrorKind = "MalformedProviderResponse"
	KindInvalidCategory             ErrorKind = "InvalidCategory"
	KindLowConfidenceRetrySuggested ErrorKind = "LowConfidenceRetrySuggested"
	KindInternal                    ErrorKind = "Internal"
)

// KindOf maps an error onto the extraction taxonomy.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAmountOutOfBounds):
		return KindAmountOutOfBounds
	case errors.Is(err, ErrNoAmountFound):
		return KindNoAmountFound
	case errors.Is(err, ErrProviderTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindProviderTimeout
	case errors.Is(err, ErrProviderUnavailable):
		return KindProviderUnavailable
	case errors.Is(err, ErrMalformedProviderResponse):
		return KindMalformedProviderResponse
	case errors.Is(err, ErrInvalidCategory):
		return KindInvalidCategory
	case errors.Is(err, ErrLowConfidence):
		return KindLowConfidenceRetrySuggested
	default:
		return KindInternal
	}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// UserMessage returns the user-facing text for an extraction failure.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}

	switch KindOf(err) {
	case KindAmountOutOfBounds:
		return "That amount looks too large for a single expense. Please enter it manually."
	case KindNoAmountFound:
		return "Couldn't find an amount in what you said. Please enter the expense manually."
	case KindProviderUnavailable, KindProviderTimeout:
		return "Couldn't reach the expense reader and found no amount on my own. Please enter the expense manually."
	case KindLowConfidenceRetrySuggested:
		return "Not sure I heard that right. Please say it again."
	case KindNone:
		return ""
	default:
		return "Something went wrong while reading the expense. Please enter it manually."
	}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
