package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want ErrorKind
	}{
		{name: "nil", err: nil, want: KindNone},
		{name: "no amount", err: ErrNoAmountFound, want: KindNoAmountFound},
		{name: "wrapped out of bounds", err: fmt.Errorf("rules: %w", ErrAmountOutOfBounds), want: KindAmountOutOfBounds},
		{name: "timeout", err: ErrProviderTimeout, want: KindProviderTimeout},
		{name: "context deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: KindProviderTimeout},
		{name: "unavailable", err: ErrProviderUnavailable, want: KindProviderUnavailable},
		{name: "not configured", err: ErrProviderNotConfigured, want: KindProviderUnavailable},
		{name: "malformed", err: ErrMalformedProviderResponse, want: KindMalformedProviderResponse},
		{name: "invalid category", err: ErrInvalidCategory, want: KindInvalidCategory},
		{name: "low confidence", err: ErrLowConfidence, want: KindLowConfidenceRetrySuggested},
		{name: "unknown", err: errors.New("boom"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestProviderTimeoutWrapsUnavailable(t *testing.T) {
	assert.ErrorIs(t, ErrProviderTimeout, ErrProviderUnavailable)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Contains(t, UserMessage(ErrNoAmountFound), "manually")
	assert.Contains(t, UserMessage(ErrAmountOutOfBounds), "too large")
	assert.Contains(t, UserMessage(ErrProviderTimeout), "Couldn't reach")
	assert.Contains(t, UserMessage(fmt.Errorf("fallback: %w", ErrProviderUnavailable)), "Couldn't reach")
	assert.Equal(t, "custom", UserMessage(NewUserError("custom", ErrNoAmountFound)))
}

func TestUserError(t *testing.T) {
	err := NewUserError("please retry", ErrProviderUnavailable)
	assert.Equal(t, "please retry: ai provider unavailable", err.Error())
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	bare := &UserError{UserMessage: "just text"}
	assert.Equal(t, "just text", bare.Error())
}
