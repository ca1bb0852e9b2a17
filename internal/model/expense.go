// Package model defines the core domain models used throughout the application.
package model

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ExtractionMethod tags which pipeline stage produced a candidate.
type ExtractionMethod string

// Extraction methods.
const (
	MethodRuleBased ExtractionMethod = "rule-based"
	MethodAI        ExtractionMethod = "ai-powered"
	MethodFallback  ExtractionMethod = "fallback-extraction"
)

// ExpenseCandidate is the structured record produced by any extraction stage.
type ExpenseCandidate struct {
	Merchant         *string
	ID               string
	Category         Category
	Description      string
	OriginalText     string
	ExtractionMethod ExtractionMethod
	Amount           decimal.Decimal
	Confidence       float64
}

type expenseCandidateJSON struct {
	Merchant         *string          `json:"merchant"`
	ID               string           `json:"id,omitempty"`
	Category         Category         `json:"category"`
	Description      string           `json:"description"`
	OriginalText     string           `json:"originalText"`
	ExtractionMethod ExtractionMethod `json:"extractionMethod"`
	Amount           json.Number      `json:"amount"`
	Confidence       float64          `json:"confidence"`
}

// MarshalJSON writes the amount as a JSON number and the merchant as null when absent.
func (e ExpenseCandidate) MarshalJSON() ([]byte, error) {
	return json.Marshal(expenseCandidateJSON{
		ID:               e.ID,
		Amount:           json.Number(e.Amount.String()),
		Category:         e.Category,
		Merchant:         e.Merchant,
		Description:      e.Description,
		OriginalText:     e.OriginalText,
		Confidence:       e.Confidence,
		ExtractionMethod: e.ExtractionMethod,
	})
}

// UnmarshalJSON accepts the shape produced by MarshalJSON.
func (e *ExpenseCandidate) UnmarshalJSON(data []byte) error {
	var raw expenseCandidateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(raw.Amount.String())
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", raw.Amount, err)
	}

	*e = ExpenseCandidate{
		ID:               raw.ID,
		Amount:           amount,
		Category:         NormalizeCategory(string(raw.Category)),
		Merchant:         raw.Merchant,
		Description:      raw.Description,
		OriginalText:     raw.OriginalText,
		Confidence:       raw.Confidence,
		ExtractionMethod: raw.ExtractionMethod,
	}
	return nil
}

// MerchantName returns the merchant or an empty string.
func (e *ExpenseCandidate) MerchantName() string {
	if e.Merchant == nil {
		return ""
	}
	return *e.Merchant
}

// Validate checks the candidate invariants against the given upper bound.
func (e *ExpenseCandidate) Validate(maxAmount decimal.Decimal) error {
	if !e.Amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", e.Amount)
	}
	if e.Amount.GreaterThan(maxAmount) {
		return fmt.Errorf("amount %s exceeds maximum %s", e.Amount, maxAmount)
	}
	if !e.Category.IsValid() {
		return fmt.Errorf("category %q is not in the closed set", e.Category)
	}
	if e.Confidence < 0 || e.Confidence > 1 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", e.Confidence)
	}
	if e.OriginalText == "" {
		return fmt.Errorf("original text is required")
	}
	return nil
}
