package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/llm"
	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/model"
	"github.com/shopspring/decimal"
)

// MockAIExtractor is a test implementation of the AIExtractor interface.
// It returns the configured amount, category and confidence for every request.
type MockAIExtractor struct {
	Err        error
	Category   model.Category
	Amount     decimal.Decimal
	calls      []llm.Request
	Confidence float64
	mu         sync.Mutex
}

// NewMockAIExtractor creates a mock that answers every request with one candidate.
func NewMockAIExtractor(amount int64, category model.Category, confidence float64) *MockAIExtractor {
	return &MockAIExtractor{
		Amount:     decimal.NewFromInt(amount),
		Category:   category,
		Confidence: confidence,
	}
}

// NewFailingAIExtractor creates a mock whose every call fails with err.
func NewFailingAIExtractor(err error) *MockAIExtractor {
	return &MockAIExtractor{Err: err}
}

// Extract records the request and returns the configured answer.
func (m *MockAIExtractor) Extract(_ context.Context, pack *locale.Pack, req llm.Request) (*model.ExpenseCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if m.Err != nil {
		return nil, m.Err
	}
	if !pack.InBounds(m.Amount) {
		return nil, fmt.Errorf("mock amount %s: %w", m.Amount, common.ErrAmountOutOfBounds)
	}

	return &model.ExpenseCandidate{
		Amount:           m.Amount,
		Category:         model.NormalizeCategory(string(m.Category)),
		Description:      req.Text,
		OriginalText:     req.Text,
		Confidence:       m.Confidence,
		ExtractionMethod: model.MethodAI,
	}, nil
}

// Calls returns the requests seen so far.
func (m *MockAIExtractor) Calls() []llm.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]llm.Request, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns how many requests were made.
func (m *MockAIExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
