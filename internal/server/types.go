package server

import (
	"encoding/json"
	"time"

	"github.com/Veraticus/kharcha/internal/storage"
)

// HistoryEntry is one audit log row as served by the history endpoints.
type HistoryEntry struct {
	CreatedAt        time.Time    `json:"createdAt"`
	Merchant         *string      `json:"merchant"`
	Amount           *json.Number `json:"amount"`
	ID               string       `json:"id"`
	Text             string       `json:"text"`
	Status           string       `json:"status"`
	Kind             string       `json:"kind,omitempty"`
	ExtractionMethod string       `json:"extractionMethod,omitempty"`
	Category         string       `json:"category,omitempty"`
	Description      string       `json:"description,omitempty"`
	Error            string       `json:"error,omitempty"`
	Alternatives     []string     `json:"alternatives,omitempty"`
	Confidence       float64      `json:"confidence"`
}

// NewHistoryEntry converts an audit log record to its API shape.
func NewHistoryEntry(r storage.ExtractionRecord) HistoryEntry {
	entry := HistoryEntry{
		CreatedAt:        r.CreatedAt,
		Merchant:         r.Merchant,
		ID:               r.ID,
		Text:             r.Text,
		Status:           string(r.Status),
		Kind:             r.Kind,
		ExtractionMethod: string(r.Method),
		Category:         string(r.Category),
		Description:      r.Description,
		Error:            r.Error,
		Alternatives:     r.Alternatives,
		Confidence:       r.Confidence,
	}
	if r.Amount.Valid {
		n := json.Number(r.Amount.Decimal.String())
		entry.Amount = &n
	}
	return entry
}
