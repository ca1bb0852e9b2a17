package engine

import (
	"context"

	"github.com/Veraticus/kharcha/internal/llm"
	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/model"
)

// AIExtractor defines the contract for the AI fallback stage.
type AIExtractor interface {
	Extract(ctx context.Context, pack *locale.Pack, req llm.Request) (*model.ExpenseCandidate, error)
}

// Recorder persists finished extractions, for example to an audit log.
type Recorder interface {
	SaveExtraction(ctx context.Context, transcript model.Transcript, result Result) error
}
