// Package engine implements the extraction pipeline that turns a transcript
// into an expense candidate or a typed rejection.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/fallback"
	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/merchant"
	"github.com/Veraticus/kharcha/internal/metrics"
	"github.com/Veraticus/kharcha/internal/model"
	"github.com/Veraticus/kharcha/internal/numeral"
	"github.com/Veraticus/kharcha/internal/rules"
	"github.com/Veraticus/kharcha/internal/scoring"
	"github.com/google/uuid"
)

// Status is the caller-facing outcome of one extraction.
type Status string

// Result statuses.
const (
	StatusAccepted       Status = "accepted"
	StatusRetrySuggested Status = "retry_suggested"
	StatusRejected       Status = "rejected"
)

// Result is what Extract hands back. Data is set when accepted and when a
// retry is suggested; Error holds user-facing text otherwise.
type Result struct {
	Data       *model.ExpenseCandidate `json:"data,omitempty"`
	ID         string                  `json:"id"`
	Status     Status                  `json:"status"`
	Error      string                  `json:"error,omitempty"`
	Kind       common.ErrorKind        `json:"kind,omitempty"`
	Trace      []State                 `json:"-"`
	Confidence float64                 `json:"confidence"`
	Success    bool                    `json:"success"`
}

// Config holds optional collaborators for the engine.
type Config struct {
	Clock    scoring.Clock
	Logger   *slog.Logger
	Recorder Recorder
}

// Engine orchestrates the rule, AI and fallback stages.
type Engine struct {
	ai       AIExtractor
	recorder Recorder
	logger   *slog.Logger
	clock    scoring.Clock
	stages   atomic.Pointer[stages]
}

// stages are the per-pack extractors, rebuilt whenever the pack changes.
type stages struct {
	pack     *locale.Pack
	rules    *rules.Extractor
	fallback *fallback.Extractor
	numerals *numeral.Parser
}

func buildStages(pack *locale.Pack, clock scoring.Clock) (*stages, error) {
	scorer := scoring.NewScorer(pack, clock)
	merchants := merchant.NewDetector(pack)

	ruleExtractor, err := rules.NewExtractor(pack, scorer, merchants)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule stage: %w", err)
	}

	return &stages{
		pack:     pack,
		rules:    ruleExtractor,
		fallback: fallback.NewExtractor(pack, scorer, merchants),
		numerals: numeral.NewParser(pack),
	}, nil
}

// New creates an engine serving the packs held in store. ai may be nil, in
// which case the AI stage always fails over to the aggressive fallback.
func New(store *locale.Store, ai AIExtractor, cfg Config) (*Engine, error) {
	e := &Engine{
		ai:       ai,
		recorder: cfg.Recorder,
		logger:   common.OrDefault(cfg.Logger),
		clock:    cfg.Clock,
	}

	st, err := buildStages(store.Pack(), e.clock)
	if err != nil {
		return nil, err
	}
	e.stages.Store(st)

	store.OnSwap(func(pack *locale.Pack) {
		st, err := buildStages(pack, e.clock)
		if err != nil {
			e.logger.Error("Keeping previous locale pack", "name", pack.Name, "error", err)
			return
		}
		e.stages.Store(st)
		e.logger.Info("Extraction stages rebuilt", "locale", pack.Name)
	})

	return e, nil
}

// Pack returns the pack snapshot the engine currently extracts with.
func (e *Engine) Pack() *locale.Pack {
	return e.stages.Load().pack
}

// Extract runs the pipeline for one transcript. It never fails: every error is
// folded into the Result.
func (e *Engine) Extract(ctx context.Context, transcript model.Transcript) Result {
	r := &run{
		id:         uuid.NewString(),
		transcript: transcript,
		stages:     e.stages.Load(),
	}
	r.logger = e.logger.With("extraction_id", r.id)

	e.execute(ctx, r)
	result := r.result()

	method := "none"
	if result.Data != nil {
		method = string(result.Data.ExtractionMethod)
	}
	metrics.RecordExtraction(method, string(result.Status), string(result.Kind), result.Confidence)

	r.logger.Info("Extraction finished",
		"status", result.Status,
		"method", method,
		"confidence", result.Confidence,
		"kind", result.Kind,
		"trace", result.Trace)

	if e.recorder != nil {
		if err := e.recorder.SaveExtraction(context.WithoutCancel(ctx), transcript, result); err != nil {
			r.logger.Warn("Failed to record extraction", "error", err)
		}
	}

	return result
}
