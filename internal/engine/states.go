package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/llm"
	"github.com/Veraticus/kharcha/internal/metrics"
	"github.com/Veraticus/kharcha/internal/model"
)

// State is a pipeline state.
type State string

// Pipeline states. ACCEPTED and REJECTED are terminal.
const (
	StateStart             State = "START"
	StateRuleAttempted     State = "RULE_ATTEMPTED"
	StateAIAttempted       State = "AI_ATTEMPTED"
	StateFallbackAttempted State = "FALLBACK_ATTEMPTED"
	StateAccepted          State = "ACCEPTED"
	StateRejected          State = "REJECTED"
)

// stateFunc runs the work owed on leaving a state and returns the next one.
type stateFunc func(e *Engine, ctx context.Context, r *run) State

var transitions = map[State]stateFunc{
	StateStart:             (*Engine).attemptRules,
	StateRuleAttempted:     (*Engine).afterRules,
	StateAIAttempted:       (*Engine).afterAI,
	StateFallbackAttempted: (*Engine).afterFallback,
}

// run is the mutable state of one extraction.
type run struct {
	candidate      *model.ExpenseCandidate
	stages         *stages
	logger         *slog.Logger
	err            error
	id             string
	trace          []State
	transcript     model.Transcript
	state          State
	providerErr    error
	sawOutOfBounds bool
	retrySuggested bool
}

func (e *Engine) execute(ctx context.Context, r *run) {
	r.state = StateStart
	r.trace = append(r.trace, r.state)

	for {
		step, ok := transitions[r.state]
		if !ok {
			return
		}

		next := step(e, ctx, r)
		r.logger.Debug("State transition", "from", r.state, "to", next)
		r.state = next
		r.trace = append(r.trace, next)
	}
}

// attemptRules runs the pattern extractor on the text and then each alternative.
func (e *Engine) attemptRules(_ context.Context, r *run) State {
	start := time.Now()
	defer func() { metrics.ObserveStage("rule", time.Since(start)) }()

	accept := r.stages.pack.Thresholds.Accept
	for _, text := range r.transcript.Texts() {
		out := r.stages.rules.Extract(text)
		if errors.Is(out.Err, common.ErrAmountOutOfBounds) {
			r.sawOutOfBounds = true
		}
		if out.Candidate == nil {
			continue
		}
		if out.Confidence >= accept {
			r.logger.Debug("Rule matched", "stage", "rule", "pattern", out.PatternName, "text", text)
			r.candidate = out.Candidate
			break
		}
	}

	return StateRuleAttempted
}

// afterRules accepts a rule match, rejects text without any numeral, and
// otherwise asks the AI stage.
func (e *Engine) afterRules(ctx context.Context, r *run) State {
	if r.candidate != nil {
		return StateAccepted
	}

	if !e.hasNumeralCue(r) {
		r.err = fmt.Errorf("no numeral in transcript: %w", common.ErrNoAmountFound)
		return StateRejected
	}

	start := time.Now()
	candidate, err := e.callAI(ctx, r)
	metrics.ObserveStage("ai", time.Since(start))

	switch {
	case err == nil:
		r.candidate = candidate
	case errors.Is(err, common.ErrAmountOutOfBounds):
		r.sawOutOfBounds = true
		r.logger.Debug("AI amount out of bounds", "stage", "ai", "error", err)
	case errors.Is(err, common.ErrProviderNotConfigured), errors.Is(err, common.ErrNoAmountFound):
		r.logger.Debug("AI stage produced nothing", "stage", "ai", "error", err)
	default:
		r.providerErr = err
		kind := common.KindOf(err)
		metrics.RecordProviderError(string(kind))
		r.logger.Warn("AI stage failed", "stage", "ai", "kind", kind, "error", err)
	}

	return StateAIAttempted
}

func (e *Engine) callAI(ctx context.Context, r *run) (*model.ExpenseCandidate, error) {
	if e.ai == nil {
		return nil, common.ErrProviderNotConfigured
	}
	text, alternatives := r.transcript.Primary()
	return e.ai.Extract(ctx, r.stages.pack, llm.Request{
		Text:         text,
		AudioQuality: r.transcript.AudioQualityHint,
		Alternatives: alternatives,
	})
}

// afterAI accepts an AI candidate, flagging a retry when confidence is low
// and the caller still has re-captures left; otherwise it tries the fallback.
func (e *Engine) afterAI(_ context.Context, r *run) State {
	if r.candidate != nil {
		th := r.stages.pack.Thresholds
		if r.candidate.Confidence < th.Retry && r.transcript.RetryCount < th.MaxRetries {
			r.retrySuggested = true
		}
		return StateAccepted
	}

	start := time.Now()
	defer func() { metrics.ObserveStage("fallback", time.Since(start)) }()

	for _, text := range r.transcript.Texts() {
		candidate, err := r.stages.fallback.Extract(text)
		if err == nil {
			r.candidate = candidate
			break
		}
		if errors.Is(err, common.ErrAmountOutOfBounds) {
			r.sawOutOfBounds = true
		}
	}

	return StateFallbackAttempted
}

func (e *Engine) afterFallback(_ context.Context, r *run) State {
	if r.candidate != nil {
		return StateAccepted
	}

	// A provider failure is surfaced only once the fallback has also come up empty.
	switch {
	case r.sawOutOfBounds:
		r.err = common.ErrAmountOutOfBounds
	case r.providerErr != nil:
		r.err = fmt.Errorf("fallback found no amount after provider failure: %w", r.providerErr)
	default:
		r.err = common.ErrNoAmountFound
	}
	return StateRejected
}

func (e *Engine) hasNumeralCue(r *run) bool {
	for _, text := range r.transcript.Texts() {
		if r.stages.numerals.HasNumeralCue(text) {
			return true
		}
	}
	return false
}

// result converts the finished run into the caller-facing Result.
func (r *run) result() Result {
	res := Result{
		ID:    r.id,
		Trace: r.trace,
	}

	switch {
	case r.state == StateAccepted && r.retrySuggested:
		r.candidate.ID = r.id
		res.Status = StatusRetrySuggested
		res.Data = r.candidate
		res.Confidence = r.candidate.Confidence
		res.Kind = common.KindLowConfidenceRetrySuggested
		res.Error = common.UserMessage(common.ErrLowConfidence)
	case r.state == StateAccepted:
		r.candidate.ID = r.id
		res.Status = StatusAccepted
		res.Success = true
		res.Data = r.candidate
		res.Confidence = r.candidate.Confidence
	default:
		err := r.err
		if err == nil {
			err = common.ErrNoAmountFound
		}
		res.Status = StatusRejected
		res.Kind = common.KindOf(err)
		res.Error = common.UserMessage(err)
	}

	return res
}
