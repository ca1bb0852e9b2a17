package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kharcha/internal/common"
	"github.com/Veraticus/kharcha/internal/locale"
	"github.com/Veraticus/kharcha/internal/merchant"
	"github.com/Veraticus/kharcha/internal/model"
)

// Extractor is the AI fallback stage.
type Extractor struct {
	client    Client
	cache     *responseCache
	limiter   *rateLimiter
	logger    *slog.Logger
	retryOpts common.RetryOptions
	timeout   time.Duration
}

// NewExtractor wraps client with caching, rate limiting and retry policy from cfg.
// A nil client yields an extractor that always reports ErrProviderNotConfigured.
func NewExtractor(client Client, cfg Config, logger *slog.Logger) *Extractor {
	retryOpts := common.RetryOptions{
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = 500 * time.Millisecond
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Extractor{
		client:    client,
		cache:     newResponseCache(cfg.CacheSize, cfg.CacheTTL),
		limiter:   newRateLimiter(cfg.RateLimit),
		logger:    common.OrDefault(logger),
		retryOpts: retryOpts,
		timeout:   timeout,
	}
}

// Configured reports whether a provider client is wired in.
func (e *Extractor) Configured() bool {
	return e != nil && e.client != nil
}

// Extract asks the provider to read req and returns an ai-powered candidate.
func (e *Extractor) Extract(ctx context.Context, pack *locale.Pack, req Request) (*model.ExpenseCandidate, error) {
	if !e.Configured() {
		return nil, common.ErrProviderNotConfigured
	}

	prompt := BuildPrompt(pack, req)
	key := cacheKey(SystemPrompt, prompt)

	resp, found := e.cache.get(key)
	if found {
		e.logger.Debug("cache hit for utterance", "text", req.Text)
	} else {
		var err error
		resp, err = e.call(ctx, prompt)
		if err != nil {
			return nil, err
		}
		e.cache.set(key, resp)
	}

	return e.candidate(pack, req.Text, resp)
}

func (e *Extractor) call(ctx context.Context, prompt string) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var raw string
	err := common.WithRetry(ctx, func() error {
		if err := e.limiter.wait(ctx); err != nil {
			return contextError(ctx, err)
		}

		var callErr error
		raw, callErr = e.client.Complete(ctx, SystemPrompt, prompt)
		return callErr
	}, e.retryOpts)
	if err != nil {
		if !errors.Is(err, common.ErrProviderUnavailable) && !errors.Is(err, common.ErrMalformedProviderResponse) {
			err = contextError(ctx, err)
		}
		return Response{}, err
	}

	return ParseResponse(raw)
}

// contextError maps a cancelled or expired call onto the provider taxonomy.
func contextError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", common.ErrProviderTimeout, err)
	}
	return fmt.Errorf("%w: %w", common.ErrProviderUnavailable, err)
}

func (e *Extractor) candidate(pack *locale.Pack, text string, resp Response) (*model.ExpenseCandidate, error) {
	if !pack.InBounds(resp.Amount) {
		return nil, fmt.Errorf("provider amount %s: %w", resp.Amount, common.ErrAmountOutOfBounds)
	}

	category, ok := model.ParseCategory(resp.Category)
	if !ok {
		e.logger.Debug("Coercing provider category",
			"category", resp.Category,
			"error", common.ErrInvalidCategory)
	}

	confidence := pack.Confidence.AIDefault
	if resp.Confidence != nil {
		confidence = *resp.Confidence
	}

	var merchantName *string
	if resp.Merchant != nil {
		name := merchant.DisplayName(*resp.Merchant)
		merchantName = &name
	}

	description := resp.Description
	if description == "" {
		description = text
	}

	return &model.ExpenseCandidate{
		Amount:           resp.Amount,
		Category:         category,
		Merchant:         merchantName,
		Description:      description,
		OriginalText:     text,
		Confidence:       confidence,
		ExtractionMethod: model.MethodAI,
	}, nil
}
