package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/Veraticus/kharcha/internal/common"
)

// Client defines the interface for LLM providers.
type Client interface {
	// Complete sends one system/user prompt pair and returns the raw reply text.
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// Config holds provider and call-policy settings.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	Timeout     time.Duration
	CacheTTL    time.Duration
	CacheSize   int
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// DefaultTimeout bounds a provider call when Config.Timeout is unset.
const DefaultTimeout = 15 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// postJSON sends body to url and returns the payload of a 200 reply, mapping
// failures onto the provider error taxonomy.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, body any) ([]byte, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return data, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %w (status %d)", common.ErrProviderUnavailable, common.ErrRateLimit, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: status %d: %s", common.ErrProviderUnavailable, resp.StatusCode, truncate(string(data), 200))
	}
}

// transportError classifies a failed round trip as a timeout or an outage.
func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %w", common.ErrProviderTimeout, err)
	}
	return fmt.Errorf("%w: request failed: %w", common.ErrProviderUnavailable, err)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
