// Package aiclient implements the AI Call with Cache and Breaker pipeline
//: validate the prompt, consult the response cache, admit
// through the circuit breaker, invoke the underlying LLM client with
// model-family-aware request shaping, parse and validate the result, then
// record the outcome.
package aiclient

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/llm"
	"github.com/verustcode/verustcode/internal/reviewcache"
	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/pkg/errors"
	"github.com/verustcode/verustcode/pkg/logger"
)

const breakerService = "llm"

// BreakerCaller admits a call through a circuit breaker keyed by service
// name. Satisfied by *internal/breaker.Manager.
type BreakerCaller interface {
	Call(service string, fn func() error) error
}

// costPerThousandTokens is a small, deliberately approximate per-model
// pricing table used only to populate ReviewResult.EstimatedCost for
// reporting; it is not billing-accurate.
var costPerThousandTokens = map[string]float64{
	"default": 0.01,
}

// Config configures a Client.
type Config struct {
	// ModelID is passed to the underlying llm.Client and included in the
	// cache key.
	ModelID string
	// ModelFamilyOverride short-circuits prefix-based family detection
	// when set to ModelFamilyReasoning or ModelFamilyStandard.
	ModelFamilyOverride ModelFamily
	// TemperaturePolicy is a short label describing the deterministic
	// temperature regime in effect; it is part of the cache key so a
	// policy change invalidates old entries.
	TemperaturePolicy string
}

// Client implements the cache+breaker-guarded AI call.
type Client struct {
	llm     llm.Client
	cache   *reviewcache.Cache
	breaker BreakerCaller
	cfg     Config

	// retryMinWait seeds the backoff schedule; a field rather than the
	// constant directly so tests can shrink it.
	retryMinWait time.Duration
}

// New constructs a Client from its dependencies.
func New(llmClient llm.Client, cache *reviewcache.Cache, breaker BreakerCaller, cfg Config) *Client {
	if cfg.TemperaturePolicy == "" {
		cfg.TemperaturePolicy = "deterministic"
	}
	return &Client{llm: llmClient, cache: cache, breaker: breaker, cfg: cfg, retryMinWait: reviewmodel.RetryMinWait}
}

// Review runs the full ai_review(prompt_inputs) -> ReviewResult contract
// repository scopes the cache write for reporting;
// lookups are keyed purely by content hash.
func (c *Client) Review(ctx context.Context, repository, prompt string) (*reviewmodel.ReviewResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.ErrValidation("ai review: prompt must not be empty")
	}
	if len(prompt) > reviewmodel.MaxPromptLength {
		return nil, errors.ErrValidation("ai review: prompt exceeds MAX_PROMPT_LENGTH")
	}

	key := reviewcache.Key(prompt, c.cfg.ModelID, c.cfg.TemperaturePolicy)

	if cached, ok := c.cache.Lookup(repository, key); ok {
		return cached, nil
	}

	var result *reviewmodel.ReviewResult
	callErr := c.breaker.Call(breakerService, func() error {
		var err error
		result, err = c.invokeWithRetry(ctx, prompt)
		return err
	})
	if errors.HasCode(callErr, errors.ErrCodeIntegrity) {
		// The model answered but its payload failed validation. Degrade
		// to an empty result for this call instead of failing the
		// review; the breaker does not count this as a service failure
		// and the empty result is never cached.
		logger.Warn("ai review: response failed integrity validation, degrading to empty result",
			zap.String("repository", repository), zap.Error(callErr))
		return reviewmodel.NewReviewResult(nil, 0, 0), nil
	}
	if callErr != nil {
		return nil, callErr
	}

	c.cache.Store(repository, key, "", result, result.TokensUsed, result.EstimatedCost)
	return result, nil
}

// invokeWithRetry wraps invoke with jittered exponential backoff on
// transient failures. Non-retryable errors stop immediately; the breaker
// sees only the final outcome, so one exhausted retry cycle counts as a
// single breaker failure.
func (c *Client) invokeWithRetry(ctx context.Context, prompt string) (*reviewmodel.ReviewResult, error) {
	var result *reviewmodel.ReviewResult
	var lastErr error
	wait := c.retryMinWait

	for attempt := 0; attempt < reviewmodel.MaxRetryAttempts; attempt++ {
		if attempt > 0 {
			// Full jitter: sleep a uniform fraction of the current wait.
			delay := time.Duration(rand.Int63n(int64(wait))) + time.Millisecond
			logger.Info("ai review: retrying after transient failure",
				zap.Int("attempt", attempt), zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			wait *= 2
			if wait > reviewmodel.RetryMaxWait {
				wait = reviewmodel.RetryMaxWait
			}
		}

		result, lastErr = c.invoke(ctx, prompt)
		if lastErr == nil {
			return result, nil
		}
		if !llm.IsRetryable(lastErr) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// invoke performs the single LLM call with model-family-aware request
// shaping and a 180 s timeout.
func (c *Client) invoke(ctx context.Context, prompt string) (*reviewmodel.ReviewResult, error) {
	ctx, cancel := context.WithTimeout(ctx, reviewmodel.LLMCallTimeout)
	defer cancel()

	family := ResolveModelFamily(c.cfg.ModelID, c.cfg.ModelFamilyOverride)

	req := llm.NewRequest(prompt).WithModel(c.cfg.ModelID)
	opts := &llm.RequestOptions{Timeout: reviewmodel.LLMCallTimeout}

	switch family {
	case ModelFamilyReasoning:
		// Omit temperature/forced-JSON flags; the prompt builder already
		// demands JSON in the instructions. Extraction tolerates code
		// fences and surrounding prose.
	default:
		opts.Metadata = map[string]string{
			"temperature":     "0",
			"response_format": "json",
		}
	}
	req = req.WithOptions(opts)

	start := time.Now()
	resp, err := c.llm.Execute(ctx, req)
	if err != nil {
		logger.Warn("ai review: llm execution failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return nil, err
	}

	tokensUsed := 0
	if resp.Usage != nil {
		tokensUsed = resp.Usage.TotalTokens
	}
	cost := estimateCost(c.cfg.ModelID, tokensUsed)

	result, err := parseReviewResponse(resp.Content, tokensUsed, cost)
	if err != nil {
		logger.Warn("ai review: response failed schema validation", zap.Error(err))
		return nil, err
	}
	return result, nil
}

func estimateCost(modelID string, tokensUsed int) float64 {
	rate, ok := costPerThousandTokens[modelID]
	if !ok {
		rate = costPerThousandTokens["default"]
	}
	return (float64(tokensUsed) / 1000.0) * rate
}
