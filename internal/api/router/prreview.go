package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/aiclient"
	"github.com/verustcode/verustcode/internal/api/handler"
	"github.com/verustcode/verustcode/internal/api/middleware"
	"github.com/verustcode/verustcode/internal/breaker"
	"github.com/verustcode/verustcode/internal/config"
	"github.com/verustcode/verustcode/internal/feedback"
	"github.com/verustcode/verustcode/internal/git/providers"
	"github.com/verustcode/verustcode/internal/llm"
	"github.com/verustcode/verustcode/internal/ratelimit"
	"github.com/verustcode/verustcode/internal/reviewcache"
	"github.com/verustcode/verustcode/internal/reviewer"
	"github.com/verustcode/verustcode/internal/store"
	"github.com/verustcode/verustcode/pkg/logger"
)

// setupPRReview wires the automated PR review pipeline:
// one Orchestrator per configured Git-provider type, the feedback
// harvester's cron job, the AI client's cache and breaker, and the
// webhook/admin HTTP surface. Mounted only when cfg.PRReview.Enabled,
// since it depends on an LLM agent being configured. The returned
// cleanup stops the harvester and TTL-sweep cron jobs; nil when nothing
// was started.
func setupPRReview(r *gin.Engine, p *providers.Manager, cfg *config.Config, s store.Store) func() {
	agentDetail, ok := cfg.Agents[cfg.PRReview.Agent]
	if !ok {
		logger.Warn("pr review pipeline enabled but its configured agent is not registered, skipping",
			zap.String("agent", cfg.PRReview.Agent))
		return nil
	}

	llmClient, err := llm.Create(cfg.PRReview.Agent,
		llm.NewClientConfig(cfg.PRReview.Agent).
			WithAPIKey(agentDetail.APIKey).
			WithDefaultModel(agentDetail.DefaultModel))
	if err != nil {
		logger.Warn("pr review pipeline: failed to create LLM client, skipping",
			zap.String("agent", cfg.PRReview.Agent), zap.Error(err))
		return nil
	}

	breakers := breaker.NewManager(breaker.Config{
		FailureThreshold: cfg.PRReview.CircuitBreakerThreshold,
		OpenTimeout:      secondsToDuration(cfg.PRReview.CircuitBreakerTimeout),
	})
	cache := reviewcache.New(s.ResponseCache(), cfg.PRReview.CacheMaxWritesPerMinute)
	aiClient := aiclient.New(llmClient, cache, breakers, aiclient.Config{
		ModelID:             agentDetail.DefaultModel,
		ModelFamilyOverride: aiclient.ModelFamily(cfg.PRReview.ModelFamily),
	})

	harvester := feedback.New(s.ReviewHistory(), s.Feedback(), p)
	harvester.SetIntervalMinutes(cfg.PRReview.FeedbackHarvestMinutes)
	if err := harvester.Start(); err != nil {
		logger.Warn("pr review pipeline: failed to start feedback harvester", zap.Error(err))
	}

	sweep := store.NewReliabilitySweepService(s.Idempotency(), s.ResponseCache())
	if err := sweep.Start(); err != nil {
		logger.Warn("pr review pipeline: failed to start reliability sweep", zap.Error(err))
	}

	orchestrators := make(map[string]*reviewer.Orchestrator)
	for _, name := range p.List() {
		prov := p.Get(name)
		if prov == nil {
			continue
		}
		orchestrators[name] = reviewer.NewOrchestrator(prov, aiClient, harvester, s.Idempotency(), s.ReviewHistory(), reviewer.Config{
			MaxConcurrentReviews: cfg.PRReview.MaxConcurrentReviews,
			DryRun:               cfg.PRReview.DryRun,
		})
	}

	h := handler.NewReviewWebhookHandler(orchestrators, breakers)
	limiter := ratelimit.New(cfg.PRReview.RateLimitPerMinute, time.Duration(cfg.PRReview.RateLimitWindowSeconds)*time.Second)

	for _, pc := range cfg.Git.Providers {
		r.POST("/pr-webhook/"+pc.Type,
			middleware.WebhookSecretAuth(pc.WebhookSecret),
			ratelimit.Middleware(limiter),
			h.HandlePRWebhook,
		)
	}

	admin := r.Group("", middleware.FunctionKeyAuth(cfg.PRReview.FunctionKey))
	admin.GET("/reliability-health", h.HandleReliabilityHealth)
	admin.POST("/circuit-breaker-admin", h.HandleCircuitBreakerAdmin)

	return func() {
		harvester.Stop()
		sweep.Stop()
	}
}

// secondsToDuration converts the breaker's operator-tunable integer
// seconds into a time.Duration, falling back to breaker.DefaultConfig's
// timeout when unset.
func secondsToDuration(seconds int) time.Duration {
	if seconds <= 0 {
		return breaker.DefaultConfig().OpenTimeout
	}
	return time.Duration(seconds) * time.Second
}
