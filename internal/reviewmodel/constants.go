// Package reviewmodel defines the value types that flow through the PR
// review pipeline: webhook events, diff changes, review issues and
// results, and the table-store entities that outlive a single request.
// All constructors validate their inputs and return a *errors.AppError on
// violation rather than panicking.
package reviewmodel

import "time"

// Limits and tunables below are deliberately plain constants, not
// configuration: they are safety caps every deployment shares, distinct
// from the operator-tunable options in internal/config.
const (
	MaxPathLength = 2000
	// PromptMaxPathLength is the prompt-builder's own, smaller per-field
	// truncation cap — distinct from MaxPathLength, which
	// bounds path validation for stored FileChange values.
	PromptMaxPathLength      = 1000
	MaxTitleLength           = 500
	MaxMessageLength         = 5000
	MaxIssueTypeLength       = 100
	MaxDiffLines             = 100_000
	MaxHunkLines             = 10_000
	MaxPromptLength          = 1_000_000
	MaxIssuesPerReview       = 500
	MaxAggregatedTokens      = 9_999_999
	MaxAggregatedCost        = 9999.99
	MaxCommentLength         = 65_536
	MaxLearningSectionLen    = 10_000
	LogFieldMaxLength        = 100
	TokensPerLineEstimate    = 6
	MaxTokensPerFile         = 1_000_000
	MaxLinesPerFile          = 100_000
	DefaultTokenEstimate     = 350
	FileCategoryCacheSize    = 1000
	FeedbackMinSamples       = 5
	MinRejectionsForPattern  = 3
	MinExampleQualityRate    = 0.8
	MaxExamplesPerIssueType  = 3
	MaxTotalExamplesInPrompt = 10
	MaxRejectionPatterns     = 5
	// MaxLoggedErrors caps how many per-issue validation errors are logged
	// individually when parsing an AI response.
	MaxLoggedErrors = 10

	// RateLimitWindow and default admission ceiling for the webhook endpoint.
	RateLimitWindowSeconds      = 60
	DefaultRateLimitPerMinute   = 100
	DefaultCacheMaxWritesPerMin = 100

	// Idempotency record lifetime.
	IdempotencyTTL = 48 * time.Hour
	// Response-cache entry lifetime. Historically 7 days, then 3; 3 is
	// canonical.
	ResponseCacheTTL = 3 * 24 * time.Hour

	// Per-operation timeouts.
	OverallHandlerTimeout = 480 * time.Second
	LLMCallTimeout        = 180 * time.Second
	CacheWriteOuterBudget = 5 * time.Second
	BreakerLockTimeout    = 30 * time.Second

	// Outbound LLM retry policy: jittered exponential backoff
	// on transient failures.
	RetryMinWait     = 2 * time.Second
	RetryMaxWait     = 60 * time.Second
	MaxRetryAttempts = 3
)

// Severity is a closed sum type for issue severity.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Valid reports whether s is one of the enumerated severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// ChangeKind is a closed sum type for how a file changed.
type ChangeKind string

const (
	ChangeKindAdd    ChangeKind = "add"
	ChangeKindEdit   ChangeKind = "edit"
	ChangeKindDelete ChangeKind = "delete"
	ChangeKindRename ChangeKind = "rename"
)

// Valid reports whether k is one of the enumerated change kinds.
func (k ChangeKind) Valid() bool {
	switch k {
	case ChangeKindAdd, ChangeKindEdit, ChangeKindDelete, ChangeKindRename:
		return true
	}
	return false
}

// LineKind is a closed sum type for a single diff line's role within a hunk.
type LineKind string

const (
	LineKindContext LineKind = "context"
	LineKindAdd     LineKind = "add"
	LineKindRemove  LineKind = "remove"
)

// Recommendation is a closed sum type for the aggregate review verdict.
type Recommendation string

const (
	RecommendationApprove        Recommendation = "approve"
	RecommendationComment        Recommendation = "comment"
	RecommendationRequestChanges Recommendation = "request_changes"
)

// Strategy is a closed sum type for the chosen review strategy.
type Strategy string

const (
	StrategySinglePass   Strategy = "single_pass"
	StrategyChunked      Strategy = "chunked"
	StrategyHierarchical Strategy = "hierarchical"
)

// FeedbackKind is a closed sum type for a developer's reaction to a posted issue.
type FeedbackKind string

const (
	FeedbackAccepted FeedbackKind = "accepted"
	FeedbackRejected FeedbackKind = "rejected"
	FeedbackIgnored  FeedbackKind = "ignored"
)

// IdempotencyStatus is a closed sum type for an idempotency record's lifecycle.
// Transitions are monotone: Pending -> {Completed, Failed}, never backwards.
type IdempotencyStatus string

const (
	IdempotencyPending   IdempotencyStatus = "pending"
	IdempotencyCompleted IdempotencyStatus = "completed"
	IdempotencyFailed    IdempotencyStatus = "failed"
)

// BreakerState is a closed sum type for circuit breaker state.
type BreakerState string

const (
	BreakerClosed   BreakerState = "CLOSED"
	BreakerOpen     BreakerState = "OPEN"
	BreakerHalfOpen BreakerState = "HALF_OPEN"
)
