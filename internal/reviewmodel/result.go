package reviewmodel

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/pkg/logger"
)

// SeverityCounts holds a summary count per severity, including info.
type SeverityCounts struct {
	Critical int
	High     int
	Medium   int
	Low      int
	Info     int
}

// ReviewResult is the aggregate for one AI call or one PR.
type ReviewResult struct {
	Issues         []ReviewIssue
	TokensUsed     int
	EstimatedCost  float64
	Counts         SeverityCounts
	Recommendation Recommendation
}

// NewReviewResult builds a ReviewResult from a raw issue list and usage
// figures. Derived fields (counts, recommendation) are recomputed here on
// every construction and aggregation, never carried over.
func NewReviewResult(issues []ReviewIssue, tokensUsed int, cost float64) *ReviewResult {
	r := &ReviewResult{
		Issues:        dedupeIssues(issues),
		TokensUsed:    clampInt(tokensUsed, MaxAggregatedTokens),
		EstimatedCost: clampFloat(cost, MaxAggregatedCost),
	}
	r.recompute()
	return r
}

func (r *ReviewResult) recompute() {
	if len(r.Issues) > MaxIssuesPerReview {
		logger.Warn("review result: issue list exceeds cap, truncating",
			zap.Int("count", len(r.Issues)), zap.Int("cap", MaxIssuesPerReview))
		r.Issues = r.Issues[:MaxIssuesPerReview]
	}

	var counts SeverityCounts
	for _, iss := range r.Issues {
		switch iss.Severity {
		case SeverityCritical:
			counts.Critical++
		case SeverityHigh:
			counts.High++
		case SeverityMedium:
			counts.Medium++
		case SeverityLow:
			counts.Low++
		case SeverityInfo:
			counts.Info++
		}
	}
	r.Counts = counts

	switch {
	case counts.Critical > 0:
		r.Recommendation = RecommendationRequestChanges
	case counts.High > 0:
		r.Recommendation = RecommendationRequestChanges
	case counts.Medium > 0:
		r.Recommendation = RecommendationComment
	default:
		r.Recommendation = RecommendationApprove
	}
}

// TotalIssueCount sums the severity counts, agreeing with len(Issues) for
// a freshly computed result and remaining meaningful for a StoredSummary's
// reconstruction, which carries Counts but no Issues slice.
func (r *ReviewResult) TotalIssueCount() int {
	c := r.Counts
	return c.Critical + c.High + c.Medium + c.Low + c.Info
}

// StoredSummary is the durable, JSON-encoded form of a ReviewResult kept
// on the idempotency row. It carries only the aggregate fields, not the
// full Issues slice: a duplicate delivery's short-circuit needs the
// stored result summary without re-running the review, not a replay of
// every original inline comment.
type StoredSummary struct {
	Recommendation Recommendation
	TokensUsed     int
	EstimatedCost  float64
	Counts         SeverityCounts
}

// NewStoredSummary captures the durable fields of a completed ReviewResult.
func NewStoredSummary(r *ReviewResult) StoredSummary {
	return StoredSummary{
		Recommendation: r.Recommendation,
		TokensUsed:     r.TokensUsed,
		EstimatedCost:  r.EstimatedCost,
		Counts:         r.Counts,
	}
}

// Encode serializes the summary for storage in IdempotencyRecord.Summary.
func (s StoredSummary) Encode() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeStoredSummary parses a summary previously produced by Encode.
// Older rows written before this format existed (a plain human-readable
// string) fail to decode; callers treat that as "no stored summary".
func DecodeStoredSummary(raw string) (StoredSummary, error) {
	var s StoredSummary
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return StoredSummary{}, err
	}
	return s, nil
}

// ReviewResult reconstructs a ReviewResult from the stored summary, for
// the duplicate-delivery short-circuit. Issues is left nil: the original
// per-issue detail was never persisted, only the aggregate counts.
func (s StoredSummary) ReviewResult() *ReviewResult {
	return &ReviewResult{
		TokensUsed:     s.TokensUsed,
		EstimatedCost:  s.EstimatedCost,
		Counts:         s.Counts,
		Recommendation: s.Recommendation,
	}
}

// Aggregate merges zero or more ReviewResults: concatenate
// issues, dedupe by (path, line, issue_type) keeping the first occurrence,
// cap totals with overflow checks before addition, and recompute summary
// fields. Non-nil invalid entries are simply skipped with a logged count.
func Aggregate(results []*ReviewResult) *ReviewResult {
	var allIssues []ReviewIssue
	var tokens int
	var cost float64
	skipped := 0

	for _, r := range results {
		if r == nil {
			skipped++
			continue
		}
		allIssues = append(allIssues, r.Issues...)
		tokens = addClamped(tokens, r.TokensUsed, MaxAggregatedTokens)
		cost = addClampedFloat(cost, r.EstimatedCost, MaxAggregatedCost)
	}
	if skipped > 0 {
		logger.Warn("aggregate: skipped non-result entries", zap.Int("skipped", skipped))
	}

	return NewReviewResult(allIssues, tokens, cost)
}

func dedupeIssues(issues []ReviewIssue) []ReviewIssue {
	seen := make(map[string]struct{}, len(issues))
	out := make([]ReviewIssue, 0, len(issues))
	for _, iss := range issues {
		key := iss.DedupeKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, iss)
	}
	return out
}

// addClamped adds b to a, clamping to cap and logging if the proposed sum
// would overflow it. Overflow is checked *before* the addition so totals
// are clamped, never silently wrapped.
func addClamped(a, b, cap int) int {
	if a >= cap {
		return cap
	}
	if b > cap-a {
		logger.Warn("aggregate: token sum would exceed cap, clamping", zap.Int("cap", cap))
		return cap
	}
	return a + b
}

func addClampedFloat(a, b, cap float64) float64 {
	sum := a + b
	if sum > cap {
		logger.Warn("aggregate: cost sum would exceed cap, clamping", zap.Float64("cap", cap))
		return cap
	}
	return sum
}

func clampInt(v, cap int) int {
	if v > cap {
		return cap
	}
	if v < 0 {
		return 0
	}
	return v
}

func clampFloat(v, cap float64) float64 {
	if v > cap {
		return cap
	}
	if v < 0 {
		return 0
	}
	return v
}
