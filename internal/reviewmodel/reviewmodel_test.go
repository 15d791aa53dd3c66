package reviewmodel

import (
	"testing"
	"time"
)

func TestNewPREvent_ValidatesBranchRef(t *testing.T) {
	cases := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"valid heads ref", "refs/heads/main", false},
		{"valid tags ref", "refs/tags/v1.0.0", false},
		{"contains dotdot", "refs/heads/../evil", true},
		{"double slash", "refs/heads//main", true},
		{"trailing slash", "refs/heads/main/", true},
		{"missing prefix", "main", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPREvent(PREventCreated, 1, "p1", "proj", "r1", "repo", "title", "a@b.com", tc.ref, "refs/heads/main", "abc123", nil)
			if (err != nil) != tc.wantErr {
				t.Fatalf("NewPREvent() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewPREvent_RequiresNonEmptyTitle(t *testing.T) {
	_, err := NewPREvent(PREventCreated, 1, "p1", "proj", "r1", "repo", "   ", "a@b.com", "refs/heads/main", "refs/heads/develop", "abc123", nil)
	if err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestPREvent_FingerprintExcludesEventType(t *testing.T) {
	created, err := NewPREvent(PREventCreated, 42, "p1", "proj", "r1", "repoA", "t", "a@b.com", "refs/heads/main", "refs/heads/develop", "abc123", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	updated, err := NewPREvent(PREventUpdated, 42, "p1", "proj", "r1", "repoA", "t", "a@b.com", "refs/heads/main", "refs/heads/develop", "abc123", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.FingerprintInput() != updated.FingerprintInput() {
		t.Fatal("fingerprint must be identical regardless of event type")
	}
}

func TestValidatePath_RejectsTraversalAndNullBytes(t *testing.T) {
	if _, err := ValidatePath("a/../b"); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
	if _, err := ValidatePath("a/\x00b"); err == nil {
		t.Fatal("expected null byte to be rejected")
	}
	cleaned, err := ValidatePath("/src/main.go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleaned != "src/main.go" {
		t.Fatalf("expected leading slash stripped, got %q", cleaned)
	}
}

func TestReviewIssue_InlineEligible(t *testing.T) {
	critical, err := NewReviewIssue(SeverityCritical, "sql_injection", "app.py", 10, "msg", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !critical.InlineEligible() {
		t.Fatal("critical issue with line > 0 must be inline-eligible")
	}

	fileLevel, err := NewReviewIssue(SeverityCritical, "sql_injection", "app.py", 0, "msg", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fileLevel.InlineEligible() {
		t.Fatal("critical issue with line == 0 must not be inline-eligible per the v2.6.15 rule")
	}

	medium, err := NewReviewIssue(SeverityMedium, "style", "app.py", 5, "msg", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if medium.InlineEligible() {
		t.Fatal("medium severity must never be inline-eligible")
	}
}

func TestAggregate_DedupesAndRecomputes(t *testing.T) {
	i1, _ := NewReviewIssue(SeverityCritical, "sqli", "app.py", 10, "m1", nil, "")
	i2, _ := NewReviewIssue(SeverityCritical, "sqli", "app.py", 10, "m2-duplicate-key", nil, "")
	i3, _ := NewReviewIssue(SeverityMedium, "style", "app.py", 20, "m3", nil, "")

	r1 := NewReviewResult([]ReviewIssue{*i1}, 100, 0.01)
	r2 := NewReviewResult([]ReviewIssue{*i2, *i3}, 200, 0.02)

	agg := Aggregate([]*ReviewResult{r1, r2, nil})
	if len(agg.Issues) != 2 {
		t.Fatalf("expected 2 deduped issues, got %d", len(agg.Issues))
	}
	if agg.TokensUsed != 300 {
		t.Fatalf("expected summed tokens 300, got %d", agg.TokensUsed)
	}
	if agg.Recommendation != RecommendationRequestChanges {
		t.Fatalf("expected request_changes due to critical issue, got %s", agg.Recommendation)
	}
}

func TestAggregate_ClampsAtCaps(t *testing.T) {
	r1 := NewReviewResult(nil, MaxAggregatedTokens-10, MaxAggregatedCost-0.5)
	r2 := NewReviewResult(nil, 100, 10)

	agg := Aggregate([]*ReviewResult{r1, r2})
	if agg.TokensUsed != MaxAggregatedTokens {
		t.Fatalf("expected clamp to %d, got %d", MaxAggregatedTokens, agg.TokensUsed)
	}
	if agg.EstimatedCost != MaxAggregatedCost {
		t.Fatalf("expected clamp to %v, got %v", MaxAggregatedCost, agg.EstimatedCost)
	}
}

func TestAggregate_SingleResultIsUnchangedModuloRecompute(t *testing.T) {
	i1, _ := NewReviewIssue(SeverityLow, "nit", "a.go", 1, "m", nil, "")
	r := NewReviewResult([]ReviewIssue{*i1}, 50, 0.001)
	agg := Aggregate([]*ReviewResult{r})
	if len(agg.Issues) != len(r.Issues) || agg.TokensUsed != r.TokensUsed {
		t.Fatal("aggregating a single result must be equal to that result")
	}
}

func TestIdempotencyEntity_MonotoneTransitions(t *testing.T) {
	e, err := NewIdempotencyEntity("2026-07-30", "fp123", 1, "repoA", "abc123", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Complete("ok"); err != nil {
		t.Fatalf("unexpected error completing pending entry: %v", err)
	}
	if err := e.Complete("ok-again"); err == nil {
		t.Fatal("expected error re-completing an already-completed entry")
	}
	if err := e.Fail("E1000"); err == nil {
		t.Fatal("expected error failing an already-completed entry")
	}
}

func TestIdempotencyEntity_RejectsBadPartition(t *testing.T) {
	if _, err := NewIdempotencyEntity("not-a-date", "fp", 1, "repo", "sha", time.Now()); err == nil {
		t.Fatal("expected error for malformed partition")
	}
}

func TestLearningContext_HasSufficientData(t *testing.T) {
	ctx := NewLearningContext("repoA", nil, nil, FeedbackMinSamples-1)
	if ctx.HasSufficientData() {
		t.Fatal("expected insufficient data below threshold")
	}
	ctx2 := NewLearningContext("repoA", nil, nil, FeedbackMinSamples)
	if !ctx2.HasSufficientData() {
		t.Fatal("expected sufficient data at threshold")
	}
}

func TestNewLearningContext_CapsExamplesAndPatterns(t *testing.T) {
	byType := make(map[string][]FeedbackExample)
	for i := 0; i < 5; i++ {
		byType["typeA"] = append(byType["typeA"], NewFeedbackExample("typeA", "code", "sugg", "a.go", SeverityMedium, 1))
	}
	ctx := NewLearningContext("repoA", byType, nil, 10)
	if len(ctx.Examples) > MaxExamplesPerIssueType {
		t.Fatalf("expected at most %d examples per type, got %d", MaxExamplesPerIssueType, len(ctx.Examples))
	}
}
