package feedback

import (
	"testing"
	"time"

	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/store"
)

func seedFeedback(t *testing.T, fs store.FeedbackStore, repo, issueType, kind string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		rec := &model.FeedbackRecord{
			Repository: repo,
			FeedbackID: repo + issueType + kind + time.Now().Format("150405.000000000"),
			ThreadID:   i + 1,
			IssueType:  issueType,
			Severity:   "high",
			Kind:       kind,
			Author:     "dev",
			Suggestion: "use a parameterized query",
			FilePath:   "app/db.go",
			CreatedAt:  time.Now(),
		}
		if err := fs.Create(rec); err != nil {
			t.Fatalf("failed to seed feedback: %v", err)
		}
	}
}

func TestRebuildLearningContext_HighAcceptanceRateProducesExamples(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	seedFeedback(t, s.Feedback(), "acme/widgets", "sql_injection", "accepted", 9)
	seedFeedback(t, s.Feedback(), "acme/widgets", "sql_injection", "rejected", 1)

	h := New(s.ReviewHistory(), s.Feedback(), &fakeResolver{})
	h.rebuildLearningContext("acme/widgets")

	lc, err := h.BuildLearningContext("acme/widgets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc == nil {
		t.Fatal("expected a learning context to have been built")
	}
	if len(lc.Examples) == 0 {
		t.Fatal("expected at least one few-shot example for a 90% acceptance rate issue type")
	}
	for _, ex := range lc.Examples {
		if ex.IssueType != "sql_injection" {
			t.Fatalf("unexpected example issue type: %q", ex.IssueType)
		}
	}
	if lc.TotalFeedbackSamples != 10 {
		t.Fatalf("expected 10 total samples, got %d", lc.TotalFeedbackSamples)
	}
}

func TestRebuildLearningContext_RepeatedRejectionsProduceAPattern(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	seedFeedback(t, s.Feedback(), "acme/widgets", "style_nit", "rejected", 4)

	h := New(s.ReviewHistory(), s.Feedback(), &fakeResolver{})
	h.rebuildLearningContext("acme/widgets")

	lc, err := h.BuildLearningContext("acme/widgets")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lc.RejectionPatterns) != 1 {
		t.Fatalf("expected 1 rejection pattern, got %d", len(lc.RejectionPatterns))
	}
	if lc.RejectionPatterns[0].IssueType != "style_nit" {
		t.Fatalf("unexpected rejection pattern issue type: %q", lc.RejectionPatterns[0].IssueType)
	}
	if lc.RejectionPatterns[0].RejectionCount != 4 {
		t.Fatalf("expected rejection count 4, got %d", lc.RejectionPatterns[0].RejectionCount)
	}
}

func TestRebuildLearningContext_NoFeedbackLeavesContextUnset(t *testing.T) {
	s, cleanup := store.SetupTestDB(t)
	defer cleanup()

	h := New(s.ReviewHistory(), s.Feedback(), &fakeResolver{})
	h.rebuildLearningContext("acme/empty")

	lc, err := h.BuildLearningContext("acme/empty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lc != nil {
		t.Fatal("expected no learning context to be built for a repository with no feedback")
	}
}
