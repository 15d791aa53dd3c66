package store

import (
	"testing"
	"time"

	"github.com/verustcode/verustcode/internal/model"
)

func TestFeedbackStore_ListByRepositoryOrdersByRecency(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	older := &model.FeedbackRecord{
		Repository: "org/repo", FeedbackID: "fb-1", IssueType: "bug",
		Kind: "accepted", CreatedAt: time.Now().Add(-time.Hour),
	}
	newer := &model.FeedbackRecord{
		Repository: "org/repo", FeedbackID: "fb-2", IssueType: "bug",
		Kind: "accepted", CreatedAt: time.Now(),
	}
	if err := s.Feedback().Create(older); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := s.Feedback().Create(newer); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	recs, err := s.Feedback().ListByRepository("org/repo", 10)
	if err != nil {
		t.Fatalf("ListByRepository() failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].FeedbackID != "fb-2" {
		t.Fatalf("expected most recent record first, got %s", recs[0].FeedbackID)
	}
}

func TestFeedbackStore_CountByKind(t *testing.T) {
	s, cleanup := SetupTestDB(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		rec := &model.FeedbackRecord{
			Repository: "org/repo", FeedbackID: "fb-rej-" + string(rune('a'+i)),
			IssueType: "style", Kind: "rejected", CreatedAt: time.Now(),
		}
		if err := s.Feedback().Create(rec); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	n, err := s.Feedback().CountByKind("org/repo", "style", "rejected")
	if err != nil {
		t.Fatalf("CountByKind() failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rejected records, got %d", n)
	}
}
