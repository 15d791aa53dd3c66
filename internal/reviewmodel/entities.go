package reviewmodel

import (
	"regexp"
	"time"

	"github.com/verustcode/verustcode/pkg/errors"
)

// FeedbackEntity is one developer reaction on one review comment
// thread. Partition = repository name; row = deterministic feedback id.
type FeedbackEntity struct {
	Repository string
	FeedbackID string
	PRID       int
	ThreadID   int
	CommentID  int64
	IssueType  string
	Severity   Severity
	Kind       FeedbackKind
	Author     string
	Timestamp  time.Time
	Suggestion string
	FilePath   string
}

// NewFeedbackEntity validates and constructs a FeedbackEntity. filePath
// may be empty for threads not anchored to a diff position.
func NewFeedbackEntity(repo, feedbackID string, prID, threadID int, commentID int64, issueType string, severity Severity, kind FeedbackKind, author string, ts time.Time, suggestion, filePath string) (*FeedbackEntity, error) {
	if repo == "" || feedbackID == "" {
		return nil, errors.ErrValidation("feedback entity: repository and feedback id are required")
	}
	if threadID <= 0 {
		return nil, errors.ErrValidation("feedback entity: thread id must be positive")
	}
	if !severity.Valid() {
		return nil, errors.ErrValidation("feedback entity: invalid severity")
	}
	switch kind {
	case FeedbackAccepted, FeedbackRejected, FeedbackIgnored:
	default:
		return nil, errors.ErrValidation("feedback entity: invalid feedback kind")
	}
	if filePath != "" {
		clean, err := ValidatePath(filePath)
		if err != nil {
			return nil, err
		}
		filePath = clean
	}
	return &FeedbackEntity{
		Repository: repo,
		FeedbackID: feedbackID,
		PRID:       prID,
		ThreadID:   threadID,
		CommentID:  commentID,
		IssueType:  truncate(issueType, MaxIssueTypeLength),
		Severity:   severity,
		Kind:       kind,
		Author:     truncate(author, LogFieldMaxLength),
		Timestamp:  ts.UTC(),
		Suggestion: truncate(suggestion, MaxMessageLength),
		FilePath:   filePath,
	}, nil
}

// ReviewHistoryEntity is one completed review. Partition =
// repository name; row = PR id.
type ReviewHistoryEntity struct {
	Repository     string
	PRID           int
	RepositoryID   string
	ProviderType   string
	AuthorEmail    string
	FilesReviewed  []string
	FileCategories []string
	IssuesFound    int
	SeverityCounts SeverityCounts
	IssuesFixed    int
	IssuesIgnored  int
	Recommendation Recommendation
	DurationSec    float64
	TokensUsed     int
	Strategy       Strategy
	Timestamp      time.Time
}

// NewReviewHistoryEntity validates and constructs a ReviewHistoryEntity.
func NewReviewHistoryEntity(repo string, prID int, repoID, providerType, authorEmail string, filesReviewed, fileCategories []string, result *ReviewResult, issuesFixed, issuesIgnored int, strategy Strategy, duration time.Duration, ts time.Time) (*ReviewHistoryEntity, error) {
	if repo == "" || prID <= 0 {
		return nil, errors.ErrValidation("review history: repository and pr id are required")
	}
	if len(fileCategories) > 1000 {
		fileCategories = fileCategories[:1000]
	}
	if issuesFixed < 0 || issuesIgnored < 0 {
		return nil, errors.ErrValidation("review history: counts must be non-negative")
	}
	h := &ReviewHistoryEntity{
		Repository:     repo,
		PRID:           prID,
		RepositoryID:   repoID,
		ProviderType:   providerType,
		AuthorEmail:    authorEmail,
		FilesReviewed:  filesReviewed,
		FileCategories: fileCategories,
		IssuesFixed:    issuesFixed,
		IssuesIgnored:  issuesIgnored,
		Strategy:       strategy,
		DurationSec:    duration.Seconds(),
		Timestamp:      ts.UTC(),
	}
	if result != nil {
		h.IssuesFound = len(result.Issues)
		h.SeverityCounts = result.Counts
		h.Recommendation = result.Recommendation
		h.TokensUsed = result.TokensUsed
	}
	return h, nil
}

var datePartitionPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IdempotencyEntity is one webhook-delivery dedup record.
// Partition = YYYY-MM-DD; row = request fingerprint.
type IdempotencyEntity struct {
	Partition      string
	Fingerprint    string
	PRID           int
	Repository     string
	SourceCommitID string
	Status         IdempotencyStatus
	ResultSummary  string
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// NewIdempotencyEntity validates and constructs a pending IdempotencyEntity.
func NewIdempotencyEntity(partition, fingerprint string, prID int, repo, sourceCommitID string, createdAt time.Time) (*IdempotencyEntity, error) {
	if !datePartitionPattern.MatchString(partition) {
		return nil, errors.ErrValidation("idempotency entity: partition must be YYYY-MM-DD")
	}
	if fingerprint == "" {
		return nil, errors.ErrValidation("idempotency entity: fingerprint is required")
	}
	return &IdempotencyEntity{
		Partition:      partition,
		Fingerprint:    fingerprint,
		PRID:           prID,
		Repository:     repo,
		SourceCommitID: sourceCommitID,
		Status:         IdempotencyPending,
		CreatedAt:      createdAt.UTC(),
		ExpiresAt:      createdAt.UTC().Add(IdempotencyTTL),
	}, nil
}

// Complete transitions the entity to completed, truncating the summary.
// Transitions are monotone: only a pending entity may be completed or failed.
func (e *IdempotencyEntity) Complete(summary string) error {
	if e.Status != IdempotencyPending {
		return errors.ErrValidation("idempotency entity: can only complete a pending entry")
	}
	e.Status = IdempotencyCompleted
	e.ResultSummary = truncate(summary, 1000)
	return nil
}

// Fail transitions the entity to failed.
func (e *IdempotencyEntity) Fail(errorCode string) error {
	if e.Status != IdempotencyPending {
		return errors.ErrValidation("idempotency entity: can only fail a pending entry")
	}
	e.Status = IdempotencyFailed
	e.ResultSummary = truncate(errorCode, 1000)
	return nil
}

// Expired reports whether this entity is older than its TTL as of now.
func (e *IdempotencyEntity) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// CacheEntity is one cached AI review. Partition = repository;
// row = content hash.
type CacheEntity struct {
	Repository  string
	ContentHash string
	ReviewJSON  string
	FilePath    string
	Tokens      int
	Cost        float64
	HitCount    int
	LastHitAt   time.Time
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// NewCacheEntity validates and constructs a CacheEntity.
func NewCacheEntity(repo, contentHash, reviewJSON, filePath string, tokens int, cost float64, createdAt time.Time) (*CacheEntity, error) {
	if repo == "" || contentHash == "" {
		return nil, errors.ErrValidation("cache entity: repository and content hash are required")
	}
	var cleanPath string
	if filePath != "" {
		var err error
		cleanPath, err = ValidatePath(filePath)
		if err != nil {
			return nil, err
		}
	}
	return &CacheEntity{
		Repository:  repo,
		ContentHash: contentHash,
		ReviewJSON:  reviewJSON,
		FilePath:    cleanPath,
		Tokens:      tokens,
		Cost:        cost,
		CreatedAt:   createdAt.UTC(),
		ExpiresAt:   createdAt.UTC().Add(ResponseCacheTTL),
	}, nil
}

// Expired reports whether this cache entry is older than its TTL as of now.
func (e *CacheEntity) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// RecordHit increments the hit counter and updates the last-hit timestamp.
func (e *CacheEntity) RecordHit(at time.Time) {
	e.HitCount++
	e.LastHitAt = at.UTC()
}

// CircuitBreakerState is one breaker's in-memory state. Held
// in process memory, guarded by a lock; never persisted across restarts.
type CircuitBreakerState struct {
	Service            string
	State              BreakerState
	ConsecutiveFailures int
	LastFailureAt       time.Time
	HalfOpenProbeInFlight bool
	FailureThreshold    int
	OpenTimeout         time.Duration
}
