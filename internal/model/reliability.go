package model

import "time"

// IdempotencyRecord is the persisted form of reviewmodel.IdempotencyEntity
// Fingerprint is unique so a concurrent duplicate
// webhook delivery collides on insert rather than racing in memory.
type IdempotencyRecord struct {
	ID             uint   `gorm:"primaryKey"`
	Partition      string `gorm:"size:10;index"`
	Fingerprint    string `gorm:"size:64;uniqueIndex"`
	PRID           int
	Repository     string `gorm:"size:500;index"`
	SourceCommitID string `gorm:"size:64"`
	Status         string `gorm:"size:20"`
	ErrorCode      string `gorm:"size:50"`
	Summary        string
	CreatedAt      time.Time
	ExpiresAt      time.Time `gorm:"index"`
}

// CacheRecord is the persisted half of the two-tier Response Cache
// ContentHash is the cache key: a
// sha256 of the rendered prompt plus model identity.
type CacheRecord struct {
	ID          uint   `gorm:"primaryKey"`
	Repository  string `gorm:"size:500;index"`
	ContentHash string `gorm:"size:64;uniqueIndex"`
	ReviewJSON  string
	FilePath    string `gorm:"size:2000"`
	Tokens      int
	Cost        float64
	HitCount    int
	CreatedAt   time.Time
	ExpiresAt   time.Time `gorm:"index"`
	LastHitAt   *time.Time
}

// FeedbackRecord is the persisted form of reviewmodel.FeedbackEntity
//, written by the Feedback Harvester after it
// classifies how a reviewer responded to a posted finding.
type FeedbackRecord struct {
	ID         uint   `gorm:"primaryKey"`
	Repository string `gorm:"size:500;index"`
	FeedbackID string `gorm:"size:64;uniqueIndex"`
	PRID       int    `gorm:"index"`
	ThreadID   int
	CommentID  int64
	IssueType  string `gorm:"size:100"`
	Severity   string `gorm:"size:20"`
	Kind       string `gorm:"size:20;index"`
	Author     string `gorm:"size:255"`
	Suggestion string
	FilePath   string `gorm:"size:2000"`
	CreatedAt  time.Time
}

// ReviewHistoryRecord is the persisted form of
// reviewmodel.ReviewHistoryEntity, one row per
// completed PR review, read back by the Feedback Harvester and by the
// learning-context builder.
type ReviewHistoryRecord struct {
	ID             uint        `gorm:"primaryKey"`
	Repository     string      `gorm:"size:500;index"`
	PRID           int         `gorm:"index"`
	RepoID         string      `gorm:"size:255"`
	ProviderType   string      `gorm:"size:30"`
	AuthorEmail    string      `gorm:"size:255"`
	FilesReviewed  StringArray `gorm:"type:text"`
	FileCategories StringArray `gorm:"type:text"`
	IssuesFound    int
	IssuesFixed    int
	IssuesIgnored  int
	Counts         JSONMap `gorm:"type:text"`
	Recommendation string  `gorm:"size:30"`
	TokensUsed     int
	Strategy       string `gorm:"size:30"`
	DurationMS     int64
	CreatedAt      time.Time `gorm:"index"`
}

// ReliabilityModels returns the gorm models backing the reliability
// substrate (idempotency, cache, feedback, review history) for
// inclusion in AllModels().
func ReliabilityModels() []interface{} {
	return []interface{}{
		&IdempotencyRecord{},
		&CacheRecord{},
		&FeedbackRecord{},
		&ReviewHistoryRecord{},
	}
}
