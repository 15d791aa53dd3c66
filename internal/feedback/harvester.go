// Package feedback implements the feedback harvester: an hourly
// scheduled task that reads recently completed reviews, classifies
// the developer reactions to posted comments, persists them, and rebuilds
// each affected repository's LearningContext for the prompt builder.
package feedback

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/internal/store"
	"github.com/verustcode/verustcode/pkg/logger"
)

// Schedule runs the harvester once an hour, on the hour, the scheduling
// granularity. SetIntervalMinutes overrides it.
const Schedule = "0 * * * *"

// recentWindow is how far back the harvester looks for completed
// reviews each run.
const recentWindow = 24 * time.Hour

// ProviderResolver looks up a Git-platform client by provider type
// ("github", "gitlab", "gitea"), so the harvester can fetch PR threads
// regardless of which provider reviewed a given row. Satisfied by
// *internal/git/providers.Manager.
type ProviderResolver interface {
	Get(name string) provider.Provider
}

// Harvester wires the hourly collection job and the LearningContext
// cache consumed by the orchestrator's prompt builder step.
type Harvester struct {
	reviewHistory store.ReviewHistoryStore
	feedbackStore store.FeedbackStore
	providers     ProviderResolver
	cron          *cron.Cron
	schedule      string
	now           func() time.Time

	mu       sync.RWMutex
	contexts map[string]*reviewmodel.LearningContext
}

// New constructs a Harvester.
func New(reviewHistory store.ReviewHistoryStore, feedbackStore store.FeedbackStore, providers ProviderResolver) *Harvester {
	return &Harvester{
		reviewHistory: reviewHistory,
		feedbackStore: feedbackStore,
		providers:     providers,
		cron:          cron.New(),
		schedule:      Schedule,
		now:           time.Now,
		contexts:      make(map[string]*reviewmodel.LearningContext),
	}
}

// SetIntervalMinutes overrides the default hourly schedule. Takes effect
// only before Start.
func (h *Harvester) SetIntervalMinutes(minutes int) {
	if minutes <= 0 {
		return
	}
	h.schedule = "@every " + strconv.Itoa(minutes) + "m"
}

// Start schedules the hourly collection job and runs one pass
// immediately.
func (h *Harvester) Start() error {
	if _, err := h.cron.AddFunc(h.schedule, func() { h.runOnce() }); err != nil {
		logger.Error("feedback harvester: failed to schedule", zap.Error(err))
		return err
	}
	h.cron.Start()
	logger.Info("feedback harvester started", zap.String("schedule", h.schedule))
	go h.runOnce()
	return nil
}

// Stop stops the scheduler, waiting for any in-flight run to finish.
func (h *Harvester) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
	logger.Info("feedback harvester stopped")
}

// BuildLearningContext returns the most recently built LearningContext
// for a repository. Returns (nil, nil) if none has
// been built yet rather than erroring, so callers default to "review
// without learning context".
func (h *Harvester) BuildLearningContext(repository string) (*reviewmodel.LearningContext, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.contexts[repository], nil
}

// runOnce implements collect_recent_feedback. It returns
// the number of feedback entries written, logged but not otherwise used
// by the scheduler.
func (h *Harvester) runOnce() int {
	since := h.now().Add(-recentWindow)
	rows, err := h.reviewHistory.ListSince(since)
	if err != nil {
		logger.Error("feedback harvester: failed to list recent review history", zap.Error(err))
		return 0
	}

	written := 0
	touched := make(map[string]struct{})
	for _, row := range rows {
		n := h.harvestRow(row)
		written += n
		touched[row.Repository] = struct{}{}
	}

	for repo := range touched {
		h.rebuildLearningContext(repo)
	}

	logger.Info("feedback harvester: run complete",
		zap.Int("reviews_scanned", len(rows)), zap.Int("entries_written", written))
	return written
}

// harvestRow fetches one reviewed PR's threads and persists a
// FeedbackEntity per thread comment. A
// failure fetching threads for this row is logged and skipped rather
// than aborting the whole run.
func (h *Harvester) harvestRow(row model.ReviewHistoryRecord) int {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("feedback harvester: recovered from panic harvesting row",
				zap.String("repository", row.Repository), zap.Int("pr_id", row.PRID), zap.Any("panic", r))
		}
	}()

	prov := h.providers.Get(row.ProviderType)
	if prov == nil {
		logger.Warn("feedback harvester: no provider registered for type, skipping",
			zap.String("repository", row.Repository), zap.String("provider_type", row.ProviderType))
		return 0
	}

	owner, repo := splitOwnerRepo(row.Repository)
	threads, err := prov.GetPRThreads(context.Background(), owner, repo, row.PRID)
	if err != nil {
		logger.Warn("feedback harvester: failed to fetch pr threads, skipping row",
			zap.String("repository", row.Repository), zap.Int("pr_id", row.PRID), zap.Error(err))
		return 0
	}

	written := 0
	for _, thread := range threads {
		written += h.harvestThread(row, thread)
	}
	return written
}

// harvestThread classifies and persists one FeedbackEntity per comment
// in a thread.
func (h *Harvester) harvestThread(row model.ReviewHistoryRecord, thread *provider.ReviewThread) int {
	written := 0
	for _, c := range thread.Comments {
		sev, issueType, ours := parseSeverityAndType(c.Body)
		if !ours {
			// Not a comment this reviewer posted; developer chatter in
			// the same thread carries no classifiable issue.
			continue
		}
		kind := classify(thread, c)

		ts, err := time.Parse(time.RFC3339, c.CreatedAt)
		if err != nil {
			ts = h.now()
		}

		feedbackID := feedbackID(row.Repository, row.PRID, c.ID)
		entity, err := reviewmodel.NewFeedbackEntity(row.Repository, feedbackID, row.PRID, threadIDInt(thread.ID), c.ID, issueType, sev, kind, c.Author, ts, c.Body, thread.FilePath)
		if err != nil {
			logger.Warn("feedback harvester: dropping invalid feedback entity", zap.Error(err))
			continue
		}

		if err := h.feedbackStore.Create(entityToRecord(entity)); err != nil {
			logger.Warn("feedback harvester: failed to persist feedback entity", zap.Error(err))
			continue
		}
		written++
	}
	return written
}

// classify resolves feedback kind by precedence: an explicit
// won't-fix/by-design resolution first (rejected, even though the
// thread is also Resolved), then thread status, then reactions, then
// default ignored.
func classify(thread *provider.ReviewThread, c *provider.Comment) reviewmodel.FeedbackKind {
	switch thread.Resolution {
	case provider.ThreadResolutionWontFix, provider.ThreadResolutionByDesign:
		return reviewmodel.FeedbackRejected
	}
	if thread.Resolved {
		return reviewmodel.FeedbackAccepted
	}
	for _, r := range c.Reactions {
		switch strings.ToLower(r) {
		case "+1", "thumbsup", "heart", "hooray":
			return reviewmodel.FeedbackAccepted
		case "-1", "thumbsdown":
			return reviewmodel.FeedbackRejected
		}
	}
	return reviewmodel.FeedbackIgnored
}

func splitOwnerRepo(repository string) (owner, repo string) {
	if idx := strings.LastIndex(repository, "/"); idx >= 0 {
		return repository[:idx], repository[idx+1:]
	}
	return repository, repository
}

// feedbackID derives a deterministic id for a (repository, PR, comment)
// triple so re-harvesting the same comment is idempotent at the store
// layer (FeedbackRecord.FeedbackID is unique-indexed).
func feedbackID(repository string, prID int, commentID int64) string {
	sum := sha256.Sum256([]byte(repository + "\x00" + strconv.Itoa(prID) + "\x00" + strconv.FormatInt(commentID, 10)))
	return hex.EncodeToString(sum[:16])
}

// threadIDInt best-effort parses a platform thread id into the int
// ReviewmodelFeedbackEntity expects; non-numeric ids (GitLab's discussion
// ids are strings) fall back to 1 rather than failing the whole thread.
func threadIDInt(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// parseSeverityAndType mirrors internal/reviewer's formatInlineComment
// layout ("**[severity] issueType**\n\n..."), parsed back out so
// harvested feedback can be attributed to the original issue type and
// severity. The bool reports whether body matches that layout at all —
// comments that don't were not posted by this reviewer.
func parseSeverityAndType(body string) (reviewmodel.Severity, string, bool) {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "**[") {
		return reviewmodel.SeverityInfo, "", false
	}
	end := strings.Index(trimmed, "]")
	if end < 0 {
		return reviewmodel.SeverityInfo, "", false
	}
	sev := reviewmodel.Severity(strings.ToLower(trimmed[3:end]))
	if !sev.Valid() {
		sev = reviewmodel.SeverityInfo
	}
	rest := trimmed[end+1:]
	boldEnd := strings.Index(rest, "**")
	issueType := "unknown"
	if boldEnd > 0 {
		issueType = strings.TrimSpace(rest[:boldEnd])
	}
	return sev, issueType, true
}
