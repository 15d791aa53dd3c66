// Package reviewer implements the review orchestrator: the top-level
// algorithm that turns one validated PR webhook event into a posted
// review, tying together the Git-platform client, file-type registry,
// diff parser, prompt builder, AI client, and the reliability substrate
// (idempotency, circuit breaker, response cache, feedback).
package reviewer

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/diffparse"
	"github.com/verustcode/verustcode/internal/filetype"
	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/internal/model"
	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/internal/reviewprompt"
	"github.com/verustcode/verustcode/internal/store"
	"github.com/verustcode/verustcode/pkg/errors"
	"github.com/verustcode/verustcode/pkg/logger"
)

// AIReviewer is the minimal surface the orchestrator needs from the AI
// call pipeline. Satisfied by *internal/aiclient.Client; kept as a small
// consumer-side interface so orchestrator tests can inject a stub, the
// same pattern aiclient.Client uses for its own breaker dependency.
type AIReviewer interface {
	Review(ctx context.Context, repository, prompt string) (*reviewmodel.ReviewResult, error)
}

// LearningSource supplies the per-repository learning context.
// Satisfied by *internal/feedback.Harvester.
type LearningSource interface {
	BuildLearningContext(repository string) (*reviewmodel.LearningContext, error)
}

// Clock abstracts time.Now for deterministic tests.
type Clock func() time.Time

// Orchestrator wires together every dependency the review pipeline
// touches. All dependencies are constructor-injected; there is no
// package-level state beyond the breaker/rate-limiter/registry
// singletons.
type Orchestrator struct {
	git            provider.Provider
	ai             AIReviewer
	learning       LearningSource
	idempotency    store.IdempotencyStore
	reviewHistory  store.ReviewHistoryStore
	registry       *filetype.Registry
	prompts        *reviewprompt.Builder
	maxConcurrency int
	dryRun         bool
	now            Clock
}

// Config configures an Orchestrator.
type Config struct {
	MaxConcurrentReviews int  // semaphore width for diff fetches and AI calls
	DryRun               bool // analyze but never post comments
}

// NewOrchestrator constructs an Orchestrator from its dependencies.
func NewOrchestrator(git provider.Provider, ai AIReviewer, learning LearningSource, idempotency store.IdempotencyStore, reviewHistory store.ReviewHistoryStore, cfg Config) *Orchestrator {
	maxConcurrency := cfg.MaxConcurrentReviews
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &Orchestrator{
		git:            git,
		ai:             ai,
		learning:       learning,
		idempotency:    idempotency,
		reviewHistory:  reviewHistory,
		registry:       filetype.Default(),
		prompts:        reviewprompt.NewBuilder(),
		maxConcurrency: maxConcurrency,
		dryRun:         cfg.DryRun,
		now:            time.Now,
	}
}

// Request bundles the inputs HandlePREvent needs beyond the event's own
// identity fields: owner/repo path segments for the Git-platform client,
// and whether to skip posting (dry run).
type Request struct {
	Owner  string
	Repo   string
	Event  *reviewmodel.PREvent
	DryRun bool
}

// fileOutcome is a per-file intermediate result: either a parsed change
// or a fetch/parse error; per-file errors never abort the batch.
type fileOutcome struct {
	change *reviewmodel.FileChange
	err    error
	path   string
}

// HandlePREvent runs the full review pipeline for one event. The bool
// return reports whether this call short-circuited on a duplicate
// delivery: callers use it to distinguish that case from a freshly
// computed, genuinely-zero-issue result.
func (o *Orchestrator) HandlePREvent(ctx context.Context, req Request) (*reviewmodel.ReviewResult, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, reviewmodel.OverallHandlerTimeout)
	defer cancel()

	started := o.now()
	event := req.Event
	if event == nil {
		return nil, false, errors.ErrValidation("handle pr event: event is required")
	}

	// Step 1: deduplicate via idempotency fingerprint. Short-circuit
	// returns the first delivery's stored result summary rather than
	// re-running the pipeline.
	fingerprint := fingerprintHash(event.FingerprintInput())
	if existing, err := o.idempotency.GetByFingerprint(fingerprint); err == nil && existing != nil {
		if o.now().Sub(existing.CreatedAt) < reviewmodel.IdempotencyTTL {
			logger.Info("handle pr event: short-circuiting on existing idempotency record",
				zap.String("fingerprint", fingerprint), zap.String("status", existing.Status))
			stored, decodeErr := reviewmodel.DecodeStoredSummary(existing.Summary)
			if decodeErr != nil {
				logger.Warn("handle pr event: could not decode stored summary for duplicate delivery",
					zap.String("fingerprint", fingerprint), zap.Error(decodeErr))
				return reviewmodel.NewReviewResult(nil, 0, 0), true, nil
			}
			return stored.ReviewResult(), true, nil
		}
	}

	// Step 2: record a pending idempotency row.
	rec, err := reviewmodel.NewIdempotencyEntity(started.Format("2006-01-02"), fingerprint, event.PRID, event.RepositoryName, event.SourceCommitID, started)
	if err != nil {
		return nil, false, err
	}
	if err := o.idempotency.Create(entityToIdempotencyRecord(rec)); err != nil {
		return nil, false, errors.ErrInternal("handle pr event: failed to record idempotency row", err)
	}

	result, strategy, handleErr := o.run(ctx, req)

	if handleErr != nil {
		appErr, ok := handleErr.(*errors.AppError)
		code := string(errors.ErrCodeInternal)
		if ok {
			code = string(appErr.Code)
		}
		if _, err := o.idempotency.FailIfPending(fingerprint, code); err != nil {
			logger.Warn("handle pr event: failed to mark idempotency row failed", zap.Error(err))
		}
		return nil, false, handleErr
	}

	summary, err := reviewmodel.NewStoredSummary(result).Encode()
	if err != nil {
		logger.Warn("handle pr event: failed to encode stored summary", zap.Error(err))
	} else if _, err := o.idempotency.CompleteIfPending(fingerprint, summary); err != nil {
		logger.Warn("handle pr event: failed to mark idempotency row completed", zap.Error(err))
	}

	if err := o.persistHistory(event, result, strategy, o.now().Sub(started)); err != nil {
		logger.Warn("handle pr event: failed to persist review history", zap.Error(err))
	}

	return result, false, nil
}

// run executes steps 3-10: fetch, classify, strategize, review, post.
// It returns the chosen strategy alongside the result purely so the
// caller can record it in review history; the strategy never affects
// the error path.
func (o *Orchestrator) run(ctx context.Context, req Request) (*reviewmodel.ReviewResult, reviewmodel.Strategy, error) {
	event := req.Event

	// Step 3: fetch PR metadata and file list.
	if _, err := o.git.GetPullRequest(ctx, req.Owner, req.Repo, event.PRID); err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeGitNotFound, "handle pr event: failed to fetch pull request", err)
	}
	prFiles, err := o.git.GetPRFiles(ctx, req.Owner, req.Repo, event.PRID)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeGitNotFound, "handle pr event: failed to fetch pr files", err)
	}

	// Step 4 + 5: classify and fetch/parse diffs, bounded concurrency.
	changes, skipped := o.fetchAndParse(ctx, req, prFiles)
	var errorPaths []string
	for _, oc := range skipped {
		errorPaths = append(errorPaths, oc.path)
	}
	if len(skipped) > 0 {
		logger.Warn("handle pr event: skipped files", zap.Int("count", len(skipped)))
	}
	if len(changes) == 0 {
		return reviewmodel.NewReviewResult(nil, 0, 0), reviewmodel.StrategySinglePass, nil
	}

	// Step 6: choose strategy.
	strategy, _ := selectStrategy(changes)

	// Step 7: fetch learning context, tolerating failure.
	var learningCtx *reviewmodel.LearningContext
	if o.learning != nil {
		lc, err := o.learning.BuildLearningContext(event.RepositoryName)
		if err != nil {
			logger.Warn("handle pr event: failed to build learning context, proceeding without it", zap.Error(err))
		} else {
			learningCtx = lc
		}
	}

	// Step 8: execute review per strategy.
	result, strategyFailedPaths, err := o.executeStrategy(ctx, event.RepositoryName, strategy, changes, learningCtx)
	if err != nil {
		return nil, strategy, err
	}
	errorPaths = append(errorPaths, strategyFailedPaths...)

	// Step 10: post comments unless dry run (per-request or configured).
	if !req.DryRun && !o.dryRun {
		if err := o.postComments(ctx, req, result, dedupeSortedPaths(errorPaths)); err != nil {
			logger.Warn("handle pr event: comment posting encountered errors", zap.Error(err))
		}
	}

	return result, strategy, nil
}

// dedupeSortedPaths removes duplicates and sorts the combined set of
// per-file fetch failures and per-bucket AI
// failures (step 8), so the summary comment's "files with errors"
// section lists each path once, in a stable order.
func dedupeSortedPaths(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// fetchAndParse fetches and parses each file's diff with bounded
// concurrency, synthesizing one from file content when the platform
// returned no diff block.
func (o *Orchestrator) fetchAndParse(ctx context.Context, req Request, prFiles []*provider.FileDiff) ([]*reviewmodel.FileChange, []fileOutcome) {
	sem := make(chan struct{}, o.maxConcurrency)
	var wg sync.WaitGroup
	outcomes := make([]fileOutcome, len(prFiles))

	for i, f := range prFiles {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, f *provider.FileDiff) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = o.fetchOneFile(ctx, req, f)
		}(i, f)
	}
	wg.Wait()

	changes := make([]*reviewmodel.FileChange, 0, len(outcomes))
	var skipped []fileOutcome
	for _, oc := range outcomes {
		if oc.err != nil {
			logger.Warn("handle pr event: per-file fetch/parse error",
				zap.String("path", oc.path), zap.Error(oc.err))
			skipped = append(skipped, oc)
			continue
		}
		if oc.change != nil {
			changes = append(changes, oc.change)
		}
	}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, skipped
}

func (o *Orchestrator) fetchOneFile(ctx context.Context, req Request, f *provider.FileDiff) fileOutcome {
	if _, err := reviewmodel.ValidatePath(f.Path); err != nil {
		return fileOutcome{path: f.Path, err: err}
	}

	category := string(o.registry.Classify(f.Path))
	kind := changeKindFor(f)

	if f.Diff != "" {
		fc := diffparse.ParseFile(f.Path, f.Diff)
		if fc == nil {
			return fileOutcome{path: f.Path, err: errors.ErrValidation("handle pr event: diff parse produced no file change")}
		}
		fc.Category = category
		fc.Kind = kind
		return fileOutcome{path: f.Path, change: fc}
	}

	// No diff content from the platform: synthesize one from file
	// content.
	if f.IsDeleted {
		before, err := o.git.GetFileContent(ctx, req.Owner, req.Repo, req.Event.TargetRef, f.OldPath)
		if err != nil {
			return fileOutcome{path: f.Path, err: err}
		}
		fc, err := diffparse.SynthesizeFromContent(f.Path, reviewmodel.ChangeKindDelete, before, "")
		if err != nil {
			return fileOutcome{path: f.Path, err: err}
		}
		fc.Category = category
		return fileOutcome{path: f.Path, change: fc}
	}

	after, err := o.git.GetFileContent(ctx, req.Owner, req.Repo, req.Event.SourceCommitID, f.Path)
	if err != nil {
		return fileOutcome{path: f.Path, err: err}
	}
	before := ""
	if kind == reviewmodel.ChangeKindEdit {
		before, _ = o.git.GetFileContent(ctx, req.Owner, req.Repo, req.Event.TargetRef, f.OldPath)
	}
	fc, err := diffparse.SynthesizeFromContent(f.Path, kind, before, after)
	if err != nil {
		return fileOutcome{path: f.Path, err: err}
	}
	fc.Category = category
	return fileOutcome{path: f.Path, change: fc}
}

func changeKindFor(f *provider.FileDiff) reviewmodel.ChangeKind {
	switch {
	case f.IsNew:
		return reviewmodel.ChangeKindAdd
	case f.IsDeleted:
		return reviewmodel.ChangeKindDelete
	case f.IsRenamed:
		return reviewmodel.ChangeKindRename
	default:
		return reviewmodel.ChangeKindEdit
	}
}

// executeStrategy dispatches on the chosen tier.
// The returned []string names any files whose bucket's AI call failed
// integrity validation or otherwise errored:
// those files are excluded from the aggregated issues but still need
// naming in the summary comment's "files with errors" section.
func (o *Orchestrator) executeStrategy(ctx context.Context, repository string, strategy reviewmodel.Strategy, changes []*reviewmodel.FileChange, lc *reviewmodel.LearningContext) (*reviewmodel.ReviewResult, []string, error) {
	switch strategy {
	case reviewmodel.StrategySinglePass:
		prompt := o.prompts.BuildSinglePassPrompt(changes, lc)
		result, err := o.ai.Review(ctx, repository, prompt)
		return result, nil, err

	case reviewmodel.StrategyChunked:
		buckets := bucketForChunked(changes)
		results, failedPaths, err := o.reviewConcurrently(ctx, repository, buckets, lc)
		if err != nil {
			return nil, nil, err
		}
		return reviewmodel.Aggregate(results), failedPaths, nil

	default: // hierarchical
		return o.executeHierarchical(ctx, repository, changes, lc)
	}
}

// reviewConcurrently runs one AI call per bucket with bounded
// concurrency. A failed bucket is logged and excluded from the returned
// results; its files' paths are returned separately so callers can
// surface them instead of silently dropping the failure.
func (o *Orchestrator) reviewConcurrently(ctx context.Context, repository string, buckets [][]*reviewmodel.FileChange, lc *reviewmodel.LearningContext) ([]*reviewmodel.ReviewResult, []string, error) {
	sem := make(chan struct{}, o.maxConcurrency)
	var wg sync.WaitGroup
	results := make([]*reviewmodel.ReviewResult, len(buckets))
	errs := make([]error, len(buckets))

	for i, bucket := range buckets {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, bucket []*reviewmodel.FileChange) {
			defer wg.Done()
			defer func() { <-sem }()
			prompt := o.prompts.BuildGroupPrompt(bucket, lc)
			r, err := o.ai.Review(ctx, repository, prompt)
			results[i] = r
			errs[i] = err
		}(i, bucket)
	}
	wg.Wait()

	var firstErr error
	var failedPaths []string
	out := make([]*reviewmodel.ReviewResult, 0, len(results))
	for i, r := range results {
		if errs[i] != nil {
			logger.Warn("handle pr event: bucket review failed", zap.Error(errs[i]))
			if firstErr == nil {
				firstErr = errs[i]
			}
			for _, fc := range buckets[i] {
				failedPaths = append(failedPaths, fc.Path)
			}
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 && firstErr != nil {
		return nil, nil, firstErr
	}
	return out, failedPaths, nil
}

// executeHierarchical runs the hierarchical tier: one AI call
// per file, then one cross-file call over files whose per-file result
// had a critical or high issue.
func (o *Orchestrator) executeHierarchical(ctx context.Context, repository string, changes []*reviewmodel.FileChange, lc *reviewmodel.LearningContext) (*reviewmodel.ReviewResult, []string, error) {
	buckets := make([][]*reviewmodel.FileChange, len(changes))
	for i, fc := range changes {
		buckets[i] = []*reviewmodel.FileChange{fc}
	}
	perFile, failedPaths, err := o.reviewConcurrently(ctx, repository, buckets, lc)
	if err != nil {
		return nil, nil, err
	}

	var summaries []reviewprompt.CrossFileSummary
	all := append([]*reviewmodel.ReviewResult{}, perFile...)
	for i, r := range perFile {
		if !hasCriticalOrHigh(r) {
			continue
		}
		var top []string
		for _, iss := range r.Issues {
			top = append(top, iss.Message)
			if len(top) >= 3 {
				break
			}
		}
		summaries = append(summaries, reviewprompt.CrossFileSummary{
			Path:        changes[i].Path,
			Category:    filetype.Category(changes[i].Category),
			IssueCount:  len(r.Issues),
			TopFindings: top,
		})
	}

	if len(summaries) > 0 {
		prompt := o.prompts.BuildCrossFilePrompt(summaries)
		if prompt != "" {
			crossFile, err := o.ai.Review(ctx, repository, prompt)
			if err != nil {
				logger.Warn("handle pr event: cross-file synthesis call failed, using per-file results only", zap.Error(err))
			} else {
				all = append(all, crossFile)
			}
		}
	}

	return reviewmodel.Aggregate(all), failedPaths, nil
}

func (o *Orchestrator) persistHistory(event *reviewmodel.PREvent, result *reviewmodel.ReviewResult, strategy reviewmodel.Strategy, dur time.Duration) error {
	categories := make([]string, 0, len(event.ChangedFiles))
	for _, f := range event.ChangedFiles {
		categories = append(categories, string(o.registry.Classify(f)))
	}
	h, err := reviewmodel.NewReviewHistoryEntity(event.RepositoryName, event.PRID, event.RepositoryID, o.git.Name(), event.AuthorEmail, event.ChangedFiles, categories, result, 0, 0, strategy, dur, o.now())
	if err != nil {
		return err
	}
	return o.reviewHistory.Create(entityToHistoryRecord(h))
}

func entityToIdempotencyRecord(e *reviewmodel.IdempotencyEntity) *model.IdempotencyRecord {
	return &model.IdempotencyRecord{
		Partition:      e.Partition,
		Fingerprint:    e.Fingerprint,
		PRID:           e.PRID,
		Repository:     e.Repository,
		SourceCommitID: e.SourceCommitID,
		Status:         string(e.Status),
		Summary:        e.ResultSummary,
		CreatedAt:      e.CreatedAt,
		ExpiresAt:      e.ExpiresAt,
	}
}

func entityToHistoryRecord(h *reviewmodel.ReviewHistoryEntity) *model.ReviewHistoryRecord {
	counts := model.JSONMap{
		"critical": h.SeverityCounts.Critical,
		"high":     h.SeverityCounts.High,
		"medium":   h.SeverityCounts.Medium,
		"low":      h.SeverityCounts.Low,
		"info":     h.SeverityCounts.Info,
	}
	return &model.ReviewHistoryRecord{
		Repository:     h.Repository,
		PRID:           h.PRID,
		RepoID:         h.RepositoryID,
		ProviderType:   h.ProviderType,
		AuthorEmail:    h.AuthorEmail,
		FilesReviewed:  model.StringArray(h.FilesReviewed),
		FileCategories: model.StringArray(h.FileCategories),
		IssuesFound:    h.IssuesFound,
		IssuesFixed:    h.IssuesFixed,
		IssuesIgnored:  h.IssuesIgnored,
		Counts:         counts,
		Recommendation: string(h.Recommendation),
		TokensUsed:     h.TokensUsed,
		Strategy:       string(h.Strategy),
		DurationMS:     int64(h.DurationSec * 1000),
		CreatedAt:      h.Timestamp,
	}
}
