package reviewer

import (
	"sort"

	"github.com/verustcode/verustcode/internal/filetype"
	"github.com/verustcode/verustcode/internal/reviewmodel"
)

// estimateTokens returns a file's prompt-token estimate: the registry's
// per-category hint (the guidance text the prompt will carry for this
// category) plus the changed-line count times TokensPerLineEstimate,
// capped at MaxTokensPerFile, with the line count itself capped at
// MaxLinesPerFile first.
func estimateTokens(fc *reviewmodel.FileChange) int {
	lines := fc.ChangedLineCount()
	if lines > reviewmodel.MaxLinesPerFile {
		lines = reviewmodel.MaxLinesPerFile
	}
	tokens := filetype.Default().TokenEstimate(filetype.Category(fc.Category)) + lines*reviewmodel.TokensPerLineEstimate
	if tokens > reviewmodel.MaxTokensPerFile {
		tokens = reviewmodel.MaxTokensPerFile
	}
	return tokens
}

// selectStrategy picks the review tier from a file set's
// count and total estimated tokens.
func selectStrategy(files []*reviewmodel.FileChange) (reviewmodel.Strategy, int) {
	total := 0
	for _, f := range files {
		total += estimateTokens(f)
	}
	n := len(files)
	switch {
	case n <= 5 && total <= 10_000:
		return reviewmodel.StrategySinglePass, total
	case n <= 15 && total <= 40_000:
		return reviewmodel.StrategyChunked, total
	default:
		return reviewmodel.StrategyHierarchical, total
	}
}

// sortedByCategoryThenPath orders files by registry category, then path,
// the stable tie-break used for chunk grouping.
func sortedByCategoryThenPath(files []*reviewmodel.FileChange) []*reviewmodel.FileChange {
	out := make([]*reviewmodel.FileChange, len(files))
	copy(out, files)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// bucketForChunked groups category-sorted files into buckets that each
// respect the SINGLE_PASS bounds (<=5 files, <=10,000 tokens), per
// the chunked tier's contract. A single file that alone exceeds the
// per-bucket token bound still gets its own bucket; it is the AI call's
// problem, not the grouping's.
func bucketForChunked(files []*reviewmodel.FileChange) [][]*reviewmodel.FileChange {
	ordered := sortedByCategoryThenPath(files)

	var buckets [][]*reviewmodel.FileChange
	var current []*reviewmodel.FileChange
	currentTokens := 0

	flush := func() {
		if len(current) > 0 {
			buckets = append(buckets, current)
			current = nil
			currentTokens = 0
		}
	}

	for _, f := range ordered {
		t := estimateTokens(f)
		if len(current) > 0 && (len(current) >= 5 || currentTokens+t > 10_000) {
			flush()
		}
		current = append(current, f)
		currentTokens += t
	}
	flush()
	return buckets
}

// hasCriticalOrHigh reports whether a per-file ReviewResult contains any
// critical or high severity issue, the HIERARCHICAL strategy's gate for
// including a file in the cross-file pass.
func hasCriticalOrHigh(r *reviewmodel.ReviewResult) bool {
	return r != nil && (r.Counts.Critical > 0 || r.Counts.High > 0)
}
