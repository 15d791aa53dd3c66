package reviewmodel

// FeedbackExample is a derived, in-process aggregate: a concrete accepted
// issue + suggestion used to steer the model via few-shot prompting.
type FeedbackExample struct {
	IssueType       string
	CodeSnippet     string // sanitized, <= 500 chars
	Suggestion      string // <= 300 chars
	FilePath        string
	Severity        Severity
	AcceptanceCount int // <= 10,000
}

// NewFeedbackExample truncates fields to their caps; it does not validate
// severity strictly since examples are derived from already-validated
// FeedbackEntity rows.
func NewFeedbackExample(issueType, codeSnippet, suggestion, filePath string, severity Severity, acceptanceCount int) FeedbackExample {
	if acceptanceCount > 10_000 {
		acceptanceCount = 10_000
	}
	return FeedbackExample{
		IssueType:       truncate(issueType, MaxIssueTypeLength),
		CodeSnippet:     truncate(codeSnippet, 500),
		Suggestion:      truncate(suggestion, 300),
		FilePath:        filePath,
		Severity:        severity,
		AcceptanceCount: acceptanceCount,
	}
}

// RejectionPattern summarizes an issue type the team consistently rejects
// RejectionCount must be >= MinRejectionsForPattern
// before a pattern is considered established.
type RejectionPattern struct {
	IssueType      string
	InferredReason string
	RejectionCount int
	SampleContext  []string // small sample, not capped further here
}

// LearningContext bundles aggregate statistics, few-shot examples, and
// rejection patterns for one repository.
type LearningContext struct {
	Repository           string
	Examples             []FeedbackExample  // total <= MaxTotalExamplesInPrompt
	RejectionPatterns    []RejectionPattern // <= MaxRejectionPatterns
	TotalFeedbackSamples int
}

// HasSufficientData reports whether this context has enough evidence to be
// injected into a prompt: requires >= FeedbackMinSamples entries.
func (c *LearningContext) HasSufficientData() bool {
	return c != nil && c.TotalFeedbackSamples >= FeedbackMinSamples
}

// NewLearningContext assembles a LearningContext, enforcing the per-type and
// total example caps and the rejection-pattern cap.
func NewLearningContext(repo string, examplesByType map[string][]FeedbackExample, patterns []RejectionPattern, totalSamples int) *LearningContext {
	var examples []FeedbackExample
	for _, exs := range examplesByType {
		n := len(exs)
		if n > MaxExamplesPerIssueType {
			n = MaxExamplesPerIssueType
		}
		examples = append(examples, exs[:n]...)
		if len(examples) >= MaxTotalExamplesInPrompt {
			break
		}
	}
	if len(examples) > MaxTotalExamplesInPrompt {
		examples = examples[:MaxTotalExamplesInPrompt]
	}
	if len(patterns) > MaxRejectionPatterns {
		patterns = patterns[:MaxRejectionPatterns]
	}
	return &LearningContext{
		Repository:           repo,
		Examples:             examples,
		RejectionPatterns:    patterns,
		TotalFeedbackSamples: totalSamples,
	}
}
