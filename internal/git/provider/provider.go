// Package provider defines the interface for Git providers.
// Different Git hosting services (GitHub, GitLab, etc.) implement this interface.
package provider

import (
	"context"
)

// PullRequest represents a pull/merge request
type PullRequest struct {
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	State       string `json:"state"` // open, closed, merged
	HeadBranch  string `json:"head_branch"`
	HeadSHA     string `json:"head_sha"`
	BaseBranch  string `json:"base_branch"`
	BaseSHA     string `json:"base_sha"` // Base commit SHA for diff range
	Author      string `json:"author"`
	URL         string `json:"url"`
}

// CommentOptions holds options for posting a comment
type CommentOptions struct {
	// For PR comments
	PRNumber int
	// For line comments
	FilePath  string
	StartLine int
	EndLine   int
}

// Comment represents a comment on a PR
type Comment struct {
	// ID is the unique identifier for the comment
	ID int64 `json:"id"`
	// Body is the comment content
	Body string `json:"body"`
	// Author is the username of the comment author
	Author string `json:"author"`
	// CreatedAt is the creation timestamp
	CreatedAt string `json:"created_at"`
	// Reactions lists the award-emoji/reaction names attached to the
	// comment (e.g. "thumbsup", "thumbsdown"), when the platform exposes
	// them cheaply alongside the comment itself.
	Reactions []string `json:"reactions,omitempty"`
}

// FileDiff is one file's changes within a PR/MR, as returned by the
// platform's "iteration changes" endpoint.
type FileDiff struct {
	// Path is the file's current path (new path for renames/edits).
	Path string `json:"path"`
	// OldPath is the file's prior path; equals Path unless renamed.
	OldPath string `json:"old_path"`
	// Diff is the unified diff text for this file alone. Empty when the
	// platform omits per-file diff content; callers fall back to
	// GetFileContent and synthesize one.
	Diff      string `json:"diff"`
	IsNew     bool   `json:"is_new"`
	IsDeleted bool   `json:"is_deleted"`
	IsRenamed bool   `json:"is_renamed"`
}

// ThreadResolution refines Resolved with why a thread was closed, for
// platforms/comments that convey more than a plain bool. A thread closed
// as won't-fix or by-design did not accept the reviewer's suggestion,
// even though it also reports Resolved=true.
type ThreadResolution string

const (
	// ThreadResolutionUnspecified means no richer signal was observed;
	// callers fall back to Resolved, then to reactions.
	ThreadResolutionUnspecified ThreadResolution = ""
	// ThreadResolutionWontFix marks a thread the author explicitly
	// declined to act on.
	ThreadResolutionWontFix ThreadResolution = "wont_fix"
	// ThreadResolutionByDesign marks a thread closed as expected
	// behavior rather than a defect.
	ThreadResolutionByDesign ThreadResolution = "by_design"
)

// ReviewThread is a PR/MR discussion thread used by the feedback
// harvester to classify developer reactions.
type ReviewThread struct {
	// ID is the thread's platform-native identifier.
	ID string `json:"id"`
	// Resolved reports whether the platform marks the thread as
	// resolved/closed. Platforms without a native resolved flag (plain
	// issue-style comment threads) always report false here; callers
	// fall back to reaction-based classification.
	Resolved bool `json:"resolved"`
	// Resolution refines Resolved with a won't-fix/by-design reason when
	// one is observable; zero value means no such signal was found.
	Resolution ThreadResolution `json:"resolution,omitempty"`
	// FilePath and Line anchor the thread to a diff position, when known.
	FilePath string     `json:"file_path,omitempty"`
	Line     int        `json:"line,omitempty"`
	Comments []*Comment `json:"comments"`
}

// Provider defines the operations the review pipeline needs from a Git
// hosting service: PR metadata, the changed-file list with per-file
// diffs, raw file content for diff synthesis, discussion threads for
// feedback harvesting, and the two comment channels.
type Provider interface {
	// Name returns the provider name (github, gitlab, etc.)
	Name() string

	// GetBaseURL returns the base URL of the provider
	// For public providers: https://github.com, https://gitlab.com
	// For self-hosted: the configured base URL
	GetBaseURL() string

	// GetPullRequest retrieves pull request details
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)

	// PostComment posts a summary comment on a PR
	PostComment(ctx context.Context, owner, repo string, opts *CommentOptions, body string) error

	// ValidateToken validates the provider token
	ValidateToken(ctx context.Context) error

	// GetPRFiles returns the file list and per-file diffs for a PR/MR
	// iteration.
	GetPRFiles(ctx context.Context, owner, repo string, prNumber int) ([]*FileDiff, error)

	// GetFileContent fetches a file's raw content at ref (branch, tag, or
	// commit SHA). Used to synthesize a diff when GetPRFiles returns no
	// diff block for a file.
	GetFileContent(ctx context.Context, owner, repo, ref, path string) (string, error)

	// GetPRThreads returns the PR/MR's discussion threads and their
	// comments, for the feedback harvester.
	GetPRThreads(ctx context.Context, owner, repo string, prNumber int) ([]*ReviewThread, error)

	// CreateInlineComment posts a comment anchored to a specific file
	// path and line within a PR/MR diff.
	CreateInlineComment(ctx context.Context, owner, repo string, prNumber int, filePath string, line int, body string) error
}

// ProviderOptions holds options for creating a provider
type ProviderOptions struct {
	Token              string // access token
	BaseURL            string // base URL for self-hosted instances
	InsecureSkipVerify bool   // skip SSL certificate verification
}

// ProviderFactory creates a provider instance
type ProviderFactory func(opts *ProviderOptions) (Provider, error)

// Registry holds registered provider factories
var Registry = make(map[string]ProviderFactory)

// Register registers a provider factory
func Register(name string, factory ProviderFactory) {
	Registry[name] = factory
}

// Create creates a provider by name
func Create(name string, opts *ProviderOptions) (Provider, error) {
	factory, ok := Registry[name]
	if !ok {
		return nil, &ProviderError{
			Provider: name,
			Message:  "provider not registered",
		}
	}
	return factory(opts)
}

// ProviderError represents a provider-related error
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return "[" + e.Provider + "] " + e.Message + ": " + e.Err.Error()
	}
	return "[" + e.Provider + "] " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
