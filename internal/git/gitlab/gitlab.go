// Package gitlab implements the Git provider interface for GitLab.
// It supports both GitLab.com (SaaS) and self-hosted GitLab instances.
// This implementation uses the official GitLab API client library.
package gitlab

import (
	"context"
	"crypto/tls"
	"net/http"

	gitlab "gitlab.com/gitlab-org/api/client-go"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/pkg/logger"
)

// GitLab API pagination configuration
const defaultPerPage = 100

// Default GitLab SaaS URL
const defaultGitLabURL = "https://gitlab.com"

func init() {
	// Register GitLab provider factory
	provider.Register("gitlab", NewProvider)
}

// GitLabProvider implements the Provider interface for GitLab
type GitLabProvider struct {
	client             *gitlab.Client
	token              string
	baseURL            string
	insecureSkipVerify bool
}

// NewProvider creates a new GitLab provider instance
// Supports both GitLab.com and self-hosted GitLab instances with HTTP/HTTPS
func NewProvider(opts *provider.ProviderOptions) (provider.Provider, error) {
	token := opts.Token
	baseURL := opts.BaseURL

	// Normalize base URL
	if baseURL == "" {
		baseURL = defaultGitLabURL
	}

	// Build client options
	clientOpts := []gitlab.ClientOptionFunc{}

	// Set base URL for self-hosted instances
	if baseURL != defaultGitLabURL {
		clientOpts = append(clientOpts, gitlab.WithBaseURL(baseURL))
	}

	// Configure custom HTTP client for InsecureSkipVerify or custom transport
	if opts.InsecureSkipVerify {
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, //nolint:gosec // User explicitly enabled insecure mode
				},
			},
		}
		clientOpts = append(clientOpts, gitlab.WithHTTPClient(httpClient))
		logger.Warn("GitLab client configured with InsecureSkipVerify=true, SSL certificate verification is disabled")
	}

	// Create GitLab client with private token authentication
	client, err := gitlab.NewClient(token, clientOpts...)
	if err != nil {
		return nil, &provider.ProviderError{
			Provider: "gitlab",
			Message:  "failed to create gitlab client",
			Err:      err,
		}
	}

	logger.Info("GitLab provider initialized",
		zap.String("base_url", baseURL),
		zap.Bool("insecure_skip_verify", opts.InsecureSkipVerify),
	)

	return &GitLabProvider{
		client:             client,
		token:              token,
		baseURL:            baseURL,
		insecureSkipVerify: opts.InsecureSkipVerify,
	}, nil
}

// Name returns the provider name
func (p *GitLabProvider) Name() string {
	return "gitlab"
}

// GetBaseURL returns the base URL of the provider
func (p *GitLabProvider) GetBaseURL() string {
	if p.baseURL == "" {
		return defaultGitLabURL
	}
	return p.baseURL
}

// projectPath builds the project path for GitLab API calls.
// GitLab supports multi-level namespaces: group/subgroup/project.
func projectPath(owner, repo string) string {
	return owner + "/" + repo
}

// GetPullRequest retrieves merge request details
func (p *GitLabProvider) GetPullRequest(ctx context.Context, owner, repo string, number int) (*provider.PullRequest, error) {
	// Official GitLab API uses int64 for MR IID
	mr, _, err := p.client.MergeRequests.GetMergeRequest(projectPath(owner, repo), int64(number), nil)
	if err != nil {
		logger.Error("Failed to get merge request",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Int("number", number),
		)
		return nil, &provider.ProviderError{
			Provider: "gitlab",
			Message:  "failed to get merge request",
			Err:      err,
		}
	}

	// Get BaseSHA from DiffRefs if available
	// In official library, DiffRefs is embedded struct, not pointer
	baseSHA := ""
	if mr.DiffRefs.BaseSha != "" {
		baseSHA = mr.DiffRefs.BaseSha
	}

	// Get author username - in official library, Author is embedded struct
	authorUsername := mr.Author.Username

	return &provider.PullRequest{
		Number:      int(mr.IID),
		Title:       mr.Title,
		Description: mr.Description,
		State:       mr.State,
		HeadBranch:  mr.SourceBranch,
		HeadSHA:     mr.SHA,
		BaseBranch:  mr.TargetBranch,
		BaseSHA:     baseSHA,
		Author:      authorUsername,
		URL:         mr.WebURL,
	}, nil
}

// PostComment posts a comment (note) on a MR
func (p *GitLabProvider) PostComment(ctx context.Context, owner, repo string, opts *provider.CommentOptions, body string) error {
	if opts.PRNumber <= 0 {
		return &provider.ProviderError{
			Provider: "gitlab",
			Message:  "a merge request number is required to post a comment",
		}
	}

	pid := projectPath(owner, repo)
	_, _, err := p.client.Notes.CreateMergeRequestNote(pid, int64(opts.PRNumber), &gitlab.CreateMergeRequestNoteOptions{
		Body: &body,
	})
	if err != nil {
		logger.Error("Failed to post MR comment",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Int("mr", opts.PRNumber),
		)
		return &provider.ProviderError{
			Provider: "gitlab",
			Message:  "failed to post MR comment",
			Err:      err,
		}
	}
	logger.Info("MR comment posted successfully",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int("mr", opts.PRNumber),
	)
	return nil
}

// ValidateToken validates the provider token
func (p *GitLabProvider) ValidateToken(ctx context.Context) error {
	user, _, err := p.client.Users.CurrentUser()
	if err != nil {
		return &provider.ProviderError{
			Provider: "gitlab",
			Message:  "invalid token",
			Err:      err,
		}
	}

	logger.Info("GitLab token validated successfully",
		zap.String("username", user.Username),
	)
	return nil
}
