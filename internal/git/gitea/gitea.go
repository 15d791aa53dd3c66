// Package gitea implements the Git provider interface for Gitea.
// It supports both Gitea.com (cloud hosting) and self-hosted Gitea instances.
// This implementation uses the official Gitea Go SDK.
package gitea

import (
	"context"
	"crypto/tls"
	"net/http"

	"code.gitea.io/sdk/gitea"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/pkg/logger"
)

// Gitea API pagination configuration
const defaultPerPage = 100

// Default Gitea cloud URL
const defaultGiteaURL = "https://gitea.com"

func init() {
	// Register Gitea provider factory
	provider.Register("gitea", NewProvider)
}

// GiteaProvider implements the Provider interface for Gitea
type GiteaProvider struct {
	client             *gitea.Client
	token              string
	baseURL            string
	insecureSkipVerify bool
}

// NewProvider creates a new Gitea provider instance
// Supports both Gitea.com and self-hosted Gitea instances with HTTP/HTTPS
func NewProvider(opts *provider.ProviderOptions) (provider.Provider, error) {
	token := opts.Token
	baseURL := opts.BaseURL

	// Normalize base URL
	if baseURL == "" {
		baseURL = defaultGiteaURL
	}

	// Build client options
	clientOpts := []gitea.ClientOption{
		gitea.SetToken(token),
	}

	// Configure custom HTTP client for InsecureSkipVerify
	if opts.InsecureSkipVerify {
		httpClient := &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true, //nolint:gosec // User explicitly enabled insecure mode
				},
			},
		}
		clientOpts = append(clientOpts, gitea.SetHTTPClient(httpClient))
		logger.Warn("Gitea client configured with InsecureSkipVerify=true, SSL certificate verification is disabled")
	}

	// Create Gitea client
	client, err := gitea.NewClient(baseURL, clientOpts...)
	if err != nil {
		return nil, &provider.ProviderError{
			Provider: "gitea",
			Message:  "failed to create gitea client",
			Err:      err,
		}
	}

	logger.Info("Gitea provider initialized",
		zap.String("base_url", baseURL),
		zap.Bool("insecure_skip_verify", opts.InsecureSkipVerify),
	)

	return &GiteaProvider{
		client:             client,
		token:              token,
		baseURL:            baseURL,
		insecureSkipVerify: opts.InsecureSkipVerify,
	}, nil
}

// Name returns the provider name
func (p *GiteaProvider) Name() string {
	return "gitea"
}

// GetBaseURL returns the base URL of the provider
func (p *GiteaProvider) GetBaseURL() string {
	if p.baseURL == "" {
		return defaultGiteaURL
	}
	return p.baseURL
}

// GetPullRequest retrieves pull request details
func (p *GiteaProvider) GetPullRequest(ctx context.Context, owner, repo string, number int) (*provider.PullRequest, error) {
	pr, _, err := p.client.GetPullRequest(owner, repo, int64(number))
	if err != nil {
		logger.Error("Failed to get pull request",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Int("number", number),
		)
		return nil, &provider.ProviderError{
			Provider: "gitea",
			Message:  "failed to get pull request",
			Err:      err,
		}
	}

	// Get BaseSHA from MergeBase if available
	baseSHA := ""
	if pr.MergeBase != "" {
		baseSHA = pr.MergeBase
	}

	// Get author username
	authorUsername := ""
	if pr.Poster != nil {
		authorUsername = pr.Poster.UserName
	}

	return &provider.PullRequest{
		Number:      int(pr.Index),
		Title:       pr.Title,
		Description: pr.Body,
		State:       string(pr.State),
		HeadBranch:  pr.Head.Ref,
		HeadSHA:     pr.Head.Sha,
		BaseBranch:  pr.Base.Ref,
		BaseSHA:     baseSHA,
		Author:      authorUsername,
		URL:         pr.HTMLURL,
	}, nil
}

// PostComment posts a comment (issue comment) on a PR
func (p *GiteaProvider) PostComment(ctx context.Context, owner, repo string, opts *provider.CommentOptions, body string) error {
	if opts.PRNumber <= 0 {
		return &provider.ProviderError{
			Provider: "gitea",
			Message:  "a pull request number is required to post a comment",
		}
	}

	_, _, err := p.client.CreateIssueComment(owner, repo, int64(opts.PRNumber), gitea.CreateIssueCommentOption{
		Body: body,
	})
	if err != nil {
		logger.Error("Failed to post PR comment",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Int("pr", opts.PRNumber),
		)
		return &provider.ProviderError{
			Provider: "gitea",
			Message:  "failed to post PR comment",
			Err:      err,
		}
	}
	logger.Info("PR comment posted successfully",
		zap.String("owner", owner),
		zap.String("repo", repo),
		zap.Int("pr", opts.PRNumber),
	)
	return nil
}

// ValidateToken validates the provider token
func (p *GiteaProvider) ValidateToken(ctx context.Context) error {
	user, _, err := p.client.GetMyUserInfo()
	if err != nil {
		return &provider.ProviderError{
			Provider: "gitea",
			Message:  "invalid token",
			Err:      err,
		}
	}

	logger.Info("Gitea token validated successfully",
		zap.String("username", user.UserName),
	)
	return nil
}
