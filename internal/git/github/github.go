// Package github implements the Git provider interface for GitHub.
package github

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/pkg/logger"
)

// GitHub provider constants
const (
	// API pagination configuration
	defaultPerPage = 100

	// Default GitHub URL for public GitHub
	defaultGitHubURL = "https://github.com"
)

func init() {
	// Register GitHub provider factory
	provider.Register("github", NewProvider)
}

// GitHubProvider implements the Provider interface for GitHub
type GitHubProvider struct {
	client             *github.Client
	token              string
	baseURL            string
	insecureSkipVerify bool
}

// isDefaultGitHub returns true if the provider is configured for public GitHub
// (i.e., not GitHub Enterprise)
func (p *GitHubProvider) isDefaultGitHub() bool {
	return p.baseURL == "" || p.baseURL == defaultGitHubURL
}

// NewProvider creates a new GitHub provider instance
func NewProvider(opts *provider.ProviderOptions) (provider.Provider, error) {
	ctx := context.Background()

	token := opts.Token
	baseURL := opts.BaseURL

	var httpClient *http.Client

	if token != "" {
		// Authenticated mode: use OAuth2 token
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)

		// Create HTTP client with optional insecure skip verify
		httpClient = oauth2.NewClient(ctx, ts)
		if opts.InsecureSkipVerify {
			transport := httpClient.Transport.(*oauth2.Transport)
			if transport.Base == nil {
				transport.Base = &http.Transport{}
			}
			if t, ok := transport.Base.(*http.Transport); ok {
				if t.TLSClientConfig == nil {
					t.TLSClientConfig = &tls.Config{}
				}
				t.TLSClientConfig.InsecureSkipVerify = true
			}
		}
	} else {
		// Anonymous mode: use plain HTTP client for public repositories
		transport := &http.Transport{}
		if opts.InsecureSkipVerify {
			transport.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}
		httpClient = &http.Client{
			Transport: transport,
		}
	}

	var client *github.Client
	var err error

	if baseURL != "" && baseURL != defaultGitHubURL {
		// GitHub Enterprise
		client, err = github.NewClient(httpClient).WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, &provider.ProviderError{
				Provider: "github",
				Message:  "failed to create enterprise client",
				Err:      err,
			}
		}
	} else {
		client = github.NewClient(httpClient)
	}

	return &GitHubProvider{
		client:             client,
		token:              token,
		baseURL:            baseURL,
		insecureSkipVerify: opts.InsecureSkipVerify,
	}, nil
}

// Name returns the provider name
func (p *GitHubProvider) Name() string {
	return "github"
}

// GetBaseURL returns the base URL of the provider
func (p *GitHubProvider) GetBaseURL() string {
	if p.isDefaultGitHub() {
		return defaultGitHubURL
	}
	return p.baseURL
}

// GetPullRequest retrieves pull request details
func (p *GitHubProvider) GetPullRequest(ctx context.Context, owner, repo string, number int) (*provider.PullRequest, error) {
	pr, _, err := p.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		logger.Error("Failed to get pull request",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Int("number", number),
		)
		return nil, &provider.ProviderError{
			Provider: "github",
			Message:  "failed to get pull request",
			Err:      err,
		}
	}

	return &provider.PullRequest{
		Number:      pr.GetNumber(),
		Title:       pr.GetTitle(),
		Description: pr.GetBody(),
		State:       pr.GetState(),
		HeadBranch:  pr.GetHead().GetRef(),
		HeadSHA:     pr.GetHead().GetSHA(),
		BaseBranch:  pr.GetBase().GetRef(),
		BaseSHA:     pr.GetBase().GetSHA(),
		Author:      pr.GetUser().GetLogin(),
		URL:         pr.GetHTMLURL(),
	}, nil
}

// PostComment posts a comment on a PR
func (p *GitHubProvider) PostComment(ctx context.Context, owner, repo string, opts *provider.CommentOptions, body string) error {
	if opts.PRNumber <= 0 {
		return &provider.ProviderError{
			Provider: "github",
			Message:  "a pull request number is required to post a comment",
		}
	}

	comment := &github.IssueComment{Body: &body}
	_, _, err := p.client.Issues.CreateComment(ctx, owner, repo, opts.PRNumber, comment)
	if err != nil {
		logger.Error("Failed to post PR comment",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Int("pr", opts.PRNumber),
		)
		return &provider.ProviderError{
			Provider: "github",
			Message:  "failed to post PR comment",
			Err:      err,
		}
	}
	return nil
}

// ValidateToken validates the provider token
func (p *GitHubProvider) ValidateToken(ctx context.Context) error {
	_, _, err := p.client.Users.Get(ctx, "")
	if err != nil {
		return &provider.ProviderError{
			Provider: "github",
			Message:  "invalid token",
			Err:      err,
		}
	}
	return nil
}
