package github

import (
	"context"
	"strconv"

	"github.com/google/go-github/v57/github"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/pkg/logger"
)

// GetPRFiles returns the file list and per-file diffs ("patch" in GitHub's
// terms) for a pull request.
func (p *GitHubProvider) GetPRFiles(ctx context.Context, owner, repo string, prNumber int) ([]*provider.FileDiff, error) {
	var result []*provider.FileDiff
	opts := &github.ListOptions{PerPage: defaultPerPage}

	for {
		files, resp, err := p.client.PullRequests.ListFiles(ctx, owner, repo, prNumber, opts)
		if err != nil {
			logger.Error("Failed to list pull request files",
				zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int("pr", prNumber))
			return nil, &provider.ProviderError{Provider: "github", Message: "failed to list pull request files", Err: err}
		}
		for _, f := range files {
			oldPath := f.GetPreviousFilename()
			if oldPath == "" {
				oldPath = f.GetFilename()
			}
			result = append(result, &provider.FileDiff{
				Path:      f.GetFilename(),
				OldPath:   oldPath,
				Diff:      f.GetPatch(),
				IsNew:     f.GetStatus() == "added",
				IsDeleted: f.GetStatus() == "removed",
				IsRenamed: f.GetStatus() == "renamed",
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return result, nil
}

// GetFileContent fetches a file's raw content at ref via the contents API.
func (p *GitHubProvider) GetFileContent(ctx context.Context, owner, repo, ref, path string) (string, error) {
	fileContent, _, _, err := p.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		logger.Error("Failed to get file content",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.String("path", path), zap.String("ref", ref))
		return "", &provider.ProviderError{Provider: "github", Message: "failed to get file content", Err: err}
	}
	if fileContent == nil {
		return "", &provider.ProviderError{Provider: "github", Message: "path is a directory, not a file"}
	}
	content, err := fileContent.GetContent()
	if err != nil {
		return "", &provider.ProviderError{Provider: "github", Message: "failed to decode file content", Err: err}
	}
	return content, nil
}

// GetPRThreads groups the pull request's review comments into threads by
// their reply chain (GitHub's REST API has no first-class "thread"
// resource; a root comment with InReplyTo unset starts a thread, replies
// attach via InReplyTo). REST reviews have no resolved flag, so Resolved
// is always false here; the harvester falls back to reaction-based
// classification for GitHub.
func (p *GitHubProvider) GetPRThreads(ctx context.Context, owner, repo string, prNumber int) ([]*provider.ReviewThread, error) {
	comments, _, err := p.client.PullRequests.ListComments(ctx, owner, repo, prNumber, &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: defaultPerPage},
	})
	if err != nil {
		logger.Error("Failed to list pull request review comments",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int("pr", prNumber))
		return nil, &provider.ProviderError{Provider: "github", Message: "failed to list pull request review comments", Err: err}
	}

	threadByRoot := make(map[int64]*provider.ReviewThread)
	var order []int64

	for _, rc := range comments {
		rootID := rc.GetID()
		if rc.InReplyTo != nil {
			rootID = rc.GetInReplyTo()
		}
		thread, ok := threadByRoot[rootID]
		if !ok {
			thread = &provider.ReviewThread{ID: strconv.FormatInt(rootID, 10), FilePath: rc.GetPath(), Line: rc.GetLine()}
			threadByRoot[rootID] = thread
			order = append(order, rootID)
		}
		thread.Comments = append(thread.Comments, &provider.Comment{
			ID:        rc.GetID(),
			Body:      rc.GetBody(),
			Author:    rc.GetUser().GetLogin(),
			CreatedAt: rc.GetCreatedAt().Format("2006-01-02T15:04:05Z"),
			Reactions: p.reactionNames(ctx, owner, repo, rc.GetID()),
		})
	}

	threads := make([]*provider.ReviewThread, 0, len(order))
	for _, rootID := range order {
		threads = append(threads, threadByRoot[rootID])
	}
	return threads, nil
}

// reactionNames fetches the award-emoji content strings attached to a
// review comment. Failures are logged and treated as no reactions rather
// than failing the whole thread listing.
func (p *GitHubProvider) reactionNames(ctx context.Context, owner, repo string, commentID int64) []string {
	reactions, _, err := p.client.Reactions.ListPullRequestCommentReactions(ctx, owner, repo, commentID, &github.ListOptions{PerPage: defaultPerPage})
	if err != nil {
		logger.Warn("Failed to list comment reactions",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int64("comment_id", commentID))
		return nil
	}
	names := make([]string, 0, len(reactions))
	for _, r := range reactions {
		names = append(names, r.GetContent())
	}
	return names
}

// CreateInlineComment posts a comment anchored to a file/line within the
// pull request's current head commit.
func (p *GitHubProvider) CreateInlineComment(ctx context.Context, owner, repo string, prNumber int, filePath string, line int, body string) error {
	pr, _, err := p.client.PullRequests.Get(ctx, owner, repo, prNumber)
	if err != nil {
		return &provider.ProviderError{Provider: "github", Message: "failed to load pull request head commit", Err: err}
	}

	side := "RIGHT"
	comment := &github.PullRequestComment{
		Body:     &body,
		CommitID: pr.GetHead().SHA,
		Path:     &filePath,
		Line:     &line,
		Side:     &side,
	}
	_, _, err = p.client.PullRequests.CreateComment(ctx, owner, repo, prNumber, comment)
	if err != nil {
		logger.Error("Failed to post inline comment",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int("pr", prNumber), zap.String("path", filePath), zap.Int("line", line))
		return &provider.ProviderError{Provider: "github", Message: "failed to post inline comment", Err: err}
	}
	return nil
}
