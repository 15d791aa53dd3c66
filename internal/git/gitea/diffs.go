package gitea

import (
	"context"
	"strconv"

	"code.gitea.io/sdk/gitea"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/pkg/logger"
)

// GetPRFiles returns the file list and per-file diffs for a pull request,
// mirroring GitHub's equivalent endpoint that Gitea's API was modeled on.
func (p *GiteaProvider) GetPRFiles(ctx context.Context, owner, repo string, prNumber int) ([]*provider.FileDiff, error) {
	files, _, err := p.client.ListPullRequestFiles(owner, repo, int64(prNumber), gitea.ListPullRequestFilesOptions{
		ListOptions: gitea.ListOptions{PageSize: defaultPerPage},
	})
	if err != nil {
		logger.Error("Failed to list pull request files",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int("pr", prNumber))
		return nil, &provider.ProviderError{Provider: "gitea", Message: "failed to list pull request files", Err: err}
	}

	result := make([]*provider.FileDiff, 0, len(files))
	for _, f := range files {
		oldPath := f.PreviousFilename
		if oldPath == "" {
			oldPath = f.Filename
		}
		result = append(result, &provider.FileDiff{
			Path:      f.Filename,
			OldPath:   oldPath,
			Diff:      f.Patch,
			IsNew:     f.Status == "added",
			IsDeleted: f.Status == "removed",
			IsRenamed: f.Status == "renamed",
		})
	}
	return result, nil
}

// GetFileContent fetches a file's raw content at ref via the contents API.
func (p *GiteaProvider) GetFileContent(ctx context.Context, owner, repo, ref, path string) (string, error) {
	content, _, err := p.client.GetContents(owner, repo, ref, path)
	if err != nil {
		logger.Error("Failed to get file content",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.String("path", path), zap.String("ref", ref))
		return "", &provider.ProviderError{Provider: "gitea", Message: "failed to get file content", Err: err}
	}
	if content == nil || content.Content == nil {
		return "", &provider.ProviderError{Provider: "gitea", Message: "path is a directory or has no content"}
	}
	return *content.Content, nil
}

// GetPRThreads maps each pull request review to a thread of its inline
// comments. Gitea reviews have no dedicated "resolved" flag; an approved
// review is treated as the closest available proxy for Resolved, and the
// harvester falls back to reaction-based classification otherwise.
func (p *GiteaProvider) GetPRThreads(ctx context.Context, owner, repo string, prNumber int) ([]*provider.ReviewThread, error) {
	reviews, _, err := p.client.ListPullReviews(owner, repo, int64(prNumber), gitea.ListPullReviewsOptions{
		ListOptions: gitea.ListOptions{PageSize: defaultPerPage},
	})
	if err != nil {
		logger.Error("Failed to list pull request reviews",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int("pr", prNumber))
		return nil, &provider.ProviderError{Provider: "gitea", Message: "failed to list pull request reviews", Err: err}
	}

	threads := make([]*provider.ReviewThread, 0, len(reviews))
	for _, review := range reviews {
		comments, _, err := p.client.ListPullReviewComments(owner, repo, int64(prNumber), review.ID)
		if err != nil {
			logger.Warn("Failed to list review comments, skipping review",
				zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int64("review_id", review.ID))
			continue
		}
		if len(comments) == 0 {
			continue
		}

		thread := &provider.ReviewThread{
			ID:       strconv.FormatInt(review.ID, 10),
			Resolved: review.State == gitea.ReviewStateApproved,
			FilePath: comments[0].Path,
			Line:     int(comments[0].LineNum),
		}
		for _, c := range comments {
			author := ""
			if c.Reviewer != nil {
				author = c.Reviewer.UserName
			}
			thread.Comments = append(thread.Comments, &provider.Comment{
				ID:        c.ID,
				Body:      c.Body,
				Author:    author,
				CreatedAt: c.Created.Format("2006-01-02T15:04:05Z"),
			})
		}
		threads = append(threads, thread)
	}
	return threads, nil
}

// CreateInlineComment posts a single-comment review anchored to a file
// and line, the Gitea equivalent of a standalone inline comment.
func (p *GiteaProvider) CreateInlineComment(ctx context.Context, owner, repo string, prNumber int, filePath string, line int, body string) error {
	_, _, err := p.client.CreatePullReview(owner, repo, int64(prNumber), gitea.CreatePullReviewOptions{
		State: gitea.ReviewStateComment,
		Comments: []gitea.CreatePullReviewComment{
			{Path: filePath, Body: body, NewLineNum: int64(line)},
		},
	})
	if err != nil {
		logger.Error("Failed to post inline comment",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int("pr", prNumber), zap.String("path", filePath), zap.Int("line", line))
		return &provider.ProviderError{Provider: "gitea", Message: "failed to post inline comment", Err: err}
	}
	return nil
}
