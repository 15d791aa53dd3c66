package gitlab

import (
	"context"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/pkg/logger"
)

// wontFixMarkers and byDesignMarkers are phrases a human reviewer types
// into a resolving note when the GitLab API itself exposes nothing
// beyond Resolved/Resolvable booleans.
var wontFixMarkers = []string{"won't fix", "wont fix", "wontfix"}
var byDesignMarkers = []string{"by design", "bydesign", "not applicable"}

// classifyResolution scans a resolved thread's comment bodies for a
// won't-fix/by-design marker phrase. Returns ThreadResolutionUnspecified
// when none is found, leaving classification to fall back to Resolved.
func classifyResolution(comments []*provider.Comment) provider.ThreadResolution {
	for _, c := range comments {
		body := strings.ToLower(c.Body)
		for _, marker := range byDesignMarkers {
			if strings.Contains(body, marker) {
				return provider.ThreadResolutionByDesign
			}
		}
		for _, marker := range wontFixMarkers {
			if strings.Contains(body, marker) {
				return provider.ThreadResolutionWontFix
			}
		}
	}
	return provider.ThreadResolutionUnspecified
}

// GetPRFiles returns the file list and per-file diffs for a merge request
// iteration.
func (p *GitLabProvider) GetPRFiles(ctx context.Context, owner, repo string, prNumber int) ([]*provider.FileDiff, error) {
	pid := projectPath(owner, repo)

	diffs, _, err := p.client.MergeRequests.ListMergeRequestDiffs(pid, int64(prNumber), &gitlab.ListMergeRequestDiffsOptions{
		ListOptions: gitlab.ListOptions{PerPage: defaultPerPage},
	})
	if err != nil {
		logger.Error("Failed to list merge request diffs",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int("mr", prNumber))
		return nil, &provider.ProviderError{Provider: "gitlab", Message: "failed to list merge request diffs", Err: err}
	}

	result := make([]*provider.FileDiff, 0, len(diffs))
	for _, d := range diffs {
		result = append(result, &provider.FileDiff{
			Path:      d.NewPath,
			OldPath:   d.OldPath,
			Diff:      d.Diff,
			IsNew:     d.NewFile,
			IsDeleted: d.DeletedFile,
			IsRenamed: d.RenamedFile,
		})
	}
	return result, nil
}

// GetFileContent fetches a file's raw content at ref via the Repository
// Files API, using the raw-download endpoint rather than the metadata
// one.
func (p *GitLabProvider) GetFileContent(ctx context.Context, owner, repo, ref, path string) (string, error) {
	pid := projectPath(owner, repo)

	raw, _, err := p.client.RepositoryFiles.GetRawFile(pid, path, &gitlab.GetRawFileOptions{Ref: &ref})
	if err != nil {
		logger.Error("Failed to get raw file content",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.String("path", path), zap.String("ref", ref))
		return "", &provider.ProviderError{Provider: "gitlab", Message: "failed to get raw file content", Err: err}
	}
	return string(raw), nil
}

// GetPRThreads returns merge request discussions mapped to ReviewThread.
func (p *GitLabProvider) GetPRThreads(ctx context.Context, owner, repo string, prNumber int) ([]*provider.ReviewThread, error) {
	pid := projectPath(owner, repo)

	discussions, _, err := p.client.Discussions.ListMergeRequestDiscussions(pid, int64(prNumber), &gitlab.ListMergeRequestDiscussionsOptions{
		ListOptions: gitlab.ListOptions{PerPage: defaultPerPage},
	})
	if err != nil {
		logger.Error("Failed to list merge request discussions",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int("mr", prNumber))
		return nil, &provider.ProviderError{Provider: "gitlab", Message: "failed to list merge request discussions", Err: err}
	}

	threads := make([]*provider.ReviewThread, 0, len(discussions))
	for _, d := range discussions {
		thread := &provider.ReviewThread{ID: d.ID}

		for _, note := range d.Notes {
			if note.System {
				continue
			}
			if note.Resolvable {
				thread.Resolved = thread.Resolved || note.Resolved
			}
			if note.Position != nil {
				thread.FilePath = note.Position.NewPath
				thread.Line = int(note.Position.NewLine)
			}
			createdAt := ""
			if note.CreatedAt != nil {
				createdAt = note.CreatedAt.Format("2006-01-02T15:04:05Z")
			}
			thread.Comments = append(thread.Comments, &provider.Comment{
				ID:        int64(note.ID),
				Body:      note.Body,
				Author:    note.Author.Username,
				CreatedAt: createdAt,
			})
		}
		if thread.Resolved {
			thread.Resolution = classifyResolution(thread.Comments)
		}
		if len(thread.Comments) > 0 {
			threads = append(threads, thread)
		}
	}
	return threads, nil
}

// CreateInlineComment posts a comment anchored to a file/line within the
// merge request's current diff, using the MR's diff refs as the required
// position anchor.
func (p *GitLabProvider) CreateInlineComment(ctx context.Context, owner, repo string, prNumber int, filePath string, line int, body string) error {
	pid := projectPath(owner, repo)

	mr, _, err := p.client.MergeRequests.GetMergeRequest(pid, int64(prNumber), nil)
	if err != nil {
		return &provider.ProviderError{Provider: "gitlab", Message: "failed to load merge request diff refs", Err: err}
	}

	positionType := "text"
	lineInt64 := int64(line)
	opts := &gitlab.CreateMergeRequestDiscussionOptions{
		Body: &body,
		Position: &gitlab.PositionOptions{
			BaseSHA:      &mr.DiffRefs.BaseSha,
			StartSHA:     &mr.DiffRefs.StartSha,
			HeadSHA:      &mr.DiffRefs.HeadSha,
			PositionType: &positionType,
			NewPath:      &filePath,
			NewLine:      &lineInt64,
		},
	}

	_, _, err = p.client.Discussions.CreateMergeRequestDiscussion(pid, int64(prNumber), opts)
	if err != nil {
		logger.Error("Failed to post inline comment",
			zap.Error(err), zap.String("owner", owner), zap.String("repo", repo), zap.Int("mr", prNumber), zap.String("path", filePath), zap.Int("line", line))
		return &provider.ProviderError{Provider: "gitlab", Message: "failed to post inline comment", Err: err}
	}
	return nil
}
