package reviewprompt

import (
	"fmt"
	"strings"

	"github.com/verustcode/verustcode/internal/filetype"
	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/pkg/logger"
)

// Builder assembles sanitized, file-type-aware prompts for the AI
// client, one method per prompt kind.
type Builder struct {
	registry *filetype.Registry
}

// NewBuilder constructs a Builder against the process-wide file-type
// registry.
func NewBuilder() *Builder {
	return &Builder{registry: filetype.Default()}
}

// BuildSinglePassPrompt renders a prompt reviewing every given file in
// one pass. Calling it with zero files is a programming error — the
// caller is expected to have already decided a single-pass strategy
// applies.
func (b *Builder) BuildSinglePassPrompt(files []*reviewmodel.FileChange, lc *reviewmodel.LearningContext) string {
	if len(files) == 0 {
		panic("reviewprompt: BuildSinglePassPrompt called with zero files")
	}
	return b.buildFilesPrompt("Review the following changes in a single pass.", files, lc)
}

// BuildGroupPrompt renders a prompt reviewing a chunked subset of files.
// Zero files returns "" and logs a warning; the orchestrator is
// expected to skip the call rather than send an empty prompt.
func (b *Builder) BuildGroupPrompt(files []*reviewmodel.FileChange, lc *reviewmodel.LearningContext) string {
	if len(files) == 0 {
		logger.Warn("reviewprompt: BuildGroupPrompt called with zero files, skipping")
		return ""
	}
	return b.buildFilesPrompt("Review the following group of related changes.", files, lc)
}

// CrossFileSummary is one file's findings, rolled up for the
// cross-file synthesis pass of a hierarchical review.
type CrossFileSummary struct {
	Path        string
	Category    filetype.Category
	IssueCount  int
	TopFindings []string
}

// BuildCrossFilePrompt renders a prompt synthesizing cross-file
// concerns (e.g. inconsistent patterns across a large changeset) from
// per-file summaries produced by earlier passes. Zero summaries returns
// "" and logs a warning.
func (b *Builder) BuildCrossFilePrompt(summaries []CrossFileSummary) string {
	if len(summaries) == 0 {
		logger.Warn("reviewprompt: BuildCrossFilePrompt called with zero summaries, skipping")
		return ""
	}

	var body strings.Builder
	body.WriteString("### Per-file summaries\n\n")
	for _, s := range summaries {
		fmt.Fprintf(&body, "- %s (%s): %d issue(s)\n", SanitizePath(s.Path), s.Category, s.IssueCount)
		for _, f := range s.TopFindings {
			body.WriteString("  - ")
			body.WriteString(SanitizeMessage(f))
			body.WriteString("\n")
		}
	}

	return assemblePrompt(
		"Identify cross-file concerns: inconsistent patterns, duplicated logic, "+
			"or architectural issues visible only when looking across these files together.",
		body.String(),
		"",
	)
}

func (b *Builder) buildFilesPrompt(instruction string, files []*reviewmodel.FileChange, lc *reviewmodel.LearningContext) string {
	categories := make([]filetype.Category, 0, len(files))
	var body strings.Builder

	for _, fc := range files {
		cat := b.registry.Classify(fc.Path)
		categories = append(categories, cat)

		body.WriteString("### ")
		body.WriteString(SanitizePath(fc.Path))
		body.WriteString(" (")
		body.WriteString(string(cat))
		body.WriteString(", ")
		body.WriteString(string(fc.Kind))
		body.WriteString(")\n\n```diff\n")
		body.WriteString(escapeBackticks(renderDiff(fc)))
		body.WriteString("\n```\n\n")
	}

	guidance := b.registry.FormatBestPracticesForPrompt(categories, 5)
	return assemblePrompt(instruction, body.String(), guidance, lc)
}

// responseFormat instructs the model to answer with the JSON envelope
// internal/aiclient's parser expects. It is phrased as a hard demand so
// reasoning models — which get no response_format flag — still comply.
const responseFormat = `### Response format

Respond with ONLY a JSON object, no prose before or after it:

{
  "issues": [
    {
      "severity": "critical|high|medium|low|info",
      "issue_type": "short_token",
      "file_path": "path/to/file",
      "line_number": 0,
      "message": "what is wrong and why it matters",
      "fix": {"description": "", "before": "", "after": "", "explanation": ""}
    }
  ]
}

line_number 0 means the issue is file-level. Omit "fix" when you have no
concrete suggestion. An empty "issues" array means the changes look good.`

func assemblePrompt(instruction, body, guidance string, lc ...*reviewmodel.LearningContext) string {
	var out strings.Builder
	out.WriteString(Sanitize(instruction, 0))
	out.WriteString("\n\n")
	out.WriteString(body)
	if guidance != "" {
		out.WriteString("\n### Review guidance\n\n")
		out.WriteString(guidance)
		out.WriteString("\n")
	}
	if len(lc) > 0 && lc[0] != nil {
		if section := renderLearningSection(lc[0]); section != "" {
			out.WriteString("\n")
			out.WriteString(section)
			out.WriteString("\n")
		}
	}
	out.WriteString("\n")
	out.WriteString(responseFormat)
	out.WriteString("\n")

	result := out.String()
	if len(result) > reviewmodel.MaxPromptLength {
		result = result[:reviewmodel.MaxPromptLength]
	}
	return result
}

// renderDiff produces unified-diff-style text for a FileChange, using
// its RawDiff when the source already captured one, otherwise
// reconstructing a minimal representation from its sections.
func renderDiff(fc *reviewmodel.FileChange) string {
	if fc.RawDiff != "" {
		return fc.RawDiff
	}

	var b strings.Builder
	for _, sec := range fc.Sections {
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", sec.BaseStart, sec.BaseLines, sec.TargetStart, sec.TargetLines)
		for _, l := range sec.Lines {
			switch l.Kind {
			case reviewmodel.LineKindAdd:
				b.WriteString("+")
			case reviewmodel.LineKindRemove:
				b.WriteString("-")
			default:
				b.WriteString(" ")
			}
			b.WriteString(l.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}
