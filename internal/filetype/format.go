package filetype

import "strings"

// FormatBestPracticesForPrompt renders guidance for the given categories
// as prompt-ready text, capping how many practice lines are emitted per
// category via maxPractices (0 means no cap).
func (r *Registry) FormatBestPracticesForPrompt(categories []Category, maxPractices int) string {
	seen := make(map[Category]bool, len(categories))
	var b strings.Builder
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true

		bp := r.BestPractices(c)
		b.WriteString("### ")
		b.WriteString(string(c))
		b.WriteString("\n")

		writeSection(&b, "Focus areas", bp.FocusAreas, maxPractices)
		writeSection(&b, "Security checks", bp.SecurityChecks, min(5, capOrAll(maxPractices, 5)))
		writeSection(&b, "Common issues", bp.CommonIssues, min(5, capOrAll(maxPractices, 5)))
		writeSection(&b, "Style guidelines", bp.StyleGuidelines, maxPractices)
		writeSection(&b, "Performance tips", bp.PerformanceTips, min(3, capOrAll(maxPractices, 3)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func capOrAll(maxPractices, ceiling int) int {
	if maxPractices <= 0 {
		return ceiling
	}
	if maxPractices < ceiling {
		return maxPractices
	}
	return ceiling
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func writeSection(b *strings.Builder, label string, items []string, max int) {
	if len(items) == 0 {
		return
	}
	if max > 0 && max < len(items) {
		items = items[:max]
	}
	b.WriteString(label)
	b.WriteString(":\n")
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
}
