package filetype

import "regexp"

// buildPathRules returns the path-pattern rules, checked before extension
// lookup. Order matters: more specific path families are listed first.
func buildPathRules() []pathRule {
	rules := []struct {
		pattern string
		cat     Category
	}{
		{`(^|/)k8s/.*\.ya?ml$`, CategoryContainer},
		{`(^|/)kubernetes/.*\.ya?ml$`, CategoryContainer},
		{`(^|/)helm/.*\.ya?ml$`, CategoryContainer},
		{`(^|/)charts/.*\.ya?ml$`, CategoryContainer},
		{`(^|/)\.github/workflows/.*\.ya?ml$`, CategoryCICD},
		{`(^|/)\.gitlab-ci\.ya?ml$`, CategoryCICD},
		{`(^|/)\.circleci/.*\.ya?ml$`, CategoryCICD},
		{`(^|/)Jenkinsfile$`, CategoryCICD},
		{`(^|/)terraform/.*\.tf$`, CategoryIaC},
		{`(^|/)ansible/.*\.ya?ml$`, CategoryIaC},
		{`(^|/)docs?/.*\.(md|rst|txt)$`, CategoryDocs},
	}

	out := make([]pathRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, pathRule{pattern: regexp.MustCompile(r.pattern), category: r.cat})
	}
	return out
}

// buildExtMap maps lowercase extensions (and, for extensionless files,
// exact basenames) to a category.
func buildExtMap() map[string]Category {
	m := map[string]Category{}

	lang := []string{
		".go", ".py", ".rb", ".java", ".kt", ".kts", ".scala", ".c", ".h", ".cc", ".cpp",
		".hpp", ".cs", ".swift", ".rs", ".php", ".ex", ".exs", ".erl", ".clj", ".hs",
		".ml", ".lua", ".dart", ".r", ".m", ".mm", ".jl", ".zig",
	}
	for _, e := range lang {
		m[e] = CategoryProgrammingLanguage
	}

	iac := []string{".tf", ".tfvars", ".hcl", ".pp", ".bicep"}
	for _, e := range iac {
		m[e] = CategoryIaC
	}

	container := []string{".dockerfile"}
	for _, e := range container {
		m[e] = CategoryContainer
	}
	m["dockerfile"] = CategoryContainer
	m["docker-compose.yml"] = CategoryContainer
	m["docker-compose.yaml"] = CategoryContainer

	ci := []string{".gitlab-ci.yml", "jenkinsfile"}
	for _, e := range ci {
		m[e] = CategoryCICD
	}

	config := []string{
		".yaml", ".yml", ".toml", ".ini", ".env", ".conf", ".cfg", ".properties",
	}
	for _, e := range config {
		m[e] = CategoryConfig
	}
	m[".json"] = CategoryConfig

	web := []string{".html", ".htm", ".css", ".scss", ".sass", ".less", ".vue", ".svelte", ".jsx", ".tsx"}
	for _, e := range web {
		m[e] = CategoryWeb
	}
	m[".js"] = CategoryWeb
	m[".ts"] = CategoryWeb

	dataQuery := []string{".sql", ".graphql", ".gql", ".proto", ".prisma"}
	for _, e := range dataQuery {
		m[e] = CategoryDataQuery
	}

	script := []string{".sh", ".bash", ".zsh", ".ps1", ".psm1", ".bat", ".cmd", ".fish"}
	for _, e := range script {
		m[e] = CategoryScript
	}

	docs := []string{".md", ".rst", ".adoc", ".txt"}
	for _, e := range docs {
		m[e] = CategoryDocs
	}

	build := []string{
		".mod", ".sum", ".lock", ".gradle", ".gemspec", ".cargo",
	}
	for _, e := range build {
		m[e] = CategoryBuildPackage
	}
	m["makefile"] = CategoryBuildPackage
	m["gemfile"] = CategoryBuildPackage
	m["rakefile"] = CategoryBuildPackage
	m["package.json"] = CategoryBuildPackage
	m["go.mod"] = CategoryBuildPackage
	m["go.sum"] = CategoryBuildPackage
	m["cargo.toml"] = CategoryBuildPackage
	m["pom.xml"] = CategoryBuildPackage
	m["build.gradle"] = CategoryBuildPackage
	m["requirements.txt"] = CategoryBuildPackage

	return m
}

func buildTokenEstimates() map[Category]int {
	return map[Category]int{
		CategoryProgrammingLanguage: 450,
		CategoryIaC:                 400,
		CategoryContainer:           300,
		CategoryCICD:                300,
		CategoryConfig:              200,
		CategoryWeb:                 350,
		CategoryDataQuery:           350,
		CategoryScript:              300,
		CategoryDocs:                150,
		CategoryBuildPackage:        150,
		CategoryGeneric:             350,
	}
}

func buildPractices() map[Category]BestPractices {
	return map[Category]BestPractices{
		CategoryProgrammingLanguage: {
			Category:        CategoryProgrammingLanguage,
			FocusAreas:      []string{"correctness", "error handling", "concurrency safety", "API design"},
			SecurityChecks:  []string{"input validation", "injection risks", "secrets in source", "unsafe deserialization", "auth checks on sensitive paths"},
			CommonIssues:    []string{"unchecked errors", "resource leaks", "race conditions", "off-by-one bounds", "panics on recoverable input"},
			StyleGuidelines: []string{"idiomatic naming", "consistent error wrapping", "small focused functions"},
			PerformanceTips: []string{"avoid unnecessary allocations", "avoid N+1 patterns", "bound unbounded loops"},
		},
		CategoryIaC: {
			Category:        CategoryIaC,
			FocusAreas:      []string{"least-privilege access", "state management", "drift prevention"},
			SecurityChecks:  []string{"open security groups", "public storage buckets", "hardcoded credentials", "unencrypted storage", "overly broad IAM policies"},
			CommonIssues:    []string{"missing variable defaults", "unpinned provider versions", "no state locking", "duplicated modules"},
			StyleGuidelines: []string{"consistent resource naming", "modules over copy-paste"},
			PerformanceTips: []string{"avoid unnecessary resource recreation"},
		},
		CategoryContainer: {
			Category:        CategoryContainer,
			FocusAreas:      []string{"image hygiene", "resource limits", "network policy"},
			SecurityChecks:  []string{"running as root", "missing resource limits", "privileged containers", "latest tag usage", "exposed secrets in env"},
			CommonIssues:    []string{"no readiness/liveness probes", "missing resource requests", "unpinned base images"},
			StyleGuidelines: []string{"multi-stage builds", "explicit image tags"},
			PerformanceTips: []string{"minimize image layers", "cache dependency layers"},
		},
		CategoryCICD: {
			Category:        CategoryCICD,
			FocusAreas:      []string{"pipeline security", "secret handling", "reproducibility"},
			SecurityChecks:  []string{"secrets printed to logs", "unpinned action/image versions", "pull_request_target misuse", "overly broad tokens"},
			CommonIssues:    []string{"missing caching", "no timeout on jobs", "duplicated steps"},
			StyleGuidelines: []string{"named steps", "reusable workflows/templates"},
			PerformanceTips: []string{"parallelize independent jobs"},
		},
		CategoryConfig: {
			Category:        CategoryConfig,
			FocusAreas:      []string{"schema validity", "environment parity", "secret placement"},
			SecurityChecks:  []string{"plaintext secrets", "overly permissive defaults", "debug flags left on"},
			CommonIssues:    []string{"duplicated keys across environments", "missing required fields"},
			StyleGuidelines: []string{"consistent key casing", "grouped related settings"},
			PerformanceTips: []string{},
		},
		CategoryWeb: {
			Category:        CategoryWeb,
			FocusAreas:      []string{"accessibility", "XSS prevention", "state management"},
			SecurityChecks:  []string{"unescaped user content", "unsafe innerHTML/dangerouslySetInnerHTML", "missing CSRF protection", "insecure cookie flags"},
			CommonIssues:    []string{"missing key props in lists", "uncontrolled re-renders", "unhandled promise rejections"},
			StyleGuidelines: []string{"consistent component structure", "semantic HTML"},
			PerformanceTips: []string{"avoid unnecessary re-renders", "lazy-load large assets"},
		},
		CategoryDataQuery: {
			Category:        CategoryDataQuery,
			FocusAreas:      []string{"query correctness", "index usage", "data integrity"},
			SecurityChecks:  []string{"SQL injection via string concatenation", "missing parameterization", "overly broad grants"},
			CommonIssues:    []string{"missing indexes on filtered columns", "N+1 query patterns", "unbounded result sets"},
			StyleGuidelines: []string{"explicit column lists over SELECT *"},
			PerformanceTips: []string{"add indexes for frequent filters", "avoid full table scans"},
		},
		CategoryScript: {
			Category:        CategoryScript,
			FocusAreas:      []string{"error propagation", "input quoting"},
			SecurityChecks:  []string{"unquoted variable expansion", "eval on untrusted input", "world-writable files created"},
			CommonIssues:    []string{"missing set -euo pipefail", "unchecked command exit codes"},
			StyleGuidelines: []string{"shellcheck-clean quoting"},
			PerformanceTips: []string{},
		},
		CategoryDocs: {
			Category:        CategoryDocs,
			FocusAreas:      []string{"accuracy", "clarity"},
			SecurityChecks:  []string{},
			CommonIssues:    []string{"stale examples", "broken links"},
			StyleGuidelines: []string{"consistent heading levels"},
			PerformanceTips: []string{},
		},
		CategoryBuildPackage: {
			Category:        CategoryBuildPackage,
			FocusAreas:      []string{"dependency hygiene", "reproducible builds"},
			SecurityChecks:  []string{"known-vulnerable dependency versions", "unpinned transitive versions"},
			CommonIssues:    []string{"unused dependencies", "duplicate dependency declarations"},
			StyleGuidelines: []string{},
			PerformanceTips: []string{},
		},
		CategoryGeneric: {
			Category:       CategoryGeneric,
			FocusAreas:     []string{"correctness", "clarity"},
			SecurityChecks: []string{"obvious secrets or credentials"},
			CommonIssues:   []string{},
			StyleGuidelines: []string{},
			PerformanceTips: []string{},
		},
	}
}
