package filetype

import (
	"strings"
	"testing"

	"github.com/verustcode/verustcode/internal/reviewmodel"
)

func TestClassify_PathPatternTakesPriorityOverExtension(t *testing.T) {
	r := Default()
	cat := r.Classify("deploy/k8s/overlays/prod/service.yaml")
	if cat != CategoryContainer {
		t.Fatalf("expected kubernetes path pattern to win, got %v", cat)
	}
}

func TestClassify_GenericYamlIsConfig(t *testing.T) {
	r := Default()
	cat := r.Classify("config/app.yaml")
	if cat != CategoryConfig {
		t.Fatalf("expected plain yaml to classify as config, got %v", cat)
	}
}

func TestClassify_KnownExtensions(t *testing.T) {
	r := Default()
	cases := map[string]Category{
		"main.go":              CategoryProgrammingLanguage,
		"infra/main.tf":        CategoryIaC,
		"app.sql":              CategoryDataQuery,
		"README.md":            CategoryDocs,
		"go.mod":               CategoryBuildPackage,
		"scripts/deploy.sh":    CategoryScript,
		"src/Component.tsx":    CategoryWeb,
		"unknown.xyz123":       CategoryGeneric,
	}
	for path, want := range cases {
		got := r.Classify(path)
		if got != want {
			t.Errorf("Classify(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestClassify_RejectsOverlongPath(t *testing.T) {
	r := Default()
	longPath := strings.Repeat("a", reviewmodel.MaxPathLength+1) + ".go"
	if cat := r.Classify(longPath); cat != CategoryGeneric {
		t.Fatalf("expected overlong path to classify as generic, got %v", cat)
	}
}

func TestClassify_RejectsNullByte(t *testing.T) {
	r := Default()
	if cat := r.Classify("main\x00.go"); cat != CategoryGeneric {
		t.Fatalf("expected null-byte path to classify as generic, got %v", cat)
	}
}

func TestClassify_CachesResult(t *testing.T) {
	r := newRegistry()
	first := r.Classify("main.go")
	second := r.Classify("main.go")
	if first != second {
		t.Fatal("expected repeated classification of the same path to be stable")
	}
	if _, ok := r.cache.Get("main.go"); !ok {
		t.Fatal("expected path to be cached after classification")
	}
}

func TestBestPractices_CapsRespectSpecLimits(t *testing.T) {
	r := Default()
	for _, c := range []Category{CategoryProgrammingLanguage, CategoryIaC, CategoryContainer} {
		bp := r.BestPractices(c)
		if len(bp.SecurityChecks) > 5 {
			t.Errorf("%v: security checks exceed cap of 5: %d", c, len(bp.SecurityChecks))
		}
		if len(bp.CommonIssues) > 5 {
			t.Errorf("%v: common issues exceed cap of 5: %d", c, len(bp.CommonIssues))
		}
		if len(bp.PerformanceTips) > 3 {
			t.Errorf("%v: performance tips exceed cap of 3: %d", c, len(bp.PerformanceTips))
		}
	}
}

func TestTokenEstimate_FallsBackToDefault(t *testing.T) {
	r := Default()
	if n := r.TokenEstimate(Category("not_a_real_category")); n != reviewmodel.DefaultTokenEstimate {
		t.Fatalf("expected default token estimate fallback, got %d", n)
	}
}

func TestFormatBestPracticesForPrompt_IncludesEachCategoryOnce(t *testing.T) {
	r := Default()
	out := r.FormatBestPracticesForPrompt([]Category{CategoryProgrammingLanguage, CategoryProgrammingLanguage, CategoryIaC}, 0)
	if strings.Count(out, "### "+string(CategoryProgrammingLanguage)) != 1 {
		t.Fatal("expected duplicate category to be rendered only once")
	}
	if !strings.Contains(out, "### "+string(CategoryIaC)) {
		t.Fatal("expected iac section to be present")
	}
}
