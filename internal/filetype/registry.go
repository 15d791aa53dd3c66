package filetype

import (
	"path"
	"regexp"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/pkg/logger"
)

type pathRule struct {
	pattern  *regexp.Regexp
	category Category
}

// Registry classifies file paths and supplies review guidance per
// category. It is safe for concurrent use; its tables are built once on
// first use.
type Registry struct {
	pathRules      []pathRule
	extMap         map[string]Category
	practices      map[Category]BestPractices
	tokenEstimates map[Category]int
	cache          *gocache.Cache
}

var (
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
)

// Default returns the process-wide Registry singleton, building its
// tables on first call. Mirrors pkg/logger's sync.Once-guarded global,
// generalized to a registry rather than a single logger instance.
func Default() *Registry {
	globalRegistryOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

func newRegistry() *Registry {
	r := &Registry{
		extMap:         buildExtMap(),
		practices:      buildPractices(),
		tokenEstimates: buildTokenEstimates(),
		cache:          gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
	r.pathRules = buildPathRules()
	return r
}

// Classify returns the Category for a changed-file path. Path patterns
// (e.g. "**/k8s/**/*.yaml") take priority over plain extension lookup.
// Results are cached by path up to reviewmodel.FileCategoryCacheSize
// entries (go-cache's item count is unbounded, so once the limit is hit
// one arbitrary entry is evicted before each insert; eviction is not
// least-recently-used).
func (r *Registry) Classify(p string) Category {
	if len(p) == 0 {
		return CategoryGeneric
	}
	if len(p) > reviewmodel.MaxPathLength {
		logger.Warn("filetype: path exceeds max length, treating as generic", zap.Int("length", len(p)))
		return CategoryGeneric
	}
	for i := 0; i < len(p); i++ {
		if p[i] == 0 {
			logger.Warn("filetype: null byte in path, treating as generic")
			return CategoryGeneric
		}
	}

	if cached, ok := r.cache.Get(p); ok {
		return cached.(Category)
	}

	cat := r.classifyUncached(p)
	r.setCache(p, cat)
	return cat
}

func (r *Registry) classifyUncached(p string) Category {
	normalized := strings.ReplaceAll(p, "\\", "/")

	for _, rule := range r.pathRules {
		if safeMatch(rule.pattern, normalized) {
			return rule.category
		}
	}

	ext := strings.ToLower(path.Ext(normalized))
	if cat, ok := r.extMap[ext]; ok {
		return cat
	}

	base := strings.ToLower(path.Base(normalized))
	if cat, ok := r.extMap[base]; ok {
		return cat
	}

	return CategoryGeneric
}

// safeMatch wraps regex matching so a pathological pattern can never
// panic the classifier.
func safeMatch(re *regexp.Regexp, s string) (matched bool) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn("filetype: pattern match panicked, skipping rule", zap.Any("recover", rec))
			matched = false
		}
	}()
	return re.MatchString(s)
}

func (r *Registry) setCache(p string, cat Category) {
	if r.cache.ItemCount() >= reviewmodel.FileCategoryCacheSize {
		r.evictOne()
	}
	r.cache.SetDefault(p, cat)
}

// evictOne drops an arbitrary entry to keep the cache near its cap.
// go-cache has no built-in LRU eviction; iterating its snapshot once to
// remove a single key is the lightest correct approximation that avoids
// unbounded growth.
func (r *Registry) evictOne() {
	for k := range r.cache.Items() {
		r.cache.Delete(k)
		return
	}
}

// BestPractices returns the guidance record for a category, falling back
// to the generic category's record if none is registered.
func (r *Registry) BestPractices(c Category) BestPractices {
	if bp, ok := r.practices[c]; ok {
		return bp
	}
	return r.practices[CategoryGeneric]
}

// TokenEstimate returns the category's per-file token hint, or
// reviewmodel.DefaultTokenEstimate if the category has none registered.
func (r *Registry) TokenEstimate(c Category) int {
	if n, ok := r.tokenEstimates[c]; ok {
		return n
	}
	return reviewmodel.DefaultTokenEstimate
}
