package providers

import (
	"sync"

	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/config"
	"github.com/verustcode/verustcode/internal/git/provider"
	"github.com/verustcode/verustcode/pkg/logger"
)

// Manager holds the Git provider instances built from configuration. It
// is thread-safe and supports concurrent access to providers.
type Manager struct {
	mu        sync.RWMutex
	providers map[string]provider.Provider
}

// NewManager creates a Manager with one provider instance per configured
// Git provider entry. A provider whose factory fails is logged and
// skipped rather than failing startup.
func NewManager(cfg *config.Config) *Manager {
	m := &Manager{providers: make(map[string]provider.Provider)}

	for _, pc := range cfg.Git.Providers {
		opts := &provider.ProviderOptions{
			Token:              pc.Token,
			BaseURL:            pc.URL,
			InsecureSkipVerify: pc.InsecureSkipVerify,
		}

		p, err := provider.Create(pc.Type, opts)
		if err != nil {
			logger.Warn("Failed to create provider",
				zap.String("type", pc.Type),
				zap.Error(err),
			)
			continue
		}
		m.providers[pc.Type] = p
		logger.Info("Initialized Git provider",
			zap.String("type", pc.Type),
			zap.String("url", pc.URL),
			zap.Bool("insecure_skip_verify", pc.InsecureSkipVerify),
		)
	}

	if len(m.providers) == 0 {
		logger.Warn("No Git providers configured")
	}
	return m
}

// Get returns the provider for a type name, or nil when none is
// configured. The nil return doubles as the miss signal for callers
// that treat an unknown provider as a skippable condition.
func (m *Manager) Get(name string) provider.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providers[name]
}

// List returns the configured provider type names.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	return names
}
