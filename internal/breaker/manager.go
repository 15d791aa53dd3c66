// Package breaker provides per-service circuit breakers protecting every
// outbound call (LLM, Git-platform API) from a degraded dependency,
// built around github.com/sony/gobreaker.
package breaker

import (
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/verustcode/verustcode/internal/reviewmodel"
	"github.com/verustcode/verustcode/pkg/errors"
	"github.com/verustcode/verustcode/pkg/logger"
)

// Config holds the two operator-tunable breaker knobs.
type Config struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultConfig applies conservative defaults for
// reliability-affecting settings.
func DefaultConfig() Config {
	return Config{FailureThreshold: 5, OpenTimeout: 30 * time.Second}
}

// Manager holds one gobreaker.CircuitBreaker per logical service name
// ("llm", "git_platform", ...), constructed lazily on first use — never
// at package init, so a breaker never binds to state from a different
// process lifecycle than the one that first calls it.
type Manager struct {
	cfg      Config
	breakers sync.Map // string -> *gobreaker.CircuitBreaker
}

// NewManager constructs a Manager. Breakers are created on first Call
// for a given service name, not here.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg}
}

// Call invokes fn guarded by the named service's breaker. If the
// breaker is OPEN, fn is never invoked and ErrServiceUnavailable is
// returned immediately.
func (m *Manager) Call(service string, fn func() error) error {
	cb := m.breakerFor(service)
	_, err := cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return errors.ErrServiceUnavailable(service)
	}
	return err
}

func (m *Manager) breakerFor(service string) *gobreaker.CircuitBreaker {
	if existing, ok := m.breakers.Load(service); ok {
		return existing.(*gobreaker.CircuitBreaker)
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    service,
		Timeout: m.cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= m.cfg.FailureThreshold
		},
		// An integrity failure means the dependency answered but its
		// payload didn't validate — the service itself is healthy, so
		// it must not count toward tripping the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.HasCode(err, errors.ErrCodeIntegrity)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit_breaker_state_changed",
				zap.String("service", name),
				zap.String("from", string(mapState(from))),
				zap.String("to", string(mapState(to))),
			)
		},
	})

	actual, _ := m.breakers.LoadOrStore(service, cb)
	return actual.(*gobreaker.CircuitBreaker)
}

// State describes one breaker's externally-visible status for the admin
// endpoint.
type State struct {
	Service             string
	State               reviewmodel.BreakerState
	ConsecutiveFailures int
}

// ListStates returns the current state of every breaker created so far.
// A service that has never been called has no entry — there is nothing
// to report for it yet.
func (m *Manager) ListStates() []State {
	var out []State
	m.breakers.Range(func(key, value interface{}) bool {
		cb := value.(*gobreaker.CircuitBreaker)
		counts := cb.Counts()
		out = append(out, State{
			Service:             key.(string),
			State:               mapState(cb.State()),
			ConsecutiveFailures: int(counts.ConsecutiveFailures),
		})
		return true
	})
	return out
}

// Reset forces one named breaker back to CLOSED by discarding it; the
// next Call for that service lazily builds a fresh, CLOSED breaker. A
// service with no breaker yet is a no-op: there is nothing to reset.
func (m *Manager) Reset(service string) {
	m.breakers.Delete(service)
}

// ResetAll forces every known breaker back to CLOSED.
func (m *Manager) ResetAll() {
	m.breakers.Range(func(key, _ interface{}) bool {
		m.breakers.Delete(key)
		return true
	})
}

func mapState(s gobreaker.State) reviewmodel.BreakerState {
	switch s {
	case gobreaker.StateOpen:
		return reviewmodel.BreakerOpen
	case gobreaker.StateHalfOpen:
		return reviewmodel.BreakerHalfOpen
	default:
		return reviewmodel.BreakerClosed
	}
}
