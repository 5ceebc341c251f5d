// Package provider routes outbound LLM calls through a named
// dependency's circuit breaker and rate limiter, retrying transient
// failures with exponential backoff and jitter, honouring the caller's
// deadline, and recording per-call metrics. This is the only place in
// the engine network calls are made; every gate that needs semantic
// judgement goes through it and must tolerate it failing.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/ukcompliance/complianceengine/internal/breaker"
	"github.com/ukcompliance/complianceengine/internal/llm"
	"github.com/ukcompliance/complianceengine/internal/metrics"
	"github.com/ukcompliance/complianceengine/internal/ratelimit"
)

// Retry configuration from the spec: base 500ms, factor 2, jitter
// +/-25%, 3 attempts max.
const (
	DefaultBaseDelay   = 500 * time.Millisecond
	DefaultMaxAttempts = 3
	jitterFactor       = 0.25
)

// ErrNoAPIKey is returned when a provider is configured without
// credentials.
var ErrNoAPIKey = errors.New("provider: no API key configured")

// Config describes one named backend: its Client and whether it is
// configured ready to call.
type Config struct {
	Name   string
	Client llm.Client
	APIKey string
}

// Router dispatches calls by provider name, wrapping each in that
// provider's circuit breaker and rate limiter and retrying transient
// errors.
type Router struct {
	configs   map[string]Config
	breakers  *breaker.Manager
	limiter   *ratelimit.RateLimiter
	metrics   metrics.Collector
	now       func() time.Time
	baseDelay time.Duration
}

// NewRouter constructs a Router. metrics may be nil, in which case a
// NoopCollector is used.
func NewRouter(breakers *breaker.Manager, limiter *ratelimit.RateLimiter, collector metrics.Collector) *Router {
	if collector == nil {
		collector = metrics.NewNoopCollector()
	}
	return &Router{
		configs:   make(map[string]Config),
		breakers:  breakers,
		limiter:   limiter,
		metrics:   collector,
		now:       time.Now,
		baseDelay: DefaultBaseDelay,
	}
}

// WithBaseDelay overrides the retry backoff's base delay, for tests
// that need to run the retry loop without waiting in real time.
func (r *Router) WithBaseDelay(d time.Duration) *Router {
	r.baseDelay = d
	return r
}

// Register declares a named provider backend.
func (r *Router) Register(cfg Config) {
	r.configs[cfg.Name] = cfg
}

// Call invokes providerName's backend with prompt and params, honouring
// ctx's deadline, the provider's circuit breaker, its rate limiter, and
// a bounded retry with exponential backoff on transient errors.
func (r *Router) Call(ctx context.Context, providerName, prompt string, params map[string]interface{}) (*llm.Result, error) {
	cfg, ok := r.configs[providerName]
	if !ok {
		return nil, fmt.Errorf("provider: unknown provider %q", providerName)
	}
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	var cb *breaker.Breaker
	if r.breakers != nil {
		cb = r.breakers.Get(providerName)
	}

	start := r.now()
	var result *llm.Result
	var lastErr error

	for attempt := 0; attempt < DefaultMaxAttempts; attempt++ {
		if cb != nil {
			if err := cb.Allow(); err != nil {
				lastErr = err
				break
			}
		}
		if r.limiter != nil {
			if err := r.limiter.Allow(ctx, providerName); err != nil {
				lastErr = err
				break
			}
		}

		res, err := cfg.Client.GenerateContent(ctx, prompt, params)
		if err == nil {
			if cb != nil {
				cb.RecordSuccess()
			}
			result = res
			lastErr = nil
			break
		}

		lastErr = err
		if cb != nil {
			cb.RecordFailure()
		}
		if !isTransient(err) || attempt == DefaultMaxAttempts-1 {
			break
		}

		delay := backoffDelay(attempt, r.baseDelay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			lastErr = ctx.Err()
			attempt = DefaultMaxAttempts
		}
	}

	outcome := "success"
	if lastErr != nil {
		outcome = "error"
	}
	r.metrics.RecordDuration(fmt.Sprintf("provider.%s.%s", providerName, outcome), r.now().Sub(start))
	r.metrics.IncrCounter(fmt.Sprintf("provider.%s.calls", providerName))

	if lastErr != nil {
		return nil, lastErr
	}
	return result, nil
}

// isTransient reports whether err represents a condition worth
// retrying: network failure or server (5xx) error, per the llm error
// category taxonomy.
func isTransient(err error) bool {
	if errors.Is(err, breaker.ErrOpen) || errors.Is(err, ratelimit.ErrRateLimited) {
		return false
	}
	cat, ok := llm.IsCategorizedError(err)
	if !ok {
		return true
	}
	switch cat.Category() {
	case llm.CategoryNetwork, llm.CategoryServer:
		return true
	default:
		return false
	}
}

// backoffDelay computes the exponential-with-jitter delay for a given
// zero-based attempt index: base * 2^attempt, jittered by +/-25%.
func backoffDelay(attempt int, base time.Duration) time.Duration {
	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	jitter := time.Duration(float64(delay) * jitterFactor * (2*rand.Float64() - 1))
	delay += jitter
	if delay < 0 {
		delay = DefaultBaseDelay
	}
	return delay
}
