// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"parley/internal/provider"
)

// defaultMockDelay is the artificial pause before the canned
// development response, so the UI exercises its loading states.
const defaultMockDelay = 600 * time.Millisecond

// Capability is the optional local strategy: probed for liveness,
// tried first, allowed to fall through.
type Capability interface {
	Ensure(ctx context.Context) provider.Health
	Health() provider.Health
	Ask(ctx context.Context, prompt string, opts provider.CallOptions) provider.Outcome
}

// Gateway is the direct-transport strategy
type Gateway interface {
	Configured() bool
	Ask(ctx context.Context, prompt string, opts provider.CallOptions) provider.Outcome
}

// Config holds the pipeline's per-process settings
type Config struct {
	Model       string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	MaxRetries  int
	RetryDelay  time.Duration
	ForceDirect bool
	Environment string
}

// Pipeline orchestrates sidecar-then-gateway acquisition with a
// bounded retry loop. At most one acquisition runs per conversation
// turn; the UI enforces that by refusing submissions while Loading
// reports true.
type Pipeline struct {
	cfg         Config
	sidecar     Capability
	direct      Gateway
	loading     atomic.Bool
	forceDirect atomic.Bool
	mockDelay   time.Duration
}

// New creates a pipeline over the given strategies
func New(cfg Config, sidecar Capability, direct Gateway) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		sidecar:   sidecar,
		direct:    direct,
		mockDelay: defaultMockDelay,
	}
	p.forceDirect.Store(cfg.ForceDirect)
	return p
}

// ForceDirect reports whether the sidecar is being skipped
func (p *Pipeline) ForceDirect() bool {
	return p.forceDirect.Load()
}

// SetForceDirect skips (or restores) the sidecar leg of the chain
func (p *Pipeline) SetForceDirect(v bool) {
	p.forceDirect.Store(v)
}

// Loading reports whether an acquisition (including its retries) is
// in flight
func (p *Pipeline) Loading() bool {
	return p.loading.Load()
}

// Health exposes the sidecar's liveness to the rendering layer
func (p *Pipeline) Health() provider.Health {
	return p.sidecar.Health()
}

// Acquire runs the full acquisition chain, retrying retryable failures
// on a fixed delay until the budget runs out. The returned error
// carries the fixed user-facing message for its kind; the raw cause is
// logged and discarded at this boundary.
func (p *Pipeline) Acquire(ctx context.Context, prompt string) (string, *provider.ClassifiedError) {
	p.loading.Store(true)
	defer p.loading.Store(false)

	opts := provider.CallOptions{
		Model:       p.cfg.Model,
		Timeout:     p.cfg.Timeout,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
		Retries:     p.cfg.MaxRetries,
	}

	var last *provider.ClassifiedError
	for attempt := 1; ; attempt++ {
		out := p.attempt(ctx, prompt, opts)
		if out.Status == provider.OutcomeOK {
			return out.Text, nil
		}
		last = out.Err

		if !last.Kind.Retryable() || opts.Retries <= 0 {
			break
		}
		opts.Retries--

		log.Printf("[pipeline] attempt %d failed (%v), retrying in %s", attempt, last, p.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			log.Printf("[pipeline] cancelled while waiting to retry")
			return "", surface(provider.Classify(provider.KindNetwork, "request cancelled"))
		case <-time.After(p.cfg.RetryDelay):
		}
	}

	log.Printf("[pipeline] giving up: %v", last)
	return "", surface(last)
}

// attempt walks the strategy chain once: sidecar, gateway, then the
// development mock, in that order.
func (p *Pipeline) attempt(ctx context.Context, prompt string, opts provider.CallOptions) provider.Outcome {
	if !p.forceDirect.Load() && p.sidecar.Ensure(ctx) == provider.HealthHealthy {
		out := p.sidecar.Ask(ctx, prompt, opts)
		if out.Status != provider.OutcomeTryNext {
			return out
		}
		log.Printf("[pipeline] falling back to direct gateway: %s", out.Reason)
	}

	if p.direct.Configured() {
		out := p.direct.Ask(ctx, prompt, opts)
		if out.Status != provider.OutcomeTryNext {
			return out
		}
		return provider.Fatal(provider.Classify(provider.KindUnknownAPI, out.Reason))
	}

	if !strings.EqualFold(p.cfg.Environment, "live") {
		return p.mock(ctx, prompt)
	}

	return provider.Fatal(provider.Classify(provider.KindAuth, "capability not configured"))
}

// mock returns a canned response after an artificial delay. Local
// development only: the Live environment never reaches this path.
func (p *Pipeline) mock(ctx context.Context, prompt string) provider.Outcome {
	select {
	case <-ctx.Done():
		return provider.Fatal(provider.Classify(provider.KindNetwork, "request cancelled"))
	case <-time.After(p.mockDelay):
	}
	return provider.Ok(fmt.Sprintf("[%s mock] You said: %q. Configure an API key or start the sidecar for real responses.", p.cfg.Environment, prompt))
}

// surface swaps the internal failure for its fixed user-facing message
func surface(err *provider.ClassifiedError) *provider.ClassifiedError {
	return &provider.ClassifiedError{
		Kind:    err.Kind,
		Message: err.Kind.UserMessage(),
		Status:  err.Status,
	}
}
