// Package extract wraps an extraction oracle in a bounded retry loop with
// per-attempt validation.
//
// The oracle itself is opaque: any api.Extractor, typically an LLM-backed
// call that turns source documentation into a component graph. Each attempt
// is independent and stateless; the caller only ever sees the final
// validated graph or an *api.ExtractionError once the budget is exhausted.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skarpdev/iflowgen/pkg/api"
)

// DefaultMaxAttempts bounds the retry loop when no policy is given.
const DefaultMaxAttempts = 5

// Phase is the state of one extraction run.
type Phase int

const (
	// Attempting means an oracle call is in flight or about to be made.
	Attempting Phase = iota
	// Validated means an attempt returned a graph that passed validation.
	Validated
	// ExhaustedFailure means every attempt failed or produced an invalid
	// graph.
	ExhaustedFailure
)

func (p Phase) String() string {
	switch p {
	case Attempting:
		return "attempting"
	case Validated:
		return "validated"
	case ExhaustedFailure:
		return "exhausted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// RetryPolicy controls the retry loop.
type RetryPolicy struct {
	// MaxAttempts is the total number of oracle calls. <= 0 means 1.
	MaxAttempts int

	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration

	// BackoffMultiplier grows the delay each attempt. <= 0 means no growth.
	BackoffMultiplier float64

	// MaxBackoff caps the delay; <= 0 means no cap.
	MaxBackoff time.Duration
}

// RetryBuilder provides a fluent way to construct RetryPolicy values.
type RetryBuilder struct {
	policy RetryPolicy
}

// Retry creates a RetryBuilder with the given maxAttempts.
//
// maxAttempts <= 0 is treated as 1 (no retries).
func Retry(maxAttempts int) RetryBuilder {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return RetryBuilder{
		policy: RetryPolicy{
			MaxAttempts: maxAttempts,
		},
	}
}

// WithExponentialBackoff configures exponential backoff:
//
//   - initial is the delay before the first retry.
//   - multiplier > 1 grows the delay each attempt (default 2.0 if <= 0).
//   - max caps the delay; if <= 0, there is no cap.
func (r RetryBuilder) WithExponentialBackoff(initial time.Duration, multiplier float64, max time.Duration) RetryBuilder {
	p := r.policy
	p.InitialBackoff = initial
	p.MaxBackoff = max
	if multiplier <= 0 {
		multiplier = 2.0
	}
	p.BackoffMultiplier = multiplier
	return RetryBuilder{policy: p}
}

// WithConstantBackoff configures a constant backoff between retries.
func (r RetryBuilder) WithConstantBackoff(delay time.Duration) RetryBuilder {
	p := r.policy
	p.InitialBackoff = delay
	p.MaxBackoff = 0
	p.BackoffMultiplier = 1.0
	return RetryBuilder{policy: p}
}

// Immediate disables any sleep between retries. Retries still respect
// MaxAttempts.
func (r RetryBuilder) Immediate() RetryBuilder {
	p := r.policy
	p.InitialBackoff = 0
	p.MaxBackoff = 0
	p.BackoffMultiplier = 0
	return RetryBuilder{policy: p}
}

// Policy returns the underlying RetryPolicy.
func (r RetryBuilder) Policy() RetryPolicy {
	return r.policy
}

// Validate checks that a graph is structurally usable: at least one
// endpoint, every endpoint with at least one component, every component
// with a non-empty ID. It is the per-attempt acceptance predicate; a
// failing graph counts as a failed attempt.
func Validate(g *api.ComponentGraph) error {
	if g == nil || len(g.Endpoints) == 0 {
		return api.ErrEmptyGraph
	}
	for _, ep := range g.Endpoints {
		if len(ep.Components) == 0 {
			return fmt.Errorf("endpoint %q has no components: %w", ep.ID, api.ErrEmptyGraph)
		}
		for i, c := range ep.Components {
			if c.ID == "" {
				return fmt.Errorf("endpoint %q component %d has no id", ep.ID, i)
			}
		}
	}
	return nil
}

// Retrier wraps an api.Extractor in a retry loop. It is itself an
// api.Extractor, so it slots in wherever a plain oracle does.
type Retrier struct {
	oracle   api.Extractor
	policy   RetryPolicy
	validate func(*api.ComponentGraph) error

	phase Phase
	sleep func(ctx context.Context, d time.Duration) error
}

// Ensure Retrier implements api.Extractor.
var _ api.Extractor = (*Retrier)(nil)

// Option configures a Retrier.
type Option func(*Retrier)

// WithPolicy sets the retry policy.
func WithPolicy(p RetryPolicy) Option {
	return func(r *Retrier) { r.policy = p }
}

// WithValidator replaces the default acceptance predicate.
func WithValidator(v func(*api.ComponentGraph) error) Option {
	return func(r *Retrier) {
		if v != nil {
			r.validate = v
		}
	}
}

// NewRetrier wraps oracle with bounded retries. The default policy is
// DefaultMaxAttempts immediate attempts.
func NewRetrier(oracle api.Extractor, opts ...Option) *Retrier {
	r := &Retrier{
		oracle:   oracle,
		policy:   Retry(DefaultMaxAttempts).Immediate().Policy(),
		validate: Validate,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.policy.MaxAttempts <= 0 {
		r.policy.MaxAttempts = 1
	}
	return r
}

// Phase reports the state of the most recent Extract call.
func (r *Retrier) Phase() Phase {
	return r.phase
}

// Extract runs the oracle until a graph passes validation or the budget is
// exhausted. On exhaustion it returns an *api.ExtractionError wrapping the
// last failure.
func (r *Retrier) Extract(ctx context.Context, sourceDoc string) (*api.ComponentGraph, error) {
	r.phase = Attempting

	var lastErr error
	delay := r.policy.InitialBackoff
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if attempt > 1 && delay > 0 {
			if err := r.sleep(ctx, delay); err != nil {
				r.phase = ExhaustedFailure
				return nil, &api.ExtractionError{Attempts: attempt - 1, Err: err}
			}
			delay = nextDelay(delay, r.policy)
		}

		graph, err := r.oracle.Extract(ctx, sourceDoc)
		if err != nil {
			lastErr = err
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				r.phase = ExhaustedFailure
				return nil, &api.ExtractionError{Attempts: attempt, Err: err}
			}
			continue
		}
		if err := r.validate(graph); err != nil {
			lastErr = fmt.Errorf("attempt %d returned invalid graph: %w", attempt, err)
			continue
		}

		r.phase = Validated
		return graph, nil
	}

	r.phase = ExhaustedFailure
	return nil, &api.ExtractionError{Attempts: r.policy.MaxAttempts, Err: lastErr}
}

func nextDelay(current time.Duration, p RetryPolicy) time.Duration {
	if p.BackoffMultiplier > 0 {
		current = time.Duration(float64(current) * p.BackoffMultiplier)
	}
	if p.MaxBackoff > 0 && current > p.MaxBackoff {
		current = p.MaxBackoff
	}
	return current
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
