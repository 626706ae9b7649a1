package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skarpdev/iflowgen/pkg/api"
)

func validGraph() *api.ComponentGraph {
	return &api.ComponentGraph{Endpoints: []api.Endpoint{{
		ID: "e1",
		Components: []api.Component{
			{ID: "c1", Type: "script"},
		},
	}}}
}

func TestRetrier_FirstAttemptValidates(t *testing.T) {
	calls := 0
	oracle := api.ExtractorFunc(func(ctx context.Context, doc string) (*api.ComponentGraph, error) {
		calls++
		return validGraph(), nil
	})

	r := NewRetrier(oracle)
	graph, err := r.Extract(context.Background(), "doc")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", calls)
	}
	if graph == nil || len(graph.Endpoints) != 1 {
		t.Fatalf("unexpected graph: %+v", graph)
	}
	if r.Phase() != Validated {
		t.Fatalf("phase = %v, want Validated", r.Phase())
	}
}

func TestRetrier_RetriesUntilValid(t *testing.T) {
	calls := 0
	oracle := api.ExtractorFunc(func(ctx context.Context, doc string) (*api.ComponentGraph, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("oracle hiccup")
		}
		return validGraph(), nil
	})

	r := NewRetrier(oracle)
	if _, err := r.Extract(context.Background(), "doc"); err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetrier_InvalidGraphCountsAsFailure(t *testing.T) {
	calls := 0
	oracle := api.ExtractorFunc(func(ctx context.Context, doc string) (*api.ComponentGraph, error) {
		calls++
		// Parseable but structurally empty.
		return &api.ComponentGraph{}, nil
	})

	r := NewRetrier(oracle, WithPolicy(Retry(2).Immediate().Policy()))
	_, err := r.Extract(context.Background(), "doc")
	if err == nil {
		t.Fatalf("expected exhaustion")
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}

	var exErr *api.ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExtractionError, got %T", err)
	}
	if exErr.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", exErr.Attempts)
	}
	if r.Phase() != ExhaustedFailure {
		t.Fatalf("phase = %v, want ExhaustedFailure", r.Phase())
	}
}

func TestRetrier_DefaultBudget(t *testing.T) {
	calls := 0
	oracle := api.ExtractorFunc(func(ctx context.Context, doc string) (*api.ComponentGraph, error) {
		calls++
		return nil, errors.New("always fails")
	})

	r := NewRetrier(oracle)
	_, err := r.Extract(context.Background(), "doc")
	if err == nil {
		t.Fatalf("expected exhaustion")
	}
	if calls != DefaultMaxAttempts {
		t.Fatalf("expected %d attempts, got %d", DefaultMaxAttempts, calls)
	}
}

func TestRetrier_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	oracle := api.ExtractorFunc(func(ctx context.Context, doc string) (*api.ComponentGraph, error) {
		calls++
		cancel()
		return nil, ctx.Err()
	})

	r := NewRetrier(oracle)
	_, err := r.Extract(ctx, "doc")
	if err == nil {
		t.Fatalf("expected failure")
	}
	if calls != 1 {
		t.Fatalf("cancellation should stop retries, got %d attempts", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cause should be context.Canceled, got %v", err)
	}
}

func TestRetrier_BackoffBetweenAttempts(t *testing.T) {
	var slept []time.Duration
	oracle := api.ExtractorFunc(func(ctx context.Context, doc string) (*api.ComponentGraph, error) {
		return nil, errors.New("fails")
	})

	r := NewRetrier(oracle, WithPolicy(
		Retry(3).WithExponentialBackoff(10*time.Millisecond, 2.0, time.Second).Policy(),
	))
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	_, _ = r.Extract(context.Background(), "doc")
	if len(slept) != 2 {
		t.Fatalf("expected 2 sleeps for 3 attempts, got %d", len(slept))
	}
	if slept[0] != 10*time.Millisecond || slept[1] != 20*time.Millisecond {
		t.Fatalf("backoff progression wrong: %v", slept)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(nil); err == nil {
		t.Fatalf("nil graph should fail")
	}
	if err := Validate(&api.ComponentGraph{}); !errors.Is(err, api.ErrEmptyGraph) {
		t.Fatalf("empty graph should fail with ErrEmptyGraph, got %v", err)
	}
	if err := Validate(&api.ComponentGraph{Endpoints: []api.Endpoint{{ID: "e1"}}}); err == nil {
		t.Fatalf("endpoint without components should fail")
	}
	if err := Validate(validGraph()); err != nil {
		t.Fatalf("valid graph rejected: %v", err)
	}
}
