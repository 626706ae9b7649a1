package api

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Observer receives callbacks from the converter for logging and auditing.
//
// Implementations should be fast and non-blocking; compilation is a pure,
// bounded-time transformation and observers should not delay it.
type Observer interface {
	// OnConversionStart is called once per conversion, after the input
	// graph has been normalized.
	OnConversionStart(ctx context.Context, graph *ComponentGraph)

	// OnEndpointCompiled is called after each endpoint has been turned into
	// process-body, collaboration, and sequence-flow elements.
	OnEndpointCompiled(ctx context.Context, endpointID string, components, flows int)

	// OnRepair is called for every structural repair, skip, or drop. This
	// is the audit trail for discrepancies between the raw input and the
	// emitted document.
	OnRepair(ctx context.Context, d Diagnostic)

	// OnConversionCompleted is called when the package has been assembled.
	OnConversionCompleted(ctx context.Context, res *ConversionResult)

	// OnConversionFailed is called when a stage fails hard. stage is one of
	// "normalize", "extract", "serialize", "package".
	OnConversionFailed(ctx context.Context, stage string, err error)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnConversionStart(ctx context.Context, graph *ComponentGraph) {}
func (NoopObserver) OnEndpointCompiled(ctx context.Context, endpointID string, components, flows int) {
}
func (NoopObserver) OnRepair(ctx context.Context, d Diagnostic)                       {}
func (NoopObserver) OnConversionCompleted(ctx context.Context, res *ConversionResult) {}
func (NoopObserver) OnConversionFailed(ctx context.Context, stage string, err error)  {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnConversionStart(ctx context.Context, graph *ComponentGraph) {
	for _, o := range c.observers {
		o.OnConversionStart(ctx, graph)
	}
}

func (c *CompositeObserver) OnEndpointCompiled(ctx context.Context, endpointID string, components, flows int) {
	for _, o := range c.observers {
		o.OnEndpointCompiled(ctx, endpointID, components, flows)
	}
}

func (c *CompositeObserver) OnRepair(ctx context.Context, d Diagnostic) {
	for _, o := range c.observers {
		o.OnRepair(ctx, d)
	}
}

func (c *CompositeObserver) OnConversionCompleted(ctx context.Context, res *ConversionResult) {
	for _, o := range c.observers {
		o.OnConversionCompleted(ctx, res)
	}
}

func (c *CompositeObserver) OnConversionFailed(ctx context.Context, stage string, err error) {
	for _, o := range c.observers {
		o.OnConversionFailed(ctx, stage, err)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs conversion lifecycle
// events and structural repairs using the provided slog.Logger. If logger
// is nil, slog.Default() is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnConversionStart(ctx context.Context, graph *ComponentGraph) {
	o.Logger.InfoContext(ctx, "conversion_start",
		slog.Int("endpoints", len(graph.Endpoints)),
	)
}

func (o *LoggingObserver) OnEndpointCompiled(ctx context.Context, endpointID string, components, flows int) {
	o.Logger.InfoContext(ctx, "endpoint_compiled",
		slog.String("endpoint", endpointID),
		slog.Int("components", components),
		slog.Int("flows", flows),
	)
}

func (o *LoggingObserver) OnRepair(ctx context.Context, d Diagnostic) {
	o.Logger.WarnContext(ctx, "structural_repair",
		slog.String("stage", d.Stage),
		slog.String("kind", string(d.Kind)),
		slog.String("endpoint", d.Endpoint),
		slog.String("subject", d.Subject),
		slog.String("detail", d.Message),
	)
}

func (o *LoggingObserver) OnConversionCompleted(ctx context.Context, res *ConversionResult) {
	o.Logger.InfoContext(ctx, "conversion_completed",
		slog.String("package", res.Package.Name),
		slog.Int("files", len(res.Package.Files)),
		slog.Int("repairs", len(res.Diagnostics)),
	)
}

func (o *LoggingObserver) OnConversionFailed(ctx context.Context, stage string, err error) {
	o.Logger.ErrorContext(ctx, "conversion_failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// BasicMetricsSnapshot is a point-in-time copy of BasicMetrics counters.
type BasicMetricsSnapshot struct {
	Conversions   int64
	Failures      int64
	Repairs       int64
	EndpointCount int64
}

// BasicMetrics is an Observer that keeps simple atomic counters. It is
// safe for concurrent use and cheap enough to leave enabled everywhere.
type BasicMetrics struct {
	conversions   atomic.Int64
	failures      atomic.Int64
	repairs       atomic.Int64
	endpointCount atomic.Int64
}

func (m *BasicMetrics) OnConversionStart(ctx context.Context, graph *ComponentGraph) {
	m.conversions.Add(1)
	m.endpointCount.Add(int64(len(graph.Endpoints)))
}

func (m *BasicMetrics) OnEndpointCompiled(ctx context.Context, endpointID string, components, flows int) {
}

func (m *BasicMetrics) OnRepair(ctx context.Context, d Diagnostic) {
	m.repairs.Add(1)
}

func (m *BasicMetrics) OnConversionCompleted(ctx context.Context, res *ConversionResult) {}

func (m *BasicMetrics) OnConversionFailed(ctx context.Context, stage string, err error) {
	m.failures.Add(1)
}

// Snapshot returns a copy of the current counter values.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	return BasicMetricsSnapshot{
		Conversions:   m.conversions.Load(),
		Failures:      m.failures.Load(),
		Repairs:       m.repairs.Load(),
		EndpointCount: m.endpointCount.Load(),
	}
}
