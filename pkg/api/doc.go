// Package api contains the core building blocks of the iflowgen converter.
// It defines the component-graph data model, the error taxonomy, the
// shared vocabulary helpers, and the observability hooks the compile
// pipeline reports through.
//
// Most users interact with the higher-level iflowgen package, which
// re-exports selected types and helpers from this package. The api package
// is intended for custom integrations or contributors extending the
// converter itself.
//
// # Concepts
//
// The api package centers around a small set of concepts:
//
//   - The component graph (endpoints, components, sequence flows)
//   - The conversion result (a deployable iFlow package)
//   - Diagnostics (the audit trail of structural repairs)
//   - Observability
//
// # Component Graphs
//
// A ComponentGraph is the validated output of component extraction: a list
// of endpoints, each carrying an ordered component list and optionally an
// explicit execution order (Flow) or an explicit connection list
// (SequenceFlows). It is the single input to compilation; the compiler
// never consults the raw extraction output directly.
//
// Component types form a closed set (ComponentType). Raw type strings are
// mapped onto it by ParseComponentType; unrecognized types are skipped
// with a diagnostic, never silently coerced.
//
// # Diagnostics
//
// Compilation repairs what it safely can: missing IDs are synthesized,
// missing start/end connectivity flows are added, duplicate edges are
// dropped, colliding component IDs are rewritten. Every such repair is
// recorded as a Diagnostic and reported through the Observer, so a
// conversion that needed repairs still succeeds but stays auditable.
//
// # Observability
//
// The Observer interface reports conversion lifecycle events and repairs.
// Ready-made implementations include a slog-backed LoggingObserver, a
// BasicMetrics counter observer, and a CompositeObserver to combine them.
//
// # Usage
//
// Most applications should start from the iflowgen package, using the
// GraphBuilder and the Converter constructors provided there.
package api
