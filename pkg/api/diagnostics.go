package api

import "fmt"

// DiagnosticKind classifies a structural repair or a dropped element.
type DiagnosticKind string

const (
	// RepairSynthesizedID records that a missing component or flow ID was
	// filled in with a generated default.
	RepairSynthesizedID DiagnosticKind = "synthesized_id"

	// RepairSynthesizedField records that a missing name/type/config field
	// was filled in with a safe default.
	RepairSynthesizedField DiagnosticKind = "synthesized_field"

	// RepairStartEndFlow records that a missing start or end connectivity
	// flow was synthesized for an endpoint.
	RepairStartEndFlow DiagnosticKind = "synthesized_start_end_flow"

	// RepairCollisionID records that a duplicate component ID was rewritten
	// to a freshly minted one, along with every flow reference to it.
	RepairCollisionID DiagnosticKind = "rewritten_collision_id"

	// DroppedDuplicateFlow records that a flow with an already-seen
	// (source, target) pair was discarded, keeping the first occurrence.
	DroppedDuplicateFlow DiagnosticKind = "dropped_duplicate_flow"

	// DroppedDanglingFlow records that a flow whose source or target
	// resolved to no emitted element was discarded.
	DroppedDanglingFlow DiagnosticKind = "dropped_dangling_flow"

	// SkippedUnknownType records that a component with an unrecognized type
	// was skipped rather than coerced to a different type.
	SkippedUnknownType DiagnosticKind = "skipped_unknown_type"

	// SkippedRouterCondition records that a router condition without a
	// target was skipped rather than emitted malformed.
	SkippedRouterCondition DiagnosticKind = "skipped_router_condition"

	// UnresolvedFlowRef records that an explicit sequence flow referenced a
	// component name or ID that could not be resolved.
	UnresolvedFlowRef DiagnosticKind = "unresolved_flow_ref"
)

// Diagnostic describes one structural repair, skip, or drop performed during
// conversion. A conversion that required repairs still succeeds, but every
// discrepancy with the raw input is recorded here so it stays auditable.
type Diagnostic struct {
	Stage    string         // normalize, compile, layout, package
	Endpoint string         // endpoint ID, when known
	Subject  string         // element ID the diagnostic is about
	Kind     DiagnosticKind // classification
	Message  string         // human-readable detail
}

func (d Diagnostic) String() string {
	if d.Endpoint == "" {
		return fmt.Sprintf("[%s] %s %s: %s", d.Stage, d.Kind, d.Subject, d.Message)
	}
	return fmt.Sprintf("[%s] %s %s/%s: %s", d.Stage, d.Kind, d.Endpoint, d.Subject, d.Message)
}
