package layout

import (
	"testing"

	"github.com/skarpdev/iflowgen/internal/bpmn"
	"github.com/skarpdev/iflowgen/pkg/api"
)

func testDefinitions() *bpmn.Definitions {
	defs := bpmn.NewDefinitions("Test", api.StartEventID, api.EndEventID)
	main := defs.MainProcess()

	script := bpmn.NewScript("s1", "Transform", "s1.groovy")
	task := bpmn.NewServiceTask("rr1", "Call")
	// Keep the end event last.
	main.Elements = append(main.Elements[:1:1], script, task, main.Elements[1])

	main.SequenceFlows = append(main.SequenceFlows,
		bpmn.NewSequenceFlow("SequenceFlow_1", api.StartEventID, "s1"),
		bpmn.NewSequenceFlow("SequenceFlow_2", "s1", "rr1"),
		bpmn.NewSequenceFlow("SequenceFlow_3", "rr1", api.EndEventID),
	)

	defs.Collaboration.Participants = append(defs.Collaboration.Participants,
		bpmn.NewReceiverParticipant("Participant_rr1", "ERP"))
	defs.Collaboration.MessageFlows = append(defs.Collaboration.MessageFlows,
		bpmn.NewHTTPMessageFlow("MessageFlow_rr1", "rr1", "Participant_rr1", bpmn.HTTPConfig{
			Address: "https://erp.example.com",
		}))

	return defs
}

func TestApply_ShapesAndEdges(t *testing.T) {
	defs := testDefinitions()
	Apply(defs, nil)

	if defs.Diagram == nil || defs.Diagram.Plane == nil {
		t.Fatalf("diagram layer missing")
	}
	plane := defs.Diagram.Plane

	// One shape per process element plus the pool, sender, and receiver
	// participants.
	wantShapes := make(map[string]bool)
	for _, id := range []string{
		api.StartEventID, "s1", "rr1", api.EndEventID,
		bpmn.ProcessParticipantID, bpmn.SenderParticipantID, "Participant_rr1",
	} {
		wantShapes["BPMNShape_"+id] = false
	}
	for _, s := range plane.Shapes {
		if _, ok := wantShapes[s.ID]; ok {
			wantShapes[s.ID] = true
		}
		if s.Bounds == nil {
			t.Fatalf("shape %s has no bounds", s.ID)
		}
	}
	for id, seen := range wantShapes {
		if !seen {
			t.Fatalf("missing shape %s", id)
		}
	}

	// One edge per sequence flow and message flow, two waypoints each.
	if len(plane.Edges) != 4 {
		t.Fatalf("expected 4 edges, got %d", len(plane.Edges))
	}
	for _, e := range plane.Edges {
		if len(e.Waypoints) != 2 {
			t.Fatalf("edge %s has %d waypoints", e.ID, len(e.Waypoints))
		}
	}
}

func TestApply_DeterministicLeftToRight(t *testing.T) {
	defs := testDefinitions()
	Apply(defs, nil)

	pos := make(map[string]float64)
	for _, s := range defs.Diagram.Plane.Shapes {
		pos[s.Element] = s.Bounds.X
	}

	order := []string{api.StartEventID, "s1", "rr1", api.EndEventID}
	for i := 0; i+1 < len(order); i++ {
		if pos[order[i]] >= pos[order[i+1]] {
			t.Fatalf("%s (x=%v) should be left of %s (x=%v)",
				order[i], pos[order[i]], order[i+1], pos[order[i+1]])
		}
	}

	// Runs are reproducible.
	again := testDefinitions()
	Apply(again, nil)
	for _, s := range again.Diagram.Plane.Shapes {
		if pos[s.Element] != s.Bounds.X {
			t.Fatalf("layout not deterministic for %s", s.Element)
		}
	}
}

func TestApply_PoolShapeSpansProcess(t *testing.T) {
	defs := testDefinitions()
	Apply(defs, nil)

	var pool *bpmn.Shape
	elems := make(map[string]*bpmn.Shape)
	for _, s := range defs.Diagram.Plane.Shapes {
		if s.Element == bpmn.ProcessParticipantID {
			pool = s
		}
		elems[s.Element] = s
	}
	if pool == nil {
		t.Fatalf("no shape for pool participant %s", bpmn.ProcessParticipantID)
	}

	for _, id := range []string{api.StartEventID, "s1", "rr1", api.EndEventID} {
		b := elems[id].Bounds
		if b.X < pool.Bounds.X || b.X+b.Width > pool.Bounds.X+pool.Bounds.Width {
			t.Fatalf("%s lies outside the pool horizontally", id)
		}
		if b.Y < pool.Bounds.Y || b.Y+b.Height > pool.Bounds.Y+pool.Bounds.Height {
			t.Fatalf("%s lies outside the pool vertically", id)
		}
	}
}

func TestApply_SubprocessInnerShapesAndEdges(t *testing.T) {
	defs := testDefinitions()
	main := defs.MainProcess()
	sub := bpmn.NewExceptionSubprocess("exc", "Handle Errors")
	main.Elements = append(main.Elements, sub)

	Apply(defs, nil)

	shapes := make(map[string]*bpmn.Shape)
	for _, s := range defs.Diagram.Plane.Shapes {
		shapes[s.Element] = s
	}
	outer, ok := shapes["exc"]
	if !ok {
		t.Fatalf("no shape for subprocess exc")
	}
	for _, id := range []string{"exc_error_start", "exc_end"} {
		inner, ok := shapes[id]
		if !ok {
			t.Fatalf("no shape for inner element %s", id)
		}
		if inner.Bounds.X < outer.Bounds.X ||
			inner.Bounds.X+inner.Bounds.Width > outer.Bounds.X+outer.Bounds.Width {
			t.Fatalf("%s lies outside the subprocess bounds", id)
		}
	}

	var edge *bpmn.Edge
	for _, e := range defs.Diagram.Plane.Edges {
		if e.Element == "exc_flow" {
			edge = e
		}
	}
	if edge == nil {
		t.Fatalf("no edge for inner flow exc_flow")
	}
	if edge.SourceElement != "BPMNShape_exc_error_start" || edge.TargetElement != "BPMNShape_exc_end" {
		t.Fatalf("inner edge references wrong shapes: %s -> %s",
			edge.SourceElement, edge.TargetElement)
	}
	if len(edge.Waypoints) != 2 {
		t.Fatalf("inner edge has %d waypoints", len(edge.Waypoints))
	}
}

func TestApply_DuplicatePairPruned(t *testing.T) {
	defs := testDefinitions()
	main := defs.MainProcess()
	main.SequenceFlows = append(main.SequenceFlows,
		bpmn.NewSequenceFlow("SequenceFlow_stale", "s1", "rr1"))

	var diags []api.Diagnostic
	Apply(defs, func(d api.Diagnostic) { diags = append(diags, d) })

	for _, f := range main.SequenceFlows {
		if f.ID == "SequenceFlow_stale" {
			t.Fatalf("duplicate flow should be dropped")
		}
	}
	// The first occurrence survives.
	found := false
	for _, f := range main.SequenceFlows {
		if f.ID == "SequenceFlow_2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("first occurrence should be kept")
	}

	reported := false
	for _, d := range diags {
		if d.Kind == api.DroppedDuplicateFlow && d.Subject == "SequenceFlow_stale" {
			reported = true
		}
	}
	if !reported {
		t.Fatalf("drop should be reported, got %+v", diags)
	}
}

func TestApply_DanglingFlowDropped(t *testing.T) {
	defs := testDefinitions()
	main := defs.MainProcess()
	main.SequenceFlows = append(main.SequenceFlows,
		bpmn.NewSequenceFlow("SequenceFlow_bad", "s1", "ghost"))
	defs.Collaboration.MessageFlows = append(defs.Collaboration.MessageFlows,
		bpmn.NewHTTPMessageFlow("MessageFlow_bad", "ghost", "Participant_rr1", bpmn.HTTPConfig{}))

	var diags []api.Diagnostic
	Apply(defs, func(d api.Diagnostic) { diags = append(diags, d) })

	for _, f := range main.SequenceFlows {
		if f.ID == "SequenceFlow_bad" {
			t.Fatalf("dangling sequence flow survived")
		}
	}
	for _, mf := range defs.Collaboration.MessageFlows {
		if mf.ID == "MessageFlow_bad" {
			t.Fatalf("dangling message flow survived")
		}
	}
	var dropped int
	for _, d := range diags {
		if d.Kind == api.DroppedDanglingFlow {
			dropped++
		}
	}
	if dropped != 2 {
		t.Fatalf("expected 2 drop diagnostics, got %d", dropped)
	}

	// No edge may reference a missing shape.
	shapes := make(map[string]bool)
	for _, s := range defs.Diagram.Plane.Shapes {
		shapes[s.ID] = true
	}
	for _, e := range defs.Diagram.Plane.Edges {
		if e.SourceElement != "" && !shapes[e.SourceElement] {
			t.Fatalf("edge %s references missing shape %s", e.ID, e.SourceElement)
		}
		if e.TargetElement != "" && !shapes[e.TargetElement] {
			t.Fatalf("edge %s references missing shape %s", e.ID, e.TargetElement)
		}
	}
}

func TestApply_ThreadsIncomingOutgoing(t *testing.T) {
	defs := testDefinitions()
	Apply(defs, nil)

	main := defs.MainProcess()
	script, ok := main.FindElement("s1").(*bpmn.CallActivity)
	if !ok {
		t.Fatalf("s1 not found")
	}
	if len(script.Incoming) != 1 || script.Incoming[0] != "SequenceFlow_1" {
		t.Fatalf("incoming refs wrong: %v", script.Incoming)
	}
	if len(script.Outgoing) != 1 || script.Outgoing[0] != "SequenceFlow_2" {
		t.Fatalf("outgoing refs wrong: %v", script.Outgoing)
	}

	start, ok := main.FindElement(api.StartEventID).(*bpmn.StartEvent)
	if !ok {
		t.Fatalf("start event not found")
	}
	if len(start.Outgoing) != 1 {
		t.Fatalf("start event outgoing wrong: %v", start.Outgoing)
	}
}
