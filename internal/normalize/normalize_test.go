package normalize

import (
	"reflect"
	"testing"

	"github.com/skarpdev/iflowgen/pkg/api"
)

func TestJSON_Defaults(t *testing.T) {
	raw := []byte(`{
		"endpoints": [
			{
				"components": [
					{"name": "only a name"},
					{"id": "s1", "type": "groovy_script"}
				],
				"flow": ["component_0", "s1"]
			}
		]
	}`)

	graph, diags, err := JSON(raw)
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if len(graph.Endpoints) != 1 {
		t.Fatalf("expected 1 endpoint, got %d", len(graph.Endpoints))
	}

	ep := graph.Endpoints[0]
	if ep.ID != "endpoint_0" {
		t.Fatalf("endpoint id not synthesized: %q", ep.ID)
	}
	if ep.Name != ep.ID {
		t.Fatalf("endpoint name should default to id, got %q", ep.Name)
	}

	c0 := ep.Components[0]
	if c0.ID != "component_0" {
		t.Fatalf("component id not synthesized: %q", c0.ID)
	}
	if c0.Type != string(api.TypeContentModifier) {
		t.Fatalf("missing type should default to content_modifier, got %q", c0.Type)
	}
	if c0.Config == nil {
		t.Fatalf("config should default to an empty map")
	}

	// Explicit flow order means start/end flows are synthesized.
	if !hasPair(ep.SequenceFlows, api.StartEventID, "component_0") {
		t.Fatalf("missing start flow: %+v", ep.SequenceFlows)
	}
	if !hasPair(ep.SequenceFlows, "s1", api.EndEventID) {
		t.Fatalf("missing end flow: %+v", ep.SequenceFlows)
	}

	if len(diags) == 0 {
		t.Fatalf("repairs should be reported")
	}
	for _, d := range diags {
		if d.Stage != "normalize" {
			t.Fatalf("unexpected stage %q", d.Stage)
		}
	}
}

func TestDocument_ComponentsKeyTolerated(t *testing.T) {
	doc := map[string]any{
		"components": []any{
			map[string]any{
				"id": "ep1",
				"components": []any{
					map[string]any{"id": "c1", "type": "script"},
				},
			},
		},
	}

	graph, diags, err := Document(doc)
	if err != nil {
		t.Fatalf("Document failed: %v", err)
	}
	if len(graph.Endpoints) != 1 || graph.Endpoints[0].ID != "ep1" {
		t.Fatalf("top-level components key not treated as endpoints: %+v", graph)
	}

	found := false
	for _, d := range diags {
		if d.Kind == api.RepairSynthesizedField {
			found = true
		}
	}
	if !found {
		t.Fatalf("key tolerance should be reported as a diagnostic")
	}
}

func TestJSON_BadInput(t *testing.T) {
	if _, _, err := JSON([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFlowDefaults(t *testing.T) {
	g := &api.ComponentGraph{Endpoints: []api.Endpoint{{
		ID: "ep",
		Components: []api.Component{
			{ID: "c1", Type: "script"},
		},
		SequenceFlows: []api.SequenceFlow{
			{SourceRef: "", TargetRef: "c1"},
			{SourceRef: "c1", TargetRef: ""},
		},
	}}}

	out, _ := Graph(g)
	flows := out.Endpoints[0].SequenceFlows
	if flows[0].SourceRef != api.StartEventID {
		t.Fatalf("empty source should default to start event, got %q", flows[0].SourceRef)
	}
	if flows[1].TargetRef != api.EndEventID {
		t.Fatalf("empty target should default to end event, got %q", flows[1].TargetRef)
	}
	if flows[0].ID == "" || flows[1].ID == "" {
		t.Fatalf("flow ids should be synthesized")
	}
}

func TestGraph_Idempotent(t *testing.T) {
	g := &api.ComponentGraph{Endpoints: []api.Endpoint{{
		ID:   "orders",
		Name: "Orders",
		Components: []api.Component{
			{ID: "c1", Name: "C1", Type: "script"},
			{ID: "c2", Name: "C2", Type: "request_reply"},
		},
		Flow: []string{"c1", "c2"},
	}}}

	once, _ := Graph(g)
	twice, diags := Graph(once)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalization not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
	if len(diags) != 0 {
		t.Fatalf("second pass should report no repairs, got %+v", diags)
	}
}

func TestGraph_DoesNotMutateInput(t *testing.T) {
	g := &api.ComponentGraph{Endpoints: []api.Endpoint{{
		Components: []api.Component{{Name: "unnamed"}},
	}}}

	_, _ = Graph(g)
	if g.Endpoints[0].ID != "" {
		t.Fatalf("input graph was mutated")
	}
	if g.Endpoints[0].Components[0].ID != "" {
		t.Fatalf("input component was mutated")
	}
}
