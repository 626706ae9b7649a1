// Package normalize repairs the loosely-typed JSON produced by component
// extraction into a structurally complete component graph. Every repair is
// recorded as a diagnostic; nothing is silently dropped.
//
// Normalization is idempotent: normalizing an already-normalized graph
// yields an equivalent structure, with no duplicate start/end flows
// appended on repeat application.
package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/skarpdev/iflowgen/pkg/api"
)

// rawGraph mirrors the shapes extraction tends to produce. A generator
// that used "components" as the top-level key instead of "endpoints" is
// tolerated.
type rawGraph struct {
	Endpoints  []rawEndpoint `mapstructure:"endpoints"`
	Components []rawEndpoint `mapstructure:"components"`
}

type rawEndpoint struct {
	ID            string         `mapstructure:"id"`
	Name          string         `mapstructure:"name"`
	Components    []rawComponent `mapstructure:"components"`
	Flow          []string       `mapstructure:"flow"`
	SequenceFlows []rawFlow      `mapstructure:"sequence_flows"`
}

type rawComponent struct {
	ID     string         `mapstructure:"id"`
	Name   string         `mapstructure:"name"`
	Type   string         `mapstructure:"type"`
	Config map[string]any `mapstructure:"config"`
}

type rawFlow struct {
	ID          string `mapstructure:"id"`
	SourceRef   string `mapstructure:"source_ref"`
	TargetRef   string `mapstructure:"target_ref"`
	IsImmediate bool   `mapstructure:"is_immediate"`
}

// JSON decodes a raw extraction document and normalizes it.
func JSON(raw []byte) (*api.ComponentGraph, []api.Diagnostic, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode extraction output: %w", err)
	}
	return Document(doc)
}

// Document normalizes an arbitrary JSON object claiming to describe
// {"endpoints": [...]}.
func Document(doc map[string]any) (*api.ComponentGraph, []api.Diagnostic, error) {
	var rg rawGraph
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := dec.Decode(doc); err != nil {
		return nil, nil, fmt.Errorf("decode extraction output: %w", err)
	}

	var diags []api.Diagnostic

	endpoints := rg.Endpoints
	if len(endpoints) == 0 && len(rg.Components) > 0 {
		endpoints = rg.Components
		diags = append(diags, api.Diagnostic{
			Stage:   "normalize",
			Kind:    api.RepairSynthesizedField,
			Message: `top-level "components" treated as the endpoint list`,
		})
	}

	graph := &api.ComponentGraph{Endpoints: make([]api.Endpoint, 0, len(endpoints))}
	for _, rep := range endpoints {
		graph.Endpoints = append(graph.Endpoints, api.Endpoint{
			ID:            rep.ID,
			Name:          rep.Name,
			Components:    typedComponents(rep.Components),
			Flow:          rep.Flow,
			SequenceFlows: typedFlows(rep.SequenceFlows),
		})
	}

	normalized, more := Graph(graph)
	return normalized, append(diags, more...), nil
}

func typedComponents(raw []rawComponent) []api.Component {
	out := make([]api.Component, len(raw))
	for i, rc := range raw {
		out[i] = api.Component{ID: rc.ID, Name: rc.Name, Type: rc.Type, Config: rc.Config}
	}
	return out
}

func typedFlows(raw []rawFlow) []api.SequenceFlow {
	out := make([]api.SequenceFlow, len(raw))
	for i, rf := range raw {
		out[i] = api.SequenceFlow{
			ID: rf.ID, SourceRef: rf.SourceRef, TargetRef: rf.TargetRef,
			IsImmediate: rf.IsImmediate,
		}
	}
	return out
}

// Graph normalizes an already-typed component graph. The input is not
// mutated; a structurally complete copy is returned.
func Graph(g *api.ComponentGraph) (*api.ComponentGraph, []api.Diagnostic) {
	var diags []api.Diagnostic
	out := &api.ComponentGraph{Endpoints: make([]api.Endpoint, len(g.Endpoints))}
	for i, ep := range g.Endpoints {
		out.Endpoints[i] = Endpoint(i, ep, &diags)
	}
	return out, diags
}

// Endpoint normalizes one endpoint: missing IDs and fields get safe
// defaults, and start/end connectivity is guaranteed when an explicit flow
// order is supplied.
func Endpoint(index int, ep api.Endpoint, diags *[]api.Diagnostic) api.Endpoint {
	if ep.ID == "" {
		ep.ID = fmt.Sprintf("endpoint_%d", index)
		report(diags, ep.ID, "", api.RepairSynthesizedID, "endpoint had no id")
	}
	if ep.Name == "" {
		ep.Name = ep.ID
	}

	components := make([]api.Component, len(ep.Components))
	for i, c := range ep.Components {
		components[i] = normalizeComponent(ep.ID, i, c, diags)
	}
	ep.Components = components

	flows := make([]api.SequenceFlow, len(ep.SequenceFlows))
	for i, f := range ep.SequenceFlows {
		flows[i] = normalizeFlow(ep.ID, i, f, diags)
	}
	ep.SequenceFlows = flows

	ep = ensureStartEnd(ep, diags)
	return ep
}

func normalizeComponent(endpointID string, index int, c api.Component, diags *[]api.Diagnostic) api.Component {
	if c.ID == "" {
		c.ID = fmt.Sprintf("component_%d", index)
		report(diags, endpointID, c.ID, api.RepairSynthesizedID, "component had no id")
	}
	if c.Name == "" {
		c.Name = c.ID
	}
	if c.Type == "" {
		c.Type = string(api.TypeContentModifier)
		report(diags, endpointID, c.ID, api.RepairSynthesizedField,
			"component had no type, defaulted to content_modifier")
	}
	if c.Config == nil {
		c.Config = map[string]any{}
	}
	return c
}

func normalizeFlow(endpointID string, index int, f api.SequenceFlow, diags *[]api.Diagnostic) api.SequenceFlow {
	if f.ID == "" {
		f.ID = fmt.Sprintf("flow_%d", index)
		report(diags, endpointID, f.ID, api.RepairSynthesizedID, "sequence flow had no id")
	}
	if f.SourceRef == "" {
		f.SourceRef = api.StartEventID
		report(diags, endpointID, f.ID, api.RepairSynthesizedField,
			"sequence flow had no source_ref, defaulted to "+api.StartEventID)
	}
	if f.TargetRef == "" {
		f.TargetRef = api.EndEventID
		report(diags, endpointID, f.ID, api.RepairSynthesizedField,
			"sequence flow had no target_ref, defaulted to "+api.EndEventID)
	}
	return f
}

// ensureStartEnd guarantees start/end connectivity for endpoints with an
// explicit flow order. Presence is checked by (source, target) pair, never
// by flow ID, which is what makes repeat application a no-op.
func ensureStartEnd(ep api.Endpoint, diags *[]api.Diagnostic) api.Endpoint {
	if len(ep.Flow) == 0 {
		return ep
	}
	first := ep.Flow[0]
	last := ep.Flow[len(ep.Flow)-1]

	if !hasPair(ep.SequenceFlows, api.StartEventID, first) {
		id := fmt.Sprintf("SequenceFlow_%s_start", ep.ID)
		ep.SequenceFlows = append(ep.SequenceFlows, api.SequenceFlow{
			ID: id, SourceRef: api.StartEventID, TargetRef: first,
		})
		report(diags, ep.ID, id, api.RepairStartEndFlow,
			fmt.Sprintf("synthesized flow %s -> %s", api.StartEventID, first))
	}
	if !hasPair(ep.SequenceFlows, last, api.EndEventID) {
		id := fmt.Sprintf("SequenceFlow_%s_end", ep.ID)
		ep.SequenceFlows = append(ep.SequenceFlows, api.SequenceFlow{
			ID: id, SourceRef: last, TargetRef: api.EndEventID,
		})
		report(diags, ep.ID, id, api.RepairStartEndFlow,
			fmt.Sprintf("synthesized flow %s -> %s", last, api.EndEventID))
	}
	return ep
}

func hasPair(flows []api.SequenceFlow, source, target string) bool {
	for _, f := range flows {
		if f.SourceRef == source && f.TargetRef == target {
			return true
		}
	}
	return false
}

func report(diags *[]api.Diagnostic, endpointID, subject string, kind api.DiagnosticKind, msg string) {
	*diags = append(*diags, api.Diagnostic{
		Stage:    "normalize",
		Endpoint: endpointID,
		Subject:  subject,
		Kind:     kind,
		Message:  msg,
	})
}
