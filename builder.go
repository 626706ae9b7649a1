package iflowgen

import (
	"context"
	"fmt"

	"github.com/skarpdev/iflowgen/pkg/api"
)

// GraphBuilder provides a fluent API for constructing component graphs in
// code, without going through JSON:
//
//	graph := iflowgen.NewGraph().
//	    Endpoint("orders", "Order Intake").
//	    ContentModifier("set_headers", "Set Headers").
//	    Script("transform", "Transform Payload", "").
//	    RequestReply("post_erp", "Post to ERP", "https://erp.example.com/orders").
//	    Graph()
//
//	res, err := conv.Convert(ctx, graph, iflowgen.PackageMeta{Name: "Orders"})
type GraphBuilder struct {
	graph api.ComponentGraph
}

// NewGraph creates a new empty graph builder.
func NewGraph() *GraphBuilder {
	return &GraphBuilder{}
}

// Endpoint starts a new logical endpoint. All following component and flow
// calls attach to it until the next Endpoint call.
func (b *GraphBuilder) Endpoint(id, name string) *GraphBuilder {
	if id == "" {
		panic("iflowgen: endpoint id must not be empty")
	}
	b.graph.Endpoints = append(b.graph.Endpoints, api.Endpoint{ID: id, Name: name})
	return b
}

func (b *GraphBuilder) current() *api.Endpoint {
	if len(b.graph.Endpoints) == 0 {
		panic("iflowgen: add an Endpoint before components or flows")
	}
	return &b.graph.Endpoints[len(b.graph.Endpoints)-1]
}

// Component appends a component of the given type to the current endpoint.
// config may be nil.
func (b *GraphBuilder) Component(id, name string, typ ComponentType, config map[string]any) *GraphBuilder {
	if id == "" {
		panic("iflowgen: component id must not be empty")
	}
	ep := b.current()
	ep.Components = append(ep.Components, api.Component{
		ID:     id,
		Name:   name,
		Type:   string(typ),
		Config: config,
	})
	return b
}

// ContentModifier appends a content modifier component.
func (b *GraphBuilder) ContentModifier(id, name string) *GraphBuilder {
	return b.Component(id, name, api.TypeContentModifier, nil)
}

// Script appends a groovy script component. body may be empty, in which
// case a pass-through stub is bundled.
func (b *GraphBuilder) Script(id, name, body string) *GraphBuilder {
	var cfg map[string]any
	if body != "" {
		cfg = map[string]any{"script_content": body}
	}
	return b.Component(id, name, api.TypeScript, cfg)
}

// RequestReply appends an external-call component targeting the given
// address. The receiver system kind is classified from the address and
// component name.
func (b *GraphBuilder) RequestReply(id, name, address string) *GraphBuilder {
	return b.Component(id, name, api.TypeRequestReply, map[string]any{"address": address})
}

// OData appends an OData external-call component.
func (b *GraphBuilder) OData(id, name, address, entitySet, operation string) *GraphBuilder {
	return b.Component(id, name, api.TypeOData, map[string]any{
		"address":    address,
		"entity_set": entitySet,
		"operation":  operation,
	})
}

// Router appends an exclusive-gateway router. Each condition maps an
// expression to the ID of the component the matching message is routed to.
func (b *GraphBuilder) Router(id, name string, conditions map[string]string) *GraphBuilder {
	conds := make([]map[string]any, 0, len(conditions))
	for expr, target := range conditions {
		conds = append(conds, map[string]any{"condition": expr, "target": target})
	}
	return b.Component(id, name, api.TypeRouter, map[string]any{"conditions": conds})
}

// Flow sets the current endpoint's explicit flow order. It takes priority
// over any explicit sequence flows and over declaration order.
func (b *GraphBuilder) Flow(componentIDs ...string) *GraphBuilder {
	ep := b.current()
	ep.Flow = append([]string(nil), componentIDs...)
	return b
}

// FlowBetween adds one explicit sequence flow to the current endpoint.
// Refs may be component IDs or component names.
func (b *GraphBuilder) FlowBetween(sourceRef, targetRef string) *GraphBuilder {
	if sourceRef == "" || targetRef == "" {
		panic(fmt.Sprintf("iflowgen: flow %q -> %q has an empty ref", sourceRef, targetRef))
	}
	ep := b.current()
	ep.SequenceFlows = append(ep.SequenceFlows, api.SequenceFlow{
		SourceRef: sourceRef,
		TargetRef: targetRef,
	})
	return b
}

// Graph returns the built component graph.
// Typically passed straight to Converter.Convert.
func (b *GraphBuilder) Graph() *api.ComponentGraph {
	g := b.graph
	return &g
}

// Convert is a convenience that compiles the built graph with the given
// converter.
func (b *GraphBuilder) Convert(ctx context.Context, conv Converter, meta PackageMeta) (*ConversionResult, error) {
	return conv.Convert(ctx, b.Graph(), meta)
}
