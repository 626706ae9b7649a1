package compile

import (
	"fmt"

	"github.com/skarpdev/iflowgen/internal/bpmn"
	"github.com/skarpdev/iflowgen/pkg/api"
)

// repairCollisions claims every component ID and repairs duplicates by
// minting a fresh suffixed ID. References in the explicit flow array are
// rewritten by occurrence (the n-th occurrence of the duplicated ID maps
// to the n-th component carrying it); references in the explicit
// sequence-flow list are rewritten to the freshly minted ID so nothing is
// left dangling.
func repairCollisions(c *Context, ep api.Endpoint) api.Endpoint {
	components := make([]api.Component, len(ep.Components))
	copy(components, ep.Components)
	flowOrder := make([]string, len(ep.Flow))
	copy(flowOrder, ep.Flow)
	seqFlows := make([]api.SequenceFlow, len(ep.SequenceFlows))
	copy(seqFlows, ep.SequenceFlows)

	occurrence := make(map[string]int)
	for i := range components {
		old := components[i].ID
		occurrence[old]++
		if c.ClaimID(old) {
			continue
		}

		fresh := c.MintID(old)
		components[i].ID = fresh

		if n := nthIndex(flowOrder, old, occurrence[old]); n >= 0 {
			flowOrder[n] = fresh
		}
		for j := range seqFlows {
			if seqFlows[j].SourceRef == old {
				seqFlows[j].SourceRef = fresh
			}
			if seqFlows[j].TargetRef == old {
				seqFlows[j].TargetRef = fresh
			}
		}

		c.Report(api.Diagnostic{
			Stage:    "compile",
			Endpoint: ep.ID,
			Subject:  fresh,
			Kind:     api.RepairCollisionID,
			Message:  fmt.Sprintf("component id %q already in use, rewritten to %q", old, fresh),
		})
	}

	ep.Components = components
	ep.Flow = flowOrder
	ep.SequenceFlows = seqFlows
	return ep
}

// nthIndex returns the index of the n-th occurrence (1-based) of val in s,
// or -1.
func nthIndex(s []string, val string, n int) int {
	seen := 0
	for i, v := range s {
		if v == val {
			seen++
			if seen == n {
				return i
			}
		}
	}
	return -1
}

// threadFlows applies the flow threading priority exactly once:
//
//  1. explicit flow array: flows are derived solely from consecutive pairs
//     plus the synthesized start/end edges; dispatch-generated flows are
//     discarded;
//  2. explicit sequence_flows: used after resolving component-name
//     references to IDs;
//  3. otherwise components are connected in declaration order.
func threadFlows(c *Context, ep api.Endpoint, res *Result) {
	switch {
	case len(ep.Flow) > 0:
		threadExplicitOrder(c, ep, res)
	case len(ep.SequenceFlows) > 0:
		threadExplicitList(c, ep, res)
	default:
		threadDeclarationOrder(c, ep, res)
	}
	res.conditionFlows = nil
}

func threadExplicitOrder(c *Context, ep api.Endpoint, res *Result) {
	body := res.bodyIDs()

	order := make([]string, 0, len(ep.Flow))
	for _, id := range ep.Flow {
		if _, ok := body[id]; !ok {
			c.Report(api.Diagnostic{
				Stage:    "compile",
				Endpoint: ep.ID,
				Subject:  id,
				Kind:     api.UnresolvedFlowRef,
				Message:  "flow entry references no emitted component, skipped",
			})
			continue
		}
		order = append(order, id)
	}
	if len(order) == 0 {
		return
	}

	res.SequenceFlows = append(res.SequenceFlows,
		bpmn.NewSequenceFlow(c.NextID("SequenceFlow"), api.StartEventID, order[0]))
	for i := 0; i+1 < len(order); i++ {
		res.SequenceFlows = append(res.SequenceFlows,
			bpmn.NewSequenceFlow(c.NextID("SequenceFlow"), order[i], order[i+1]))
	}
	res.SequenceFlows = append(res.SequenceFlows,
		bpmn.NewSequenceFlow(c.NextID("SequenceFlow"), order[len(order)-1], api.EndEventID))
}

func threadExplicitList(c *Context, ep api.Endpoint, res *Result) {
	body := res.bodyIDs()
	byName := make(map[string]string, len(ep.Components))
	for _, comp := range ep.Components {
		byName[comp.Name] = comp.ID
	}

	resolve := func(ref string) (string, bool) {
		if _, ok := body[ref]; ok {
			return ref, true
		}
		if id, ok := byName[ref]; ok {
			if _, emitted := body[id]; emitted {
				return id, true
			}
		}
		return ref, false
	}

	for _, f := range ep.SequenceFlows {
		source, okS := resolve(f.SourceRef)
		target, okT := resolve(f.TargetRef)
		if !okS || !okT {
			bad := f.SourceRef
			if okS {
				bad = f.TargetRef
			}
			c.Report(api.Diagnostic{
				Stage:    "compile",
				Endpoint: ep.ID,
				Subject:  f.ID,
				Kind:     api.UnresolvedFlowRef,
				Message:  fmt.Sprintf("sequence flow references unknown element %q, dropped", bad),
			})
			continue
		}

		id := f.ID
		if !c.ClaimID(id) {
			id = c.MintID(id)
		}
		flow := bpmn.NewSequenceFlow(id, source, target)
		if cond := matchingCondition(res.conditionFlows, source, target); cond != nil {
			flow.Condition = cond.Condition
		}
		res.SequenceFlows = append(res.SequenceFlows, flow)
	}

	ensureEndpointConnectivity(c, ep, res)
}

// matchingCondition finds a router-generated conditional flow with the
// same (source, target) pair so its condition can be attached to the
// explicit flow.
func matchingCondition(flows []*bpmn.SequenceFlow, source, target string) *bpmn.SequenceFlow {
	for _, f := range flows {
		if f.SourceRef == source && f.TargetRef == target {
			return f
		}
	}
	return nil
}

func threadDeclarationOrder(c *Context, ep api.Endpoint, res *Result) {
	order := make([]string, 0, len(res.Elements))
	for _, el := range res.Elements {
		// Event subprocesses are entered by their error start event, never
		// by an incoming sequence flow.
		if isEventSubprocess(el) {
			continue
		}
		order = append(order, bpmn.ElementID(el))
	}
	if len(order) == 0 {
		return
	}

	chain := make([]*bpmn.SequenceFlow, 0, len(order)+1)
	chain = append(chain,
		bpmn.NewSequenceFlow(c.NextID("SequenceFlow"), api.StartEventID, order[0]))
	for i := 0; i+1 < len(order); i++ {
		chain = append(chain,
			bpmn.NewSequenceFlow(c.NextID("SequenceFlow"), order[i], order[i+1]))
	}
	chain = append(chain,
		bpmn.NewSequenceFlow(c.NextID("SequenceFlow"), order[len(order)-1], api.EndEventID))

	// Router branches that coincide with a chain edge contribute their
	// condition to it; the rest ride along as extra edges.
	for _, f := range chain {
		if cond := matchingCondition(res.conditionFlows, f.SourceRef, f.TargetRef); cond != nil {
			f.Condition = cond.Condition
		}
	}
	res.SequenceFlows = append(res.SequenceFlows, chain...)
	for _, cf := range res.conditionFlows {
		if matchingCondition(chain, cf.SourceRef, cf.TargetRef) == nil {
			res.SequenceFlows = append(res.SequenceFlows, cf)
		}
	}
}

func isEventSubprocess(el any) bool {
	sp, ok := el.(*bpmn.SubProcess)
	if !ok {
		return false
	}
	for _, inner := range sp.Elements {
		if _, ok := inner.(*bpmn.ErrorStartEvent); ok {
			return true
		}
	}
	return false
}

// ensureEndpointConnectivity synthesizes start/end edges when an explicit
// connection list leaves the endpoint unreachable from the start event or
// without a path to the end event.
func ensureEndpointConnectivity(c *Context, ep api.Endpoint, res *Result) {
	if len(res.Elements) == 0 {
		return
	}
	hasStart, hasEnd := false, false
	for _, f := range res.SequenceFlows {
		if f.SourceRef == api.StartEventID {
			hasStart = true
		}
		if f.TargetRef == api.EndEventID {
			hasEnd = true
		}
	}
	var first, last string
	for _, el := range res.Elements {
		if isEventSubprocess(el) {
			continue
		}
		if first == "" {
			first = bpmn.ElementID(el)
		}
		last = bpmn.ElementID(el)
	}
	if first == "" {
		return
	}

	if !hasStart {
		id := c.NextID("SequenceFlow")
		res.SequenceFlows = append(res.SequenceFlows,
			bpmn.NewSequenceFlow(id, api.StartEventID, first))
		c.Report(api.Diagnostic{
			Stage:    "compile",
			Endpoint: ep.ID,
			Subject:  id,
			Kind:     api.RepairStartEndFlow,
			Message:  fmt.Sprintf("synthesized flow %s -> %s", api.StartEventID, first),
		})
	}
	if !hasEnd {
		id := c.NextID("SequenceFlow")
		res.SequenceFlows = append(res.SequenceFlows,
			bpmn.NewSequenceFlow(id, last, api.EndEventID))
		c.Report(api.Diagnostic{
			Stage:    "compile",
			Endpoint: ep.ID,
			Subject:  id,
			Kind:     api.RepairStartEndFlow,
			Message:  fmt.Sprintf("synthesized flow %s -> %s", last, api.EndEventID),
		})
	}
}
