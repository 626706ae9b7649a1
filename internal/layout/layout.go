// Package layout derives the BPMN DI layer from the assembled element
// tree: deterministic left-to-right coordinates, one shape per element and
// participant, one edge per flow.
//
// It also owns the final structural cleanups: duplicate (source, target)
// flows and flows referencing elements that do not exist are dropped here,
// with a diagnostic, before any shape is emitted. A dangling edge would
// make the package unopenable in SAP Integration Suite.
package layout

import (
	"fmt"

	"github.com/skarpdev/iflowgen/internal/bpmn"
	"github.com/skarpdev/iflowgen/pkg/api"
)

// Reporter receives one diagnostic per repair or drop.
type Reporter func(api.Diagnostic)

// Canonical element sizes.
const (
	eventSize         = 32.0
	gatewaySize       = 40.0
	activityWidth     = 100.0
	activityHeight    = 80.0
	participantWidth  = 100.0
	participantHeight = 140.0

	columnSpacing  = 150.0
	processSpacing = 260.0

	originX   = 292.0
	originY   = 142.0
	senderX   = 40.0
	receiverY = 420.0

	// Pool shapes extend past their process elements on every side.
	poolPaddingX = 52.0
	poolPaddingY = 62.0

	// Inner margin of subprocess bodies.
	subprocessMargin = 8.0
)

type box struct {
	x, y, w, h float64
}

// Apply prunes invalid flows, threads incoming/outgoing references, and
// regenerates the whole diagram layer. The diagram is never merged with a
// previous one; it is rebuilt wholesale on every compile.
func Apply(defs *bpmn.Definitions, report Reporter) {
	if report == nil {
		report = func(api.Diagnostic) {}
	}

	for _, proc := range defs.Processes {
		pruneFlows(proc, report)
	}
	pruneMessageFlows(defs, report)

	for _, proc := range defs.Processes {
		threadReferences(proc)
	}

	plane := &bpmn.Plane{ID: bpmn.PlaneID, Element: bpmn.CollaborationID}
	positions := make(map[string]box)
	extents := make(map[string]box)

	y := originY
	for _, proc := range defs.Processes {
		extents[proc.ID] = layoutProcess(proc, y, plane, positions)
		y += processSpacing
	}
	layoutParticipants(defs, plane, positions, extents)
	emitEdges(defs, plane, positions)

	defs.Diagram = &bpmn.Diagram{
		ID:    bpmn.DiagramID,
		Name:  "Default Collaboration Diagram",
		Plane: plane,
	}
}

// pruneFlows drops flows with dangling references, then duplicate
// (source, target) pairs, keeping the first occurrence. Both the explicit
// threading path and a stale default flow could otherwise coexist.
func pruneFlows(proc *bpmn.Process, report Reporter) {
	ids := make(map[string]struct{})
	for _, el := range proc.Elements {
		ids[bpmn.ElementID(el)] = struct{}{}
	}

	kept := proc.SequenceFlows[:0]
	seenPairs := make(map[[2]string]struct{})
	for _, f := range proc.SequenceFlows {
		if _, ok := ids[f.SourceRef]; !ok {
			report(api.Diagnostic{
				Stage:   "layout",
				Subject: f.ID,
				Kind:    api.DroppedDanglingFlow,
				Message: fmt.Sprintf("sequence flow source %q has no element, dropped", f.SourceRef),
			})
			continue
		}
		if _, ok := ids[f.TargetRef]; !ok {
			report(api.Diagnostic{
				Stage:   "layout",
				Subject: f.ID,
				Kind:    api.DroppedDanglingFlow,
				Message: fmt.Sprintf("sequence flow target %q has no element, dropped", f.TargetRef),
			})
			continue
		}
		pair := [2]string{f.SourceRef, f.TargetRef}
		if _, dup := seenPairs[pair]; dup {
			report(api.Diagnostic{
				Stage:   "layout",
				Subject: f.ID,
				Kind:    api.DroppedDuplicateFlow,
				Message: fmt.Sprintf("duplicate flow %s -> %s, dropped", f.SourceRef, f.TargetRef),
			})
			continue
		}
		seenPairs[pair] = struct{}{}
		kept = append(kept, f)
	}
	proc.SequenceFlows = kept
}

// pruneMessageFlows drops message flows whose process-side element or
// participant no longer exists.
func pruneMessageFlows(defs *bpmn.Definitions, report Reporter) {
	if defs.Collaboration == nil {
		return
	}
	ids := defs.ElementIDs()

	kept := defs.Collaboration.MessageFlows[:0]
	for _, mf := range defs.Collaboration.MessageFlows {
		_, srcOK := ids[mf.SourceRef]
		_, tgtOK := ids[mf.TargetRef]
		if !srcOK || !tgtOK {
			bad := mf.SourceRef
			if srcOK {
				bad = mf.TargetRef
			}
			report(api.Diagnostic{
				Stage:   "layout",
				Subject: mf.ID,
				Kind:    api.DroppedDanglingFlow,
				Message: fmt.Sprintf("message flow references missing element %q, dropped", bad),
			})
			continue
		}
		kept = append(kept, mf)
	}
	defs.Collaboration.MessageFlows = kept
}

// threadReferences rewrites every element's incoming/outgoing lists from
// the final pruned flow set.
func threadReferences(proc *bpmn.Process) {
	byID := make(map[string]any)
	for _, el := range proc.Elements {
		byID[bpmn.ElementID(el)] = el
	}
	for _, el := range proc.Elements {
		clearReferences(el)
	}
	for _, f := range proc.SequenceFlows {
		if src, ok := byID[f.SourceRef]; ok {
			bpmn.AddOutgoing(src, f.ID)
		}
		if tgt, ok := byID[f.TargetRef]; ok {
			bpmn.AddIncoming(tgt, f.ID)
		}
	}
}

func clearReferences(el any) {
	switch e := el.(type) {
	case *bpmn.StartEvent:
		e.Outgoing = nil
	case *bpmn.EndEvent:
		e.Incoming = nil
	case *bpmn.CallActivity:
		e.Incoming, e.Outgoing = nil, nil
	case *bpmn.ServiceTask:
		e.Incoming, e.Outgoing = nil, nil
	case *bpmn.ExclusiveGateway:
		e.Incoming, e.Outgoing = nil, nil
	case *bpmn.SubProcess:
		e.Incoming, e.Outgoing = nil, nil
	}
}

// layoutProcess assigns canonical left-to-right positions: the flow order
// is derived by walking outgoing flows from the start event; elements the
// walk never reaches keep their declaration order after the walked ones.
// It returns the bounding box of the placed elements so the pool shape can
// span them.
func layoutProcess(proc *bpmn.Process, baseY float64, plane *bpmn.Plane, positions map[string]box) box {
	order := flowOrder(proc)

	extent := box{x: originX, y: baseY, w: activityWidth, h: activityHeight}
	x := originX
	for i, id := range order {
		el := proc.FindElement(id)
		w, h := elementSize(el)
		// Center smaller symbols on the activity midline.
		yOff := (activityHeight - h) / 2
		b := box{x: x, y: baseY + yOff, w: w, h: h}
		positions[id] = b
		plane.Shapes = append(plane.Shapes, &bpmn.Shape{
			ID:      "BPMNShape_" + id,
			Element: id,
			Bounds:  &bpmn.Bounds{X: b.x, Y: b.y, Width: b.w, Height: b.h},
		})
		if sp, ok := el.(*bpmn.SubProcess); ok {
			layoutSubprocess(sp, b, plane, positions)
		}
		if i == len(order)-1 {
			extent.w = b.x + b.w - extent.x
		}
		x += columnSpacing
	}
	return extent
}

// layoutSubprocess places a subprocess's own elements inside its bounds so
// every element the document serializes has a shape. Inner elements are
// spread left to right between the subprocess margins.
func layoutSubprocess(sp *bpmn.SubProcess, bounds box, plane *bpmn.Plane, positions map[string]box) {
	n := len(sp.Elements)
	if n == 0 {
		return
	}

	total := 0.0
	for _, el := range sp.Elements {
		w, _ := elementSize(el)
		total += w
	}
	gap := 0.0
	if n > 1 {
		gap = (bounds.w - 2*subprocessMargin - total) / float64(n-1)
	}

	x := bounds.x + subprocessMargin
	for _, el := range sp.Elements {
		id := bpmn.ElementID(el)
		w, h := elementSize(el)
		b := box{x: x, y: bounds.y + (bounds.h-h)/2, w: w, h: h}
		positions[id] = b
		plane.Shapes = append(plane.Shapes, &bpmn.Shape{
			ID:      "BPMNShape_" + id,
			Element: id,
			Bounds:  &bpmn.Bounds{X: b.x, Y: b.y, Width: b.w, Height: b.h},
		})
		if inner, ok := el.(*bpmn.SubProcess); ok {
			layoutSubprocess(inner, b, plane, positions)
		}
		x += w + gap
	}
}

// flowOrder walks the process's flows from its start event; unreached
// elements are appended in declaration order.
func flowOrder(proc *bpmn.Process) []string {
	next := make(map[string][]string)
	for _, f := range proc.SequenceFlows {
		next[f.SourceRef] = append(next[f.SourceRef], f.TargetRef)
	}

	var start string
	for _, el := range proc.Elements {
		if _, ok := el.(*bpmn.StartEvent); ok {
			start = bpmn.ElementID(el)
			break
		}
	}

	visited := make(map[string]struct{})
	var order []string
	var walk func(id string)
	walk = func(id string) {
		if _, seen := visited[id]; seen {
			return
		}
		visited[id] = struct{}{}
		order = append(order, id)
		for _, tgt := range next[id] {
			walk(tgt)
		}
	}
	if start != "" {
		walk(start)
	}
	for _, el := range proc.Elements {
		id := bpmn.ElementID(el)
		if _, seen := visited[id]; !seen {
			visited[id] = struct{}{}
			order = append(order, id)
		}
	}
	return order
}

func elementSize(el any) (w, h float64) {
	switch el.(type) {
	case *bpmn.StartEvent, *bpmn.EndEvent, *bpmn.ErrorStartEvent:
		return eventSize, eventSize
	case *bpmn.ExclusiveGateway:
		return gatewaySize, gatewaySize
	default:
		return activityWidth, activityHeight
	}
}

// layoutParticipants places the sender to the left of the process lane,
// each receiver below the service task its message flow connects to, and a
// pool spanning each process's laid-out elements.
func layoutParticipants(defs *bpmn.Definitions, plane *bpmn.Plane, positions map[string]box, extents map[string]box) {
	if defs.Collaboration == nil {
		return
	}

	anchorX := make(map[string]float64)
	for _, mf := range defs.Collaboration.MessageFlows {
		if src, ok := positions[mf.SourceRef]; ok {
			anchorX[mf.TargetRef] = src.x
		}
	}

	fallbackX := originX
	for _, p := range defs.Collaboration.Participants {
		var b box
		switch p.IflType {
		case bpmn.ParticipantProcess:
			e, ok := extents[p.ProcessRef]
			if !ok {
				e = box{x: originX, y: originY, w: activityWidth, h: activityHeight}
			}
			b = box{
				x: e.x - poolPaddingX,
				y: e.y - poolPaddingY,
				w: e.w + 2*poolPaddingX,
				h: e.h + 2*poolPaddingY,
			}
		case bpmn.ParticipantSender:
			b = box{x: senderX, y: originY, w: participantWidth, h: participantHeight}
		default:
			x, ok := anchorX[p.ID]
			if !ok {
				x = fallbackX
				fallbackX += columnSpacing
			}
			b = box{x: x, y: receiverY, w: participantWidth, h: participantHeight}
		}
		positions[p.ID] = b
		plane.Shapes = append(plane.Shapes, &bpmn.Shape{
			ID:      "BPMNShape_" + p.ID,
			Element: p.ID,
			Bounds:  &bpmn.Bounds{X: b.x, Y: b.y, Width: b.w, Height: b.h},
		})
	}
}

// emitEdges emits one edge per sequence flow (right edge of source to left
// edge of target) and one per message flow (vertical drop from the source
// element to the participant).
func emitEdges(defs *bpmn.Definitions, plane *bpmn.Plane, positions map[string]box) {
	for _, proc := range defs.Processes {
		emitFlowEdges(proc.SequenceFlows, plane, positions)
		for _, el := range proc.Elements {
			if sp, ok := el.(*bpmn.SubProcess); ok {
				emitFlowEdges(sp.SequenceFlows, plane, positions)
			}
		}
	}
	if defs.Collaboration == nil {
		return
	}
	for _, mf := range defs.Collaboration.MessageFlows {
		src := positions[mf.SourceRef]
		tgt := positions[mf.TargetRef]
		plane.Edges = append(plane.Edges, &bpmn.Edge{
			ID:            "BPMNEdge_" + mf.ID,
			Element:       mf.ID,
			SourceElement: "BPMNShape_" + mf.SourceRef,
			TargetElement: "BPMNShape_" + mf.TargetRef,
			Waypoints: []bpmn.Waypoint{
				{X: src.x + src.w/2, Y: src.y + src.h},
				{X: tgt.x + tgt.w/2, Y: tgt.y},
			},
		})
	}
}

func emitFlowEdges(flows []*bpmn.SequenceFlow, plane *bpmn.Plane, positions map[string]box) {
	for _, f := range flows {
		src := positions[f.SourceRef]
		tgt := positions[f.TargetRef]
		plane.Edges = append(plane.Edges, &bpmn.Edge{
			ID:            "BPMNEdge_" + f.ID,
			Element:       f.ID,
			SourceElement: "BPMNShape_" + f.SourceRef,
			TargetElement: "BPMNShape_" + f.TargetRef,
			Waypoints: []bpmn.Waypoint{
				{X: src.x + src.w, Y: src.y + src.h/2},
				{X: tgt.x, Y: tgt.y + tgt.h/2},
			},
		})
	}
}
