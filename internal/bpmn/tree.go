package bpmn

// Structural helpers over the element tree. The layout engine and the
// compiler both need to treat process flow nodes uniformly without the
// tree exposing a common base struct.

// ElementID returns the model ID of a process flow node, or "" for a type
// the tree does not know.
func ElementID(el any) string {
	switch e := el.(type) {
	case *StartEvent:
		return e.ID
	case *EndEvent:
		return e.ID
	case *ErrorStartEvent:
		return e.ID
	case *CallActivity:
		return e.ID
	case *ServiceTask:
		return e.ID
	case *ExclusiveGateway:
		return e.ID
	case *SubProcess:
		return e.ID
	}
	return ""
}

// AddIncoming records a flow ID on the element's incoming list.
func AddIncoming(el any, flowID string) {
	switch e := el.(type) {
	case *EndEvent:
		e.Incoming = append(e.Incoming, flowID)
	case *CallActivity:
		e.Incoming = append(e.Incoming, flowID)
	case *ServiceTask:
		e.Incoming = append(e.Incoming, flowID)
	case *ExclusiveGateway:
		e.Incoming = append(e.Incoming, flowID)
	case *SubProcess:
		e.Incoming = append(e.Incoming, flowID)
	}
}

// AddOutgoing records a flow ID on the element's outgoing list.
func AddOutgoing(el any, flowID string) {
	switch e := el.(type) {
	case *StartEvent:
		e.Outgoing = append(e.Outgoing, flowID)
	case *ErrorStartEvent:
		e.Outgoing = append(e.Outgoing, flowID)
	case *CallActivity:
		e.Outgoing = append(e.Outgoing, flowID)
	case *ServiceTask:
		e.Outgoing = append(e.Outgoing, flowID)
	case *ExclusiveGateway:
		e.Outgoing = append(e.Outgoing, flowID)
	case *SubProcess:
		e.Outgoing = append(e.Outgoing, flowID)
	}
}

// MainProcess returns the first process of the document, which is always
// the main Integration Process.
func (d *Definitions) MainProcess() *Process {
	if len(d.Processes) == 0 {
		return nil
	}
	return d.Processes[0]
}

// FindElement returns the flow node with the given ID, searching nested
// subprocess bodies too.
func (p *Process) FindElement(id string) any {
	return findIn(p.Elements, id)
}

func findIn(elements []any, id string) any {
	for _, el := range elements {
		if ElementID(el) == id {
			return el
		}
		if sp, ok := el.(*SubProcess); ok {
			if found := findIn(sp.Elements, id); found != nil {
				return found
			}
		}
	}
	return nil
}

// ElementIDs collects the IDs of every flow node in the document's
// processes (including nested subprocess bodies) plus every participant.
// Sequence flows and message flows are validated against this set.
func (d *Definitions) ElementIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	if d.Collaboration != nil {
		for _, p := range d.Collaboration.Participants {
			ids[p.ID] = struct{}{}
		}
	}
	for _, proc := range d.Processes {
		collectIDs(proc.Elements, ids)
	}
	return ids
}

func collectIDs(elements []any, ids map[string]struct{}) {
	for _, el := range elements {
		if id := ElementID(el); id != "" {
			ids[id] = struct{}{}
		}
		if sp, ok := el.(*SubProcess); ok {
			collectIDs(sp.Elements, ids)
		}
	}
}
