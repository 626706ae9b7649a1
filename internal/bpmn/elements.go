// Package bpmn provides the typed element tree for SAP Integration Suite
// iFlow documents: BPMN2 model elements, the SAP ifl extension properties,
// and the BPMN DI diagram layer. Constructors in templates.go produce one
// element per call; the whole tree is serialized exactly once by Marshal.
//
// The package has no graph knowledge. Wiring elements together (sequence
// flows, participants, diagram shapes) is the compiler's and the layout
// engine's job.
package bpmn

import "encoding/xml"

// Namespace URIs for the generated document.
const (
	nsBPMN2  = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	nsBPMNDI = "http://www.omg.org/spec/BPMN/20100524/DI"
	nsDC     = "http://www.omg.org/spec/DD/20100524/DC"
	nsDI     = "http://www.omg.org/spec/DD/20100524/DI"
	nsIFL    = "http:///com.sap.ifl.model/Ifl.xsd"
	nsXSI    = "http://www.w3.org/2001/XMLSchema-instance"
)

// Participant ifl:type values. EndpointRecevier is SAP's documented
// spelling.
const (
	ParticipantSender   = "EndpointSender"
	ParticipantReceiver = "EndpointRecevier"
	ParticipantProcess  = "IntegrationProcess"
)

// Definitions is the document root: one collaboration, one or more
// processes, and the diagram layer.
type Definitions struct {
	XMLName xml.Name `xml:"bpmn2:definitions"`

	NSBpmn2  string `xml:"xmlns:bpmn2,attr"`
	NSBpmndi string `xml:"xmlns:bpmndi,attr"`
	NSDC     string `xml:"xmlns:dc,attr"`
	NSDI     string `xml:"xmlns:di,attr"`
	NSIfl    string `xml:"xmlns:ifl,attr"`
	NSXsi    string `xml:"xmlns:xsi,attr"`

	ID string `xml:"id,attr"`

	Collaboration *Collaboration `xml:"bpmn2:collaboration"`
	Processes     []*Process     `xml:"bpmn2:process"`
	Diagram       *Diagram       `xml:"bpmndi:BPMNDiagram"`
}

// Collaboration holds the participants and message flows.
type Collaboration struct {
	ID           string         `xml:"id,attr"`
	Name         string         `xml:"name,attr"`
	Ext          *Extension     `xml:"bpmn2:extensionElements"`
	Participants []*Participant `xml:"bpmn2:participant"`
	MessageFlows []*MessageFlow `xml:"bpmn2:messageFlow"`
}

// Participant is a collaboration-level actor: a sender, a receiver backend,
// or the Integration Process itself.
type Participant struct {
	ID         string     `xml:"id,attr"`
	IflType    string     `xml:"ifl:type,attr"`
	Name       string     `xml:"name,attr"`
	ProcessRef string     `xml:"processRef,attr,omitempty"`
	Ext        *Extension `xml:"bpmn2:extensionElements"`
}

// MessageFlow connects a process step to a participant and carries the
// adapter configuration in its property table.
type MessageFlow struct {
	ID        string     `xml:"id,attr"`
	Name      string     `xml:"name,attr"`
	SourceRef string     `xml:"sourceRef,attr"`
	TargetRef string     `xml:"targetRef,attr"`
	Ext       *Extension `xml:"bpmn2:extensionElements"`
}

// Extension is the bpmn2:extensionElements container; in iFlow documents it
// holds only the SAP ifl property table.
type Extension struct {
	Properties []Property `xml:"ifl:property"`
}

// Property is one SAP ifl key/value pair.
type Property struct {
	Key   string `xml:"key"`
	Value string `xml:"value"`
}

// Process is one bpmn2:process: the main Integration Process or a nested
// Local Integration Process. Elements preserves emission order; sequence
// flows are kept separately so reference checks stay structural.
type Process struct {
	ID   string     `xml:"id,attr"`
	Name string     `xml:"name,attr"`
	Ext  *Extension `xml:"bpmn2:extensionElements"`

	// Elements holds the flow nodes in order. Each entry is one of
	// *StartEvent, *EndEvent, *CallActivity, *ServiceTask,
	// *ExclusiveGateway, *SubProcess.
	Elements []any `xml:",omitempty"`

	SequenceFlows []*SequenceFlow `xml:"bpmn2:sequenceFlow"`
}

// StartEvent is a message start event.
type StartEvent struct {
	XMLName  xml.Name   `xml:"bpmn2:startEvent"`
	ID       string     `xml:"id,attr"`
	Name     string     `xml:"name,attr"`
	Ext      *Extension `xml:"bpmn2:extensionElements"`
	Outgoing []string   `xml:"bpmn2:outgoing"`
	Message  *struct{}  `xml:"bpmn2:messageEventDefinition"`
}

// EndEvent is a message end event.
type EndEvent struct {
	XMLName  xml.Name   `xml:"bpmn2:endEvent"`
	ID       string     `xml:"id,attr"`
	Name     string     `xml:"name,attr"`
	Ext      *Extension `xml:"bpmn2:extensionElements"`
	Incoming []string   `xml:"bpmn2:incoming"`
	Message  *struct{}  `xml:"bpmn2:messageEventDefinition"`
}

// ErrorStartEvent starts an exception subprocess.
type ErrorStartEvent struct {
	XMLName  xml.Name   `xml:"bpmn2:startEvent"`
	ID       string     `xml:"id,attr"`
	Name     string     `xml:"name,attr"`
	Ext      *Extension `xml:"bpmn2:extensionElements"`
	Outgoing []string   `xml:"bpmn2:outgoing"`
	Error    *struct{}  `xml:"bpmn2:errorEventDefinition"`
}

// CallActivity is the workhorse flow node: content modifiers, scripts,
// converters, mappings, and process calls are all call activities
// distinguished by their activityType property.
type CallActivity struct {
	XMLName  xml.Name   `xml:"bpmn2:callActivity"`
	ID       string     `xml:"id,attr"`
	Name     string     `xml:"name,attr"`
	Ext      *Extension `xml:"bpmn2:extensionElements"`
	Incoming []string   `xml:"bpmn2:incoming"`
	Outgoing []string   `xml:"bpmn2:outgoing"`
}

// ServiceTask represents an external call; it is always paired with a
// participant and a message flow in the collaboration section.
type ServiceTask struct {
	XMLName  xml.Name   `xml:"bpmn2:serviceTask"`
	ID       string     `xml:"id,attr"`
	Name     string     `xml:"name,attr"`
	Ext      *Extension `xml:"bpmn2:extensionElements"`
	Incoming []string   `xml:"bpmn2:incoming"`
	Outgoing []string   `xml:"bpmn2:outgoing"`
}

// ExclusiveGateway is a router; each condition becomes one outgoing
// conditional sequence flow.
type ExclusiveGateway struct {
	XMLName  xml.Name   `xml:"bpmn2:exclusiveGateway"`
	ID       string     `xml:"id,attr"`
	Name     string     `xml:"name,attr"`
	Default  string     `xml:"default,attr,omitempty"`
	Ext      *Extension `xml:"bpmn2:extensionElements"`
	Incoming []string   `xml:"bpmn2:incoming"`
	Outgoing []string   `xml:"bpmn2:outgoing"`
}

// SubProcess is an embedded subprocess; with an ErrorStartEvent inside it
// acts as an exception subprocess.
type SubProcess struct {
	XMLName  xml.Name   `xml:"bpmn2:subProcess"`
	ID       string     `xml:"id,attr"`
	Name     string     `xml:"name,attr"`
	Ext      *Extension `xml:"bpmn2:extensionElements"`
	Incoming []string   `xml:"bpmn2:incoming"`
	Outgoing []string   `xml:"bpmn2:outgoing"`

	Elements      []any           `xml:",omitempty"`
	SequenceFlows []*SequenceFlow `xml:"bpmn2:sequenceFlow"`
}

// SequenceFlow is a directed edge between two flow nodes of the same
// process.
type SequenceFlow struct {
	ID        string     `xml:"id,attr"`
	Name      string     `xml:"name,attr,omitempty"`
	SourceRef string     `xml:"sourceRef,attr"`
	TargetRef string     `xml:"targetRef,attr"`
	Condition *Condition `xml:"bpmn2:conditionExpression"`
}

// Condition is a formal condition expression on a sequence flow.
type Condition struct {
	XSIType string `xml:"xsi:type,attr"`
	ID      string `xml:"id,attr,omitempty"`
	Value   string `xml:",chardata"`
}

// Diagram is the BPMN DI layer. It is derived, never authored directly,
// and regenerated wholesale on every compile.
type Diagram struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Plane *Plane `xml:"bpmndi:BPMNPlane"`
}

// Plane holds one shape per element and one edge per flow.
type Plane struct {
	ID      string   `xml:"id,attr"`
	Element string   `xml:"bpmnElement,attr"`
	Shapes  []*Shape `xml:"bpmndi:BPMNShape"`
	Edges   []*Edge  `xml:"bpmndi:BPMNEdge"`
}

// Shape positions one model element.
type Shape struct {
	ID      string  `xml:"id,attr"`
	Element string  `xml:"bpmnElement,attr"`
	Bounds  *Bounds `xml:"dc:Bounds"`
}

// Bounds is a dc:Bounds box.
type Bounds struct {
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

// Edge connects two shapes with waypoints.
type Edge struct {
	ID            string     `xml:"id,attr"`
	Element       string     `xml:"bpmnElement,attr"`
	SourceElement string     `xml:"sourceElement,attr,omitempty"`
	TargetElement string     `xml:"targetElement,attr,omitempty"`
	Waypoints     []Waypoint `xml:"di:waypoint"`
}

// Waypoint is a di:waypoint coordinate.
type Waypoint struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}
