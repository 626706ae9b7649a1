package bpmn

// Template constructors. Each function produces exactly one element (or
// one participant/message-flow) from typed parameters; nothing here knows
// about the surrounding graph.

// Fixed IDs of the document skeleton.
const (
	DefinitionsID        = "Definitions_1"
	CollaborationID      = "Collaboration_1"
	MainProcessID        = "Process_1"
	ProcessParticipantID = "Participant_Process_1"
	SenderParticipantID  = "Participant_1"
	DiagramID            = "BPMNDiagram_1"
	PlaneID              = "BPMNPlane_1"
)

// NewDefinitions builds the document skeleton: namespaces, an empty
// collaboration with the Integration Process participant and a sender, and
// the main process carrying the shared start/end event pair.
func NewDefinitions(name, startEventID, endEventID string) *Definitions {
	collab := &Collaboration{
		ID:   CollaborationID,
		Name: "Default Collaboration",
		Participants: []*Participant{
			NewSenderParticipant(SenderParticipantID, "Sender"),
			NewProcessParticipant(ProcessParticipantID, "Integration Process", MainProcessID),
		},
	}

	proc := NewIntegrationProcess(MainProcessID, name)
	proc.Elements = append(proc.Elements,
		NewStartEvent(startEventID, "Start"),
		NewEndEvent(endEventID, "End"),
	)

	return &Definitions{
		NSBpmn2:       nsBPMN2,
		NSBpmndi:      nsBPMNDI,
		NSDC:          nsDC,
		NSDI:          nsDI,
		NSIfl:         nsIFL,
		NSXsi:         nsXSI,
		ID:            DefinitionsID,
		Collaboration: collab,
		Processes:     []*Process{proc},
	}
}

// NewIntegrationProcess builds a bpmn2:process with SAP's standard process
// property table.
func NewIntegrationProcess(id, name string) *Process {
	return &Process{
		ID:   id,
		Name: name,
		Ext: &Extension{Properties: []Property{
			{Key: "transactionTimeout", Value: "30"},
			{Key: "componentVersion", Value: "1.2"},
			{Key: "cmdVariantUri", Value: "ctype::FlowElementVariant/cname::IntegrationProcess/version::1.2.1"},
			{Key: "transactionalHandling", Value: "Not Required"},
		}},
	}
}

// NewLocalProcess builds a nested Local Integration Process, referenced
// from the parent process via a ProcessCall call activity.
func NewLocalProcess(id, name string) *Process {
	return &Process{
		ID:   id,
		Name: name,
		Ext: &Extension{Properties: []Property{
			{Key: "componentVersion", Value: "1.1"},
			{Key: "cmdVariantUri", Value: "ctype::FlowElementVariant/cname::IntegrationProcess/version::1.1.2"},
			{Key: "transactionalHandling", Value: "From Calling Process"},
		}},
	}
}

// NewStartEvent builds a message start event.
func NewStartEvent(id, name string) *StartEvent {
	return &StartEvent{
		ID:   id,
		Name: name,
		Ext: &Extension{Properties: []Property{
			{Key: "componentVersion", Value: "1.0"},
			{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::MessageStartEvent/version::1.0"},
		}},
		Message: &struct{}{},
	}
}

// NewEndEvent builds a message end event.
func NewEndEvent(id, name string) *EndEvent {
	return &EndEvent{
		ID:   id,
		Name: name,
		Ext: &Extension{Properties: []Property{
			{Key: "componentVersion", Value: "1.1"},
			{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::MessageEndEvent/version::1.1.0"},
		}},
		Message: &struct{}{},
	}
}

// NewErrorStartEvent builds the error start event of an exception
// subprocess.
func NewErrorStartEvent(id, name string) *ErrorStartEvent {
	return &ErrorStartEvent{
		ID:   id,
		Name: name,
		Ext: &Extension{Properties: []Property{
			{Key: "componentVersion", Value: "1.0"},
			{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::ErrorStartEvent/version::1.0"},
		}},
		Error: &struct{}{},
	}
}

// ContentModifierConfig carries the body/header/property tables of a
// content modifier or enricher step.
type ContentModifierConfig struct {
	BodyType    string // Expression or Constant
	Body        string
	WrapContent string
	Headers     []TableRow
	Properties  []TableRow
}

// TableRow is one row of a content-modifier header or property table.
type TableRow struct {
	Action string // Create or Delete
	Name   string
	Type   string // constant, expression, header, property
	Value  string
}

// NewContentModifier builds the call activity for enricher and
// content_modifier components.
func NewContentModifier(id, name string, cfg ContentModifierConfig) *CallActivity {
	bodyType := cfg.BodyType
	if bodyType == "" {
		bodyType = "expression"
	}
	props := []Property{
		{Key: "bodyType", Value: bodyType},
		{Key: "bodyContent", Value: cfg.Body},
		{Key: "propertyTable", Value: encodeTable(cfg.Properties)},
		{Key: "headerTable", Value: encodeTable(cfg.Headers)},
		{Key: "wrapContent", Value: cfg.WrapContent},
		{Key: "componentVersion", Value: "1.5"},
		{Key: "activityType", Value: "Enricher"},
		{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::Enricher/version::1.5.1"},
	}
	return &CallActivity{ID: id, Name: name, Ext: &Extension{Properties: props}}
}

// NewScript builds the call activity for a groovy script step. scriptFile
// is the resolved file name; the same name must be used for the bundled
// resource.
func NewScript(id, name, scriptFile string) *CallActivity {
	props := []Property{
		{Key: "scriptFunction", Value: "processData"},
		{Key: "script", Value: scriptFile},
		{Key: "scriptBundleId", Value: ""},
		{Key: "subActivityType", Value: "GroovyScript"},
		{Key: "componentVersion", Value: "1.1"},
		{Key: "activityType", Value: "Script"},
		{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::GroovyScript/version::1.1.2"},
	}
	return &CallActivity{ID: id, Name: name, Ext: &Extension{Properties: props}}
}

// NewServiceTask builds the external-call service task that anchors a
// message flow to a receiver participant.
func NewServiceTask(id, name string) *ServiceTask {
	props := []Property{
		{Key: "componentVersion", Value: "1.0"},
		{Key: "activityType", Value: "ExternalCall"},
		{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::ExternalCall/version::1.0.4"},
	}
	return &ServiceTask{ID: id, Name: name, Ext: &Extension{Properties: props}}
}

// NewRouter builds an exclusive gateway. Outgoing conditional flows are
// wired by the compiler.
func NewRouter(id, name string) *ExclusiveGateway {
	props := []Property{
		{Key: "activityType", Value: "ExclusiveGateway"},
		{Key: "throwException", Value: "false"},
		{Key: "componentVersion", Value: "1.1"},
		{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::ExclusiveGateway/version::1.1.1"},
	}
	return &ExclusiveGateway{ID: id, Name: name, Ext: &Extension{Properties: props}}
}

// NewJSONToXMLConverter builds a JSON-to-XML converter call activity.
func NewJSONToXMLConverter(id, name string) *CallActivity {
	props := []Property{
		{Key: "additionalRootElementName", Value: "root"},
		{Key: "jsonNamespaceMapping", Value: ""},
		{Key: "addXMLRootElement", Value: "true"},
		{Key: "componentVersion", Value: "1.1"},
		{Key: "activityType", Value: "JsonToXmlConverter"},
		{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::JsonToXmlConverter/version::1.1.2"},
	}
	return &CallActivity{ID: id, Name: name, Ext: &Extension{Properties: props}}
}

// NewXMLToJSONConverter builds an XML-to-JSON converter call activity.
func NewXMLToJSONConverter(id, name string) *CallActivity {
	props := []Property{
		{Key: "suppressJsonRootElement", Value: "false"},
		{Key: "componentVersion", Value: "1.2"},
		{Key: "activityType", Value: "XmlToJsonConverter"},
		{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::XmlToJsonConverter/version::1.2.0"},
	}
	return &CallActivity{ID: id, Name: name, Ext: &Extension{Properties: props}}
}

// NewMessageMapping builds a message-mapping call activity referencing a
// mapping resource by URI.
func NewMessageMapping(id, name, mappingURI string) *CallActivity {
	props := []Property{
		{Key: "mappinguri", Value: mappingURI},
		{Key: "mappingname", Value: name},
		{Key: "mappingType", Value: "MessageMapping"},
		{Key: "componentVersion", Value: "1.3"},
		{Key: "activityType", Value: "Mapping"},
		{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::MessageMapping/version::1.3.1"},
	}
	return &CallActivity{ID: id, Name: name, Ext: &Extension{Properties: props}}
}

// NewWriteToLog builds the groovy step used for write_to_log components.
// The referenced script is bundled by the package assembler.
func NewWriteToLog(id, name, scriptFile string) *CallActivity {
	return NewScript(id, name, scriptFile)
}

// NewProcessCall builds the call activity that invokes a Local Integration
// Process by ID.
func NewProcessCall(id, name, processID string) *CallActivity {
	props := []Property{
		{Key: "processId", Value: processID},
		{Key: "componentVersion", Value: "1.1"},
		{Key: "activityType", Value: "ProcessCallElement"},
		{Key: "cmdVariantUri", Value: "ctype::FlowstepVariant/cname::ProcessCallElement/version::1.1.1"},
	}
	return &CallActivity{ID: id, Name: name, Ext: &Extension{Properties: props}}
}

// NewExceptionSubprocess builds an exception subprocess shell with its
// error start event and end event already in place.
func NewExceptionSubprocess(id, name string) *SubProcess {
	startID := id + "_error_start"
	endID := id + "_end"
	sp := &SubProcess{
		ID:   id,
		Name: name,
		Ext: &Extension{Properties: []Property{
			{Key: "componentVersion", Value: "1.0"},
			{Key: "activityType", Value: "ErrorEventSubProcessTemplate"},
			{Key: "cmdVariantUri", Value: "ctype::FlowElementVariant/cname::ErrorEventSubProcessTemplate/version::1.0.1"},
		}},
	}
	start := NewErrorStartEvent(startID, "Error Start")
	end := NewEndEvent(endID, "End")
	flowID := id + "_flow"
	start.Outgoing = append(start.Outgoing, flowID)
	end.Incoming = append(end.Incoming, flowID)
	sp.Elements = append(sp.Elements, start, end)
	sp.SequenceFlows = append(sp.SequenceFlows, &SequenceFlow{
		ID: flowID, SourceRef: startID, TargetRef: endID,
	})
	return sp
}

// NewSubprocess builds a plain embedded subprocess shell.
func NewSubprocess(id, name string) *SubProcess {
	return &SubProcess{
		ID:   id,
		Name: name,
		Ext: &Extension{Properties: []Property{
			{Key: "componentVersion", Value: "1.0"},
			{Key: "activityType", Value: "SubProcess"},
			{Key: "cmdVariantUri", Value: "ctype::FlowElementVariant/cname::SubProcess/version::1.0"},
		}},
	}
}

// NewSenderParticipant builds the EndpointSender participant.
func NewSenderParticipant(id, name string) *Participant {
	return &Participant{
		ID:      id,
		IflType: ParticipantSender,
		Name:    name,
		Ext: &Extension{Properties: []Property{
			{Key: "ifl:type", Value: ParticipantSender},
			{Key: "enableBasicAuthentication", Value: "false"},
		}},
	}
}

// NewReceiverParticipant builds an EndpointRecevier participant for the
// collaboration section. It never appears in the process body.
func NewReceiverParticipant(id, name string) *Participant {
	return &Participant{
		ID:      id,
		IflType: ParticipantReceiver,
		Name:    name,
		Ext: &Extension{Properties: []Property{
			{Key: "ifl:type", Value: ParticipantReceiver},
		}},
	}
}

// NewProcessParticipant builds the IntegrationProcess participant that
// references the main process.
func NewProcessParticipant(id, name, processRef string) *Participant {
	return &Participant{
		ID:         id,
		IflType:    ParticipantProcess,
		Name:       name,
		ProcessRef: processRef,
	}
}

// NewSequenceFlow builds an unconditional sequence flow.
func NewSequenceFlow(id, sourceRef, targetRef string) *SequenceFlow {
	return &SequenceFlow{ID: id, SourceRef: sourceRef, TargetRef: targetRef}
}

// NewConditionalSequenceFlow builds a sequence flow carrying a condition
// expression, used for router branches.
func NewConditionalSequenceFlow(id, sourceRef, targetRef, expr string) *SequenceFlow {
	return &SequenceFlow{
		ID:        id,
		SourceRef: sourceRef,
		TargetRef: targetRef,
		Condition: &Condition{
			XSIType: "bpmn2:tFormalExpression",
			ID:      "FormalExpression_" + id,
			Value:   expr,
		},
	}
}

// HTTPConfig configures a generic HTTP receiver message flow.
type HTTPConfig struct {
	Address string
	Method  string
	Auth    string
}

// NewHTTPMessageFlow builds a generic HTTP adapter message flow from a
// service task to a receiver participant.
func NewHTTPMessageFlow(id, sourceRef, targetRef string, cfg HTTPConfig) *MessageFlow {
	method := cfg.Method
	if method == "" {
		method = "POST"
	}
	auth := cfg.Auth
	if auth == "" {
		auth = "None"
	}
	props := []Property{
		{Key: "Name", Value: "HTTP"},
		{Key: "ComponentType", Value: "HTTP"},
		{Key: "ComponentNS", Value: "sap"},
		{Key: "TransportProtocol", Value: "HTTP"},
		{Key: "MessageProtocol", Value: "None"},
		{Key: "direction", Value: "Receiver"},
		{Key: "httpAddressWithoutQuery", Value: cfg.Address},
		{Key: "httpMethod", Value: method},
		{Key: "authenticationMethod", Value: auth},
		{Key: "proxyType", Value: "default"},
		{Key: "componentVersion", Value: "1.14"},
		{Key: "cmdVariantUri", Value: "ctype::AdapterVariant/cname::sap:HTTP/tp::HTTP/mp::None/direction::Receiver/version::1.14.0"},
	}
	return &MessageFlow{ID: id, Name: "HTTP", SourceRef: sourceRef, TargetRef: targetRef,
		Ext: &Extension{Properties: props}}
}

// ODataConfig configures an OData (or SuccessFactors) receiver message
// flow. Operation must already be in SAP's Name(VERB) vocabulary.
type ODataConfig struct {
	Address      string
	ResourcePath string
	Operation    string
	Auth         string
	EDMXPath     string
}

// NewODataMessageFlow builds an OData V2 adapter message flow.
func NewODataMessageFlow(id, sourceRef, targetRef string, cfg ODataConfig) *MessageFlow {
	return newODataFlow(id, "OData", sourceRef, targetRef, cfg)
}

// NewSuccessFactorsMessageFlow builds a SuccessFactors-flavored OData
// message flow.
func NewSuccessFactorsMessageFlow(id, sourceRef, targetRef string, cfg ODataConfig) *MessageFlow {
	return newODataFlow(id, "SuccessFactors", sourceRef, targetRef, cfg)
}

func newODataFlow(id, name, sourceRef, targetRef string, cfg ODataConfig) *MessageFlow {
	auth := cfg.Auth
	if auth == "" {
		auth = "Basic"
	}
	props := []Property{
		{Key: "Name", Value: name},
		{Key: "ComponentType", Value: "HCIOData"},
		{Key: "ComponentNS", Value: "sap"},
		{Key: "TransportProtocol", Value: "HTTP"},
		{Key: "MessageProtocol", Value: "OData V2"},
		{Key: "direction", Value: "Receiver"},
		{Key: "address", Value: cfg.Address},
		{Key: "resourcePath", Value: cfg.ResourcePath},
		{Key: "operation", Value: cfg.Operation},
		{Key: "authenticationMethod", Value: auth},
		{Key: "proxyType", Value: "default"},
		{Key: "edmxFilePath", Value: cfg.EDMXPath},
		{Key: "componentVersion", Value: "1.25"},
		{Key: "cmdVariantUri", Value: "ctype::AdapterVariant/cname::sap:HCIOData/tp::HTTP/mp::OData V2/direction::Receiver/version::1.25.0"},
	}
	return &MessageFlow{ID: id, Name: name, SourceRef: sourceRef, TargetRef: targetRef,
		Ext: &Extension{Properties: props}}
}

// SFTPConfig configures an SFTP receiver message flow.
type SFTPConfig struct {
	Host     string
	Path     string
	FileName string
	Auth     string
}

// NewSFTPMessageFlow builds an SFTP adapter message flow.
func NewSFTPMessageFlow(id, sourceRef, targetRef string, cfg SFTPConfig) *MessageFlow {
	auth := cfg.Auth
	if auth == "" {
		auth = "User Name/Password"
	}
	props := []Property{
		{Key: "Name", Value: "SFTP"},
		{Key: "ComponentType", Value: "SFTP"},
		{Key: "ComponentNS", Value: "sap"},
		{Key: "TransportProtocol", Value: "SFTP"},
		{Key: "MessageProtocol", Value: "File"},
		{Key: "direction", Value: "Receiver"},
		{Key: "host", Value: cfg.Host},
		{Key: "path", Value: cfg.Path},
		{Key: "fileName", Value: cfg.FileName},
		{Key: "authenticationMethod", Value: auth},
		{Key: "componentVersion", Value: "1.15"},
		{Key: "cmdVariantUri", Value: "ctype::AdapterVariant/cname::sap:SFTP/tp::SFTP/mp::File/direction::Receiver/version::1.15.0"},
	}
	return &MessageFlow{ID: id, Name: "SFTP", SourceRef: sourceRef, TargetRef: targetRef,
		Ext: &Extension{Properties: props}}
}

// encodeTable flattens table rows into SAP's row/cell XML fragment used
// inside property values.
func encodeTable(rows []TableRow) string {
	if len(rows) == 0 {
		return ""
	}
	var out string
	for _, r := range rows {
		action := r.Action
		if action == "" {
			action = "Create"
		}
		typ := r.Type
		if typ == "" {
			typ = "constant"
		}
		out += "<row><cell>" + action + "</cell><cell>" + xmlEscape(r.Name) +
			"</cell><cell>" + typ + "</cell><cell>" + xmlEscape(r.Value) +
			"</cell><cell></cell><cell></cell></row>"
	}
	return out
}

func xmlEscape(s string) string {
	var out []byte
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '"':
			out = append(out, "&quot;"...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
