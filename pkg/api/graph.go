package api

// Reserved element IDs shared by every generated iFlow. SAP Integration
// Suite's default process skeleton uses these exact IDs for the message
// start and end events, and sequence flows may reference them directly.
const (
	StartEventID = "StartEvent_2"
	EndEventID   = "EndEvent_2"
)

// ComponentType is the closed set of process-step kinds the compiler knows
// how to emit. Raw type strings coming out of extraction are mapped onto
// this set by ParseComponentType; anything unrecognized becomes TypeUnknown
// and is skipped with a diagnostic rather than coerced.
type ComponentType string

const (
	TypeEnricher            ComponentType = "enricher"
	TypeContentModifier     ComponentType = "content_modifier"
	TypeScript              ComponentType = "script"
	TypeRequestReply        ComponentType = "request_reply"
	TypeOData               ComponentType = "odata"
	TypeSFTP                ComponentType = "sftp"
	TypeRouter              ComponentType = "router"
	TypeJSONToXMLConverter  ComponentType = "json_to_xml_converter"
	TypeXMLToJSONConverter  ComponentType = "xml_to_json_converter"
	TypeMessageMapping      ComponentType = "message_mapping"
	TypeExceptionSubprocess ComponentType = "exception_subprocess"
	TypeSubprocess          ComponentType = "subprocess"
	TypeLocalProcess        ComponentType = "lip"
	TypeWriteToLog          ComponentType = "write_to_log"
	TypeUnknown             ComponentType = "unknown"
)

// typeAliases maps the spellings extraction tends to produce onto the
// canonical component types.
var typeAliases = map[string]ComponentType{
	"groovy_script":             TypeScript,
	"groovy":                    TypeScript,
	"script_component":          TypeScript,
	"enricher_component":        TypeEnricher,
	"modifier":                  TypeContentModifier,
	"contentmodifier":           TypeContentModifier,
	"request-reply":             TypeRequestReply,
	"requestreply":              TypeRequestReply,
	"http_call":                 TypeRequestReply,
	"odata_call":                TypeOData,
	"odata_adapter":             TypeOData,
	"successfactors":            TypeOData,
	"sftp_adapter":              TypeSFTP,
	"exclusive_gateway":         TypeRouter,
	"gateway":                   TypeRouter,
	"choice":                    TypeRouter,
	"json_to_xml":               TypeJSONToXMLConverter,
	"xml_to_json":               TypeXMLToJSONConverter,
	"mapping":                   TypeMessageMapping,
	"local_integration_process": TypeLocalProcess,
	"local_process":             TypeLocalProcess,
	"process_call":              TypeLocalProcess,
	"exception":                 TypeExceptionSubprocess,
	"sub_process":               TypeSubprocess,
	"logger":                    TypeWriteToLog,
	"log":                       TypeWriteToLog,
}

// canonical holds the identity mappings so ParseComponentType accepts
// already-canonical values without consulting the alias table.
var canonical = map[string]ComponentType{
	string(TypeEnricher):            TypeEnricher,
	string(TypeContentModifier):     TypeContentModifier,
	string(TypeScript):              TypeScript,
	string(TypeRequestReply):        TypeRequestReply,
	string(TypeOData):               TypeOData,
	string(TypeSFTP):                TypeSFTP,
	string(TypeRouter):              TypeRouter,
	string(TypeJSONToXMLConverter):  TypeJSONToXMLConverter,
	string(TypeXMLToJSONConverter):  TypeXMLToJSONConverter,
	string(TypeMessageMapping):      TypeMessageMapping,
	string(TypeExceptionSubprocess): TypeExceptionSubprocess,
	string(TypeSubprocess):          TypeSubprocess,
	string(TypeLocalProcess):        TypeLocalProcess,
	string(TypeWriteToLog):          TypeWriteToLog,
}

// ParseComponentType maps a raw type string to its canonical ComponentType.
// The second return value is false when the raw string matched nothing, in
// which case the returned type is TypeUnknown.
func ParseComponentType(raw string) (ComponentType, bool) {
	key := normalizeKey(raw)
	if t, ok := canonical[key]; ok {
		return t, true
	}
	if t, ok := typeAliases[key]; ok {
		return t, true
	}
	return TypeUnknown, false
}

func normalizeKey(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z':
			b = append(b, c+('a'-'A'))
		case c == ' ' || c == '-':
			b = append(b, '_')
		default:
			b = append(b, c)
		}
	}
	return string(b)
}

// Component is one process step inside an endpoint. Its ID must be unique
// across the endpoint's emitted element set; the compiler repairs
// collisions by minting a fresh suffixed ID and rewriting flow references.
type Component struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// SequenceFlow is a directed edge between two component IDs, or between a
// component and one of the reserved start/end event IDs.
type SequenceFlow struct {
	ID          string `json:"id"`
	SourceRef   string `json:"source_ref"`
	TargetRef   string `json:"target_ref"`
	IsImmediate bool   `json:"is_immediate,omitempty"`
}

// Endpoint is the unit of conversion: one logical external-facing flow.
//
// Flow, when non-empty, is an explicit execution order of component IDs and
// takes priority over everything else: the compiled sequence-flow set is
// derived solely from consecutive pairs in Flow plus the synthesized
// start/end edges. SequenceFlows, when Flow is empty, is an explicit
// connection list (source/target may be component names, which are resolved
// to IDs). With neither, components are connected in declaration order.
type Endpoint struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Components    []Component    `json:"components"`
	Flow          []string       `json:"flow,omitempty"`
	SequenceFlows []SequenceFlow `json:"sequence_flows,omitempty"`
}

// ComponentGraph is the validated output of component extraction and the
// input to compilation.
type ComponentGraph struct {
	Endpoints []Endpoint `json:"endpoints"`
}
