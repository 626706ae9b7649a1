// Package compile turns normalized endpoints into BPMN element trees:
// process-body flow nodes, collaboration participants and message flows,
// and the endpoint's sequence flows.
//
// Dispatch is a closed table keyed by component type. Unknown types are
// skipped with a diagnostic, never coerced. All mutable compile state
// (used IDs, counters, diagnostics) lives in a Context threaded through
// the call chain; compiling the same endpoint twice from the same input
// yields the same result.
package compile

import (
	"strconv"
	"strings"

	"github.com/skarpdev/iflowgen/internal/bpmn"
	"github.com/skarpdev/iflowgen/pkg/api"
)

// DefaultScriptBody is the groovy stub bundled for script components that
// carry no content of their own.
const DefaultScriptBody = `import com.sap.gateway.ip.core.customdev.util.Message

def Message processData(Message message) {
    return message
}
`

// LogScriptBody is the groovy payload logger bundled for write_to_log
// components.
const LogScriptBody = `import com.sap.gateway.ip.core.customdev.util.Message

def Message processData(Message message) {
    def messageLog = messageLogFactory.getMessageLog(message)
    if (messageLog != null) {
        messageLog.addAttachmentAsString("Payload", message.getBody(String) ?: "", "text/plain")
    }
    return message
}
`

// Result is the compiled form of one endpoint, ready to be merged into the
// shared document by the converter.
type Result struct {
	// Elements are the process-body flow nodes in emission order.
	Elements []any

	// SequenceFlows is the endpoint's final flow set, after the threading
	// priority has been applied exactly once.
	SequenceFlows []*bpmn.SequenceFlow

	// Participants and MessageFlows go to the collaboration section.
	Participants []*bpmn.Participant
	MessageFlows []*bpmn.MessageFlow

	// LocalProcesses are nested Local Integration Processes spawned by lip
	// components.
	LocalProcesses []*bpmn.Process

	// Scripts maps groovy file name to content; EDMX maps file name to
	// OData metadata content. Both are bundled by the package assembler.
	Scripts map[string]string
	EDMX    map[string]string

	// conditionFlows are router-generated conditional flows. The threading
	// pass decides whether they survive; an explicit flow array discards
	// them.
	conditionFlows []*bpmn.SequenceFlow
}

func (r *Result) bodyIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(r.Elements)+2)
	ids[api.StartEventID] = struct{}{}
	ids[api.EndEventID] = struct{}{}
	for _, el := range r.Elements {
		ids[bpmn.ElementID(el)] = struct{}{}
	}
	return ids
}

type handler func(c *Context, ep api.Endpoint, comp api.Component, res *Result)

// handlers is the closed dispatch table. Adding a component type means
// adding exactly one entry here.
var handlers = map[api.ComponentType]handler{
	api.TypeEnricher:            compileContentModifier,
	api.TypeContentModifier:     compileContentModifier,
	api.TypeScript:              compileScript,
	api.TypeRequestReply:        compileRequestReply,
	api.TypeOData:               compileOData,
	api.TypeSFTP:                compileSFTP,
	api.TypeRouter:              compileRouter,
	api.TypeJSONToXMLConverter:  compileJSONToXML,
	api.TypeXMLToJSONConverter:  compileXMLToJSON,
	api.TypeMessageMapping:      compileMessageMapping,
	api.TypeExceptionSubprocess: compileExceptionSubprocess,
	api.TypeSubprocess:          compileSubprocess,
	api.TypeLocalProcess:        compileLocalProcess,
	api.TypeWriteToLog:          compileWriteToLog,
}

// Endpoint compiles one normalized endpoint. The input endpoint is not
// mutated; collision repair works on copies.
func Endpoint(c *Context, ep api.Endpoint) *Result {
	ep = repairCollisions(c, ep)

	res := &Result{
		Scripts: make(map[string]string),
		EDMX:    make(map[string]string),
	}

	for _, comp := range ep.Components {
		t, known := api.ParseComponentType(comp.Type)
		if !known {
			c.Report(api.Diagnostic{
				Stage:    "compile",
				Endpoint: ep.ID,
				Subject:  comp.ID,
				Kind:     api.SkippedUnknownType,
				Message:  "unknown component type " + strconv.Quote(comp.Type),
			})
			continue
		}
		handlers[t](c, ep, comp, res)
	}

	threadFlows(c, ep, res)
	return res
}

func compileContentModifier(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	var cfg contentModifierConfig
	if err := decodeConfig(comp.Config, &cfg); err != nil {
		cfg = contentModifierConfig{}
	}
	tcfg := bpmn.ContentModifierConfig{
		BodyType:    cfg.BodyType,
		Body:        firstNonEmpty(cfg.Body, cfg.Content),
		WrapContent: cfg.WrapContent,
		Headers:     modifierRows(cfg.Headers),
		Properties:  modifierRows(cfg.Properties),
	}
	res.Elements = append(res.Elements, bpmn.NewContentModifier(comp.ID, comp.Name, tcfg))
}

func modifierRows(raw []modifierRowRaw) []bpmn.TableRow {
	rows := make([]bpmn.TableRow, len(raw))
	for i, r := range raw {
		rows[i] = bpmn.TableRow{Action: r.Action, Name: r.Name, Type: r.Type, Value: r.Value}
	}
	return rows
}

func compileScript(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	file := api.ResolveScriptName(comp)
	res.Elements = append(res.Elements, bpmn.NewScript(comp.ID, comp.Name, file))

	var cfg scriptConfig
	_ = decodeConfig(comp.Config, &cfg)
	content := cfg.body()
	if content == "" {
		content = DefaultScriptBody
	}
	res.Scripts[file] = content
}

func compileWriteToLog(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	file := api.ResolveScriptName(comp)
	res.Elements = append(res.Elements, bpmn.NewWriteToLog(comp.ID, comp.Name, file))

	var cfg scriptConfig
	_ = decodeConfig(comp.Config, &cfg)
	content := cfg.body()
	if content == "" {
		content = LogScriptBody
	}
	res.Scripts[file] = content
}

func compileRequestReply(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	res.Elements = append(res.Elements, bpmn.NewServiceTask(comp.ID, comp.Name))

	var cfg requestReplyConfig
	_ = decodeConfig(comp.Config, &cfg)

	participantID, flowID := externalPairIDs(c, comp.ID)
	receiverName := comp.Name

	switch classifyTarget(comp, cfg) {
	case targetSFTP:
		var sc sftpConfig
		_ = decodeConfig(comp.Config, &sc)
		res.Participants = append(res.Participants,
			bpmn.NewReceiverParticipant(participantID, receiverName))
		res.MessageFlows = append(res.MessageFlows,
			bpmn.NewSFTPMessageFlow(flowID, comp.ID, participantID, bpmn.SFTPConfig{
				Host:     firstNonEmpty(sc.Host, sc.Address, cfg.Address),
				Path:     firstNonEmpty(sc.Path, sc.Directory, cfg.EndpointPath),
				FileName: sc.FileName,
				Auth:     firstNonEmpty(sc.Auth, cfg.Auth),
			}))
	case targetSuccessFactors:
		var oc odataConfig
		_ = decodeConfig(comp.Config, &oc)
		res.Participants = append(res.Participants,
			bpmn.NewReceiverParticipant(participantID, receiverName))
		res.MessageFlows = append(res.MessageFlows,
			bpmn.NewSuccessFactorsMessageFlow(flowID, comp.ID, participantID, bpmn.ODataConfig{
				Address:      firstNonEmpty(oc.Address, oc.URL, cfg.Address, cfg.EndpointPath),
				ResourcePath: firstNonEmpty(oc.ResourcePath, oc.Resource, oc.EntitySet),
				Operation:    api.NormalizeOperation(firstNonEmpty(oc.Operation, oc.Method, cfg.Method)),
				Auth:         firstNonEmpty(oc.Auth, cfg.Auth),
			}))
	default:
		res.Participants = append(res.Participants,
			bpmn.NewReceiverParticipant(participantID, receiverName))
		res.MessageFlows = append(res.MessageFlows,
			bpmn.NewHTTPMessageFlow(flowID, comp.ID, participantID, bpmn.HTTPConfig{
				Address: firstNonEmpty(cfg.Address, cfg.URL, cfg.EndpointPath),
				Method:  strings.ToUpper(cfg.Method),
				Auth:    cfg.Auth,
			}))
	}
}

func compileOData(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	res.Elements = append(res.Elements, bpmn.NewServiceTask(comp.ID, comp.Name))

	var cfg odataConfig
	_ = decodeConfig(comp.Config, &cfg)

	participantID, flowID := externalPairIDs(c, comp.ID)
	edmxPath := ""
	if cfg.EDMX != "" {
		name := comp.ID + ".edmx"
		res.EDMX[name] = cfg.EDMX
		edmxPath = "edmx/" + name
	}

	res.Participants = append(res.Participants,
		bpmn.NewReceiverParticipant(participantID, comp.Name))
	res.MessageFlows = append(res.MessageFlows,
		bpmn.NewODataMessageFlow(flowID, comp.ID, participantID, bpmn.ODataConfig{
			Address:      firstNonEmpty(cfg.Address, cfg.URL),
			ResourcePath: firstNonEmpty(cfg.ResourcePath, cfg.Resource, cfg.EntitySet),
			Operation:    api.NormalizeOperation(firstNonEmpty(cfg.Operation, cfg.Method)),
			Auth:         cfg.Auth,
			EDMXPath:     edmxPath,
		}))
}

func compileSFTP(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	res.Elements = append(res.Elements, bpmn.NewServiceTask(comp.ID, comp.Name))

	var cfg sftpConfig
	_ = decodeConfig(comp.Config, &cfg)

	participantID, flowID := externalPairIDs(c, comp.ID)
	res.Participants = append(res.Participants,
		bpmn.NewReceiverParticipant(participantID, comp.Name))
	res.MessageFlows = append(res.MessageFlows,
		bpmn.NewSFTPMessageFlow(flowID, comp.ID, participantID, bpmn.SFTPConfig{
			Host:     firstNonEmpty(cfg.Host, cfg.Address),
			Path:     firstNonEmpty(cfg.Path, cfg.Directory),
			FileName: cfg.FileName,
			Auth:     cfg.Auth,
		}))
}

func compileRouter(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	res.Elements = append(res.Elements, bpmn.NewRouter(comp.ID, comp.Name))

	var cfg routerConfig
	_ = decodeConfig(comp.Config, &cfg)

	for _, cond := range cfg.Conditions {
		if cond.Target == "" {
			c.Report(api.Diagnostic{
				Stage:    "compile",
				Endpoint: ep.ID,
				Subject:  comp.ID,
				Kind:     api.SkippedRouterCondition,
				Message:  "router condition without target skipped",
			})
			continue
		}
		id := c.NextID("SequenceFlow")
		res.conditionFlows = append(res.conditionFlows,
			bpmn.NewConditionalSequenceFlow(id, comp.ID, cond.Target, cond.expr()))
	}
}

func compileJSONToXML(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	res.Elements = append(res.Elements, bpmn.NewJSONToXMLConverter(comp.ID, comp.Name))
}

func compileXMLToJSON(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	res.Elements = append(res.Elements, bpmn.NewXMLToJSONConverter(comp.ID, comp.Name))
}

func compileMessageMapping(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	var cfg mappingConfig
	_ = decodeConfig(comp.Config, &cfg)
	name := firstNonEmpty(cfg.MappingName, comp.Name)
	uri := cfg.MappingURI
	if uri == "" {
		uri = "dir://mmap/src/main/resources/mapping/" + name + ".mmap"
	}
	res.Elements = append(res.Elements, bpmn.NewMessageMapping(comp.ID, name, uri))
}

func compileExceptionSubprocess(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	sp := bpmn.NewExceptionSubprocess(comp.ID, comp.Name)
	// The subprocess owns its internal IDs; claim them so later minting
	// cannot collide.
	for _, el := range sp.Elements {
		c.ClaimID(bpmn.ElementID(el))
	}
	for _, f := range sp.SequenceFlows {
		c.ClaimID(f.ID)
	}
	res.Elements = append(res.Elements, sp)
}

func compileSubprocess(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	res.Elements = append(res.Elements, bpmn.NewSubprocess(comp.ID, comp.Name))
}

// compileLocalProcess spawns a nested Local Integration Process with its
// own start/end/script triad, wired to a process-call activity in the
// parent process.
func compileLocalProcess(c *Context, ep api.Endpoint, comp api.Component, res *Result) {
	procID := "Process_" + comp.ID
	if !c.ClaimID(procID) {
		procID = c.MintID(procID)
	}

	lp := bpmn.NewLocalProcess(procID, comp.Name)

	startID := claimed(c, comp.ID+"_lip_start")
	scriptID := claimed(c, comp.ID+"_lip_script")
	endID := claimed(c, comp.ID+"_lip_end")

	file := api.ResolveScriptName(comp)
	start := bpmn.NewStartEvent(startID, "Start "+comp.Name)
	script := bpmn.NewScript(scriptID, comp.Name, file)
	end := bpmn.NewEndEvent(endID, "End "+comp.Name)
	lp.Elements = append(lp.Elements, start, script, end)
	lp.SequenceFlows = append(lp.SequenceFlows,
		bpmn.NewSequenceFlow(claimed(c, comp.ID+"_lip_flow_1"), startID, scriptID),
		bpmn.NewSequenceFlow(claimed(c, comp.ID+"_lip_flow_2"), scriptID, endID),
	)

	var cfg scriptConfig
	_ = decodeConfig(comp.Config, &cfg)
	content := cfg.body()
	if content == "" {
		content = DefaultScriptBody
	}
	res.Scripts[file] = content

	res.LocalProcesses = append(res.LocalProcesses, lp)
	res.Elements = append(res.Elements, bpmn.NewProcessCall(comp.ID, comp.Name, procID))
}

func claimed(c *Context, id string) string {
	if c.ClaimID(id) {
		return id
	}
	return c.MintID(id)
}

// externalPairIDs allocates the participant and message-flow IDs for an
// external-call component.
func externalPairIDs(c *Context, componentID string) (participantID, flowID string) {
	participantID = claimed(c, "Participant_"+componentID)
	flowID = claimed(c, "MessageFlow_"+componentID)
	return participantID, flowID
}
