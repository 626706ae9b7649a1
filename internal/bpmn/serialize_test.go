package bpmn

import (
	"strings"
	"testing"
)

func TestMarshal_Skeleton(t *testing.T) {
	defs := NewDefinitions("Sample", "StartEvent_2", "EndEvent_2")

	out, err := Marshal(defs)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	xml := string(out)

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<bpmn2:definitions`,
		`xmlns:bpmn2="http://www.omg.org/spec/BPMN/20100524/MODEL"`,
		`xmlns:ifl="http:///com.sap.ifl.model/Ifl.xsd"`,
		`<bpmn2:collaboration`,
		`ifl:type="EndpointSender"`,
		`ifl:type="IntegrationProcess"`,
		`<bpmn2:process`,
		`<bpmn2:startEvent id="StartEvent_2"`,
		`<bpmn2:endEvent id="EndEvent_2"`,
		`<bpmn2:messageEventDefinition`,
	} {
		if !strings.Contains(xml, want) {
			t.Fatalf("serialized document missing %q:\n%s", want, xml)
		}
	}
}

func TestMarshal_ElementsKeepConcreteNames(t *testing.T) {
	defs := NewDefinitions("Sample", "StartEvent_2", "EndEvent_2")
	main := defs.MainProcess()
	main.Elements = append(main.Elements,
		NewScript("s1", "Transform", "s1.groovy"),
		NewRouter("r1", "Route"),
		NewServiceTask("t1", "Call"),
	)
	main.SequenceFlows = append(main.SequenceFlows,
		NewConditionalSequenceFlow("f1", "r1", "s1", "${property.kind} = 'a'"))

	out, err := Marshal(defs)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	xml := string(out)

	for _, want := range []string{
		`<bpmn2:callActivity id="s1"`,
		`<bpmn2:exclusiveGateway id="r1"`,
		`<bpmn2:serviceTask id="t1"`,
		`<bpmn2:sequenceFlow id="f1"`,
		`xsi:type="bpmn2:tFormalExpression"`,
		`${property.kind} = &#39;a&#39;`,
	} {
		if !strings.Contains(xml, want) {
			t.Fatalf("serialized document missing %q:\n%s", want, xml)
		}
	}
}

func TestElementID(t *testing.T) {
	cases := []struct {
		el   any
		want string
	}{
		{NewStartEvent("a", ""), "a"},
		{NewEndEvent("b", ""), "b"},
		{NewScript("c", "", "c.groovy"), "c"},
		{NewServiceTask("d", ""), "d"},
		{NewRouter("e", ""), "e"},
		{NewSubprocess("f", ""), "f"},
	}
	for _, c := range cases {
		if got := ElementID(c.el); got != c.want {
			t.Fatalf("ElementID(%T) = %q, want %q", c.el, got, c.want)
		}
	}
}

func TestExceptionSubprocess_InternalWiring(t *testing.T) {
	sp := NewExceptionSubprocess("exc1", "On Error")

	if len(sp.Elements) != 2 || len(sp.SequenceFlows) != 1 {
		t.Fatalf("expected error start + end + one flow, got %d elements, %d flows",
			len(sp.Elements), len(sp.SequenceFlows))
	}
	f := sp.SequenceFlows[0]
	if f.SourceRef != "exc1_error_start" || f.TargetRef != "exc1_end" {
		t.Fatalf("internal flow wired wrong: %s -> %s", f.SourceRef, f.TargetRef)
	}
}
