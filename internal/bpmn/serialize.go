package bpmn

import (
	"encoding/xml"
)

// Marshal serializes the document tree to a complete iFlow XML document.
// It is the single serialization point: no stage of the pipeline builds
// XML by string concatenation.
func Marshal(d *Definitions) ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "    ")
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}
