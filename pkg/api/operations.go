package api

import "strings"

// odataOperations maps raw HTTP verbs onto SAP's OData operation
// vocabulary.
var odataOperations = map[string]string{
	"GET":    "Query(GET)",
	"POST":   "Create(POST)",
	"PUT":    "Update(PUT)",
	"PATCH":  "Patch(PATCH)",
	"DELETE": "Delete(DELETE)",
	"MERGE":  "Merge(MERGE)",
}

// NormalizeOperation maps a raw HTTP verb to the SAP OData operation
// vocabulary. Values already in Name(VERB) form pass through unchanged;
// unrecognized verbs fall back to Query(<verb>).
//
//	NormalizeOperation("GET")        == "Query(GET)"
//	NormalizeOperation("Query(GET)") == "Query(GET)"
//	NormalizeOperation("HEAD")       == "Query(HEAD)"
func NormalizeOperation(raw string) string {
	op := strings.TrimSpace(raw)
	if op == "" {
		return "Query(GET)"
	}
	// Already in Name(VERB) form.
	if strings.Contains(op, "(") && strings.HasSuffix(op, ")") {
		return op
	}
	verb := strings.ToUpper(op)
	if mapped, ok := odataOperations[verb]; ok {
		return mapped
	}
	return "Query(" + verb + ")"
}

// DefaultScriptName is the last-resort script file name used when a script
// component carries neither a file name nor a usable ID.
const DefaultScriptName = "script.groovy"

// ResolveScriptName resolves the groovy file name for a script component.
// The precedence order is fixed so that every stage that needs the name
// (XML reference, extracted file, re-validation) resolves to the same file:
//
//  1. config.script_file
//  2. config.script_name
//  3. "<component id>.groovy"
//  4. DefaultScriptName
func ResolveScriptName(c Component) string {
	if name := configString(c.Config, "script_file"); name != "" {
		return ensureGroovy(name)
	}
	if name := configString(c.Config, "script_name"); name != "" {
		return ensureGroovy(name)
	}
	if c.ID != "" {
		return c.ID + ".groovy"
	}
	return DefaultScriptName
}

func ensureGroovy(name string) string {
	if strings.HasSuffix(name, ".groovy") {
		return name
	}
	return name + ".groovy"
}

func configString(cfg map[string]any, key string) string {
	if cfg == nil {
		return ""
	}
	if v, ok := cfg[key]; ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
