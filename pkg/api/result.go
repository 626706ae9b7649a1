package api

import (
	"context"
	"strings"
)

// PackageMeta carries the metadata the assembler needs to lay out a
// deployable package.
type PackageMeta struct {
	// Name is the iFlow name, used for the .iflw file and the bundle
	// symbolic name. Required.
	Name string

	// Version is the bundle version. Defaults to "1.0.0" when empty.
	Version string

	// SourceDoc is the source documentation (markdown). The package
	// description is derived from its first heading, truncated to ten
	// words.
	SourceDoc string
}

// DeriveDescription extracts the package description from the first
// markdown heading of doc, truncated to maxWords words. It returns
// fallback when the document has no heading.
func DeriveDescription(doc, fallback string, maxWords int) string {
	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") {
			continue
		}
		heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		if heading == "" {
			continue
		}
		words := strings.Fields(heading)
		if len(words) > maxWords {
			words = words[:maxWords]
		}
		return strings.Join(words, " ")
	}
	return fallback
}

// IFlowPackage is the assembled deployable package: a map of relative file
// path to file content, plus the same content archived as a ZIP ready for
// SAP Integration Suite import.
type IFlowPackage struct {
	Name    string
	Files   map[string][]byte
	Archive []byte
}

// ConversionResult is the outcome of a successful conversion. Diagnostics
// lists every structural repair that was applied; an empty list means the
// input compiled without intervention.
type ConversionResult struct {
	Package     IFlowPackage
	XML         []byte
	Diagnostics []Diagnostic

	// ArtifactID is set when the converter was configured with an artifact
	// store and the package was persisted.
	ArtifactID string
}

// Extractor is the component-extraction oracle: it turns source
// documentation into a component graph, or fails. It is an opaque
// collaborator; the converter only ever sees its final validated output.
type Extractor interface {
	Extract(ctx context.Context, sourceDoc string) (*ComponentGraph, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, sourceDoc string) (*ComponentGraph, error)

func (f ExtractorFunc) Extract(ctx context.Context, sourceDoc string) (*ComponentGraph, error) {
	return f(ctx, sourceDoc)
}

// Converter is the high-level conversion API.
type Converter interface {
	// Convert compiles an already-validated component graph into a
	// deployable iFlow package.
	Convert(ctx context.Context, graph *ComponentGraph, meta PackageMeta) (*ConversionResult, error)

	// ConvertJSON normalizes a loose JSON document (the raw shape produced
	// by extraction) and compiles it.
	ConvertJSON(ctx context.Context, raw []byte, meta PackageMeta) (*ConversionResult, error)

	// ConvertDocument runs the configured extractor against source
	// documentation and compiles the resulting graph. Returns
	// ErrNoExtractor when the converter has no extractor.
	ConvertDocument(ctx context.Context, sourceDoc string, meta PackageMeta) (*ConversionResult, error)
}
