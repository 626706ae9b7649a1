// Package converter orchestrates the full pipeline: normalize, compile each
// endpoint, merge into one shared document, lay out the diagram, serialize,
// and assemble the deployable package.
package converter

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skarpdev/iflowgen/internal/artifact"
	"github.com/skarpdev/iflowgen/internal/bpmn"
	"github.com/skarpdev/iflowgen/internal/compile"
	"github.com/skarpdev/iflowgen/internal/layout"
	"github.com/skarpdev/iflowgen/internal/normalize"
	"github.com/skarpdev/iflowgen/internal/pack"
	"github.com/skarpdev/iflowgen/pkg/api"
)

// Converter implements api.Converter. One Converter is safe for concurrent
// use; all per-conversion state lives in the compile context.
type Converter struct {
	observer  api.Observer
	extractor api.Extractor
	store     artifact.Store
}

// Ensure Converter implements api.Converter.
var _ api.Converter = (*Converter)(nil)

// Option configures a Converter.
type Option func(*Converter)

// WithObserver sets the observer notified of conversion lifecycle events
// and every structural repair.
func WithObserver(obs api.Observer) Option {
	return func(c *Converter) {
		if obs != nil {
			c.observer = obs
		}
	}
}

// WithExtractor sets the extraction oracle used by ConvertDocument.
func WithExtractor(ex api.Extractor) Option {
	return func(c *Converter) { c.extractor = ex }
}

// WithArtifactStore persists every assembled package in the given store.
func WithArtifactStore(s artifact.Store) Option {
	return func(c *Converter) { c.store = s }
}

// New creates a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{observer: api.NoopObserver{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert compiles an already-typed component graph.
func (c *Converter) Convert(ctx context.Context, graph *api.ComponentGraph, meta api.PackageMeta) (*api.ConversionResult, error) {
	normalized, diags := normalize.Graph(graph)
	return c.convert(ctx, normalized, diags, meta)
}

// ConvertJSON normalizes a loose JSON document and compiles it.
func (c *Converter) ConvertJSON(ctx context.Context, raw []byte, meta api.PackageMeta) (*api.ConversionResult, error) {
	graph, diags, err := normalize.JSON(raw)
	if err != nil {
		c.observer.OnConversionFailed(ctx, "normalize", err)
		return nil, err
	}
	return c.convert(ctx, graph, diags, meta)
}

// ConvertDocument runs the configured extractor and compiles its output.
func (c *Converter) ConvertDocument(ctx context.Context, sourceDoc string, meta api.PackageMeta) (*api.ConversionResult, error) {
	if c.extractor == nil {
		return nil, api.ErrNoExtractor
	}
	graph, err := c.extractor.Extract(ctx, sourceDoc)
	if err != nil {
		c.observer.OnConversionFailed(ctx, "extract", err)
		return nil, err
	}
	if meta.SourceDoc == "" {
		meta.SourceDoc = sourceDoc
	}
	return c.Convert(ctx, graph, meta)
}

func (c *Converter) convert(ctx context.Context, graph *api.ComponentGraph, diags []api.Diagnostic, meta api.PackageMeta) (*api.ConversionResult, error) {
	if graph == nil || len(graph.Endpoints) == 0 {
		c.observer.OnConversionFailed(ctx, "normalize", api.ErrEmptyGraph)
		return nil, api.ErrEmptyGraph
	}
	c.observer.OnConversionStart(ctx, graph)

	name := pack.SanitizeName(meta.Name)
	cctx := compile.NewContext(ctx, c.observer)
	diags = append(diags, ValidateGraph(graph)...)

	defs := bpmn.NewDefinitions(name, api.StartEventID, api.EndEventID)
	main := defs.MainProcess()

	scripts := make(map[string]string)
	edmx := make(map[string]string)
	for _, ep := range graph.Endpoints {
		res := compile.Endpoint(cctx, ep)
		main.Elements = append(main.Elements, res.Elements...)
		main.SequenceFlows = append(main.SequenceFlows, res.SequenceFlows...)
		defs.Collaboration.Participants = append(defs.Collaboration.Participants, res.Participants...)
		defs.Collaboration.MessageFlows = append(defs.Collaboration.MessageFlows, res.MessageFlows...)
		defs.Processes = append(defs.Processes, res.LocalProcesses...)
		for k, v := range res.Scripts {
			scripts[k] = v
		}
		for k, v := range res.EDMX {
			edmx[k] = v
		}
		c.observer.OnEndpointCompiled(ctx, ep.ID, len(ep.Components), len(res.SequenceFlows))
	}
	moveEndEventLast(main)

	layout.Apply(defs, func(d api.Diagnostic) { cctx.Report(d) })

	xml, err := bpmn.Marshal(defs)
	if err != nil {
		err = &api.CompileError{Endpoint: name, Err: err}
		c.observer.OnConversionFailed(ctx, "serialize", err)
		return nil, err
	}

	files, err := pack.Assemble(pack.Input{
		Name:        name,
		Version:     meta.Version,
		Description: api.DeriveDescription(meta.SourceDoc, name, 10),
		XML:         xml,
		Scripts:     scripts,
		EDMX:        edmx,
	})
	if err != nil {
		c.observer.OnConversionFailed(ctx, "package", err)
		return nil, err
	}
	archive, err := pack.Archive(files)
	if err != nil {
		c.observer.OnConversionFailed(ctx, "package", err)
		return nil, err
	}

	res := &api.ConversionResult{
		Package: api.IFlowPackage{
			Name:    name,
			Files:   files,
			Archive: archive,
		},
		XML:         xml,
		Diagnostics: append(diags, cctx.Diagnostics()...),
	}

	if c.store != nil {
		a := &artifact.Artifact{
			ID:        uuid.NewString(),
			Name:      name,
			Version:   meta.Version,
			Archive:   archive,
			CreatedAt: time.Now().UTC(),
		}
		if err := c.store.SaveArtifact(a); err != nil {
			err = fmt.Errorf("save artifact %s: %w", name, err)
			c.observer.OnConversionFailed(ctx, "package", err)
			return nil, err
		}
		res.ArtifactID = a.ID
	}

	c.observer.OnConversionCompleted(ctx, res)
	return res, nil
}

// moveEndEventLast keeps the shared end event as the last flow node of the
// main process after every endpoint's elements have been merged in.
func moveEndEventLast(proc *bpmn.Process) {
	for i, el := range proc.Elements {
		if e, ok := el.(*bpmn.EndEvent); ok && e.ID == api.EndEventID {
			proc.Elements = append(append(proc.Elements[:i:i], proc.Elements[i+1:]...), el)
			return
		}
	}
}

// ValidateGraph runs a pre-compile connectivity analysis over a normalized
// graph: flow references that resolve to no component and components no
// explicit flow ever touches. Findings are advisory diagnostics; the
// compiler repairs or drops them downstream.
func ValidateGraph(g *api.ComponentGraph) []api.Diagnostic {
	var diags []api.Diagnostic
	for _, ep := range g.Endpoints {
		known := make(map[string]struct{}, len(ep.Components)+2)
		known[api.StartEventID] = struct{}{}
		known[api.EndEventID] = struct{}{}
		byName := make(map[string]struct{}, len(ep.Components))
		for _, comp := range ep.Components {
			known[comp.ID] = struct{}{}
			byName[comp.Name] = struct{}{}
		}

		resolves := func(ref string) bool {
			if _, ok := known[ref]; ok {
				return true
			}
			_, ok := byName[ref]
			return ok
		}

		for _, f := range ep.SequenceFlows {
			for _, ref := range []string{f.SourceRef, f.TargetRef} {
				if !resolves(ref) {
					diags = append(diags, api.Diagnostic{
						Stage:    "validate",
						Endpoint: ep.ID,
						Subject:  f.ID,
						Kind:     api.UnresolvedFlowRef,
						Message:  fmt.Sprintf("flow references %q which matches no component", ref),
					})
				}
			}
		}
		for _, ref := range ep.Flow {
			if !resolves(ref) {
				diags = append(diags, api.Diagnostic{
					Stage:    "validate",
					Endpoint: ep.ID,
					Subject:  ref,
					Kind:     api.UnresolvedFlowRef,
					Message:  fmt.Sprintf("flow order references %q which matches no component", ref),
				})
			}
		}
	}
	return diags
}
