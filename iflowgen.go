package iflowgen

import (
	"context"
	"database/sql"

	"github.com/skarpdev/iflowgen/internal/artifact"
	"github.com/skarpdev/iflowgen/internal/converter"
	"github.com/skarpdev/iflowgen/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Converter            = api.Converter
	ComponentGraph       = api.ComponentGraph
	Endpoint             = api.Endpoint
	Component            = api.Component
	SequenceFlow         = api.SequenceFlow
	ComponentType        = api.ComponentType
	PackageMeta          = api.PackageMeta
	IFlowPackage         = api.IFlowPackage
	ConversionResult     = api.ConversionResult
	Diagnostic           = api.Diagnostic
	DiagnosticKind       = api.DiagnosticKind
	Extractor            = api.Extractor
	ExtractorFunc        = api.ExtractorFunc
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	CompositeObserver    = api.CompositeObserver
	NoopObserver         = api.NoopObserver
)

// Re-export common observer helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
)

// Re-export the reserved event IDs for convenience.

const (
	StartEventID = api.StartEventID
	EndEventID   = api.EndEventID
)

// Artifact store types, for callers that keep an audit trail of generated
// packages.

type (
	Artifact       = artifact.Artifact
	ArtifactStore  = artifact.Store
	ArtifactFilter = artifact.Filter
)

// ErrArtifactNotFound is returned by artifact stores for unknown IDs.
var ErrArtifactNotFound = artifact.ErrArtifactNotFound

// NewMemoryArtifactStore returns an in-process artifact store.
func NewMemoryArtifactStore() ArtifactStore {
	return artifact.NewMemoryStore()
}

// NewSQLiteArtifactStore returns an artifact store that persists packages
// in a SQLite database. The caller is responsible for importing a driver,
// e.g. "modernc.org/sqlite".
func NewSQLiteArtifactStore(db *sql.DB) (ArtifactStore, error) {
	return artifact.NewSQLiteStore(db)
}

// Converter construction
// These wrap the internal/converter package so external callers never need
// to import internal packages.

// Option configures a Converter built by NewConverter.
type Option = converter.Option

var (
	// WithObserver sets the observer notified of lifecycle events and every
	// structural repair.
	WithObserver = converter.WithObserver

	// WithExtractor sets the extraction oracle used by ConvertDocument.
	WithExtractor = converter.WithExtractor

	// WithArtifactStore persists every assembled package.
	WithArtifactStore = converter.WithArtifactStore
)

// NewConverter returns a Converter with no persistence.
func NewConverter(opts ...Option) Converter {
	return converter.New(opts...)
}

// NewSQLiteConverter returns a Converter that records every assembled
// package in a SQLite-backed artifact store on the given database.
func NewSQLiteConverter(db *sql.DB, opts ...Option) (Converter, error) {
	store, err := artifact.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	opts = append(opts, converter.WithArtifactStore(store))
	return converter.New(opts...), nil
}

// Convenience helpers that just forward to the underlying Converter.

// Convert compiles a component graph into a deployable package.
func Convert(ctx context.Context, conv Converter, graph *ComponentGraph, meta PackageMeta) (*ConversionResult, error) {
	return conv.Convert(ctx, graph, meta)
}

// ConvertJSON normalizes a loose JSON document and compiles it.
func ConvertJSON(ctx context.Context, conv Converter, raw []byte, meta PackageMeta) (*ConversionResult, error) {
	return conv.ConvertJSON(ctx, raw, meta)
}

// ConvertDocument runs the configured extractor against source
// documentation and compiles the result.
func ConvertDocument(ctx context.Context, conv Converter, sourceDoc string, meta PackageMeta) (*ConversionResult, error) {
	return conv.ConvertDocument(ctx, sourceDoc, meta)
}
