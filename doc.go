// Package iflowgen converts legacy integration-platform process definitions
// (Dell Boomi, MuleSoft) into deployable SAP Integration Suite iFlow
// packages.
//
// The library takes a component graph, either extracted from source
// documentation by a pluggable oracle or built in code, and compiles it
// into a complete BPMN2 iFlow document plus the auxiliary files SAP
// Integration Suite expects (manifest, parameters, groovy scripts, EDMX),
// zipped and ready for import.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. Converter
//  2. ComponentGraph
//  3. GraphBuilder
//  4. Extractor
//  5. Observer
//
// # Converter
//
// The Converter is the pipeline entry point. It normalizes loose input,
// compiles each logical endpoint into BPMN elements, lays out the diagram,
// serializes the document once, and assembles the package:
//
//	conv := iflowgen.NewConverter()
//	res, err := conv.ConvertJSON(ctx, raw, iflowgen.PackageMeta{Name: "Orders"})
//
// Every structural repair the pipeline applies (synthesized IDs, dropped
// duplicate flows, skipped unknown component types) is recorded in
// res.Diagnostics, so nothing is fixed silently.
//
// # ComponentGraph
//
// A ComponentGraph is the typed input contract: endpoints, each with
// components, and optionally an explicit flow order or explicit sequence
// flows. Explicit flows always take priority over declaration order.
//
// # GraphBuilder
//
// GraphBuilder constructs graphs fluently in code:
//
//	graph := iflowgen.NewGraph().
//	    Endpoint("orders", "Order Intake").
//	    Script("transform", "Transform", "").
//	    RequestReply("post", "Post to ERP", "https://erp.example.com").
//	    Graph()
//
// # Extractor
//
// An Extractor turns source documentation into a ComponentGraph. The
// pkg/extract package wraps any Extractor in a bounded retry loop with
// per-attempt validation; the converter only ever sees validated output.
//
// # Observer
//
// Observers receive conversion lifecycle events and every repair
// diagnostic. LoggingObserver logs them with log/slog; BasicMetrics counts
// them; CompositeObserver fans out to several.
//
// # Persistence
//
// Converters can record every assembled package in an artifact store for
// auditing, either in-memory or SQLite-backed:
//
//	db, _ := sql.Open("sqlite", "file:iflowgen.db")
//	bundle, err := iflowgen.NewSQLiteBundle(db)
package iflowgen
