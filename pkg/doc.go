// Package pkg provides the core libraries for pdfstruct PDF parsing.
//
// # Overview
//
// pdfstruct converts PDF documents into structured JSON: text blocks with
// positions, a heading outline, and document metainfo. The pkg directory is
// organized into the following areas:
//
//  1. [parser] - PDF text extraction, layout segmentation, OCR
//  2. [pipeline] - Orchestration (extract → analyze → export)
//  3. [document] - The structured document model and its JSON form
//  4. [render] - Graphviz rendering of the section structure
//  5. [assets] - OCR model provisioning
//  6. [cache], [store] - Stage caching and parse records
//
// # Architecture
//
// The typical data flow through pdfstruct:
//
//	PDF file
//	     ↓
//	[parser] package (extract text, segment blocks, OCR scanned pages)
//	     ↓
//	[pipeline] package (build outline, cache stages)
//	     ↓
//	[document] / [render] packages (JSON, DOT, SVG, PNG output)
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	outputs, err := runner.ParseAndExport(ctx, "report.pdf", "out", pipeline.Options{})
//
// Each input produces a <name>.pdf.json file in the output directory plus
// any additional requested formats.
package pkg
