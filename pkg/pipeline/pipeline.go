// Package pipeline provides the core parsing pipeline for pdfstruct.
//
// This package implements the complete extract → analyze → export pipeline
// that can be used by CLI, API, and worker components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Extract: Pull text, layout blocks, and metadata out of the PDF
//  2. Analyze: Build the heading outline from the extracted blocks
//  3. Export: Serialize results in various formats (JSON, DOT, SVG, PNG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Formats: []string{"json"},
//	}
//	result, err := runner.Execute(ctx, "report.pdf", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data := result.Artifacts["json"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdfstruct/pdfstruct/pkg/cache"
	"github.com/pdfstruct/pdfstruct/pkg/document"
	"github.com/pdfstruct/pdfstruct/pkg/parser"
)

const (
	// DefaultMinGap is the default vertical-gap multiple for block splits.
	DefaultMinGap = 1.6

	// DefaultHeadingScale is the default font-size factor for heading
	// detection, relative to the document median.
	DefaultHeadingScale = 1.18
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// Options contains all configuration for the parsing pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Extract options
	MaxPages     int      `json:"max_pages,omitempty"`
	OCR          bool     `json:"ocr,omitempty"`
	OCRLanguages []string `json:"ocr_languages,omitempty"`
	Refresh      bool     `json:"refresh,omitempty"`

	// Analyze options
	MinGap       float64 `json:"min_gap,omitempty"`
	HeadingScale float64 `json:"heading_scale,omitempty"`

	// Export options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Include per-block detail in structure renders

	// Runtime options (not serialized)
	Logger *log.Logger   `json:"-"`
	Engine parser.Engine `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the extracted document.
	Document *document.Document

	// DocumentHash is the content hash of the serialized document.
	DocumentHash string

	// Outline is the heading hierarchy built during analysis.
	Outline document.Outline

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PageCount   int
	BlockCount  int
	ExtractTime time.Duration
	AnalyzeTime time.Duration
	ExportTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ExtractHit bool // Whether the document came from cache
	AnalyzeHit bool // Whether the outline came from cache
	ExportHit  bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetExtractDefaults()
	o.SetAnalyzeDefaults()
	o.SetExportDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetExtractDefaults sets default values for extraction.
func (o *Options) SetExtractDefaults() {
	if o.MaxPages < 0 {
		o.MaxPages = 0
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetAnalyzeDefaults sets default values for analysis.
func (o *Options) SetAnalyzeDefaults() {
	if o.MinGap <= 0 {
		o.MinGap = DefaultMinGap
	}
	if o.HeadingScale <= 0 {
		o.HeadingScale = DefaultHeadingScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetExportDefaults sets default values for export.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForExport validates and sets defaults for the export stage.
func (o *Options) ValidateForExport() error {
	o.SetExportDefaults()
	return ValidateFormats(o.Formats)
}

// ParserOptions maps pipeline options onto the parser configuration.
func (o *Options) ParserOptions() parser.Options {
	return parser.Options{
		MaxPages:     o.MaxPages,
		OCR:          o.OCR,
		OCRLanguages: o.OCRLanguages,
		Segmentation: parser.SegmentOptions{
			MinGap:       o.MinGap,
			HeadingScale: o.HeadingScale,
		},
	}
}

// DocumentKeyOpts returns cache key options for extraction.
func (o *Options) DocumentKeyOpts() cache.DocumentKeyOpts {
	return cache.DocumentKeyOpts{
		MaxPages: o.MaxPages,
		OCR:      o.OCR,
		OCRLangs: o.OCRLanguages,
	}
}

// AnalysisKeyOpts returns cache key options for analysis.
func (o *Options) AnalysisKeyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{
		MinGap:       o.MinGap,
		HeadingScale: o.HeadingScale,
	}
}

// ArtifactKeyOpts returns cache key options for artifact export.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}
