package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfstruct/pdfstruct/pkg/cache"
	"github.com/pdfstruct/pdfstruct/pkg/document"
)

func sampleDoc() *document.Document {
	return &document.Document{
		Metainfo: document.Metainfo{
			Filename:   "sample.pdf",
			PageCount:  2,
			BlockCount: 6,
		},
		Pages: []document.Page{
			{
				Number: 1,
				Blocks: []document.Block{
					{Kind: document.BlockHeading, Text: "Introduction", FontSize: 18},
					{Kind: document.BlockParagraph, Text: "Opening words.", FontSize: 10},
					{Kind: document.BlockHeading, Text: "Background", FontSize: 14},
					{Kind: document.BlockParagraph, Text: "Prior art.", FontSize: 10},
				},
			},
			{
				Number: 2,
				Blocks: []document.Block{
					{Kind: document.BlockHeading, Text: "Results", FontSize: 18},
					{Kind: document.BlockParagraph, Text: "Findings.", FontSize: 10},
				},
			},
		},
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("expected default format json, got %v", opts.Formats)
	}
	if opts.MinGap != DefaultMinGap {
		t.Errorf("expected default min gap, got %v", opts.MinGap)
	}
	if opts.HeadingScale != DefaultHeadingScale {
		t.Errorf("expected default heading scale, got %v", opts.HeadingScale)
	}
	if opts.Logger == nil {
		t.Error("expected default logger")
	}
}

func TestOptionsRejectInvalidFormat(t *testing.T) {
	opts := Options{Formats: []string{"docx"}}
	if err := opts.ValidateAndSetDefaults(); err == nil {
		t.Fatal("expected error for invalid format")
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{FormatJSON, FormatDOT, FormatSVG, FormatPNG} {
		if err := ValidateFormat(f); err != nil {
			t.Errorf("%s should be valid: %v", f, err)
		}
	}
	if err := ValidateFormat("html"); err == nil {
		t.Error("html should be invalid")
	}
}

func TestBuildOutlineNesting(t *testing.T) {
	outline := BuildOutline(sampleDoc())

	if len(outline.Sections) != 2 {
		t.Fatalf("expected 2 top-level sections, got %d", len(outline.Sections))
	}
	intro := outline.Sections[0]
	if intro.Title != "Introduction" || intro.Level != 1 {
		t.Errorf("unexpected first section: %+v", intro)
	}
	if len(intro.Children) != 1 || intro.Children[0].Title != "Background" {
		t.Fatalf("expected Background nested under Introduction, got %+v", intro.Children)
	}
	if intro.Children[0].Level != 2 {
		t.Errorf("expected nested level 2, got %d", intro.Children[0].Level)
	}
	if outline.Sections[1].Title != "Results" {
		t.Errorf("unexpected second section: %+v", outline.Sections[1])
	}
	if outline.SectionCount() != 3 {
		t.Errorf("expected 3 total sections, got %d", outline.SectionCount())
	}
}

func TestBuildOutlineBlockAttribution(t *testing.T) {
	outline := BuildOutline(sampleDoc())

	if got := outline.Sections[0].Blocks; got != 1 {
		t.Errorf("Introduction should own 1 paragraph, got %d", got)
	}
	if got := outline.Sections[0].Children[0].Blocks; got != 1 {
		t.Errorf("Background should own 1 paragraph, got %d", got)
	}
}

func TestBuildOutlineNoHeadings(t *testing.T) {
	doc := &document.Document{
		Pages: []document.Page{{
			Number: 1,
			Blocks: []document.Block{{Kind: document.BlockParagraph, Text: "just text"}},
		}},
	}
	if outline := BuildOutline(doc); !outline.Empty() {
		t.Errorf("expected empty outline, got %+v", outline)
	}
}

func TestAnalyzeCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	doc := sampleDoc()
	ctx := context.Background()

	_, hit, err := r.AnalyzeWithCacheInfo(ctx, doc, "hash123", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first analysis should miss the cache")
	}

	outline, hit, err := r.AnalyzeWithCacheInfo(ctx, doc, "hash123", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second analysis should hit the cache")
	}
	if outline.SectionCount() != 3 {
		t.Errorf("cached outline should round-trip, got %d sections", outline.SectionCount())
	}
}

func TestExportJSONArtifact(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	doc := sampleDoc()
	outline := BuildOutline(doc)

	artifacts, err := r.Export(context.Background(), doc, outline, "", Options{Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}

	got, err := document.ReadJSON(bytes.NewReader(artifacts[FormatJSON]))
	if err != nil {
		t.Fatalf("json artifact should parse: %v", err)
	}
	if got.Metainfo.Filename != "sample.pdf" {
		t.Errorf("unexpected filename: %s", got.Metainfo.Filename)
	}
}

func TestExportDOTArtifact(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	doc := sampleDoc()
	outline := BuildOutline(doc)

	artifacts, err := r.Export(context.Background(), doc, outline, "", Options{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(artifacts[FormatDOT]), "Introduction") {
		t.Errorf("dot artifact should mention sections:\n%s", artifacts[FormatDOT])
	}
}

func TestExportCaching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	doc := sampleDoc()
	outline := BuildOutline(doc)
	ctx := context.Background()
	opts := Options{Formats: []string{FormatJSON, FormatDOT}}

	_, hit, err := r.ExportWithCacheInfo(ctx, doc, outline, "hashabc", opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first export should miss the cache")
	}

	artifacts, hit, err := r.ExportWithCacheInfo(ctx, doc, outline, "hashabc", opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second export should hit the cache")
	}
	if len(artifacts) != 2 {
		t.Errorf("expected both cached artifacts, got %d", len(artifacts))
	}
}

func TestOutputPathKeepsInputExtension(t *testing.T) {
	got := OutputPath("/data/in/report.pdf", "/data/out", "json")
	want := filepath.Join("/data/out", "report.pdf.json")
	if got != want {
		t.Errorf("OutputPath = %q, want %q", got, want)
	}
}

func TestKeyOptsMapping(t *testing.T) {
	opts := Options{
		MaxPages:     5,
		OCR:          true,
		OCRLanguages: []string{"eng"},
		MinGap:       2.0,
		HeadingScale: 1.5,
		Detailed:     true,
	}

	dk := opts.DocumentKeyOpts()
	if dk.MaxPages != 5 || !dk.OCR || len(dk.OCRLangs) != 1 {
		t.Errorf("unexpected document key opts: %+v", dk)
	}
	ak := opts.AnalysisKeyOpts()
	if ak.MinGap != 2.0 || ak.HeadingScale != 1.5 {
		t.Errorf("unexpected analysis key opts: %+v", ak)
	}
	rk := opts.ArtifactKeyOpts("svg")
	if rk.Format != "svg" || !rk.Detailed {
		t.Errorf("unexpected artifact key opts: %+v", rk)
	}
}
