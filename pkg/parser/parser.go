// Package parser extracts structured content from PDF files.
//
// Extraction combines three backends:
//   - the embedded text layer, read with glyph coordinates (ledongthuc/pdf)
//   - document validation and page counting (pdfcpu)
//   - an optional OCR engine for pages without a text layer
//
// Layout segmentation groups glyphs into lines and lines into paragraph and
// heading blocks using vertical-gap and font-size heuristics. The package
// does not attempt table or entity recognition.
package parser

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdfstruct/pdfstruct/pkg/buildinfo"
	"github.com/pdfstruct/pdfstruct/pkg/document"
	"github.com/pdfstruct/pdfstruct/pkg/errors"
)

// Options configures a Parser.
type Options struct {
	// MaxPages limits how many pages are extracted. Zero means all pages.
	MaxPages int

	// OCR enables the OCR fallback for pages without a text layer.
	// It requires an engine to be registered (see [SetDefaultEngine]).
	OCR bool

	// OCRLanguages are the language hints passed to the OCR engine.
	OCRLanguages []string

	// Segmentation tunes layout block detection.
	Segmentation SegmentOptions

	// SkipValidation disables the pdfcpu structural validation pass.
	SkipValidation bool
}

// Parser converts PDF files into [document.Document] values.
// A Parser is safe for concurrent use; it holds no per-document state.
type Parser struct {
	opts   Options
	engine Engine
	logger *log.Logger
}

// New creates a Parser. A nil logger discards output; a nil engine falls
// back to the registered default (no-op unless the tesseract subpackage or
// another engine is linked in).
func New(opts Options, engine Engine, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if engine == nil {
		engine = DefaultEngine()
	}
	if opts.Segmentation == (SegmentOptions{}) {
		opts.Segmentation = DefaultSegmentOptions()
	}
	return &Parser{opts: opts, engine: engine, logger: logger}
}

// Parse extracts the document at path.
//
// The input is validated first; structural corruption, encryption, and
// unreadable pages all surface as PARSE_FAILURE. A missing input file is
// INPUT_NOT_FOUND so callers can distinguish the two without string matching.
func (p *Parser) Parse(ctx context.Context, path string) (*document.Document, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeInputNotFound, err, "input file not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stat %s", path)
	}

	inputHash, err := hashFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "hash %s", path)
	}

	if !p.opts.SkipValidation {
		conf := pdfcpumodel.NewDefaultConfiguration()
		if err := api.ValidateFile(path, conf); err != nil {
			return nil, errors.Wrap(errors.ErrCodeParseFailure, err, "validate %s", path)
		}
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParseFailure, err, "open %s", path)
	}
	defer f.Close()

	pageCount := reader.NumPage()
	limit := pageCount
	if p.opts.MaxPages > 0 && p.opts.MaxPages < limit {
		limit = p.opts.MaxPages
	}

	doc := &document.Document{
		Metainfo: document.Metainfo{
			Filename:   filepath.Base(path),
			SHA256:     inputHash,
			FileSize:   info.Size(),
			ParsedAt:   time.Now().UTC(),
			ParserName: "pdfstruct",
			ParserVer:  buildinfo.Version,
		},
	}
	fillInfoDict(reader, &doc.Metainfo)

	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= limit; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		page, err := p.extractPage(ctx, reader, path, i, fonts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParseFailure, err, "page %d of %s", i, path)
		}
		doc.Pages = append(doc.Pages, page)
	}

	doc.Metainfo.PageCount = len(doc.Pages)
	doc.Metainfo.BlockCount = doc.BlockCount()
	if ocrUsed(doc.Pages) {
		doc.Metainfo.OCREngine = p.engine.Name()
	}

	p.logger.Debug("parsed document",
		"file", doc.Metainfo.Filename,
		"pages", doc.Metainfo.PageCount,
		"blocks", doc.Metainfo.BlockCount)

	return doc, nil
}

// extractPage pulls text and blocks from a single page, falling back to OCR
// when the text layer is empty and OCR is enabled.
func (p *Parser) extractPage(ctx context.Context, reader *pdf.Reader, path string, number int, fonts map[string]*pdf.Font) (document.Page, error) {
	pg := reader.Page(number)
	page := document.Page{Number: number}
	if pg.V.IsNull() {
		return page, nil
	}

	page.Width, page.Height = pageSize(pg)

	for _, name := range pg.Fonts() {
		if _, ok := fonts[name]; !ok {
			font := pg.Font(name)
			fonts[name] = &font
		}
	}

	text, err := pg.GetPlainText(fonts)
	if err != nil {
		return page, err
	}
	page.Text = strings.TrimSpace(text)

	if page.Text != "" {
		page.Blocks = Segment(linesFromContent(pg.Content()), p.opts.Segmentation)
		return page, nil
	}

	if !p.opts.OCR {
		return page, nil
	}

	ocrText, err := p.recognizePage(ctx, path, number)
	if err != nil {
		return page, err
	}
	if ocrText != "" {
		page.Text = ocrText
		page.OCR = true
		page.Blocks = []document.Block{{
			Kind:  document.BlockParagraph,
			Text:  ocrText,
			Lines: strings.Count(ocrText, "\n") + 1,
		}}
	}
	return page, nil
}

// pageSize reads the page MediaBox, returning zeros when it is absent or
// inherited in a way the reader does not resolve.
func pageSize(pg pdf.Page) (w, h float64) {
	box := pg.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return 0, 0
	}
	x0 := box.Index(0).Float64()
	y0 := box.Index(1).Float64()
	x1 := box.Index(2).Float64()
	y1 := box.Index(3).Float64()
	return x1 - x0, y1 - y0
}

// fillInfoDict copies the trailer Info dictionary fields into the metainfo.
func fillInfoDict(reader *pdf.Reader, meta *document.Metainfo) {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return
	}
	meta.Title = info.Key("Title").Text()
	meta.Author = info.Key("Author").Text()
	meta.Subject = info.Key("Subject").Text()
	meta.Creator = info.Key("Creator").Text()
	meta.Producer = info.Key("Producer").Text()
}

func ocrUsed(pages []document.Page) bool {
	for _, p := range pages {
		if p.OCR {
			return true
		}
	}
	return false
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
