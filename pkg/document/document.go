// Package document defines the structured representation of a parsed PDF
// and its JSON serialization.
//
// A [Document] is what the pipeline exports: a `metainfo` mapping with
// document-level metadata plus per-page text and segmented layout blocks.
// Consumers that only care about metadata can read `metainfo` and ignore
// the rest; unknown keys in foreign documents are tolerated on read.
package document

import (
	"fmt"
	"strconv"
	"time"
)

// BlockKind classifies a segmented text region.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockHeading   BlockKind = "heading"
)

// BBox is an axis-aligned bounding box in PDF user-space points,
// origin at the lower-left corner of the page. (X0, Y0) is the lower-left
// corner of the box, (X1, Y1) the upper-right, matching the rectangle
// convention of PDF itself.
type BBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent of the box.
func (b BBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the vertical extent of the box.
func (b BBox) Height() float64 { return b.Y1 - b.Y0 }

// Block is a contiguous text region produced by layout segmentation.
type Block struct {
	Kind     BlockKind `json:"kind"`
	Text     string    `json:"text"`
	BBox     BBox      `json:"bbox"`
	Font     string    `json:"font,omitempty"`
	FontSize float64   `json:"font_size,omitempty"`
	Lines    int       `json:"lines"`
}

// Page holds the extracted content of a single page.
type Page struct {
	Number int     `json:"number"` // 1-based
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks,omitempty"`

	// OCR is true when the page had no text layer and the text was
	// recovered by the OCR engine.
	OCR bool `json:"ocr,omitempty"`
}

// Metainfo summarizes document-level metadata. It is serialized under the
// top-level "metainfo" key of the output JSON.
type Metainfo struct {
	Filename   string    `json:"filename"`
	SHA256     string    `json:"sha256"`
	FileSize   int64     `json:"file_size"`
	PageCount  int       `json:"page_count"`
	BlockCount int       `json:"block_count"`
	Title      string    `json:"title,omitempty"`
	Author     string    `json:"author,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Creator    string    `json:"creator,omitempty"`
	Producer   string    `json:"producer,omitempty"`
	OCREngine  string    `json:"ocr_engine,omitempty"`
	ParsedAt   time.Time `json:"parsed_at"`
	ParserName string    `json:"parser"`
	ParserVer  string    `json:"parser_version"`
}

// Pair is a single metainfo key/value for display purposes.
type Pair struct {
	Key   string
	Value string
}

// Pairs returns every metainfo field as a key/value pair in a stable order,
// omitting empty optional fields. This is what the CLI prints after a parse.
func (m Metainfo) Pairs() []Pair {
	pairs := []Pair{
		{"filename", m.Filename},
		{"sha256", m.SHA256},
		{"file_size", strconv.FormatInt(m.FileSize, 10)},
		{"page_count", strconv.Itoa(m.PageCount)},
		{"block_count", strconv.Itoa(m.BlockCount)},
	}
	optional := []Pair{
		{"title", m.Title},
		{"author", m.Author},
		{"subject", m.Subject},
		{"creator", m.Creator},
		{"producer", m.Producer},
		{"ocr_engine", m.OCREngine},
	}
	for _, p := range optional {
		if p.Value != "" {
			pairs = append(pairs, p)
		}
	}
	if !m.ParsedAt.IsZero() {
		pairs = append(pairs, Pair{"parsed_at", m.ParsedAt.Format(time.RFC3339)})
	}
	pairs = append(pairs,
		Pair{"parser", m.ParserName},
		Pair{"parser_version", m.ParserVer},
	)
	return pairs
}

// Document is the exported representation of one parsed input file.
type Document struct {
	Metainfo Metainfo `json:"metainfo"`
	Pages    []Page   `json:"pages"`
}

// BlockCount returns the total number of blocks across all pages.
func (d *Document) BlockCount() int {
	n := 0
	for _, p := range d.Pages {
		n += len(p.Blocks)
	}
	return n
}

// FullText concatenates the plain text of every page, separated by blank lines.
func (d *Document) FullText() string {
	var out string
	for i, p := range d.Pages {
		if i > 0 {
			out += "\n\n"
		}
		out += p.Text
	}
	return out
}

// Validate checks internal consistency: page numbering and metainfo counts.
func (d *Document) Validate() error {
	for i, p := range d.Pages {
		if p.Number != i+1 {
			return fmt.Errorf("page %d has number %d", i, p.Number)
		}
	}
	if d.Metainfo.PageCount != len(d.Pages) {
		return fmt.Errorf("metainfo page_count %d does not match %d pages", d.Metainfo.PageCount, len(d.Pages))
	}
	return nil
}
