package parser

import (
	"sort"
	"strings"

	"github.com/pdfstruct/pdfstruct/pkg/document"
)

// SegmentOptions tunes layout block detection.
type SegmentOptions struct {
	// MinGap is the vertical gap, as a multiple of the current font size,
	// above which two lines start separate blocks.
	MinGap float64

	// HeadingScale marks a single-line block as a heading when its font
	// size exceeds the document median by this factor.
	HeadingScale float64
}

// DefaultSegmentOptions returns the heuristics used when none are set.
func DefaultSegmentOptions() SegmentOptions {
	return SegmentOptions{MinGap: 1.6, HeadingScale: 1.18}
}

// Line is one visual row of text with its position and dominant font.
type Line struct {
	Text     string
	Y        float64
	MinX     float64
	MaxX     float64
	Font     string
	FontSize float64
}

// Segment groups lines into paragraph and heading blocks.
//
// Lines are assumed to be in top-to-bottom reading order (descending Y in
// PDF coordinates). A new block starts when the vertical gap to the
// previous line exceeds MinGap font sizes or the font size changes
// noticeably. Single-line blocks set in a font larger than the median are
// classified as headings.
func Segment(lines []Line, opts SegmentOptions) []document.Block {
	if len(lines) == 0 {
		return nil
	}
	if opts.MinGap <= 0 {
		opts.MinGap = DefaultSegmentOptions().MinGap
	}
	if opts.HeadingScale <= 0 {
		opts.HeadingScale = DefaultSegmentOptions().HeadingScale
	}

	median := medianFontSize(lines)

	var blocks []document.Block
	var group []Line
	flush := func() {
		if len(group) == 0 {
			return
		}
		blocks = append(blocks, buildBlock(group, median, opts.HeadingScale))
		group = nil
	}

	for i, ln := range lines {
		if len(group) > 0 {
			prev := lines[i-1]
			gap := prev.Y - ln.Y
			size := prev.FontSize
			if size <= 0 {
				size = median
			}
			if gap > size*opts.MinGap || fontBreak(prev, ln) {
				flush()
			}
		}
		group = append(group, ln)
	}
	flush()
	return blocks
}

// fontBreak reports whether two adjacent lines differ enough in typeface to
// force a block boundary. Small size jitter from kerned glyphs is ignored.
func fontBreak(a, b Line) bool {
	if a.FontSize > 0 && b.FontSize > 0 {
		ratio := b.FontSize / a.FontSize
		if ratio > 1.15 || ratio < 0.87 {
			return true
		}
	}
	return a.Font != "" && b.Font != "" && a.Font != b.Font
}

func buildBlock(group []Line, median, headingScale float64) document.Block {
	texts := make([]string, len(group))
	for i, ln := range group {
		texts[i] = ln.Text
	}

	first := group[0]
	last := group[len(group)-1]
	minX, maxX := first.MinX, first.MaxX
	for _, ln := range group[1:] {
		if ln.MinX < minX {
			minX = ln.MinX
		}
		if ln.MaxX > maxX {
			maxX = ln.MaxX
		}
	}

	block := document.Block{
		Kind:     document.BlockParagraph,
		Text:     strings.Join(texts, "\n"),
		Font:     first.Font,
		FontSize: first.FontSize,
		Lines:    len(group),
		BBox: document.BBox{
			X0: minX,
			Y0: last.Y,
			X1: maxX,
			Y1: first.Y + first.FontSize,
		},
	}
	if len(group) == 1 && median > 0 && first.FontSize >= median*headingScale {
		block.Kind = document.BlockHeading
	}
	return block
}

func medianFontSize(lines []Line) float64 {
	sizes := make([]float64, 0, len(lines))
	for _, ln := range lines {
		if ln.FontSize > 0 {
			sizes = append(sizes, ln.FontSize)
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Float64s(sizes)
	return sizes[len(sizes)/2]
}
