package parser

import (
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// yTolerance is the vertical distance, in points, within which two glyphs
// are considered part of the same line.
const yTolerance = 2.0

// linesFromContent rebuilds visual lines from the page's positioned glyphs.
// Glyphs are bucketed by Y coordinate, then each bucket is sorted
// left-to-right and joined. The result is ordered top to bottom.
func linesFromContent(content pdf.Content) []Line {
	if len(content.Text) == 0 {
		return nil
	}

	glyphs := make([]pdf.Text, len(content.Text))
	copy(glyphs, content.Text)
	sort.SliceStable(glyphs, func(i, j int) bool {
		if glyphs[i].Y != glyphs[j].Y {
			return glyphs[i].Y > glyphs[j].Y
		}
		return glyphs[i].X < glyphs[j].X
	})

	var lines []Line
	var row []pdf.Text
	flush := func() {
		if len(row) == 0 {
			return
		}
		lines = append(lines, buildLine(row))
		row = nil
	}

	for _, g := range glyphs {
		if len(row) > 0 && row[0].Y-g.Y > yTolerance {
			flush()
		}
		row = append(row, g)
	}
	flush()
	return lines
}

func buildLine(row []pdf.Text) Line {
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

	var sb strings.Builder
	minX, maxX := row[0].X, row[0].X+row[0].W
	prevEnd := row[0].X
	for i, g := range row {
		// Reinsert the space the text layer drops between words when
		// the horizontal gap is wider than a thin-space heuristic.
		if i > 0 && g.X-prevEnd > g.FontSize*0.2 && !strings.HasSuffix(sb.String(), " ") {
			sb.WriteByte(' ')
		}
		sb.WriteString(g.S)
		prevEnd = g.X + g.W
		if g.X < minX {
			minX = g.X
		}
		if g.X+g.W > maxX {
			maxX = g.X + g.W
		}
	}

	return Line{
		Text:     strings.TrimSpace(sb.String()),
		Y:        row[0].Y,
		MinX:     minX,
		MaxX:     maxX,
		Font:     dominantFont(row),
		FontSize: dominantSize(row),
	}
}

// dominantFont returns the font used by the most glyphs in the row.
func dominantFont(row []pdf.Text) string {
	counts := make(map[string]int)
	best, bestN := "", 0
	for _, g := range row {
		counts[g.Font]++
		if counts[g.Font] > bestN {
			best, bestN = g.Font, counts[g.Font]
		}
	}
	return best
}

func dominantSize(row []pdf.Text) float64 {
	counts := make(map[float64]int)
	best, bestN := 0.0, 0
	for _, g := range row {
		counts[g.FontSize]++
		if counts[g.FontSize] > bestN {
			best, bestN = g.FontSize, counts[g.FontSize]
		}
	}
	return best
}
