package pipeline

import (
	"strings"

	"github.com/pdfstruct/pdfstruct/pkg/document"
)

// BuildOutline derives the heading hierarchy from a document's blocks.
//
// Heading levels come from relative font size: the largest heading font in
// the document is level 1, the next distinct size level 2, and so on.
// Paragraph blocks are attributed to the most recent heading. Documents
// without heading blocks produce an empty outline.
func BuildOutline(doc *document.Document) document.Outline {
	type heading struct {
		title string
		page  int
		size  float64
	}

	var headings []heading
	blockCounts := make([]int, 0)

	for _, page := range doc.Pages {
		for _, block := range page.Blocks {
			if block.Kind == document.BlockHeading {
				headings = append(headings, heading{
					title: firstLineOf(block.Text),
					page:  page.Number,
					size:  block.FontSize,
				})
				blockCounts = append(blockCounts, 0)
			} else if len(blockCounts) > 0 {
				blockCounts[len(blockCounts)-1]++
			}
		}
	}
	if len(headings) == 0 {
		return document.Outline{}
	}

	levels := levelBySize(headings, func(h heading) float64 { return h.size })

	var outline document.Outline
	// stack holds the path of currently open sections, one per level.
	var stack []*document.Section
	for i, h := range headings {
		sec := document.Section{
			Title:  h.title,
			Page:   h.page,
			Level:  levels[i],
			Blocks: blockCounts[i],
		}

		for len(stack) > 0 && stack[len(stack)-1].Level >= sec.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			outline.Sections = append(outline.Sections, sec)
			stack = append(stack, &outline.Sections[len(outline.Sections)-1])
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, sec)
			stack = append(stack, &parent.Children[len(parent.Children)-1])
		}
	}
	return outline
}

// levelBySize assigns 1-based levels by descending font size, collapsing
// sizes closer than half a point into the same level.
func levelBySize[T any](items []T, size func(T) float64) []int {
	var distinct []float64
	for _, it := range items {
		s := size(it)
		found := false
		for _, d := range distinct {
			if s > d-0.5 && s < d+0.5 {
				found = true
				break
			}
		}
		if !found {
			distinct = append(distinct, s)
		}
	}
	// insertion sort, descending; heading size sets are tiny
	for i := 1; i < len(distinct); i++ {
		for j := i; j > 0 && distinct[j] > distinct[j-1]; j-- {
			distinct[j], distinct[j-1] = distinct[j-1], distinct[j]
		}
	}

	levels := make([]int, len(items))
	for i, it := range items {
		s := size(it)
		levels[i] = len(distinct)
		for rank, d := range distinct {
			if s > d-0.5 && s < d+0.5 {
				levels[i] = rank + 1
				break
			}
		}
	}
	return levels
}

func firstLineOf(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
