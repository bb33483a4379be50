// Package render turns a parsed document's structure into visual output.
//
// The document outline is converted to Graphviz DOT, with the document as
// the root node, sections as boxes, and pages as leaf nodes. SVG and PNG
// rendering happens in process using [github.com/goccy/go-graphviz], so no
// external dot binary is required.
package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/pdfstruct/pdfstruct/pkg/document"
)

// Options configures structure rendering.
type Options struct {
	// Detailed includes page and block counts in section labels.
	// When false, only the section title is shown.
	Detailed bool
}

// DOT converts a document outline to Graphviz DOT format. The resulting
// bytes can be rendered with [Graphviz].
func DOT(doc *document.Document, outline document.Outline, opts Options) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	var buf bytes.Buffer
	buf.WriteString("digraph structure {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	root := "doc"
	rootLabel := doc.Metainfo.Filename
	if opts.Detailed {
		rootLabel = fmt.Sprintf("%s\npages: %d\nblocks: %d",
			doc.Metainfo.Filename, doc.Metainfo.PageCount, doc.Metainfo.BlockCount)
	}
	fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightblue];\n", root, rootLabel)

	id := 0
	var writeSections func(parent string, sections []document.Section)
	writeSections = func(parent string, sections []document.Section) {
		for _, sec := range sections {
			id++
			node := fmt.Sprintf("s%d", id)
			label := sec.Title
			if opts.Detailed {
				label = fmt.Sprintf("%s\npage %d, %d blocks", sec.Title, sec.Page, sec.Blocks)
			}
			fmt.Fprintf(&buf, "  %q [label=%q];\n", node, label)
			fmt.Fprintf(&buf, "  %q -> %q;\n", parent, node)
			writeSections(node, sec.Children)
		}
	}
	writeSections(root, outline.Sections)

	// Documents without headings still get a page-level view.
	if outline.Empty() {
		for _, page := range doc.Pages {
			node := fmt.Sprintf("p%d", page.Number)
			label := fmt.Sprintf("page %d", page.Number)
			if opts.Detailed {
				label = fmt.Sprintf("page %d\n%d blocks", page.Number, len(page.Blocks))
			}
			fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", node, label)
			fmt.Fprintf(&buf, "  %q -> %q;\n", root, node)
		}
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Graphviz renders DOT to the given format ("svg" or "png") using the
// in-process Graphviz engine.
func Graphviz(dot []byte, format string) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case "svg":
		gvFormat = graphviz.SVG
	case "png":
		gvFormat = graphviz.PNG
	default:
		return nil, fmt.Errorf("unsupported graphviz format: %q", format)
	}

	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if gvFormat == graphviz.SVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the outer svg tag so the view box starts at the
// origin and explicit pixel dimensions match it. Graphviz emits point-based
// sizes that scale inconsistently in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
