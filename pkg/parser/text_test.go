package parser

import (
	"testing"

	"github.com/ledongthuc/pdf"
)

func TestLinesFromContentRowGrouping(t *testing.T) {
	content := pdf.Content{Text: []pdf.Text{
		{S: "Hello", X: 72, Y: 700, W: 30, Font: "F1", FontSize: 10},
		{S: "world", X: 110, Y: 700, W: 30, Font: "F1", FontSize: 10},
		{S: "Below", X: 72, Y: 688, W: 30, Font: "F1", FontSize: 10},
	}}

	lines := linesFromContent(content)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "Hello world" {
		t.Errorf("expected joined row with space, got %q", lines[0].Text)
	}
	if lines[1].Text != "Below" {
		t.Errorf("expected second row, got %q", lines[1].Text)
	}
	if lines[0].Y <= lines[1].Y {
		t.Errorf("lines should be ordered top to bottom: %v then %v", lines[0].Y, lines[1].Y)
	}
}

func TestLinesFromContentSortsWithinRow(t *testing.T) {
	content := pdf.Content{Text: []pdf.Text{
		{S: "right", X: 200, Y: 700, W: 25, Font: "F1", FontSize: 10},
		{S: "left", X: 72, Y: 700, W: 20, Font: "F1", FontSize: 10},
	}}

	lines := linesFromContent(content)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Text != "left right" {
		t.Errorf("glyphs should be sorted by X, got %q", lines[0].Text)
	}
	if lines[0].MinX != 72 {
		t.Errorf("expected MinX 72, got %v", lines[0].MinX)
	}
}

func TestLinesFromContentAdjacentGlyphsNoSpace(t *testing.T) {
	content := pdf.Content{Text: []pdf.Text{
		{S: "Hel", X: 72, Y: 700, W: 18, Font: "F1", FontSize: 10},
		{S: "lo", X: 90, Y: 700, W: 12, Font: "F1", FontSize: 10},
	}}

	lines := linesFromContent(content)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Text != "Hello" {
		t.Errorf("touching glyphs should join without a space, got %q", lines[0].Text)
	}
}

func TestLinesFromContentDominantFont(t *testing.T) {
	content := pdf.Content{Text: []pdf.Text{
		{S: "mostly", X: 72, Y: 700, W: 30, Font: "F1", FontSize: 10},
		{S: "serif", X: 110, Y: 700, W: 25, Font: "F1", FontSize: 10},
		{S: "x", X: 140, Y: 700, W: 5, Font: "F2", FontSize: 8},
	}}

	lines := linesFromContent(content)
	if lines[0].Font != "F1" {
		t.Errorf("expected dominant font F1, got %q", lines[0].Font)
	}
	if lines[0].FontSize != 10 {
		t.Errorf("expected dominant size 10, got %v", lines[0].FontSize)
	}
}

func TestLinesFromContentEmpty(t *testing.T) {
	if got := linesFromContent(pdf.Content{}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
