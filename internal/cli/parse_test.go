package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfstruct/pdfstruct/pkg/document"
	"github.com/pdfstruct/pdfstruct/pkg/errors"
	"github.com/pdfstruct/pdfstruct/pkg/pipeline"
)

func TestResolveInputMissing(t *testing.T) {
	_, err := resolveInput(filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("resolveInput() should fail for a missing file")
	}
	if !errors.Is(err, errors.ErrCodeInputNotFound) {
		t.Errorf("resolveInput() code = %q, want %q", errors.GetCode(err), errors.ErrCodeInputNotFound)
	}
}

func TestResolveInputMissingMessage(t *testing.T) {
	// The coded error is the single report channel; main prints its
	// message on exit, so it must name the file on its own.
	_, err := resolveInput(filepath.Join(t.TempDir(), "nope.pdf"))
	if err == nil {
		t.Fatal("resolveInput() should fail for a missing file")
	}
	if msg := errors.UserMessage(err); !strings.Contains(msg, "nope.pdf") {
		t.Errorf("UserMessage = %q, should name the missing file", msg)
	}
}

func TestResolveInputDirectory(t *testing.T) {
	_, err := resolveInput(t.TempDir())
	if err == nil {
		t.Fatal("resolveInput() should fail for a directory")
	}
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("resolveInput() code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidPath)
	}
}

func TestResolveInputExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := resolveInput(path)
	if err != nil {
		t.Fatalf("resolveInput() error: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("resolveInput() = %q, want absolute path", got)
	}
}

func TestReadOutputMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := readOutput(filepath.Join(dir, "doc.pdf.json"), dir)
	if !errors.Is(err, errors.ErrCodeOutputMissing) {
		t.Errorf("readOutput() code = %q, want %q", errors.GetCode(err), errors.ErrCodeOutputMissing)
	}
}

func TestReadOutputMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.pdf.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := readOutput(path, dir)
	if !errors.Is(err, errors.ErrCodeOutputMalformed) {
		t.Errorf("readOutput() code = %q, want %q", errors.GetCode(err), errors.ErrCodeOutputMalformed)
	}
}

func TestRawCounts(t *testing.T) {
	// JSON numbers decode as float64 in an untyped mapping.
	raw := document.Raw{
		"metainfo": map[string]any{
			"page_count":  float64(12),
			"block_count": float64(87),
		},
	}

	pages, blocks := rawCounts(raw)
	if pages != 12 || blocks != 87 {
		t.Errorf("rawCounts() = (%d, %d), want (12, 87)", pages, blocks)
	}
}

func TestRawCountsNoMetainfo(t *testing.T) {
	pages, blocks := rawCounts(document.Raw{"pages": []any{}})
	if pages != 0 || blocks != 0 {
		t.Errorf("rawCounts() = (%d, %d), want (0, 0)", pages, blocks)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty defaults to json", "", []string{pipeline.FormatJSON}},
		{"single", "svg", []string{"svg"}},
		{"multiple", "json,svg,png", []string{"json", "svg", "png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortID() = %q, want %q", got, "01234567")
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID() = %q, want %q", got, "abc")
	}
}
