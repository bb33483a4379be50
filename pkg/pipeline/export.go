package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfstruct/pdfstruct/pkg/document"
	"github.com/pdfstruct/pdfstruct/pkg/errors"
	"github.com/pdfstruct/pdfstruct/pkg/render"
)

// OutputPath returns where the artifact for a format lands when exporting
// input into dir. The input's base name keeps its extension, so report.pdf
// becomes report.pdf.json.
func OutputPath(input, dir, format string) string {
	return filepath.Join(dir, filepath.Base(input)+"."+format)
}

// ParseAndExport runs the full pipeline on input and writes one artifact
// file per requested format into dir, creating it if needed. It returns the
// paths written, in the order of opts.Formats.
func (r *Runner) ParseAndExport(ctx context.Context, input, dir string, opts Options) ([]string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid export options")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create output directory %s", dir)
	}

	result, err := r.Execute(ctx, input, opts)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(opts.Formats))
	for _, format := range opts.Formats {
		data, ok := result.Artifacts[format]
		if !ok {
			return nil, errors.New(errors.ErrCodeInternal, "pipeline produced no %s artifact", format)
		}
		path := OutputPath(input, dir, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// exportFormats serializes the document into each requested format.
func exportFormats(doc *document.Document, outline document.Outline, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := exportFormat(doc, outline, format, opts)
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func exportFormat(doc *document.Document, outline document.Outline, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := document.WriteJSON(doc, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return render.DOT(doc, outline, render.Options{Detailed: opts.Detailed})
	case FormatSVG, FormatPNG:
		dot, err := render.DOT(doc, outline, render.Options{Detailed: opts.Detailed})
		if err != nil {
			return nil, err
		}
		return render.Graphviz(dot, format)
	default:
		return nil, ValidateFormat(format)
	}
}
