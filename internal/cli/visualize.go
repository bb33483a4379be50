package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/pkg/cache"
	"github.com/pdfstruct/pdfstruct/pkg/document"
	"github.com/pdfstruct/pdfstruct/pkg/pipeline"
)

// visualizeCommand creates the visualize command for rendering the section
// structure of an already-parsed document.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		formatsStr string
		outputDir  string
		noCache    bool
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "visualize <pdf-json-file>",
		Short: "Render the section structure of a parsed document",
		Long: `Render the section structure of a parsed document.

The visualize command takes a <name>.pdf.json file (produced by 'parse')
and renders its heading hierarchy as a Graphviz graph in DOT, SVG, or PNG
format. Results are cached locally for faster subsequent runs.

Examples:
  pdfstruct visualize scratch/report.pdf.json
  pdfstruct visualize scratch/report.pdf.json -f svg,png --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseVisualizeFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			opts := pipeline.Options{
				Formats:  formats,
				Detailed: detailed,
				Logger:   c.Logger,
			}
			return c.runVisualize(withLogger(cmd.Context(), c.Logger), args[0], outputDir, opts, noCache)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for rendered files (input directory if empty)")
	cmd.Flags().StringVarP(&formatsStr, "formats", "f", "", "output format(s): svg (default), dot, png (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include page and block counts in labels")

	return cmd
}

// runVisualize loads the document, rebuilds its outline, and renders it.
func (c *CLI) runVisualize(ctx context.Context, input, outputDir string, opts pipeline.Options, noCache bool) error {
	doc, err := document.ImportJSON(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	docHash := cache.Hash(data)

	spinner := newSpinnerWithContext(ctx, "Rendering structure...")
	spinner.Start()

	outline, _, err := runner.AnalyzeWithCacheInfo(ctx, doc, docHash, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return err
	}
	artifacts, cacheHit, err := runner.ExportWithCacheInfo(ctx, doc, outline, docHash, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()

	if outputDir == "" {
		outputDir = filepath.Dir(input)
	}
	base := strings.TrimSuffix(filepath.Base(input), ".json")
	written := make([]string, 0, len(artifacts))
	for _, format := range opts.Formats {
		out := filepath.Join(outputDir, base+"."+format)
		if err := os.WriteFile(out, artifacts[format], 0o644); err != nil {
			return err
		}
		written = append(written, out)
	}

	printSuccess("Rendered %d sections", outline.SectionCount())
	for _, out := range written {
		printFile(out)
	}
	printStats(doc.Metainfo.PageCount, doc.BlockCount(), cacheHit)
	return nil
}

// parseVisualizeFormats defaults to SVG rather than JSON, since visualize
// always starts from a JSON document.
func parseVisualizeFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
