package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/pkg/document"
	"github.com/pdfstruct/pdfstruct/pkg/errors"
	"github.com/pdfstruct/pdfstruct/pkg/pipeline"
	"github.com/pdfstruct/pdfstruct/pkg/store"
)

// maxListedEntries caps the directory listing shown when an expected file
// is missing.
const maxListedEntries = 5

// parseOpts holds the command-line flags for the parse command.
// These options control extraction limits, OCR, caching, and export formats.
type parseOpts struct {
	outputDir  string   // directory for exported artifacts
	formats    string   // comma-separated export formats
	maxPages   int      // 0 means all pages
	ocr        bool     // recognize text on scanned pages
	ocrLangs   []string // OCR language codes
	noCache    bool     // disable the stage cache entirely
	refresh    bool     // bypass cached stage results
	detailed   bool     // per-block detail in structure renders
	skipModels bool     // skip OCR model provisioning
	manifest   string   // custom asset manifest file (TOML)
	noRecord   bool     // skip writing a parse record
	snippet    int      // characters of raw JSON shown when metainfo is absent
	tui        bool     // interactive progress for multi-file runs
}

// pipelineOptions converts parseOpts into pipeline.Options for the runner.
func (o *parseOpts) pipelineOptions(ctx context.Context) pipeline.Options {
	return pipeline.Options{
		MaxPages:     o.maxPages,
		OCR:          o.ocr,
		OCRLanguages: o.ocrLangs,
		Refresh:      o.refresh,
		Formats:      parseFormats(o.formats),
		Detailed:     o.detailed,
		Logger:       loggerFromContext(ctx),
	}
}

// parseCommand creates the parse command.
//
// Default options:
//   - outputDir: "scratch"
//   - formats: json
//   - maxPages: 0 (all pages)
func (c *CLI) parseCommand() *cobra.Command {
	opts := parseOpts{outputDir: "scratch", formats: pipeline.FormatJSON, snippet: 500}

	cmd := &cobra.Command{
		Use:   "parse <pdf-file>...",
		Short: "Parse PDF documents into structured JSON",
		Long: `Parse PDF documents into structured JSON.

Each input produces a <name>.pdf.json file in the output directory. OCR
models are downloaded on first use; pass --skip-models to run without them.

Examples:
  pdfstruct parse report.pdf                       # Single document
  pdfstruct parse report.pdf --ocr --lang eng      # With OCR
  pdfstruct parse report.pdf -f json,svg -o out/   # Multiple formats
  pdfstruct parse a.pdf b.pdf c.pdf --tui          # Batch with progress UI`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := withLogger(cmd.Context(), c.Logger)
			if err := pipeline.ValidateFormats(parseFormats(opts.formats)); err != nil {
				return err
			}
			if !opts.skipModels {
				if err := provisionModels(ctx, opts.manifest); err != nil {
					return err
				}
			}
			runner, err := c.newRunner(opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if opts.tui && len(args) > 1 {
				return c.runParseTUI(ctx, runner, args, &opts)
			}
			for _, arg := range args {
				if err := c.parseOne(ctx, runner, arg, &opts); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", opts.outputDir, "directory for exported files")
	cmd.Flags().StringVarP(&opts.formats, "formats", "f", opts.formats, "comma-separated export formats (json, dot, svg, png)")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", 0, "maximum pages to extract (0 = all)")
	cmd.Flags().BoolVar(&opts.ocr, "ocr", false, "recognize text on scanned pages")
	cmd.Flags().StringSliceVar(&opts.ocrLangs, "lang", nil, "OCR language codes (default eng)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the stage cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached stage results")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include per-block detail in structure renders")
	cmd.Flags().BoolVar(&opts.skipModels, "skip-models", false, "skip OCR model provisioning")
	cmd.Flags().StringVar(&opts.manifest, "manifest", "", "custom asset manifest file (TOML)")
	cmd.Flags().BoolVar(&opts.noRecord, "no-record", false, "skip writing a parse record")
	cmd.Flags().IntVar(&opts.snippet, "snippet", opts.snippet, "characters of raw JSON shown when metainfo is absent")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "interactive progress UI for multiple files")

	return cmd
}

// parseOne runs the full flow for a single input: resolve the path, parse
// and export, read the JSON output back, and display its metainfo.
func (c *CLI) parseOne(ctx context.Context, runner *pipeline.Runner, arg string, opts *parseOpts) error {
	input, err := resolveInput(arg)
	if err != nil {
		return err
	}

	logger := loggerFromContext(ctx)
	logger.Infof("Parsing %s", filepath.Base(input))

	prog := newProgress(logger)
	outputs, err := runner.ParseAndExport(ctx, input, opts.outputDir, opts.pipelineOptions(ctx))
	if err != nil {
		return err
	}

	jsonPath := pipeline.OutputPath(input, opts.outputDir, pipeline.FormatJSON)
	raw, err := readOutput(jsonPath, opts.outputDir)
	if err != nil {
		return err
	}

	pages, blocks := rawCounts(raw)
	prog.done(fmt.Sprintf("Parsed %d pages into %d blocks", pages, blocks))

	printSuccess("Parsed %s", StyleHighlight.Render(filepath.Base(input)))
	for _, out := range outputs {
		printFile(out)
	}
	printNewline()

	if pairs, ok := raw.MetainfoPairs(); ok {
		printMetainfo(pairs)
	} else {
		printWarning("No metainfo in output, showing raw JSON")
		fmt.Println(StyleDim.Render(raw.Snippet(opts.snippet)))
	}

	if !opts.noRecord {
		if id := c.recordParse(ctx, input, raw, outputs, opts); id != "" {
			printNextStep("Inspect later with", fmt.Sprintf("pdfstruct records get %s", id))
		}
	}
	return nil
}

// resolveInput checks that the input file exists and returns its absolute
// path. A missing file is reported with a listing of its parent directory
// so a mistyped name is easy to spot.
func resolveInput(arg string) (string, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", arg)
	}
	info, err := os.Stat(abs)
	if err != nil {
		// The error itself surfaces once, on exit. The listing is extra
		// context for spotting a mistyped name.
		listDirectory(filepath.Dir(abs))
		return "", errors.Wrap(errors.ErrCodeInputNotFound, err, "input file not found: %s", arg)
	}
	if info.IsDir() {
		return "", errors.New(errors.ErrCodeInvalidPath, "%s is a directory, not a PDF file", arg)
	}
	return abs, nil
}

// readOutput reads the exported JSON file back. A missing file is reported
// with a listing of the output directory.
func readOutput(path, dir string) (document.Raw, error) {
	raw, err := document.ImportRaw(path)
	if errors.Is(err, errors.ErrCodeOutputMissing) {
		listDirectory(dir)
		return nil, err
	}
	return raw, err
}

// listDirectory prints up to maxListedEntries entries of dir as a
// diagnostic aid.
func listDirectory(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		printDetail("Directory %s does not exist", dir)
		return
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	printDetail("Contents of %s:", dir)
	for i, name := range names {
		if i == maxListedEntries {
			printDetail("  ... and %d more", len(names)-maxListedEntries)
			break
		}
		printDetail("  %s", name)
	}
	if len(names) == 0 {
		printDetail("  (empty)")
	}
}

// rawCounts extracts page and block counts from the metainfo mapping, if
// present. Foreign documents without counts report zero.
func rawCounts(raw document.Raw) (pages, blocks int) {
	m, ok := raw.Metainfo()
	if !ok {
		return 0, 0
	}
	if v, ok := m["page_count"].(float64); ok {
		pages = int(v)
	}
	if v, ok := m["block_count"].(float64); ok {
		blocks = int(v)
	}
	return pages, blocks
}

// recordParse writes a parse record to the local record store and returns
// its ID. Failures are logged but never fail the parse itself.
func (c *CLI) recordParse(ctx context.Context, input string, raw document.Raw, outputs []string, opts *parseOpts) string {
	st, err := store.NewFileStore("")
	if err != nil {
		c.Logger.Warn("record store unavailable", "err", err)
		return ""
	}
	defer st.Close()

	rec := store.NewRecord(filepath.Base(input))
	if m, ok := raw.Metainfo(); ok {
		if v, ok := m["sha256"].(string); ok {
			rec.InputSHA256 = v
		}
	}
	rec.PageCount, rec.BlockCount = rawCounts(raw)
	rec.Formats = parseFormats(opts.formats)
	rec.OutputPaths = outputs
	rec.OCR = opts.ocr
	if err := st.Put(ctx, rec); err != nil {
		c.Logger.Warn("record not stored", "err", err)
		return ""
	}
	return rec.ID
}

// provisionModels downloads any missing OCR model assets and points the
// default engine at them.
func provisionModels(ctx context.Context, manifestPath string) error {
	logger := loggerFromContext(ctx)

	prov, err := newProvisioner(manifestPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAssetProvisioning, err, "load asset manifest")
	}
	statuses, err := prov.Ensure(ctx)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		if s.Downloaded {
			logger.Infof("Downloaded %s (%d bytes)", s.Asset.Name, s.Size)
		}
	}

	registerModelDir(prov.Dir())
	return nil
}
