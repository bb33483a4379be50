package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdfstruct/pdfstruct/pkg/cache"
	"github.com/pdfstruct/pdfstruct/pkg/document"
	"github.com/pdfstruct/pdfstruct/pkg/observability"
	"github.com/pdfstruct/pdfstruct/pkg/parser"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete extract → analyze → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, path string, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Extract
	extractStart := time.Now()
	observability.Pipeline().OnExtractStart(ctx, path)
	doc, extractHit, err := r.ExtractWithCacheInfo(ctx, path, opts)
	if err != nil {
		observability.Pipeline().OnExtractComplete(ctx, path, 0, time.Since(extractStart), err)
		return nil, err
	}
	observability.Pipeline().OnExtractComplete(ctx, path, doc.Metainfo.PageCount, time.Since(extractStart), nil)
	result.Document = doc
	result.Stats.ExtractTime = time.Since(extractStart)
	result.Stats.PageCount = doc.Metainfo.PageCount
	result.Stats.BlockCount = doc.Metainfo.BlockCount
	result.CacheInfo.ExtractHit = extractHit

	// Hash the serialized document for downstream cache keys and API responses
	var buf bytes.Buffer
	if err := document.WriteJSON(doc, &buf); err == nil {
		result.DocumentHash = cache.Hash(buf.Bytes())
	}

	r.Logger.Info("extracted document",
		"pages", doc.Metainfo.PageCount,
		"blocks", doc.Metainfo.BlockCount,
		"duration", result.Stats.ExtractTime)

	// Stage 2: Analyze
	analyzeStart := time.Now()
	observability.Pipeline().OnAnalyzeStart(ctx, path, doc.Metainfo.BlockCount)
	outline, analyzeHit, err := r.AnalyzeWithCacheInfo(ctx, doc, result.DocumentHash, opts)
	observability.Pipeline().OnAnalyzeComplete(ctx, path, time.Since(analyzeStart), err)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Outline = outline
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.CacheInfo.AnalyzeHit = analyzeHit

	r.Logger.Info("analyzed structure",
		"sections", outline.SectionCount(),
		"duration", result.Stats.AnalyzeTime)

	// Stage 3: Export
	exportStart := time.Now()
	observability.Pipeline().OnExportStart(ctx, opts.Formats)
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, doc, outline, result.DocumentHash, opts)
	observability.Pipeline().OnExportComplete(ctx, opts.Formats, time.Since(exportStart), err)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.ExportTime = time.Since(exportStart)
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// ExtractWithCacheInfo parses the input file with caching and returns cache
// hit info. Extraction errors keep their codes so callers can map them to
// exit codes without unwrapping pipeline internals.
func (r *Runner) ExtractWithCacheInfo(ctx context.Context, path string, opts Options) (*document.Document, bool, error) {
	opts.SetExtractDefaults()
	r.applyLogger(&opts)

	inputHash, err := hashInputFile(path)
	if err != nil {
		// Let the parser produce the coded error for missing or
		// unreadable inputs.
		p := parser.New(opts.ParserOptions(), opts.Engine, opts.Logger)
		doc, perr := p.Parse(ctx, path)
		if perr != nil {
			return nil, false, perr
		}
		return doc, false, nil
	}

	cacheKey := r.Keyer.DocumentKey(inputHash, opts.DocumentKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			doc, err := document.ReadJSON(bytes.NewReader(data))
			if err == nil {
				observability.Cache().OnCacheHit(ctx, "doc")
				return doc, true, nil // Cache hit
			}
			// Fall through and re-extract on a corrupt entry
		}
		observability.Cache().OnCacheMiss(ctx, "doc")
	}

	p := parser.New(opts.ParserOptions(), opts.Engine, opts.Logger)
	doc, err := p.Parse(ctx, path)
	if err != nil {
		return nil, false, err
	}

	var buf bytes.Buffer
	if err := document.WriteJSON(doc, &buf); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, buf.Bytes(), cache.TTLDocument)
		observability.Cache().OnCacheSet(ctx, "doc", buf.Len())
	}

	return doc, false, nil // Cache miss
}

// Extract is a convenience wrapper that discards the cache hit info.
func (r *Runner) Extract(ctx context.Context, path string, opts Options) (*document.Document, error) {
	doc, _, err := r.ExtractWithCacheInfo(ctx, path, opts)
	return doc, err
}

// AnalyzeWithCacheInfo builds the outline with caching and returns cache
// hit info.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, doc *document.Document, docHash string, opts Options) (document.Outline, bool, error) {
	opts.SetAnalyzeDefaults()
	r.applyLogger(&opts)

	cacheKey := r.Keyer.AnalysisKey(docHash, opts.AnalysisKeyOpts())

	if docHash != "" && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached document.Outline
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, "analysis")
				return cached, true, nil // Cache hit
			}
		}
		observability.Cache().OnCacheMiss(ctx, "analysis")
	}

	outline := BuildOutline(doc)

	if docHash != "" {
		if data, err := json.Marshal(outline); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLAnalysis)
			observability.Cache().OnCacheSet(ctx, "analysis", len(data))
		}
	}

	return outline, false, nil // Cache miss
}

// Analyze is a convenience wrapper that discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, doc *document.Document, docHash string, opts Options) (document.Outline, error) {
	outline, _, err := r.AnalyzeWithCacheInfo(ctx, doc, docHash, opts)
	return outline, err
}

// ExportWithCacheInfo serializes the requested formats with caching and
// returns cache hit info.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, doc *document.Document, outline document.Outline, docHash string, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Try to get all formats from cache
	allCached := docHash != "" && !opts.Refresh
	artifacts := make(map[string][]byte)

	if allCached {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	rendered, err := exportFormats(doc, outline, opts)
	if err != nil {
		return nil, false, err
	}

	if docHash != "" {
		for format, data := range rendered {
			cacheKey := r.Keyer.ArtifactKey(docHash, opts.ArtifactKeyOpts(format))
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Export is a convenience wrapper that discards the cache hit info.
func (r *Runner) Export(ctx context.Context, doc *document.Document, outline document.Outline, docHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ExportWithCacheInfo(ctx, doc, outline, docHash, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func hashInputFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
