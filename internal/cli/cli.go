// Package cli implements the pdfstruct command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdfstruct/pdfstruct/pkg/buildinfo"
	"github.com/pdfstruct/pdfstruct/pkg/cache"
	"github.com/pdfstruct/pdfstruct/pkg/pipeline"
)

const (
	// appName is the application name used for directories and display.
	appName = "pdfstruct"

	// envCacheDir overrides the cache directory.
	envCacheDir = "PDFSTRUCT_CACHE_DIR"

	// envModelDir overrides the model directory.
	envModelDir = "PDFSTRUCT_MODEL_DIR"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "pdfstruct",
		Short:        "pdfstruct converts PDF documents into structured JSON",
		Long:         `pdfstruct is a CLI tool for extracting text, layout blocks, and metadata from PDF documents into structured JSON, with optional OCR for scanned pages.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.parseCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.modelsCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.recordsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory. PDFSTRUCT_CACHE_DIR wins, then the
// XDG standard (~/.cache/pdfstruct/).
func cacheDir() (string, error) {
	if dir := os.Getenv(envCacheDir); dir != "" {
		return dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// modelDir returns the directory for OCR model assets. PDFSTRUCT_MODEL_DIR
// wins, then a "models" subdirectory of the cache.
func modelDir() (string, error) {
	if dir := os.Getenv(envModelDir); dir != "" {
		return dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "models"), nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	return strings.Split(s, ",")
}
