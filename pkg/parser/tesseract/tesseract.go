// Package tesseract provides an OCR engine backed by the Tesseract C
// library via gosseract. Importing it registers the engine as the parser
// default, so a blank import is enough to enable OCR:
//
//	import _ "github.com/pdfstruct/pdfstruct/pkg/parser/tesseract"
//
// Language models are loaded from TESSDATA_PREFIX unless a model directory
// is set with [SetModelDir], which points the engine at the files the
// assets package provisions.
package tesseract

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/pdfstruct/pdfstruct/pkg/parser"
)

var defaultEngine = NewEngine()

func init() {
	parser.SetDefaultEngine(defaultEngine)
}

// SetModelDir points the registered default engine at a traineddata
// directory, typically the one the assets package provisions.
func SetModelDir(dir string) {
	defaultEngine.SetModelDir(dir)
}

// Engine implements parser.Engine using gosseract. Each Recognize call
// uses a fresh client, so the engine itself is safe for concurrent use.
type Engine struct {
	clientFactory func() *gosseract.Client

	mu       sync.RWMutex
	modelDir string
}

// NewEngine constructs a Tesseract-backed OCR engine.
func NewEngine() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// SetModelDir directs the engine to load traineddata files from dir
// instead of the system TESSDATA_PREFIX. An empty dir restores the
// system default.
func (e *Engine) SetModelDir(dir string) {
	e.mu.Lock()
	e.modelDir = dir
	e.mu.Unlock()
}

// Recognize performs OCR on a single image.
func (e *Engine) Recognize(ctx context.Context, in parser.Input) (parser.Result, error) {
	select {
	case <-ctx.Done():
		return parser.Result{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	e.mu.RLock()
	dir := e.modelDir
	e.mu.RUnlock()
	if dir != "" {
		if err := c.SetTessdataPrefix(dir); err != nil {
			return parser.Result{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return parser.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return parser.Result{}, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return parser.Result{}, fmt.Errorf("recognize %s: %w", in.ID, err)
	}
	return parser.Result{PlainText: strings.TrimSpace(text)}, nil
}
