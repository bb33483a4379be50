package parser

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpumodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Input is one image handed to an OCR engine.
type Input struct {
	// ID identifies the image in logs and errors, e.g. "report.pdf#3".
	ID string

	// Image is the encoded image bytes (PNG, JPEG, or TIFF).
	Image []byte

	// Languages are engine language hints, e.g. "eng". May be empty.
	Languages []string
}

// Result is the recognized text for one image.
type Result struct {
	PlainText string
}

// Engine recognizes text in images. Implementations must be safe for
// concurrent use.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, in Input) (Result, error)
}

var (
	defaultEngineMu sync.RWMutex
	defaultEngine   Engine = noopEngine{}
)

// SetDefaultEngine registers the engine used when a Parser is created
// without one. The tesseract subpackage calls this from its init.
func SetDefaultEngine(e Engine) {
	if e == nil {
		return
	}
	defaultEngineMu.Lock()
	defaultEngine = e
	defaultEngineMu.Unlock()
}

// DefaultEngine returns the registered engine, or a no-op engine that
// recognizes nothing.
func DefaultEngine() Engine {
	defaultEngineMu.RLock()
	defer defaultEngineMu.RUnlock()
	return defaultEngine
}

// noopEngine is the fallback when no OCR backend is linked in. It returns
// empty results so scanned pages simply come back without text.
type noopEngine struct{}

func (noopEngine) Name() string { return "noop" }

func (noopEngine) Recognize(context.Context, Input) (Result, error) {
	return Result{}, nil
}

// recognizePage extracts the page's embedded images and runs them through
// the OCR engine. Scanned documents store each page as a single full-page
// image, which is the case this fallback targets.
func (p *Parser) recognizePage(ctx context.Context, path string, number int) (string, error) {
	tmp, err := os.MkdirTemp("", "pdfstruct-ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmp)

	conf := pdfcpumodel.NewDefaultConfiguration()
	pages := []string{strconv.Itoa(number)}
	if err := api.ExtractImagesFile(path, tmp, pages, conf); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(tmp, entry.Name()))
		if err != nil {
			return "", err
		}
		res, err := p.engine.Recognize(ctx, Input{
			ID:        filepath.Base(path) + "#" + strconv.Itoa(number),
			Image:     data,
			Languages: p.opts.OCRLanguages,
		})
		if err != nil {
			return "", err
		}
		if text := strings.TrimSpace(res.PlainText); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
