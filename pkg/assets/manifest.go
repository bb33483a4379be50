// Package assets provisions the pretrained model files required for OCR.
//
// Model assets are declared in a TOML manifest (name, source URL, optional
// SHA-256 digest, language tag). The [Provisioner] downloads missing assets
// into a local model directory and verifies digests, so parse runs can rely
// on the models being present before any document is touched.
//
// The default manifest covers the Tesseract fast trained data for English
// plus the orientation/script model. A custom manifest can be supplied with
// `pdfstruct models ensure --manifest models.toml`.
package assets

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Asset describes a single model file in the manifest.
type Asset struct {
	// Name is the target filename inside the model directory.
	Name string `toml:"name"`

	// URL is the download source.
	URL string `toml:"url"`

	// SHA256 is the expected hex digest of the payload.
	// Empty means the upstream publishes no checksum and verification is skipped.
	SHA256 string `toml:"sha256"`

	// Language is the BCP-47-ish tag Tesseract uses for trained data ("eng", "osd").
	Language string `toml:"language"`
}

// Manifest is the full set of model assets a parse run depends on.
type Manifest struct {
	Assets []Asset `toml:"asset"`
}

// tessdataFast is the upstream repository for Tesseract fast trained data.
// The raw files carry no published checksums, so the default manifest leaves
// the digests empty.
const tessdataFast = "https://github.com/tesseract-ocr/tessdata_fast/raw/main"

// DefaultManifest returns the built-in manifest: English trained data plus
// the orientation and script detection model.
func DefaultManifest() Manifest {
	return Manifest{
		Assets: []Asset{
			{
				Name:     "eng.traineddata",
				URL:      tessdataFast + "/eng.traineddata",
				Language: "eng",
			},
			{
				Name:     "osd.traineddata",
				URL:      tessdataFast + "/osd.traineddata",
				Language: "osd",
			},
		},
	}
}

// LoadManifest reads a TOML manifest from path.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return Manifest{}, fmt.Errorf("manifest %s: %w", path, err)
	}
	return m, nil
}

// Validate checks that every asset has a name and URL and that names are unique.
func (m Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Assets))
	for i, a := range m.Assets {
		if a.Name == "" {
			return fmt.Errorf("asset %d: name is required", i)
		}
		if a.URL == "" {
			return fmt.Errorf("asset %q: url is required", a.Name)
		}
		if seen[a.Name] {
			return fmt.Errorf("asset %q: duplicate name", a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}

// Languages returns the distinct language tags declared in the manifest,
// preserving manifest order. Assets without a language tag are skipped.
func (m Manifest) Languages() []string {
	var langs []string
	seen := make(map[string]bool)
	for _, a := range m.Assets {
		if a.Language == "" || seen[a.Language] {
			continue
		}
		seen[a.Language] = true
		langs = append(langs, a.Language)
	}
	return langs
}
