package document

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/pdfstruct/pdfstruct/pkg/errors"
)

// WriteJSON encodes a Document as indented JSON and writes it to w.
// The output can be re-read with [ReadJSON] for round-trip processing.
func WriteJSON(d *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return nil
}

// ExportJSON writes a Document to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(d, f)
}

// ReadJSON decodes a document from r.
//
// Unknown top-level keys are tolerated; only `metainfo` and `pages` are
// interpreted. Malformed JSON yields an OUTPUT_MALFORMED error so callers
// can distinguish a corrupt output file from a missing one.
func ReadJSON(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutputMalformed, err, "decode document JSON")
	}
	return &d, nil
}

// ImportJSON reads the JSON file at path and returns the decoded Document.
//
// A missing file yields OUTPUT_MISSING; malformed contents yield
// OUTPUT_MALFORMED. Any other I/O failure is wrapped as INTERNAL_ERROR.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeOutputMissing, err, "output file not found at %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

// Raw is an untyped view of an output file: a mapping from string keys to
// arbitrary values, the way the original consumer treated it. Metainfo, when
// present, is the value of the top-level "metainfo" key.
type Raw map[string]any

// ImportRaw reads the JSON file at path without imposing the Document schema.
// The same error codes as [ImportJSON] apply.
func ImportRaw(path string) (Raw, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeOutputMissing, err, "output file not found at %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read %s", path)
	}
	var raw Raw
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutputMalformed, err, "decode JSON at %s", path)
	}
	return raw, nil
}

// Metainfo returns the top-level "metainfo" mapping, if present.
func (r Raw) Metainfo() (map[string]any, bool) {
	v, ok := r["metainfo"]
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// MetainfoPairs returns the metainfo mapping as key/value pairs sorted by
// key, for deterministic display of foreign documents.
func (r Raw) MetainfoPairs() ([]Pair, bool) {
	m, ok := r.Metainfo()
	if !ok {
		return nil, false
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Key: k, Value: formatScalar(m[k])})
	}
	return pairs, true
}

// Snippet serializes the raw document with indentation and returns at most
// limit characters, with "..." marking a truncation. Used when an output has
// no metainfo mapping. Truncation lands on a rune boundary so extracted text
// with multi-byte characters never renders a mangled trailing rune.
func (r Raw) Snippet(limit int) string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return ""
	}
	if len(data) <= limit {
		return string(data)
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(data[cut]) {
		cut--
	}
	return string(data[:cut]) + "..."
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		// JSON numbers decode as float64; print integers without a fraction.
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case nil:
		return "null"
	default:
		data, _ := json.Marshal(v)
		return string(data)
	}
}
