package document

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	pkgerrors "github.com/pdfstruct/pdfstruct/pkg/errors"
)

func TestWriteReadRoundTrip(t *testing.T) {
	d := sampleDocument()

	var buf bytes.Buffer
	if err := WriteJSON(d, &buf); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if got.Metainfo.Filename != d.Metainfo.Filename {
		t.Errorf("Filename = %q, want %q", got.Metainfo.Filename, d.Metainfo.Filename)
	}
	if len(got.Pages) != len(d.Pages) {
		t.Fatalf("len(Pages) = %d, want %d", len(got.Pages), len(d.Pages))
	}
	if got.Pages[0].Blocks[0].Kind != BlockHeading {
		t.Errorf("block kind = %q, want heading", got.Pages[0].Blocks[0].Kind)
	}
}

func TestImportJSONMissing(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "never.json"))
	if !pkgerrors.Is(err, pkgerrors.ErrCodeOutputMissing) {
		t.Errorf("error code = %v, want OUTPUT_MISSING", pkgerrors.GetCode(err))
	}
}

func TestImportRawMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := ImportRaw(path)
	if !pkgerrors.Is(err, pkgerrors.ErrCodeOutputMalformed) {
		t.Errorf("error code = %v, want OUTPUT_MALFORMED", pkgerrors.GetCode(err))
	}
}

func TestRawMetainfoPairs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	content := `{
  "metainfo": {"pages": 3, "title": "Report", "encrypted": false, "score": 0.5},
  "pages": []
}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := ImportRaw(path)
	if err != nil {
		t.Fatalf("ImportRaw error: %v", err)
	}

	pairs, ok := raw.MetainfoPairs()
	if !ok {
		t.Fatal("expected metainfo mapping")
	}
	got := map[string]string{}
	for _, p := range pairs {
		got[p.Key] = p.Value
	}
	want := map[string]string{
		"pages":     "3",
		"title":     "Report",
		"encrypted": "false",
		"score":     "0.5",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("pair %q = %q, want %q", k, got[k], v)
		}
	}

	// Keys come back sorted
	for i := 1; i < len(pairs); i++ {
		if pairs[i-1].Key > pairs[i].Key {
			t.Errorf("pairs not sorted: %q before %q", pairs[i-1].Key, pairs[i].Key)
		}
	}
}

func TestRawSnippet(t *testing.T) {
	raw := Raw{"content": strings.Repeat("x", 1000)}
	snippet := raw.Snippet(500)
	if len(snippet) != 503 || !strings.HasSuffix(snippet, "...") {
		t.Errorf("len(snippet) = %d, want 500 chars plus ellipsis", len(snippet))
	}

	// Short documents are returned whole, no ellipsis
	small := Raw{"a": "b"}
	if s := small.Snippet(500); strings.HasSuffix(s, "...") || !strings.Contains(s, `"a"`) {
		t.Errorf("unexpected snippet %q", s)
	}
}

func TestRawSnippetRuneBoundary(t *testing.T) {
	raw := Raw{"content": strings.Repeat("ü", 1000)}
	for limit := 20; limit < 40; limit++ {
		s := raw.Snippet(limit)
		if !utf8.ValidString(s) {
			t.Fatalf("Snippet(%d) cut a rune in half: %q", limit, s)
		}
		if len(s) > limit+len("...") {
			t.Fatalf("Snippet(%d) length %d exceeds limit", limit, len(s))
		}
	}
}

func TestRawNoMetainfo(t *testing.T) {
	raw := Raw{"pages": []any{}}
	if _, ok := raw.Metainfo(); ok {
		t.Error("Metainfo() should report absence")
	}
	if _, ok := raw.MetainfoPairs(); ok {
		t.Error("MetainfoPairs() should report absence")
	}
}
