package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "github.com/pdfstruct/pdfstruct/pkg/errors"
)

func TestDefaultManifest(t *testing.T) {
	m := DefaultManifest()
	if err := m.Validate(); err != nil {
		t.Fatalf("default manifest invalid: %v", err)
	}
	if len(m.Assets) == 0 {
		t.Fatal("default manifest has no assets")
	}
	langs := m.Languages()
	if len(langs) == 0 || langs[0] != "eng" {
		t.Errorf("Languages() = %v, want eng first", langs)
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.toml")
	content := `
[[asset]]
name = "eng.traineddata"
url = "https://example.com/eng.traineddata"
language = "eng"

[[asset]]
name = "deu.traineddata"
url = "https://example.com/deu.traineddata"
sha256 = "abc123"
language = "deu"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest error: %v", err)
	}
	if len(m.Assets) != 2 {
		t.Fatalf("len(Assets) = %d, want 2", len(m.Assets))
	}
	if m.Assets[1].SHA256 != "abc123" {
		t.Errorf("SHA256 = %q, want abc123", m.Assets[1].SHA256)
	}
	if got := m.Languages(); len(got) != 2 || got[0] != "eng" || got[1] != "deu" {
		t.Errorf("Languages() = %v", got)
	}
}

func TestManifestValidate(t *testing.T) {
	tests := []struct {
		name    string
		m       Manifest
		wantErr bool
	}{
		{"valid", Manifest{Assets: []Asset{{Name: "a", URL: "http://x"}}}, false},
		{"missing name", Manifest{Assets: []Asset{{URL: "http://x"}}}, true},
		{"missing url", Manifest{Assets: []Asset{{Name: "a"}}}, true},
		{"duplicate name", Manifest{Assets: []Asset{{Name: "a", URL: "http://x"}, {Name: "a", URL: "http://y"}}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProvisionerEnsure(t *testing.T) {
	payload := []byte("trained data bytes")
	sum := sha256.Sum256(payload)
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	m := Manifest{Assets: []Asset{{
		Name:   "eng.traineddata",
		URL:    srv.URL + "/eng.traineddata",
		SHA256: hex.EncodeToString(sum[:]),
	}}}

	p := NewProvisioner(dir, m, nil)
	statuses, err := p.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if len(statuses) != 1 || !statuses[0].Downloaded {
		t.Fatalf("statuses = %+v, want one downloaded asset", statuses)
	}

	// Second run: asset present and verified, no new request.
	statuses, err = p.Ensure(context.Background())
	if err != nil {
		t.Fatalf("second Ensure error: %v", err)
	}
	if statuses[0].Downloaded {
		t.Error("second Ensure should not re-download")
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}

	if err := p.Verify(context.Background()); err != nil {
		t.Errorf("Verify error: %v", err)
	}
}

func TestProvisionerEnsureCorruptAsset(t *testing.T) {
	payload := []byte("fresh payload")
	sum := sha256.Sum256(payload)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	// Pre-seed a corrupt file.
	if err := os.WriteFile(filepath.Join(dir, "eng.traineddata"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	m := Manifest{Assets: []Asset{{
		Name:   "eng.traineddata",
		URL:    srv.URL,
		SHA256: hex.EncodeToString(sum[:]),
	}}}
	p := NewProvisioner(dir, m, nil)

	statuses, err := p.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if !statuses[0].Downloaded {
		t.Error("corrupt asset should be re-downloaded")
	}

	got, _ := os.ReadFile(filepath.Join(dir, "eng.traineddata"))
	if string(got) != string(payload) {
		t.Errorf("asset contents = %q, want %q", got, payload)
	}
}

func TestProvisionerEnsureFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	m := Manifest{Assets: []Asset{{Name: "missing.traineddata", URL: srv.URL}}}
	p := NewProvisioner(t.TempDir(), m, nil)

	_, err := p.Ensure(context.Background())
	if err == nil {
		t.Fatal("expected provisioning error")
	}
	if !pkgerrors.Is(err, pkgerrors.ErrCodeAssetProvisioning) {
		t.Errorf("error code = %v, want ASSET_PROVISIONING", pkgerrors.GetCode(err))
	}
}

func TestProvisionerVerifyMissing(t *testing.T) {
	m := Manifest{Assets: []Asset{{Name: "eng.traineddata", URL: "http://example.com"}}}
	p := NewProvisioner(t.TempDir(), m, nil)

	err := p.Verify(context.Background())
	if !pkgerrors.Is(err, pkgerrors.ErrCodeAssetProvisioning) {
		t.Errorf("error code = %v, want ASSET_PROVISIONING", pkgerrors.GetCode(err))
	}
}

func TestProvisionerMemoTracksURL(t *testing.T) {
	oldPayload := []byte("stale trained data")
	oldSum := sha256.Sum256(oldPayload)
	newPayload := []byte("fresh trained data")
	newSum := sha256.Sum256(newPayload)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/eng.traineddata" {
			w.Write(newPayload)
			return
		}
		w.Write(oldPayload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	oldManifest := Manifest{Assets: []Asset{{
		Name:   "eng.traineddata",
		URL:    srv.URL + "/v1/eng.traineddata",
		SHA256: hex.EncodeToString(oldSum[:]),
	}}}
	if _, err := NewProvisioner(dir, oldManifest, nil).Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}

	// Same asset name, new URL and digest. The remembered digest check was
	// for the old URL, so the stale file must be detected and replaced.
	newManifest := Manifest{Assets: []Asset{{
		Name:   "eng.traineddata",
		URL:    srv.URL + "/v2/eng.traineddata",
		SHA256: hex.EncodeToString(newSum[:]),
	}}}
	statuses, err := NewProvisioner(dir, newManifest, nil).Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if !statuses[0].Downloaded {
		t.Fatal("changed URL and digest should trigger a re-download")
	}
	data, err := os.ReadFile(filepath.Join(dir, "eng.traineddata"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(newPayload) {
		t.Errorf("asset content = %q, want new payload", data)
	}
}

func TestProvisionerSendsUserAgent(t *testing.T) {
	payload := []byte("trained data bytes")
	sum := sha256.Sum256(payload)
	var agent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		w.Write(payload)
	}))
	defer srv.Close()

	m := Manifest{Assets: []Asset{{
		Name:   "eng.traineddata",
		URL:    srv.URL + "/eng.traineddata",
		SHA256: hex.EncodeToString(sum[:]),
	}}}
	if _, err := NewProvisioner(t.TempDir(), m, nil).Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure error: %v", err)
	}
	if !strings.HasPrefix(agent, "pdfstruct/") {
		t.Errorf("User-Agent = %q, want pdfstruct/ prefix", agent)
	}
}
