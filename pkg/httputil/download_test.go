package httputil

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
)

func TestDownload(t *testing.T) {
	payload := []byte("model weights")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	sum := sha256.Sum256(payload)
	dest := filepath.Join(t.TempDir(), "models", "eng.traineddata")

	var seen int64
	err := Download(context.Background(), srv.URL, dest, DownloadOptions{
		SHA256:   hex.EncodeToString(sum[:]),
		Progress: func(written int64) { seen = written },
	})
	if err != nil {
		t.Fatalf("Download error: %v", err)
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("dest contents = %q, want %q", got, payload)
	}
	if seen != int64(len(payload)) {
		t.Errorf("progress = %d, want %d", seen, len(payload))
	}
}

func TestDownloadDigestMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("corrupted"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "asset.bin")
	err := Download(context.Background(), srv.URL, dest, DownloadOptions{
		SHA256: strings.Repeat("0", 64),
	})
	if err == nil {
		t.Fatal("expected digest mismatch error")
	}
	if isRetryable(err) {
		t.Error("digest mismatch should not be retryable")
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("dest should not exist after failed verification")
	}
}

func TestDownloadServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x"), DownloadOptions{})
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !isRetryable(err) {
		t.Error("5xx responses should be retryable")
	}
}

func TestDownloadNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := Download(context.Background(), srv.URL, filepath.Join(t.TempDir(), "x"), DownloadOptions{})
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if isRetryable(err) {
		t.Error("404 responses should not be retryable")
	}
}

func TestVerifyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "asset")
	payload := []byte("verified content")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(payload)

	if err := VerifyFile(path, hex.EncodeToString(sum[:])); err != nil {
		t.Errorf("VerifyFile error: %v", err)
	}
	if err := VerifyFile(path, strings.Repeat("f", 64)); err == nil {
		t.Error("expected mismatch error")
	}
	// Empty digest skips verification
	if err := VerifyFile(path, ""); err != nil {
		t.Errorf("VerifyFile with empty digest error: %v", err)
	}
}
