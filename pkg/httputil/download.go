package httputil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// DownloadOptions configures a single [Download] call.
type DownloadOptions struct {
	// SHA256 is the expected hex-encoded digest of the payload.
	// Empty means no verification.
	SHA256 string

	// Client is the HTTP client to use. Nil means http.DefaultClient.
	Client *http.Client

	// UserAgent is sent as the User-Agent header when non-empty.
	UserAgent string

	// Progress, if set, is called with the cumulative byte count as data
	// arrives. It must be fast; it runs on the download goroutine.
	Progress func(written int64)
}

// Download streams the payload at url into dest, verifying its SHA-256
// digest when one is provided.
//
// The payload is written to a temporary file in dest's directory and
// renamed into place only after the digest check passes, so dest never
// holds a truncated or corrupt asset. Network errors and 5xx responses
// are wrapped with [RetryableError] so callers can use [Retry]; digest
// mismatches are permanent failures and returned as-is.
func Download(ctx context.Context, url, dest string, opts DownloadOptions) error {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}
	resp, err := client.Do(req)
	if err != nil {
		return &RetryableError{Err: fmt.Errorf("get %s: %w", url, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500:
		return &RetryableError{Err: fmt.Errorf("get %s: status %d", url, resp.StatusCode)}
	default:
		return fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	hasher := sha256.New()
	var written int64
	w := io.MultiWriter(tmp, hasher)
	buf := make([]byte, 256*1024)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			written += int64(n)
			if opts.Progress != nil {
				opts.Progress(written)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return &RetryableError{Err: fmt.Errorf("read %s: %w", url, rerr)}
		}
	}

	if opts.SHA256 != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if got != opts.SHA256 {
			return fmt.Errorf("digest mismatch for %s: got %s, want %s", url, got, opts.SHA256)
		}
	}

	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// VerifyFile computes the SHA-256 digest of the file at path and compares it
// against the expected hex digest. An empty expectation always verifies.
func VerifyFile(path, sha256hex string) error {
	if sha256hex == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return err
	}
	got := hex.EncodeToString(hasher.Sum(nil))
	if got != sha256hex {
		return fmt.Errorf("digest mismatch for %s: got %s, want %s", path, got, sha256hex)
	}
	return nil
}
