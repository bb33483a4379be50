package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "doc:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected miss before Set")
	}

	// Round trip
	if err := c.Set(ctx, "doc:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "doc:abc")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("expected hit after Set")
	}
	if string(data) != "payload" {
		t.Errorf("Get data = %q, want %q", data, "payload")
	}

	// Delete
	if err := c.Delete(ctx, "doc:abc"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "doc:abc")
	if hit {
		t.Error("expected miss after Delete")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "doc:never"); err != nil {
		t.Errorf("Delete missing key error: %v", err)
	}
}

func TestFileCacheClassSharding(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "doc:abc", []byte("d"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Set(ctx, "artifact:abc", []byte("a"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	for _, class := range []string{"doc", "artifact"} {
		if _, err := os.Stat(filepath.Join(dir, class)); err != nil {
			t.Errorf("expected %s entries under %s/: %v", class, class, err)
		}
	}
}

func TestKeyClass(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"doc:abc123", "doc"},
		{"analysis:abc123", "analysis"},
		{"artifact:abc123", "artifact"},
		{"asset:abc123", "asset"},
		{"noprefix", "misc"},
		{":leading", "misc"},
	}
	for _, tt := range tests {
		if got := keyClass(tt.key); got != tt.want {
			t.Errorf("keyClass(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("stale"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expected expired entry to miss")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestKeyerDistinctness(t *testing.T) {
	k := NewDefaultKeyer()

	doc := k.DocumentKey("abc", DocumentKeyOpts{MaxPages: 10})
	analysis := k.AnalysisKey("abc", AnalysisKeyOpts{MinGap: 1.5})
	artifact := k.ArtifactKey("abc", ArtifactKeyOpts{Format: "json"})

	if doc == analysis || doc == artifact || analysis == artifact {
		t.Error("keys for different entry classes should not collide")
	}

	// Different options produce different keys
	doc2 := k.DocumentKey("abc", DocumentKeyOpts{MaxPages: 10, OCR: true})
	if doc == doc2 {
		t.Error("OCR option should change the document key")
	}

	// Same inputs produce the same key
	if doc != k.DocumentKey("abc", DocumentKeyOpts{MaxPages: 10}) {
		t.Error("DocumentKey should be deterministic")
	}
}

func TestScopedKeyer(t *testing.T) {
	base := NewDefaultKeyer()
	scoped := NewScopedKeyer(base, "tenant1:")

	key := scoped.DocumentKey("abc", DocumentKeyOpts{})
	want := "tenant1:" + base.DocumentKey("abc", DocumentKeyOpts{})
	if key != want {
		t.Errorf("scoped key = %q, want %q", key, want)
	}
}
