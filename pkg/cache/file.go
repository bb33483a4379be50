package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache stores cache entries on disk for CLI usage.
//
// Entries are sharded by key class (doc, analysis, artifact, asset), so the
// cache directory mirrors the pipeline stages and `pdfstruct cache clear` can
// reason about classes without parsing filenames. Payloads are written raw
// next to a small JSON sidecar holding the expiry, which keeps rendered SVG
// and PNG artifacts out of base64-inflated envelopes.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir.
// The directory is created if it doesn't exist.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// entryMeta is the sidecar written next to each payload file.
type entryMeta struct {
	Class     string    `json:"class"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Get retrieves a value from the cache.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, meta := c.paths(key)

	raw, err := os.ReadFile(meta)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var m entryMeta
	if err := json.Unmarshal(raw, &m); err != nil {
		// Corrupt sidecar, drop the entry and report a miss.
		_ = c.remove(key)
		return nil, false, nil
	}

	if !m.ExpiresAt.IsZero() && time.Now().After(m.ExpiresAt) {
		_ = c.remove(key)
		return nil, false, nil
	}

	data, err := os.ReadFile(payload)
	if os.IsNotExist(err) {
		// Sidecar without payload, clean up and miss.
		_ = c.remove(key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return data, true, nil
}

// Set stores a value in the cache.
// The payload lands via rename so readers never see a partial write.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	payload, meta := c.paths(key)
	if err := os.MkdirAll(filepath.Dir(payload), 0755); err != nil {
		return err
	}

	m := entryMeta{
		Class:    keyClass(key),
		StoredAt: time.Now(),
	}
	if ttl > 0 {
		m.ExpiresAt = m.StoredAt.Add(ttl)
	}
	metaData, err := json.Marshal(m)
	if err != nil {
		return err
	}

	if err := writeAtomic(payload, data); err != nil {
		return err
	}
	return writeAtomic(meta, metaData)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	return c.remove(key)
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

func (c *FileCache) remove(key string) error {
	payload, meta := c.paths(key)
	err := os.Remove(payload)
	if os.IsNotExist(err) {
		err = nil
	}
	if rmErr := os.Remove(meta); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

// paths maps a cache key to its payload and sidecar files.
// Layout: <dir>/<class>/<hash[:2]>/<hash[2:]>{.bin,.meta.json}
func (c *FileCache) paths(key string) (payload, meta string) {
	hash := Hash([]byte(key))
	base := filepath.Join(c.dir, keyClass(key), hash[:2], hash[2:])
	return base + ".bin", base + ".meta.json"
}

// keyClass extracts the entry class from a key like "doc:<hash>".
// Keys without a class prefix land in a shared bucket.
func keyClass(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "misc"
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
