// Package cache provides pluggable caching for pipeline stages and assets.
//
// Three backends implement the Cache interface:
//   - FileCache: file-based storage for CLI usage
//   - RedisCache: Redis-backed storage for server deployments
//   - NullCache: no-op cache for testing or when caching is disabled
//
// Cache keys are generated through the Keyer interface so that document,
// analysis, and artifact entries for the same input never collide. Keys are
// SHA-256 hashes of their structured components, which keeps them safe for
// filesystems and Redis alike.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// TTLs for the different cache entry classes.
const (
	// TTLDocument is how long extracted documents stay cached.
	TTLDocument = 7 * 24 * time.Hour

	// TTLAnalysis is how long analyzed (segmented) documents stay cached.
	TTLAnalysis = 7 * 24 * time.Hour

	// TTLArtifact is how long rendered artifacts (JSON, SVG, PNG) stay cached.
	TTLArtifact = 24 * time.Hour
)

// Cache is the storage contract shared by all backends.
// Get returns (data, hit, error); a miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DocumentKeyOpts are the options that affect extraction output and therefore
// participate in the document cache key.
type DocumentKeyOpts struct {
	MaxPages int
	OCR      bool
	OCRLangs []string
}

// AnalysisKeyOpts are the options that affect block segmentation.
type AnalysisKeyOpts struct {
	MinGap       float64
	HeadingScale float64
}

// ArtifactKeyOpts are the options that affect rendered artifacts.
type ArtifactKeyOpts struct {
	Format   string
	Detailed bool
}

// Keyer generates cache keys for the different entry classes.
type Keyer interface {
	// AssetKey generates a key for a provisioned model asset.
	AssetKey(name, url string) string

	// DocumentKey generates a key for an extracted document.
	// inputHash is the SHA-256 of the input file contents.
	DocumentKey(inputHash string, opts DocumentKeyOpts) string

	// AnalysisKey generates a key for an analyzed document.
	AnalysisKey(docHash string, opts AnalysisKeyOpts) string

	// ArtifactKey generates a key for a rendered artifact.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard Keyer implementation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// AssetKey generates a key for a provisioned model asset.
func (k *DefaultKeyer) AssetKey(name, url string) string {
	return hashKey("asset", name, url)
}

// DocumentKey generates a key for an extracted document.
func (k *DefaultKeyer) DocumentKey(inputHash string, opts DocumentKeyOpts) string {
	return hashKey("doc", inputHash, opts)
}

// AnalysisKey generates a key for an analyzed document.
func (k *DefaultKeyer) AnalysisKey(docHash string, opts AnalysisKeyOpts) string {
	return hashKey("analysis", docHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", docHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

// NullCache discards everything and always misses.
// It backs --no-cache runs and keeps the pipeline free of nil checks.
type NullCache struct{}

// NewNullCache creates a cache that never stores anything.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always reports a miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close is a no-op.
func (c *NullCache) Close() error {
	return nil
}

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)

// hashKey builds a class-prefixed cache key from structured components.
// Each part is JSON-encoded into the digest separately so that adjacent
// string parts cannot collide by concatenation. The resulting key looks
// like "doc:<64 hex chars>" and is safe for both filesystems and Redis.
func hashKey(class string, parts ...interface{}) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		// Encode cannot fail for the option structs and strings used here.
		_ = enc.Encode(p)
	}
	return class + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash computes the SHA-256 of data as a 64-character hex string.
// Input files and extracted documents are identified by this hash.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
