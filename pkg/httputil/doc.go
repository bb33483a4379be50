// Package httputil provides HTTP utilities for model-asset downloads.
//
// # Overview
//
// This package provides infrastructure used by the asset provisioner:
//
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//   - [Download]: Streaming download with SHA-256 verification
//
// # Caching
//
// [Cache] stores small HTTP responses in the filesystem with configurable
// TTL. Large asset payloads are written directly to their target path by
// [Download] and are never held in the cache.
//
// # Retry
//
// [Retry] wraps operations with automatic retry for transient failures
// (network errors, 5xx server errors). Only errors wrapped with
// [RetryableError] trigger another attempt; everything else fails fast.
package httputil
