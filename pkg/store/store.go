// Package store provides persistence for parse run records.
//
// A Record captures one completed pipeline run: which input was parsed,
// with which options, and where the artifacts landed. Two backends
// implement the Store interface:
//   - file: JSON files in a config directory, for CLI usage
//   - mongo: MongoDB collection, for server deployments
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pdfstruct/pdfstruct/pkg/errors"
)

// Record describes one completed parse run.
type Record struct {
	ID           string    `json:"id" bson:"_id"`
	Filename     string    `json:"filename" bson:"filename"`
	InputSHA256  string    `json:"input_sha256" bson:"input_sha256"`
	DocumentHash string    `json:"document_hash" bson:"document_hash"`
	PageCount    int       `json:"page_count" bson:"page_count"`
	BlockCount   int       `json:"block_count" bson:"block_count"`
	Formats      []string  `json:"formats" bson:"formats"`
	OutputPaths  []string  `json:"output_paths,omitempty" bson:"output_paths,omitempty"`
	OCR          bool      `json:"ocr" bson:"ocr"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// NewRecord creates a record with a fresh ID and timestamp.
func NewRecord(filename string) Record {
	return Record{
		ID:        uuid.NewString(),
		Filename:  filename,
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for record storage backends.
type Store interface {
	// Get retrieves a record by ID. A missing record is a
	// DOCUMENT_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Record, error)

	// Put stores a record, replacing any existing record with the same ID.
	Put(ctx context.Context, rec Record) error

	// List returns records ordered newest first, up to limit.
	// A zero limit returns everything.
	List(ctx context.Context, limit int) ([]Record, error)

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeDocumentNotFound, "record not found: %s", id)
}
