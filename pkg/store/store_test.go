package store

import (
	"context"
	"testing"
	"time"

	"github.com/pdfstruct/pdfstruct/pkg/errors"
)

func TestNewRecord(t *testing.T) {
	rec := NewRecord("report.pdf")
	if rec.ID == "" {
		t.Error("expected generated ID")
	}
	if rec.Filename != "report.pdf" {
		t.Errorf("unexpected filename: %s", rec.Filename)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected timestamp")
	}

	other := NewRecord("report.pdf")
	if rec.ID == other.ID {
		t.Error("IDs should be unique")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	rec := NewRecord("a.pdf")
	rec.PageCount = 3
	rec.Formats = []string{"json"}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Filename != "a.pdf" || got.PageCount != 3 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, err = s.Get(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for missing record")
	}
	if errors.GetCode(err) != errors.ErrCodeDocumentNotFound {
		t.Errorf("expected DOCUMENT_NOT_FOUND, got %s", errors.GetCode(err))
	}
}

func TestFileStoreListOrderAndLimit(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		rec := NewRecord("doc.pdf")
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		rec.PageCount = i
		if err := s.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].PageCount != 2 {
		t.Errorf("expected newest first, got %+v", records[0])
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("expected limit of 2, got %d", len(limited))
	}
}

func TestFileStoreDelete(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	ctx := context.Background()

	rec := NewRecord("b.pdf")
	if err := s.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, rec.ID); err == nil {
		t.Error("record should be gone after delete")
	}

	// deleting again is not an error
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Errorf("double delete should be a no-op: %v", err)
	}
}
