package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pdfstruct/pdfstruct/pkg/buildinfo"
	"github.com/pdfstruct/pdfstruct/pkg/document"
	"github.com/pdfstruct/pdfstruct/pkg/errors"
	"github.com/pdfstruct/pdfstruct/pkg/pipeline"
	"github.com/pdfstruct/pdfstruct/pkg/store"
)

// parseResponse is the body returned by POST /parse.
type parseResponse struct {
	RecordID string             `json:"record_id,omitempty"`
	Document *document.Document `json:"document"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "missing file upload"))
		return
	}
	defer file.Close()

	tmp, err := os.MkdirTemp("", "pdfstruct-upload-*")
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "create upload dir"))
		return
	}
	defer os.RemoveAll(tmp)

	name := filepath.Base(header.Filename)
	if name == "" || name == "." {
		name = "upload.pdf"
	}
	path := filepath.Join(tmp, name)
	dst, err := os.Create(path)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "store upload"))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "store upload"))
		return
	}
	dst.Close()

	opts := s.parseOptions(r)
	result, err := s.runner.Execute(r.Context(), path, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := parseResponse{Document: result.Document}
	if s.store != nil {
		rec := store.NewRecord(name)
		rec.InputSHA256 = result.Document.Metainfo.SHA256
		rec.DocumentHash = result.DocumentHash
		rec.PageCount = result.Document.Metainfo.PageCount
		rec.BlockCount = result.Document.Metainfo.BlockCount
		rec.Formats = opts.Formats
		rec.OCR = opts.OCR
		if err := s.store.Put(r.Context(), rec); err != nil {
			s.logger.Warn("record not stored", "err", err)
		} else {
			resp.RecordID = rec.ID
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) parseOptions(r *http.Request) pipeline.Options {
	opts := pipeline.Options{Logger: s.logger}
	if v := r.FormValue("max_pages"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.MaxPages = n
		}
	}
	if v := r.FormValue("ocr"); v != "" {
		opts.OCR, _ = strconv.ParseBool(v)
	}
	if v := r.FormValue("ocr_languages"); v != "" {
		opts.OCRLanguages = strings.Split(v, ",")
	}
	return opts
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []store.Record{})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []store.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.store == nil {
		s.writeError(w, errors.New(errors.ErrCodeDocumentNotFound, "record not found: %s", id))
		return
	}

	rec, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if s.store == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeError maps coded errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeInputNotFound, errors.ErrCodeDocumentNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeParseFailure, errors.ErrCodeOutputMalformed:
		status = http.StatusUnprocessableEntity
	case errors.ErrCodeAssetProvisioning:
		status = http.StatusServiceUnavailable
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
