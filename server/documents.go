package server

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/poiesic/docent/core"
)

// maxUploadBytes caps how much of an upload is read into memory.
const maxUploadBytes = 64 << 20 // 64 MiB

func pathID(r *http.Request) (core.ID, bool) {
	raw, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || raw == 0 {
		return 0, false
	}
	return core.ID(raw), true
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.GetDocuments(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]documentView, len(docs))
	for i, doc := range docs {
		views[i] = viewDocument(doc)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read upload")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(header.Filename))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ref, err := s.blobs.Put(r.Context(), data)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	doc, err := s.documents.AddDocument(r.Context(), &core.Document{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		StorageRef:  ref,
		Checksum:    core.ChecksumBytes(data),
	})
	if err != nil {
		s.blobs.Delete(r.Context(), ref)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, viewDocument(doc))
}

func (s *Server) handleProcessDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	if err := s.pipeline.Enqueue(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "processing_started"})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	doc, err := s.documents.GetDocument(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.documents.DeleteDocument(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	// Blob removal is best effort; the record and chunks are gone
	if err := s.blobs.Delete(r.Context(), doc.StorageRef); err != nil {
		s.logger.Warn("error deleting blob", "document", id, "ref", doc.StorageRef, "err", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
