// Package server provides the HTTP boundary for document management
// and retrieval-augmented chat.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/poiesic/docent/converse"
	"github.com/poiesic/docent/ingestion"
	"github.com/poiesic/docent/storage"
)

// defaultUserID stands in for an authenticated caller when no
// X-User-ID header is supplied. Auth itself lives in front of this
// service.
const defaultUserID = "local"

// Server is the HTTP server for the document and chat API.
type Server struct {
	documents storage.DocumentRepository
	chats     storage.ChatRepository
	blobs     storage.BlobStore
	pipeline  *ingestion.Pipeline
	responder *converse.Responder
	addr      string
	logger    *slog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(
	documents storage.DocumentRepository,
	chats storage.ChatRepository,
	blobs storage.BlobStore,
	pipeline *ingestion.Pipeline,
	responder *converse.Responder,
	addr string,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		documents: documents,
		chats:     chats,
		blobs:     blobs,
		pipeline:  pipeline,
		responder: responder,
		addr:      addr,
		logger:    logger,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("POST /api/documents", s.handleUploadDocument)
	mux.HandleFunc("POST /api/documents/{id}/process", s.handleProcessDocument)
	mux.HandleFunc("DELETE /api/documents/{id}", s.handleDeleteDocument)

	mux.HandleFunc("GET /api/chats", s.handleListChats)
	mux.HandleFunc("POST /api/chats", s.handleCreateChat)
	mux.HandleFunc("GET /api/chats/{id}", s.handleGetChat)
	mux.HandleFunc("POST /api/chats/{id}/messages", s.handlePostMessage)

	mux.HandleFunc("GET /api/health", s.handleHealth)

	return s.loggingMiddleware(mux)
}

// Start runs the HTTP server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second, // Longer for streaming
	}

	s.logger.Info("http server starting", "addr", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// userID resolves the calling user from the X-User-ID header.
func userID(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
