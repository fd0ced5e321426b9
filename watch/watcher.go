// Package watch monitors a drop folder and registers new files as
// documents. Created or modified files are stored to the blob store,
// recorded as pending documents, and enqueued for ingestion.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/ingestion"
	"github.com/poiesic/docent/storage"
)

// defaultExtensions are the file types picked up from the drop folder.
var defaultExtensions = []string{".pdf", ".txt", ".md"}

// Watcher wires a drop folder to the ingestion pipeline.
type Watcher struct {
	watcher    *fsnotify.Watcher
	documents  storage.DocumentRepository
	blobs      storage.BlobStore
	pipeline   *ingestion.Pipeline
	extensions []string
	logger     *slog.Logger

	mu   sync.Mutex
	seen map[string]uint64 // path -> checksum of last stored content
}

// NewWatcher creates a drop-folder watcher.
func NewWatcher(
	documents storage.DocumentRepository,
	blobs storage.BlobStore,
	pipeline *ingestion.Pipeline,
	extensions []string,
	logger *slog.Logger,
) (*Watcher, error) {
	if documents == nil {
		return nil, ingestion.ErrDocumentRepositoryRequired
	}
	if blobs == nil {
		return nil, ingestion.ErrBlobStoreRequired
	}
	if pipeline == nil {
		return nil, errors.New("ingestion pipeline required")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if len(extensions) == 0 {
		extensions = defaultExtensions
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		watcher:    w,
		documents:  documents,
		blobs:      blobs,
		pipeline:   pipeline,
		extensions: extensions,
		logger:     logger,
		seen:       make(map[string]uint64),
	}, nil
}

// Watch monitors dir until the context is canceled. Files already
// present in the directory are ingested on startup, then filesystem
// events drive the rest.
func (w *Watcher) Watch(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(dir); err != nil {
		return err
	}

	w.logger.Info("watching drop folder", "dir", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		w.ingestFile(ctx, filepath.Join(dir, entry.Name()))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.ingestFile(ctx, event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "err", err)
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// ingestFile stores a dropped file as a document and enqueues it.
// Repeated events for unchanged content are ignored.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	if !w.isWatchedExtension(path) {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Error("error reading dropped file", "path", path, "err", err)
		return
	}
	if len(data) == 0 {
		// Write events often fire before content lands; a later
		// event will carry the bytes
		return
	}

	checksum := core.ChecksumBytes(data)
	w.mu.Lock()
	if w.seen[path] == checksum {
		w.mu.Unlock()
		return
	}
	w.seen[path] = checksum
	w.mu.Unlock()

	ref, err := w.blobs.Put(ctx, data)
	if err != nil {
		w.logger.Error("error storing dropped file", "path", path, "err", err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := w.documents.AddDocument(ctx, &core.Document{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Size:        int64(len(data)),
		StorageRef:  ref,
		Checksum:    checksum,
	})
	if err != nil {
		w.logger.Error("error registering dropped file", "path", path, "err", err)
		return
	}

	if err := w.pipeline.Enqueue(ctx, doc.Id); err != nil {
		w.logger.Error("error enqueueing dropped file", "path", path, "document", doc.Id, "err", err)
		return
	}

	w.logger.Info("dropped file registered", "path", path, "document", doc.Id)
}

// isWatchedExtension checks if the file has a watched extension.
func (w *Watcher) isWatchedExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range w.extensions {
		if ext == e {
			return true
		}
	}
	return false
}
