package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/docent/ai/mock"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/ingestion"
	"github.com/poiesic/docent/storage"
	"github.com/poiesic/docent/storage/badger"
	"github.com/poiesic/docent/storage/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type watchFixture struct {
	docs    storage.DocumentRepository
	watcher *Watcher
	dir     string
}

func newWatchFixture(t *testing.T) *watchFixture {
	t.Helper()

	docs, chats, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { chats.Close(); docs.Close(); backend.Close() })

	blobs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	pipeline, err := ingestion.NewPipeline(docs, blobs, mock.NewMockProvider(),
		ingestion.WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	watcher, err := NewWatcher(docs, blobs, pipeline, nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { watcher.Stop() })

	return &watchFixture{
		docs:    docs,
		watcher: watcher,
		dir:     t.TempDir(),
	}
}

// waitForDocuments polls until the repository holds want documents.
func (f *watchFixture) waitForDocuments(t *testing.T, want int) []*core.Document {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		docs, err := f.docs.GetDocuments(context.Background())
		require.NoError(t, err)
		if len(docs) >= want {
			return docs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("never saw %d documents", want)
	return nil
}

func TestWatchIngestsExistingFiles(t *testing.T) {
	f := newWatchFixture(t)

	path := filepath.Join(f.dir, "present.txt")
	require.NoError(t, os.WriteFile(path, []byte("Already here. Two sentences."), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.watcher.Watch(ctx, f.dir)

	docs := f.waitForDocuments(t, 1)
	assert.Equal(t, "present.txt", docs[0].Filename)
	assert.Equal(t, "text/plain; charset=utf-8", docs[0].ContentType)
}

func TestWatchPicksUpDroppedFile(t *testing.T) {
	f := newWatchFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.watcher.Watch(ctx, f.dir)

	// Give the watcher a moment to register the directory
	time.Sleep(50 * time.Millisecond)

	path := filepath.Join(f.dir, "dropped.md")
	require.NoError(t, os.WriteFile(path, []byte("# Fresh notes\n\nDropped in."), 0644))

	docs := f.waitForDocuments(t, 1)
	assert.Equal(t, "dropped.md", docs[0].Filename)
}

func TestWatchIgnoresOtherExtensions(t *testing.T) {
	f := newWatchFixture(t)

	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "image.png"), []byte("not text"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "notes.txt"), []byte("Real notes."), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.watcher.Watch(ctx, f.dir)

	docs := f.waitForDocuments(t, 1)
	require.Len(t, docs, 1)
	assert.Equal(t, "notes.txt", docs[0].Filename)
}

func TestWatchDeduplicatesUnchangedContent(t *testing.T) {
	f := newWatchFixture(t)

	path := filepath.Join(f.dir, "stable.txt")
	require.NoError(t, os.WriteFile(path, []byte("Same content."), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.watcher.Watch(ctx, f.dir)

	f.waitForDocuments(t, 1)

	// Rewriting identical bytes fires events but adds no document
	require.NoError(t, os.WriteFile(path, []byte("Same content."), 0644))
	time.Sleep(200 * time.Millisecond)

	docs, err := f.docs.GetDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestIsWatchedExtension(t *testing.T) {
	f := newWatchFixture(t)

	assert.True(t, f.watcher.isWatchedExtension("/drop/file.pdf"))
	assert.True(t, f.watcher.isWatchedExtension("/drop/file.txt"))
	assert.True(t, f.watcher.isWatchedExtension("/drop/file.md"))
	assert.False(t, f.watcher.isWatchedExtension("/drop/file.png"))
	assert.False(t, f.watcher.isWatchedExtension("/drop/file"))
}
