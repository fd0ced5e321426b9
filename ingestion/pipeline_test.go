package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/docent/ai/mock"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
	"github.com/poiesic/docent/storage/badger"
	"github.com/poiesic/docent/storage/blob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFixture struct {
	docs     storage.DocumentRepository
	blobs    storage.BlobStore
	provider *mock.MockProvider
	pipeline *Pipeline
}

func newPipelineFixture(t *testing.T, opts ...Option) *pipelineFixture {
	t.Helper()

	docs, chats, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { chats.Close(); docs.Close(); backend.Close() })

	blobs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	provider := mock.NewMockProvider().(*mock.MockProvider)

	opts = append([]Option{WithRetry(1, time.Millisecond)}, opts...)
	pipeline, err := NewPipeline(docs, blobs, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	return &pipelineFixture{
		docs:     docs,
		blobs:    blobs,
		provider: provider,
		pipeline: pipeline,
	}
}

// addDocument stores blob bytes and the matching document row.
func (f *pipelineFixture) addDocument(t *testing.T, name, content string) *core.Document {
	t.Helper()
	ctx := context.Background()

	data := []byte(content)
	ref, err := f.blobs.Put(ctx, data)
	require.NoError(t, err)

	doc, err := f.docs.AddDocument(ctx, &core.Document{
		Filename:    name,
		ContentType: "text/plain",
		Size:        int64(len(data)),
		StorageRef:  ref,
		Checksum:    core.ChecksumBytes(data),
	})
	require.NoError(t, err)
	return doc
}

// waitForStatus polls until a document leaves the processing state.
func (f *pipelineFixture) waitForStatus(t *testing.T, id core.ID, want core.DocumentStatus) {
	t.Helper()
	ctx := context.Background()
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		doc, err := f.docs.GetDocument(ctx, id)
		require.NoError(t, err)
		if doc.Status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	doc, _ := f.docs.GetDocument(ctx, id)
	t.Fatalf("document never reached %s, last status %s", want, doc.Status)
}

func TestProcessSuccess(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	doc := f.addDocument(t, "animals.txt", "A cat sat. A dog ran. A bird flew.")

	require.NoError(t, f.pipeline.Process(ctx, doc.Id))

	updated, err := f.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, updated.Status)

	chunks, err := f.docs.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, doc.Id, chunk.DocumentId)
		assert.NotEmpty(t, chunk.Content)
		require.NotEmpty(t, chunk.Vector)

		var norm float32
		for _, v := range chunk.Vector {
			norm += v * v
		}
		assert.InDelta(t, 1.0, norm, 0.001, "chunk vectors are unit length")
	}
}

func TestProcessEmbedderFailureMarksFailed(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	f.provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding host unreachable")
	}

	doc := f.addDocument(t, "broken.txt", "Some text to embed.")

	err := f.pipeline.Process(ctx, doc.Id)
	require.Error(t, err)

	updated, err := f.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, updated.Status)

	chunks, err := f.docs.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestProcessChecksumMismatch(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	data := []byte("original content")
	ref, err := f.blobs.Put(ctx, data)
	require.NoError(t, err)

	doc, err := f.docs.AddDocument(ctx, &core.Document{
		Filename:    "tampered.txt",
		ContentType: "text/plain",
		Size:        int64(len(data)),
		StorageRef:  ref,
		Checksum:    core.ChecksumBytes([]byte("different content")),
	})
	require.NoError(t, err)

	err = f.pipeline.Process(ctx, doc.Id)
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	updated, err := f.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, updated.Status)
}

func TestProcessEmptyDocument(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	doc := f.addDocument(t, "empty.txt", "   \n\t  ")

	require.NoError(t, f.pipeline.Process(ctx, doc.Id))

	updated, err := f.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, updated.Status)

	chunks, err := f.docs.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestEnqueueRefusesWhileProcessing(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	release := make(chan struct{})
	f.provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		<-release
		result := make([][]float32, len(texts))
		for i := range result {
			result[i] = []float32{1, 0, 0}
		}
		return result, nil
	}

	doc := f.addDocument(t, "slow.txt", "Takes a while to embed.")

	require.NoError(t, f.pipeline.Enqueue(ctx, doc.Id))

	err := f.pipeline.Enqueue(ctx, doc.Id)
	assert.ErrorIs(t, err, ErrAlreadyProcessing)

	close(release)
	f.waitForStatus(t, doc.Id, core.StatusReady)
}

func TestProcessRecoversStaleProcessingStatus(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	doc := f.addDocument(t, "stuck.txt", "A run died halfway through this one.")

	// The stored status a crashed run leaves behind. No run is actually
	// in flight.
	_, err := f.docs.UpdateDocumentStatus(ctx, doc.Id, core.StatusProcessing)
	require.NoError(t, err)

	// The async path still treats the stored status as authoritative
	err = f.pipeline.Enqueue(ctx, doc.Id)
	assert.ErrorIs(t, err, ErrAlreadyProcessing)

	// The synchronous path takes the document over and completes it
	require.NoError(t, f.pipeline.Process(ctx, doc.Id))

	updated, err := f.docs.GetDocument(ctx, doc.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusReady, updated.Status)

	chunks, err := f.docs.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
}

func TestEnqueueUnknownDocument(t *testing.T) {
	f := newPipelineFixture(t)

	err := f.pipeline.Enqueue(context.Background(), 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReingestDoesNotDuplicateChunks(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()

	doc := f.addDocument(t, "versioned.txt", "First sentence. Second sentence. Third sentence.")

	require.NoError(t, f.pipeline.Process(ctx, doc.Id))

	before, err := f.docs.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	require.NotEmpty(t, before)

	// Running ingestion again replaces the chunk generation instead of
	// stacking a second one on top.
	require.NoError(t, f.pipeline.Process(ctx, doc.Id))

	after, err := f.docs.GetChunks(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i, chunk := range after {
		assert.Equal(t, i, chunk.Index)
	}
}

func TestNewPipelineValidation(t *testing.T) {
	docs, chats, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() { chats.Close(); docs.Close(); backend.Close() }()

	blobs, err := blob.NewFSStore(t.TempDir())
	require.NoError(t, err)

	provider := mock.NewMockProvider()

	_, err = NewPipeline(nil, blobs, provider)
	assert.ErrorIs(t, err, ErrDocumentRepositoryRequired)

	_, err = NewPipeline(docs, nil, provider)
	assert.ErrorIs(t, err, ErrBlobStoreRequired)

	_, err = NewPipeline(docs, blobs, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	_, err = NewPipeline(docs, blobs, provider, WithRetry(0, time.Second))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	_, err = NewPipeline(docs, blobs, provider, WithMaxChunkChars(0))
	assert.Error(t, err)
}
