package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/segment"
	"github.com/poiesic/docent/storage"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
)

// Pipeline orchestrates document ingestion: fetching stored bytes,
// extracting text, chunking, embedding, and persisting chunk rows.
// Each document moves through the pending -> processing -> ready/failed
// lifecycle exactly once per ingestion run.
type Pipeline struct {
	documents     storage.DocumentRepository
	blobs         storage.BlobStore
	embedder      ai.Embedder
	extractor     *Extractor
	pool          *ants.Pool
	maxChunkChars int
	maxAttempts   int
	baseDelay     time.Duration
	logger        *slog.Logger

	mu       sync.Mutex
	inFlight map[core.ID]struct{}
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMaxChunkChars sets the chunk size cap passed to the segmenter.
// Default is segment.DefaultMaxChunkChars.
func WithMaxChunkChars(max int) Option {
	return func(p *Pipeline) error {
		if max < 1 {
			return fmt.Errorf("max chunk chars must be > 0, got %d", max)
		}
		p.maxChunkChars = max
		return nil
	}
}

// WithRetry configures embedding retry behavior.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.baseDelay = baseDelay
		return nil
	}
}

// WithExtractor sets a custom text extractor.
func WithExtractor(extractor *Extractor) Option {
	return func(p *Pipeline) error {
		if extractor != nil {
			p.extractor = extractor
		}
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	blobs storage.BlobStore,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if blobs == nil {
		return nil, ErrBlobStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		documents:     documents,
		blobs:         blobs,
		embedder:      provider.Embedder(),
		extractor:     NewExtractor(),
		pool:          pool,
		maxChunkChars: segment.DefaultMaxChunkChars,
		maxAttempts:   defaultMaxAttempts,
		baseDelay:     defaultBaseDelay,
		logger:        slog.Default(),
		inFlight:      make(map[core.ID]struct{}),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Enqueue marks a document processing and submits it for asynchronous
// ingestion. Returns ErrAlreadyProcessing if an ingestion run for the
// document is already underway. Errors during the async run are
// recorded on the document's status and logged, not returned.
func (p *Pipeline) Enqueue(ctx context.Context, id core.ID) error {
	if err := p.begin(ctx, id, false); err != nil {
		return err
	}

	submitErr := p.pool.Submit(func() {
		defer p.finish(id)
		if err := p.run(context.Background(), id); err != nil {
			p.logger.Error("error ingesting document", "document", id, "err", err)
		}
	})
	if submitErr != nil {
		p.finish(id)
		p.fail(context.Background(), id)
		return submitErr
	}
	return nil
}

// Process runs a full ingestion synchronously. Used by the reingest
// command; the HTTP surface goes through Enqueue. Unlike Enqueue it
// accepts documents whose stored status is still processing, so a run
// cut short by a crash can be recovered.
func (p *Pipeline) Process(ctx context.Context, id core.ID) error {
	if err := p.begin(ctx, id, true); err != nil {
		return err
	}
	defer p.finish(id)
	return p.run(ctx, id)
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// begin claims the document for ingestion and marks it processing.
// The in-flight map serializes runs within this process; the stored
// status additionally rejects documents another process may be working
// on. takeover skips the stored-status check so a status left behind
// by a crashed run does not block the document forever.
func (p *Pipeline) begin(ctx context.Context, id core.ID, takeover bool) error {
	p.mu.Lock()
	if _, busy := p.inFlight[id]; busy {
		p.mu.Unlock()
		return ErrAlreadyProcessing
	}
	p.inFlight[id] = struct{}{}
	p.mu.Unlock()

	doc, err := p.documents.GetDocument(ctx, id)
	if err != nil {
		p.finish(id)
		return err
	}
	if doc.Status == core.StatusProcessing && !takeover {
		p.finish(id)
		return ErrAlreadyProcessing
	}

	if _, err := p.documents.UpdateDocumentStatus(ctx, id, core.StatusProcessing); err != nil {
		p.finish(id)
		return err
	}
	return nil
}

func (p *Pipeline) finish(id core.ID) {
	p.mu.Lock()
	delete(p.inFlight, id)
	p.mu.Unlock()
}

// fail marks the document failed, logging rather than propagating any
// status-update error.
func (p *Pipeline) fail(ctx context.Context, id core.ID) {
	if _, err := p.documents.UpdateDocumentStatus(ctx, id, core.StatusFailed); err != nil {
		p.logger.Error("error marking document failed", "document", id, "err", err)
	}
}

// run executes the ingestion steps for a document already marked
// processing. Any step failure marks the document failed.
func (p *Pipeline) run(ctx context.Context, id core.ID) error {
	chunks, err := p.buildChunks(ctx, id)
	if err != nil {
		p.fail(ctx, id)
		return err
	}

	// The swap is atomic, so a concurrent similarity query sees either
	// the old generation or the new one.
	if err := p.documents.ReplaceChunks(ctx, id, chunks); err != nil {
		p.fail(ctx, id)
		return err
	}

	if _, err := p.documents.UpdateDocumentStatus(ctx, id, core.StatusReady); err != nil {
		return err
	}

	p.logger.Info("document ingested", "document", id, "chunks", len(chunks))
	return nil
}

// buildChunks produces the document's embedded chunk rows.
func (p *Pipeline) buildChunks(ctx context.Context, id core.ID) ([]*core.DocumentChunk, error) {
	doc, err := p.documents.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := p.blobs.Fetch(ctx, doc.StorageRef)
	if err != nil {
		return nil, err
	}

	if doc.Checksum != 0 && core.ChecksumBytes(data) != doc.Checksum {
		return nil, ErrChecksumMismatch
	}

	text, err := p.extractor.Extract(ctx, doc.ContentType, data)
	if err != nil {
		return nil, err
	}

	texts := segment.Split(text, p.maxChunkChars)
	if len(texts) == 0 {
		return nil, nil
	}

	var embeddings [][]float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		embeddings, embedErr = p.embedder.EmbedTexts(ctx, texts)
		return embedErr
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		return nil, err
	}

	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding result mismatch. expected %d, received %d", len(texts), len(embeddings))
	}

	chunks := make([]*core.DocumentChunk, len(texts))
	for i, content := range texts {
		chunks[i] = &core.DocumentChunk{
			DocumentId: id,
			Index:      i,
			Content:    content,
			Vector:     core.NormalizeVector(embeddings[i]),
		}
	}
	return chunks, nil
}
