package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// FragmentFunc receives one generated text fragment. Fragments arrive
// in emission order; returning an error aborts the generation stream.
type FragmentFunc func(ctx context.Context, fragment []byte) error

// Generator produces a reply to an ordered conversation.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate produces a reply to the conversation turns. If onFragment
	// is non-nil it is invoked for every fragment as the provider emits
	// it; the accumulated reply text is returned once the stream reaches
	// its natural end. Cancelling ctx stops generation.
	// Returns an error if the provider is unreachable or the stream is
	// aborted before completing.
	Generate(ctx context.Context, turns []Turn, onFragment FragmentFunc) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the reply generation service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
