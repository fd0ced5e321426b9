package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrBlobStoreRequired is returned when a blob store is not provided.
	ErrBlobStoreRequired = errors.New("blob store required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrAlreadyProcessing is returned when ingestion is requested for a
	// document that is already being processed.
	ErrAlreadyProcessing = errors.New("document is already processing")

	// ErrChecksumMismatch is returned when stored bytes do not match the
	// document's recorded checksum.
	ErrChecksumMismatch = errors.New("stored bytes do not match document checksum")

	// ErrInvalidMaxAttempts is returned when a retry is configured with
	// a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be > 0")
)
