package storage

import (
	"context"

	"github.com/poiesic/docent/core"
)

// DocumentRepository provides operations for managing documents and
// their chunk rows. Implementations must be thread-safe and support
// concurrent access.
type DocumentRepository interface {
	// AddDocument adds a document to storage.
	// For documents with ID=0, generates a new ID from sequence.
	// Defaults Status to pending and Sensitivity to amber when unset,
	// and sets UploadedAt if not already set.
	// Returns the document with generated fields populated.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves all documents, newest first.
	GetDocuments(ctx context.Context) ([]*core.Document, error)

	// UpdateDocumentStatus sets a document's lifecycle status.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateDocumentStatus(ctx context.Context, id core.ID, status core.DocumentStatus) (*core.Document, error)

	// DeleteDocument removes a document and all of its chunks in one
	// transaction. Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// ReplaceChunks atomically swaps a document's chunk set: existing
	// chunks are removed and the given chunks written inside a single
	// transaction, so a concurrent similarity query never observes a
	// mix of old and new chunks. Returns ErrNotFound if the document
	// doesn't exist.
	ReplaceChunks(ctx context.Context, id core.ID, chunks []*core.DocumentChunk) error

	// GetChunks retrieves a document's chunks ordered by chunk index.
	GetChunks(ctx context.Context, id core.ID) ([]*core.DocumentChunk, error)

	// TopKSimilar finds the k chunks most similar to the query vector
	// across all documents, restricted to cosine similarity > minScore.
	// Results are ordered by score descending and labeled with the
	// source document's display name.
	TopKSimilar(ctx context.Context, vector []float32, k int, minScore float32) ([]*core.RetrievedChunk, error)

	// Close closes the repository and releases resources.
	Close() error
}

// ChatRepository provides operations for managing chats and their
// message transcripts. Messages are append-only.
type ChatRepository interface {
	// AddChat adds a chat to storage, generating its ID from sequence
	// and setting CreatedAt if not already set.
	AddChat(ctx context.Context, chat *core.Chat) (*core.Chat, error)

	// GetChat retrieves a single chat by ID.
	// Returns ErrNotFound if the chat doesn't exist.
	GetChat(ctx context.Context, id core.ID) (*core.Chat, error)

	// GetChats retrieves all chats owned by the user, newest first.
	GetChats(ctx context.Context, userID string) ([]*core.Chat, error)

	// AddMessage appends a message to its chat, generating its ID from
	// sequence and setting CreatedAt if not already set.
	// Returns ErrNotFound if the chat doesn't exist.
	AddMessage(ctx context.Context, msg *core.Message) (*core.Message, error)

	// GetMessages retrieves a chat's messages in chronological order.
	// Returns ErrNotFound if the chat doesn't exist.
	GetMessages(ctx context.Context, chatID core.ID) ([]*core.Message, error)

	// Close closes the repository and releases resources.
	Close() error
}

// BlobStore persists raw uploaded bytes outside the record store.
// Documents reference their blob through an opaque storage reference.
type BlobStore interface {
	// Put stores the given bytes and returns an opaque reference for
	// later retrieval.
	Put(ctx context.Context, data []byte) (string, error)

	// Fetch retrieves the bytes stored under the reference.
	// Returns ErrNotFound if the reference is invalid.
	Fetch(ctx context.Context, ref string) ([]byte, error)

	// Delete removes the bytes stored under the reference.
	// Deleting an unknown reference is not an error.
	Delete(ctx context.Context, ref string) error
}
