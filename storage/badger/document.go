package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// TopKSimilar delegates to the backend.
func (r *DocumentRepository) TopKSimilar(ctx context.Context, vector []float32, k int, minScore float32) ([]*core.RetrievedChunk, error) {
	return r.backend.TopKSimilar(ctx, vector, k, minScore)
}

// AddDocument adds a document to storage.
func (r *DocumentRepository) AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error) {
	if doc.Status == "" {
		doc.Status = core.StatusPending
	}
	if doc.Sensitivity == "" {
		doc.Sensitivity = core.SensitivityAmber
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := nextSequenceID(r.idSeq)
		if err != nil {
			return err
		}
		doc.Id = nextID

		if err := core.ValidateDocument(doc); err != nil {
			return err
		}

		key := makeDocumentKey(doc.Id)
		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return doc, err
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves all documents, newest first.
func (r *DocumentRepository) GetDocuments(ctx context.Context) ([]*core.Document, error) {
	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.Document
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Document keys are decimal strings, so iteration order is
	// lexicographic, not chronological. Sort here instead.
	slices.SortFunc(results, func(a, b *core.Document) int {
		if a.UploadedAt.After(b.UploadedAt) {
			return -1
		}
		if a.UploadedAt.Before(b.UploadedAt) {
			return 1
		}
		if a.Id > b.Id {
			return -1
		}
		if a.Id < b.Id {
			return 1
		}
		return 0
	})

	return results, nil
}

// UpdateDocumentStatus sets a document's lifecycle status.
func (r *DocumentRepository) UpdateDocumentStatus(ctx context.Context, id core.ID, status core.DocumentStatus) (*core.Document, error) {
	if err := core.ValidateStatus(status); err != nil {
		return nil, err
	}

	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		doc.Status = status
		if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
			return err
		}
		result = doc
		return tx.Commit()
	}, true)

	return result, err
}

// DeleteDocument removes a document and all of its chunks in one
// transaction.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeDocumentKey(id)
		doc, err := readDocument(tx, key)
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		if err := deleteChunks(tx, id); err != nil {
			return err
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ReplaceChunks atomically swaps a document's chunk set.
func (r *DocumentRepository) ReplaceChunks(ctx context.Context, id core.ID, chunks []*core.DocumentChunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if doc == nil {
			return storage.ErrNotFound
		}

		// Delete-then-insert inside one transaction, so readers see
		// either the old generation or the new one, never a mix.
		if err := deleteChunks(tx, id); err != nil {
			return err
		}

		for _, chunk := range chunks {
			chunk.DocumentId = id
			key := makeChunkKey(id, chunk.Index)
			if err := tx.Set(key, storage.MarshalDocumentChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetChunks retrieves a document's chunks ordered by chunk index.
func (r *DocumentRepository) GetChunks(ctx context.Context, id core.ID) ([]*core.DocumentChunk, error) {
	var results []*core.DocumentChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkKey(id)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.DocumentChunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalDocumentChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	return results, err
}

// Helper methods

// readDocument reads a document from the transaction.
func readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// deleteChunks removes all chunk rows for a document within the
// transaction.
func deleteChunks(tx *badger.Txn, id core.ID) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialChunkKey(id)
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)

	var keys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		keys = append(keys, iter.Item().KeyCopy(nil))
	}
	iter.Close()

	for _, key := range keys {
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
