package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

// ChatRepository implements storage.ChatRepository for BadgerDB.
type ChatRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
	msgSeq  *badger.Sequence
}

var _ storage.ChatRepository = (*ChatRepository)(nil)

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(backend *Backend) (*ChatRepository, error) {
	idSeq, err := backend.GetSequence(chatIDSeq)
	if err != nil {
		return nil, err
	}

	msgSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		idSeq.Release()
		return nil, err
	}

	return &ChatRepository{
		backend: backend,
		idSeq:   idSeq,
		msgSeq:  msgSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *ChatRepository) Close() error {
	if err := r.idSeq.Release(); err != nil {
		r.msgSeq.Release()
		return err
	}
	return r.msgSeq.Release()
}

// AddChat adds a chat to storage.
func (r *ChatRepository) AddChat(ctx context.Context, chat *core.Chat) (*core.Chat, error) {
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = time.Now().UTC()
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := nextSequenceID(r.idSeq)
		if err != nil {
			return err
		}
		chat.Id = nextID

		if err := core.ValidateChat(chat); err != nil {
			return err
		}

		key := makeChatKey(chat.Id)
		if err := tx.Set(key, storage.MarshalChat(chat)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return chat, err
}

// GetChat retrieves a single chat by ID.
func (r *ChatRepository) GetChat(ctx context.Context, id core.ID) (*core.Chat, error) {
	var result *core.Chat
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readChat(tx, makeChatKey(id))
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

// GetChats retrieves all chats owned by the user, newest first.
func (r *ChatRepository) GetChats(ctx context.Context, userID string) ([]*core.Chat, error) {
	var results []*core.Chat
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chatPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chat *core.Chat
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chat, err = storage.UnmarshalChat(val)
				return err
			})
			if err != nil {
				return err
			}
			if chat != nil && chat.UserId == userID {
				results = append(results, chat)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Chat) int {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		if a.CreatedAt.Before(b.CreatedAt) {
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

// AddMessage appends a message to its chat.
func (r *ChatRepository) AddMessage(ctx context.Context, msg *core.Message) (*core.Message, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		chat, err := readChat(tx, makeChatKey(msg.ChatId))
		if err != nil {
			return err
		}
		if chat == nil {
			return storage.ErrNotFound
		}

		nextID, err := nextSequenceID(r.msgSeq)
		if err != nil {
			return err
		}
		msg.Id = nextID

		if err := core.ValidateMessage(msg); err != nil {
			return err
		}

		key := makeMessageKey(msg.ChatId, msg.CreatedAt, msg.Id)
		if err := tx.Set(key, storage.MarshalMessage(msg)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return msg, err
}

// GetMessages retrieves a chat's messages in chronological order.
// Message keys embed the timestamp BigEndian, so prefix iteration
// already yields chronological order.
func (r *ChatRepository) GetMessages(ctx context.Context, chatID core.ID) ([]*core.Message, error) {
	var results []*core.Message
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		chat, err := readChat(tx, makeChatKey(chatID))
		if err != nil {
			return err
		}
		if chat == nil {
			return storage.ErrNotFound
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialMessageKey(chatID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var msg *core.Message
			err := iter.Item().Value(func(val []byte) error {
				var err error
				msg, err = storage.UnmarshalMessage(val)
				return err
			})
			if err != nil {
				return err
			}
			if msg != nil {
				results = append(results, msg)
			}
		}
		return nil
	}, false)
	return results, err
}

// Helper methods

// readChat reads a chat from the transaction.
func readChat(tx *badger.Txn, key []byte) (*core.Chat, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var chat *core.Chat
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		chat, unmarshalErr = storage.UnmarshalChat(val)
		return unmarshalErr
	})
	return chat, err
}

// nextSequenceID returns the next non-zero ID from a sequence.
// BadgerDB sequences can return 0 on first call, so we skip it.
func nextSequenceID(seq *badger.Sequence) (core.ID, error) {
	next, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if next == 0 {
		next, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}
