package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/poiesic/docent/core"
)

// Key prefixes for different data types
const (
	documentPrefix      = "docrec"
	documentIDSeq       = "docrecseq"
	documentChunkPrefix = "docchk"
	chatPrefix          = "chtrec"
	chatIDSeq           = "chtrecseq"
	messagePrefix       = "msgrec"
	messageIDSeq        = "msgrecseq"
)

// makeDocumentKey generates a key for a document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeChunkKey generates a composite key for a document chunk.
// Format: prefix:documentID:index, both BigEndian so a prefix scan
// yields a document's chunks in index order.
func makeChunkKey(documentID core.ID, index int) []byte {
	prefix := documentChunkPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for documentID + 8 bytes for index
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(index))
	return buf
}

// makePartialChunkKey generates a partial key for scanning one
// document's chunks.
// Format: prefix:documentID
func makePartialChunkKey(documentID core.ID) []byte {
	prefix := documentChunkPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeChatKey generates a key for a chat by ID.
func makeChatKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chatPrefix, id))
}

// makeMessageKey generates a composite key for a chat message.
// Format: prefix:chatID:timestamp:id, all BigEndian so a prefix scan
// yields a chat's messages in chronological order.
func makeMessageKey(chatID core.ID, createdAt time.Time, id core.ID) []byte {
	prefix := messagePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 24 // chatID + timestamp + id, 8 bytes each
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(chatID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialMessageKey generates a partial key for scanning one
// chat's messages.
// Format: prefix:chatID
func makePartialMessageKey(chatID core.ID) []byte {
	prefix := messagePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(chatID))
	return buf
}
