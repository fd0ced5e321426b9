package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from database sequences.
type ID uint64

// ChecksumBytes computes a 64-bit BLAKE2b checksum of raw content.
// It is recorded on a Document when its blob is stored and verified
// again when the blob is fetched for ingestion.
func ChecksumBytes(data []byte) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// DocumentStatus is the lifecycle state of a document's ingestion.
//
// Transitions are monotonic within one ingestion run:
// pending -> processing -> (ready | failed). A later run resets the
// document to processing before doing any work.
type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Sensitivity is an informational handling label for a document.
// It is stored and displayed but not enforced.
type Sensitivity string

const (
	SensitivityGreen Sensitivity = "green"
	SensitivityAmber Sensitivity = "amber"
	SensitivityRed   Sensitivity = "red"
)

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Document is an uploaded file registered for ingestion.
// The raw bytes live in a blob store under StorageRef; the document
// record tracks metadata and ingestion status.
type Document struct {
	Id          ID
	Filename    string
	ContentType string
	Size        int64
	StorageRef  string
	Checksum    uint64 // BLAKE2b-64 of the blob, 0 if unknown
	Status      DocumentStatus
	Sensitivity Sensitivity
	UploadedAt  time.Time
}

// DocumentChunk is one contiguous slice of a document's extracted text.
// Chunks are exclusively owned by their document and deleted with it.
// Index values are contiguous from 0 and reconstruct the original
// text order.
type DocumentChunk struct {
	DocumentId ID
	Index      int
	Content    string
	Vector     []float32 // unit-normalised embedding, set during ingestion
}

// Chat is a conversation owned by a user.
type Chat struct {
	Id        ID
	UserId    string
	Title     string
	CreatedAt time.Time
}

// Message is one turn in a chat. Messages are appended in
// chronological order and never mutated.
type Message struct {
	Id        ID
	ChatId    ID
	Role      MessageRole
	Content   string
	CreatedAt time.Time
}

// RetrievedChunk is a similarity-search hit: chunk text together with
// the display name of its source document and the cosine similarity
// score against the query vector.
type RetrievedChunk struct {
	Content      string
	DocumentName string
	Score        float32
}
