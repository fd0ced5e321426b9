package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMUS_RoundTrip(t *testing.T) {
	doc := Document{
		Id:          42,
		Filename:    "handbook.pdf",
		ContentType: "application/pdf",
		Size:        1 << 20,
		StorageRef:  "3f8e1a",
		Checksum:    ChecksumBytes([]byte("content")),
		Status:      StatusReady,
		Sensitivity: SensitivityRed,
		UploadedAt:  time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	bs := make([]byte, DocumentMUS.Size(doc))
	n := DocumentMUS.Marshal(doc, bs)
	require.Equal(t, len(bs), n)

	got, n, err := DocumentMUS.Unmarshal(bs)
	require.NoError(t, err)
	require.Equal(t, len(bs), n)
	assert.Equal(t, doc, got)
}

func TestDocumentChunkMUS_RoundTrip(t *testing.T) {
	chunk := DocumentChunk{
		DocumentId: 7,
		Index:      3,
		Content:    "A cat sat. A dog ran.",
		Vector:     []float32{0.25, -0.5, 0.75},
	}

	bs := make([]byte, DocumentChunkMUS.Size(chunk))
	n := DocumentChunkMUS.Marshal(chunk, bs)
	require.Equal(t, len(bs), n)

	got, _, err := DocumentChunkMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, chunk, got)
}

func TestDocumentChunkMUS_EmptyVector(t *testing.T) {
	chunk := DocumentChunk{DocumentId: 1, Index: 0, Content: "text"}

	bs := make([]byte, DocumentChunkMUS.Size(chunk))
	DocumentChunkMUS.Marshal(chunk, bs)

	got, _, err := DocumentChunkMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Nil(t, got.Vector)
}

func TestMessageMUS_RoundTrip(t *testing.T) {
	msg := Message{
		Id:        9,
		ChatId:    4,
		Role:      RoleAssistant,
		Content:   "The refund window is 30 days.",
		CreatedAt: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
	}

	bs := make([]byte, MessageMUS.Size(msg))
	MessageMUS.Marshal(msg, bs)

	got, _, err := MessageMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestUnmarshal_TruncatedData(t *testing.T) {
	chat := Chat{Id: 1, UserId: "u1", Title: "Policies", CreatedAt: time.Now().UTC()}
	bs := make([]byte, ChatMUS.Size(chat))
	ChatMUS.Marshal(chat, bs)

	_, _, err := ChatMUS.Unmarshal(bs[:len(bs)/2])
	assert.Error(t, err)
}
