package storage

import (
	"testing"
	"time"

	"github.com/poiesic/docent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRoundTrip(t *testing.T) {
	doc := &core.Document{
		Id:          7,
		Filename:    "policies.pdf",
		ContentType: "application/pdf",
		Size:        2048,
		StorageRef:  "blob-abc",
		Checksum:    12345,
		Status:      core.StatusReady,
		Sensitivity: core.SensitivityAmber,
		UploadedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalDocument(MarshalDocument(doc))
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)
}

func TestUnmarshalCorruptDataWrapsSerializationError(t *testing.T) {
	// Truncated buffers cannot decode as any record type
	_, err := UnmarshalDocument(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalDocumentChunk(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalChat(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalMessage(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalID(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
