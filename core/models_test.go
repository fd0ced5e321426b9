package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumBytes_Deterministic(t *testing.T) {
	a := ChecksumBytes([]byte("the refund policy is thirty days"))
	b := ChecksumBytes([]byte("the refund policy is thirty days"))
	assert.Equal(t, a, b)
}

func TestChecksumBytes_DiffersForDifferentContent(t *testing.T) {
	a := ChecksumBytes([]byte("document one"))
	b := ChecksumBytes([]byte("document two"))
	assert.NotEqual(t, a, b)
}

func TestChecksumBytes_EmptyInput(t *testing.T) {
	// Empty content still has a defined checksum.
	assert.Equal(t, ChecksumBytes(nil), ChecksumBytes([]byte{}))
}
