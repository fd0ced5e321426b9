package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	called bool
}

func (m *mockRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, error) {
	m.called = true
	return m.output, m.err
}

func TestExtractPlainText(t *testing.T) {
	extractor := NewExtractor()

	text, err := extractor.Extract(context.Background(), "text/plain", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestExtractPlainTextWithCharset(t *testing.T) {
	extractor := NewExtractor()

	text, err := extractor.Extract(context.Background(), "text/plain; charset=utf-8", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestExtractRejectsInvalidUTF8(t *testing.T) {
	extractor := NewExtractor()

	_, err := extractor.Extract(context.Background(), "text/plain", []byte{0xff, 0xfe, 0xfd})
	assert.Error(t, err)
}

func TestExtractPDFUsesRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("extracted pdf text")}
	extractor := NewExtractorWithRunner(runner)

	text, err := extractor.Extract(context.Background(), "application/pdf", []byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.True(t, runner.called)
	assert.Equal(t, "extracted pdf text", text)
}

func TestExtractPDFRunnerFailure(t *testing.T) {
	runner := &mockRunner{err: errors.New("pdftotext not installed")}
	extractor := NewExtractorWithRunner(runner)

	_, err := extractor.Extract(context.Background(), "application/pdf", []byte("%PDF-1.4 fake"))
	assert.ErrorContains(t, err, "pdftotext")
}

func TestIsPDF(t *testing.T) {
	assert.True(t, isPDF("application/pdf"))
	assert.True(t, isPDF("application/pdf; charset=binary"))
	assert.False(t, isPDF("text/plain"))
	assert.False(t, isPDF(""))
}
