package ingestion

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// CommandRunner executes an external command and returns its combined
// output. Extracted as an interface so tests can stub the pdftotext
// dependency.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor converts stored document bytes to plain text based on the
// document's content type.
type Extractor struct {
	runner CommandRunner
}

// NewExtractor creates an extractor using the real pdftotext binary.
func NewExtractor() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewExtractorWithRunner creates an extractor with a custom command
// runner.
func NewExtractorWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// Extract converts raw document bytes to plain text.
// PDF content goes through pdftotext; everything else is treated as
// text and must be valid UTF-8.
func (e *Extractor) Extract(ctx context.Context, contentType string, data []byte) (string, error) {
	if isPDF(contentType) {
		return e.extractPDF(ctx, data)
	}
	return extractPlainText(data)
}

// extractPDF writes the bytes to a temp file and runs pdftotext on it.
// pdftotext only reads from files, not stdin, when layout flags are
// involved, so the temp file round trip is unavoidable.
func (e *Extractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	dir, err := os.MkdirTemp("", "extract-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}

	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func extractPlainText(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("document bytes are not valid UTF-8 text")
	}
	return string(data), nil
}

func isPDF(contentType string) bool {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mediaType) == "application/pdf"
}
