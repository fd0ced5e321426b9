// Package ingestion provides pipeline orchestration for processing
// uploaded documents into searchable chunks.
//
// The Pipeline type manages the ingestion workflow for a document:
//   - Fetching the stored bytes and verifying their checksum
//   - Extracting plain text (pdftotext for PDF content)
//   - Splitting the text into sentence-aligned chunks
//   - Generating embeddings with retry
//   - Atomically replacing the document's chunk rows
//
// Each run moves the document through the
// pending -> processing -> ready/failed lifecycle. Processing is
// performed concurrently using a worker pool. Errors during async
// processing are recorded on the document's status and logged, not
// returned to the enqueuer.
package ingestion
