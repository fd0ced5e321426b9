package converse

import (
	"fmt"
	"strings"

	"github.com/poiesic/docent/core"
)

const systemPromptPrefix = "You are a helpful assistant. Use the following context to " +
	"answer the user's question. If the answer is not in the context, " +
	"say you don't know.\n\nContext:\n"

// buildContext concatenates retrieved chunks into the context block,
// labeling each with its source document's display name.
func buildContext(chunks []*core.RetrievedChunk) string {
	lines := make([]string, len(chunks))
	for i, chunk := range chunks {
		lines[i] = fmt.Sprintf("Source (%s): %s", chunk.DocumentName, chunk.Content)
	}
	return strings.Join(lines, "\n\n")
}

// buildSystemPrompt embeds the context block in the system
// instruction. With no retrieved chunks the context is empty and the
// instruction still tells the model to admit lack of knowledge.
func buildSystemPrompt(chunks []*core.RetrievedChunk) string {
	return systemPromptPrefix + buildContext(chunks)
}
