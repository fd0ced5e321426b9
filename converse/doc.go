// Package converse implements the retrieval-augmented chat turn.
//
// A turn persists the user's message, embeds it, retrieves the most
// similar document chunks, and generates an answer grounded in that
// context. Answer fragments stream to a Sink as they arrive; the full
// text is persisted as the assistant message once the stream ends.
package converse
