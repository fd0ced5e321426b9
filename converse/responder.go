package converse

import (
	"context"
	"log/slog"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

const (
	defaultTopK     = 5
	defaultMinScore = 0.5
)

// Sink receives the outputs of a chat turn as they become available.
// UserMessageSaved fires once, after the user message is persisted and
// before any fragment. Fragment is called for each piece of the
// assistant's answer in order.
type Sink interface {
	UserMessageSaved(msg *core.Message)
	Fragment(ctx context.Context, fragment []byte) error
}

// Responder orchestrates a retrieval-augmented chat turn: persist the
// user message, retrieve relevant document chunks, and stream the
// generated answer while accumulating it for the transcript.
type Responder struct {
	chats     storage.ChatRepository
	documents storage.DocumentRepository
	embedder  ai.Embedder
	generator ai.Generator
	topK      int
	minScore  float32
	logger    *slog.Logger
}

// Option configures a Responder.
type Option func(*Responder) error

// WithTopK sets how many chunks are retrieved per turn.
// Default is 5.
func WithTopK(k int) Option {
	return func(r *Responder) error {
		if k > 0 {
			r.topK = k
		}
		return nil
	}
}

// WithMinScore sets the similarity threshold below which chunks are
// not retrieved. Default is 0.5.
func WithMinScore(score float32) Option {
	return func(r *Responder) error {
		r.minScore = score
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Responder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewResponder creates a new Responder.
func NewResponder(
	chats storage.ChatRepository,
	documents storage.DocumentRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Responder, error) {
	if chats == nil {
		return nil, ErrChatRepositoryRequired
	}
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Responder{
		chats:     chats,
		documents: documents,
		embedder:  provider.Embedder(),
		generator: provider.Generator(),
		topK:      defaultTopK,
		minScore:  defaultMinScore,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Respond runs one chat turn. The user message is persisted before any
// retrieval or generation, so a failed turn still leaves the question
// in the transcript. The assistant message is persisted only after the
// fragment stream ends without error.
func (r *Responder) Respond(ctx context.Context, chatID core.ID, content string, sink Sink) error {
	if sink == nil {
		return ErrSinkRequired
	}

	if _, err := r.chats.GetChat(ctx, chatID); err != nil {
		return err
	}

	userMsg := &core.Message{
		ChatId:  chatID,
		Role:    core.RoleUser,
		Content: content,
	}
	userMsg, err := r.chats.AddMessage(ctx, userMsg)
	if err != nil {
		return err
	}
	sink.UserMessageSaved(userMsg)

	chunks, err := r.retrieve(ctx, content)
	if err != nil {
		return err
	}

	turns := []ai.Turn{
		{Role: ai.TurnRoleSystem, Content: buildSystemPrompt(chunks)},
		{Role: ai.TurnRoleUser, Content: content},
	}

	answer, err := r.generator.Generate(ctx, turns, sink.Fragment)
	if err != nil {
		return err
	}

	assistantMsg := &core.Message{
		ChatId:  chatID,
		Role:    core.RoleAssistant,
		Content: answer,
	}
	if _, err := r.chats.AddMessage(ctx, assistantMsg); err != nil {
		return err
	}

	r.logger.Debug("chat turn completed", "chat", chatID, "retrieved", len(chunks))
	return nil
}

// retrieve embeds the query and fetches the top matching chunks.
func (r *Responder) retrieve(ctx context.Context, query string) ([]*core.RetrievedChunk, error) {
	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.documents.TopKSimilar(ctx, vector, r.topK, r.minScore)
}
