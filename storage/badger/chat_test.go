package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/storage"
)

func TestChatBasics(t *testing.T) {
	docRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	chat, err := chatRepo.AddChat(ctx, &core.Chat{
		UserId: "local",
		Title:  "Refund questions",
	})
	if err != nil {
		t.Fatalf("Failed to add chat: %v", err)
	}
	if chat.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if chat.CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be set")
	}

	retrieved, err := chatRepo.GetChat(ctx, chat.Id)
	if err != nil {
		t.Fatalf("Failed to get chat: %v", err)
	}
	if retrieved.Title != "Refund questions" {
		t.Fatalf("Expected 'Refund questions', got '%s'", retrieved.Title)
	}

	_, err = chatRepo.GetChat(ctx, 9999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetChatsFiltersOwnerNewestFirst(t *testing.T) {
	docRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	chats := []*core.Chat{
		{UserId: "alice", Title: "First", CreatedAt: now.Add(-2 * time.Hour)},
		{UserId: "bob", Title: "Other owner", CreatedAt: now.Add(-90 * time.Minute)},
		{UserId: "alice", Title: "Second", CreatedAt: now.Add(-1 * time.Hour)},
		{UserId: "alice", Title: "Third", CreatedAt: now},
	}
	for _, chat := range chats {
		if _, err := chatRepo.AddChat(ctx, chat); err != nil {
			t.Fatalf("Failed to add chat: %v", err)
		}
	}

	results, err := chatRepo.GetChats(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to list chats: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 chats, got %d", len(results))
	}
	if results[0].Title != "Third" || results[1].Title != "Second" || results[2].Title != "First" {
		t.Fatalf("Expected newest first, got %s, %s, %s",
			results[0].Title, results[1].Title, results[2].Title)
	}

	empty, err := chatRepo.GetChats(ctx, "nobody")
	if err != nil {
		t.Fatalf("Failed to list chats: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected no chats for unknown owner, got %d", len(empty))
	}
}

func TestMessagesChronological(t *testing.T) {
	docRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	chat, err := chatRepo.AddChat(ctx, &core.Chat{UserId: "local", Title: "Transcript"})
	if err != nil {
		t.Fatalf("Failed to add chat: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	msgs := []*core.Message{
		{ChatId: chat.Id, Role: core.RoleUser, Content: "What is the refund policy?", CreatedAt: now.Add(-2 * time.Minute)},
		{ChatId: chat.Id, Role: core.RoleAssistant, Content: "Refunds within 30 days.", CreatedAt: now.Add(-1 * time.Minute)},
		{ChatId: chat.Id, Role: core.RoleUser, Content: "And for sale items?", CreatedAt: now},
	}
	for _, msg := range msgs {
		if _, err := chatRepo.AddMessage(ctx, msg); err != nil {
			t.Fatalf("Failed to add message: %v", err)
		}
	}

	results, err := chatRepo.GetMessages(ctx, chat.Id)
	if err != nil {
		t.Fatalf("Failed to get messages: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(results))
	}
	if results[0].Content != "What is the refund policy?" {
		t.Fatalf("Expected oldest message first, got '%s'", results[0].Content)
	}
	if results[2].Content != "And for sale items?" {
		t.Fatalf("Expected newest message last, got '%s'", results[2].Content)
	}
	if results[0].Role != core.RoleUser || results[1].Role != core.RoleAssistant {
		t.Fatal("Expected roles preserved in order")
	}
}

func TestAddMessageUnknownChat(t *testing.T) {
	docRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = chatRepo.AddMessage(ctx, &core.Message{
		ChatId:  9999,
		Role:    core.RoleUser,
		Content: "hello",
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	_, err = chatRepo.GetMessages(ctx, 9999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestMessagesIsolatedPerChat(t *testing.T) {
	docRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	first, err := chatRepo.AddChat(ctx, &core.Chat{UserId: "local", Title: "One"})
	if err != nil {
		t.Fatalf("Failed to add chat: %v", err)
	}
	second, err := chatRepo.AddChat(ctx, &core.Chat{UserId: "local", Title: "Two"})
	if err != nil {
		t.Fatalf("Failed to add chat: %v", err)
	}

	if _, err := chatRepo.AddMessage(ctx, &core.Message{ChatId: first.Id, Role: core.RoleUser, Content: "in first"}); err != nil {
		t.Fatalf("Failed to add message: %v", err)
	}
	if _, err := chatRepo.AddMessage(ctx, &core.Message{ChatId: second.Id, Role: core.RoleUser, Content: "in second"}); err != nil {
		t.Fatalf("Failed to add message: %v", err)
	}

	msgs, err := chatRepo.GetMessages(ctx, first.Id)
	if err != nil {
		t.Fatalf("Failed to get messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "in first" {
		t.Fatalf("Expected only first chat's message, got %d messages", len(msgs))
	}
}
