package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/poiesic/docent/core"
)

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.chats.GetChats(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := make([]chatView, len(chats))
	for i, chat := range chats {
		views[i] = viewChat(chat)
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	chat, err := s.chats.AddChat(r.Context(), &core.Chat{
		UserId: userID(r),
		Title:  req.Title,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, viewChat(chat))
}

func (s *Server) handleGetChat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	chat, err := s.chats.GetChat(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	messages, err := s.chats.GetMessages(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	messageViews := make([]messageView, len(messages))
	for i, msg := range messages {
		messageViews[i] = viewMessage(msg)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"chat":     viewChat(chat),
		"messages": messageViews,
	})
}

// streamSink forwards answer fragments to the HTTP response as they
// arrive. Headers go out with the first fragment, so error responses
// stay possible while nothing has been written yet.
type streamSink struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func (s *streamSink) UserMessageSaved(msg *core.Message) {
	// Header only; must come before the first body write
	s.w.Header().Set("X-User-Message-Id", strconv.FormatUint(uint64(msg.Id), 10))
}

func (s *streamSink) Fragment(_ context.Context, fragment []byte) error {
	if !s.started {
		s.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}
	if _, err := s.w.Write(fragment); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid chat id")
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	flusher, _ := w.(http.Flusher)
	sink := &streamSink{w: w, flusher: flusher}

	if err := s.responder.Respond(r.Context(), id, req.Content, sink); err != nil {
		if sink.started {
			// Headers are gone; all we can do is cut the stream short
			s.logger.Error("error mid-stream", "chat", id, "err", err)
			return
		}
		writeDomainError(w, err)
		return
	}

	if !sink.started {
		// Empty answer; still a successful turn
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	}
}
