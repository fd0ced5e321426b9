package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/poiesic/docent/core"
	"github.com/poiesic/docent/ingestion"
	"github.com/poiesic/docent/storage"
)

// documentView is the wire shape of a document.
type documentView struct {
	Id          core.ID   `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	Status      string    `json:"status"`
	Sensitivity string    `json:"sensitivity"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

func viewDocument(doc *core.Document) documentView {
	return documentView{
		Id:          doc.Id,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		Status:      string(doc.Status),
		Sensitivity: string(doc.Sensitivity),
		UploadedAt:  doc.UploadedAt,
	}
}

// chatView is the wire shape of a chat.
type chatView struct {
	Id        core.ID   `json:"id"`
	UserId    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewChat(chat *core.Chat) chatView {
	return chatView{
		Id:        chat.Id,
		UserId:    chat.UserId,
		Title:     chat.Title,
		CreatedAt: chat.CreatedAt,
	}
}

// messageView is the wire shape of a message. Role strings pass
// through untouched so consumers stay tolerant of future roles.
type messageView struct {
	Id        core.ID   `json:"id"`
	ChatId    core.ID   `json:"chatId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func viewMessage(msg *core.Message) messageView {
	return messageView{
		Id:        msg.Id,
		ChatId:    msg.ChatId,
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeDomainError maps storage and pipeline errors onto HTTP codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, ingestion.ErrAlreadyProcessing):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidDocument),
		errors.Is(err, core.ErrInvalidChat),
		errors.Is(err, core.ErrInvalidMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
