// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"

	"github.com/poiesic/docent/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %v", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: document: %v", ErrSerializationFailed, err)
	}
	return &doc, nil
}

// MarshalDocumentChunk serializes a DocumentChunk to bytes.
func MarshalDocumentChunk(chunk *core.DocumentChunk) []byte {
	buf := make([]byte, core.DocumentChunkMUS.Size(*chunk))
	core.DocumentChunkMUS.Marshal(*chunk, buf)
	return buf
}

// UnmarshalDocumentChunk deserializes a DocumentChunk from bytes.
func UnmarshalDocumentChunk(data []byte) (*core.DocumentChunk, error) {
	chunk, _, err := core.DocumentChunkMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: document chunk: %v", ErrSerializationFailed, err)
	}
	return &chunk, nil
}

// MarshalChat serializes a Chat to bytes.
func MarshalChat(chat *core.Chat) []byte {
	buf := make([]byte, core.ChatMUS.Size(*chat))
	core.ChatMUS.Marshal(*chat, buf)
	return buf
}

// UnmarshalChat deserializes a Chat from bytes.
func UnmarshalChat(data []byte) (*core.Chat, error) {
	chat, _, err := core.ChatMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: chat: %v", ErrSerializationFailed, err)
	}
	return &chat, nil
}

// MarshalMessage serializes a Message to bytes.
func MarshalMessage(msg *core.Message) []byte {
	buf := make([]byte, core.MessageMUS.Size(*msg))
	core.MessageMUS.Marshal(*msg, buf)
	return buf
}

// UnmarshalMessage deserializes a Message from bytes.
func UnmarshalMessage(data []byte) (*core.Message, error) {
	msg, _, err := core.MessageMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: message: %v", ErrSerializationFailed, err)
	}
	return &msg, nil
}
