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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChat indicates a Chat failed validation.
	ErrInvalidChat = errors.New("invalid chat")

	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrEmptyContent indicates a content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyFilename indicates the document Filename field is empty.
	ErrEmptyFilename = errors.New("filename cannot be empty")

	// ErrEmptyStorageRef indicates the document StorageRef field is empty.
	ErrEmptyStorageRef = errors.New("storage reference cannot be empty")

	// ErrEmptyTitle indicates the chat Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyUserId indicates the chat UserId field is empty.
	ErrEmptyUserId = errors.New("user id cannot be empty")

	// ErrInvalidStatus indicates an unknown DocumentStatus value.
	ErrInvalidStatus = errors.New("invalid document status")

	// ErrInvalidSensitivity indicates an unknown Sensitivity value.
	ErrInvalidSensitivity = errors.New("invalid sensitivity label")

	// ErrInvalidRole indicates an unknown MessageRole value.
	ErrInvalidRole = errors.New("invalid message role")
)
