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

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Filename must not be empty
//   - StorageRef must not be empty
//   - Status must be a known DocumentStatus
//   - Sensitivity must be a known Sensitivity label
//
// NOT validated (populated by the pipeline or storage layer):
//   - ID (0 is valid from database sequences)
//   - Checksum (0 means unknown)
//   - UploadedAt (set on insert if zero)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Filename == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyFilename)
	}

	if doc.StorageRef == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyStorageRef)
	}

	if err := ValidateStatus(doc.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	if err := ValidateSensitivity(doc.Sensitivity); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateChat validates a Chat according to domain rules.
//
// Validation rules:
//   - UserId must not be empty
//   - Title must not be empty
func ValidateChat(chat *Chat) error {
	if chat == nil {
		return fmt.Errorf("%w: chat is nil", ErrInvalidChat)
	}

	if chat.UserId == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChat, ErrEmptyUserId)
	}

	if chat.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChat, ErrEmptyTitle)
	}

	return nil
}

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Role must be a known MessageRole
//   - ChatId must be set
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if msg.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if msg.ChatId == 0 {
		return fmt.Errorf("%w: chat id required", ErrInvalidMessage)
	}

	return nil
}

// ValidateStatus validates that a DocumentStatus has a known value.
// Readers of stored records must stay permissive since the status set
// may grow; validation applies on the write path only.
func ValidateStatus(status DocumentStatus) error {
	switch status {
	case StatusPending, StatusProcessing, StatusReady, StatusFailed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
}

// ValidateSensitivity validates that a Sensitivity has a known value.
func ValidateSensitivity(s Sensitivity) error {
	switch s {
	case SensitivityGreen, SensitivityAmber, SensitivityRed:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidSensitivity, s)
}

// ValidateRole validates that a MessageRole has a known value.
func ValidateRole(role MessageRole) error {
	switch role {
	case RoleUser, RoleAssistant:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidRole, role)
}
