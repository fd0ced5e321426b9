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


// Package blob provides filesystem-backed storage for raw uploaded
// bytes. Records in the main store reference their payload through an
// opaque reference, keeping large payloads out of BadgerDB values.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/docent/storage"
)

// FSStore implements storage.BlobStore on a local directory.
// References are opaque UUIDs mapped to files inside the directory.
type FSStore struct {
	dir string
}

var _ storage.BlobStore = (*FSStore)(nil)

// NewFSStore creates a blob store rooted at dir, creating the
// directory if it doesn't exist.
func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob store directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FSStore{dir: dir}, nil
}

// Put stores the given bytes and returns an opaque reference.
// The write goes through a temp file and rename, so a crash never
// leaves a partially written blob behind a valid reference.
func (s *FSStore) Put(ctx context.Context, data []byte) (string, error) {
	ref := uuid.NewString()
	path := filepath.Join(s.dir, ref)

	tmp, err := os.CreateTemp(s.dir, "put-*")
	if err != nil {
		return "", err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", err
	}
	return ref, nil
}

// Fetch retrieves the bytes stored under the reference.
func (s *FSStore) Fetch(ctx context.Context, ref string) ([]byte, error) {
	path, err := s.refPath(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Delete removes the bytes stored under the reference.
// Deleting an unknown reference is not an error.
func (s *FSStore) Delete(ctx context.Context, ref string) error {
	path, err := s.refPath(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// refPath validates a reference and maps it to its file path.
// References are UUIDs, so anything with a path separator is invalid.
func (s *FSStore) refPath(ref string) (string, error) {
	if ref == "" || strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return "", storage.ErrInvalidQuery
	}
	return filepath.Join(s.dir, ref), nil
}
