// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps media under a directory on the local filesystem.
type LocalStore struct {
	basePath string
}

// NewLocalStore keeps media under basePath, creating it when missing. An
// empty basePath uses a directory under the system temp dir.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if basePath == "" {
		basePath = filepath.Join(os.TempDir(), "emotion-flow-media")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{basePath: basePath}, nil
}

// Save copies r into a new file under the base path and returns its name.
// A partially written file is removed.
func (s *LocalStore) Save(_ context.Context, filename string, _ string, r io.Reader) (string, error) {
	name := NewObjectName(filename)
	fullPath := filepath.Join(s.basePath, name)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return name, nil
}

// Open opens an object by path. Paths escaping the base directory are
// rejected.
func (s *LocalStore) Open(_ context.Context, objectPath string) (io.ReadCloser, error) {
	fullPath, err := s.fullPath(objectPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Location returns the absolute file path of the object.
func (s *LocalStore) Location(objectPath string) string {
	fullPath, err := s.fullPath(objectPath)
	if err != nil {
		return objectPath
	}
	return fullPath
}

func (s *LocalStore) fullPath(objectPath string) (string, error) {
	clean := filepath.Clean(objectPath)
	if !filepath.IsLocal(clean) {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return filepath.Join(s.basePath, clean), nil
}
