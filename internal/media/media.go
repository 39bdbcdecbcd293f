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

// Package media stores uploaded media bytes. Uploads either arrive as a stream
// and are saved here first, or reference an object that is already stored.
package media

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/TheSuspect9702/emotion-flow-api/internal/cloud"
)

const (
	BackendGCS   = "gcs"
	BackendLocal = "local"

	// DefaultExtension is used when an uploaded file name has none.
	DefaultExtension = ".mp4"
)

// Store reads and writes media objects addressed by an object path.
type Store interface {
	// Save writes r under a new unique object path and returns that path.
	Save(ctx context.Context, filename string, contentType string, r io.Reader) (string, error)
	// Open returns a reader for an existing object.
	Open(ctx context.Context, objectPath string) (io.ReadCloser, error)
	// Location is a human readable address of the object, used in logs and jobs.
	Location(objectPath string) string
}

// New builds the backend selected by config.Storage.Backend.
func New(config *cloud.Config, client *storage.Client) (Store, error) {
	switch config.Storage.Backend {
	case BackendGCS:
		if client == nil {
			return nil, fmt.Errorf("storage backend %q requires a storage client", BackendGCS)
		}
		return NewGCSStore(client, config.Storage.Bucket), nil
	case BackendLocal, "":
		return NewLocalStore(config.Storage.LocalPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}
}

// NewObjectName returns a collision free object name keeping the extension.
func NewObjectName(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = DefaultExtension
	}
	return uuid.NewString() + ext
}
