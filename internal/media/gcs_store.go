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
	"log/slog"

	"cloud.google.com/go/storage"

	"github.com/TheSuspect9702/emotion-flow-api/internal/cloud"
)

// GCSStore keeps media in a Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore stores media in bucket.
func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

// Save writes r to a new object named after filename's extension.
//
// Inputs:
//   - ctx: Bounds the upload.
//   - filename: The original file name; only its extension is kept.
//   - contentType: Stored as the object content type.
//   - r: The media bytes.
//
// Outputs:
//   - string: The object path inside the bucket.
//   - error: The write or close error.
func (s *GCSStore) Save(ctx context.Context, filename string, contentType string, r io.Reader) (string, error) {
	name := NewObjectName(filename)
	writer := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	writer.ContentType = contentType

	written, err := io.Copy(writer, r)
	if err != nil {
		_ = writer.Close()
		return "", fmt.Errorf("failed to copy to gs://%s/%s after %d bytes: %w", s.bucket, name, written, err)
	}
	// The object is only committed once Close succeeds.
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize gs://%s/%s: %w", s.bucket, name, err)
	}
	slog.InfoContext(ctx, "stored upload", "bucket", s.bucket, "object", name, "bytes", written)
	return name, nil
}

// Open accepts a gs:// URI or an object name in the configured bucket.
func (s *GCSStore) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	obj := s.resolve(objectPath)
	reader, err := s.client.Bucket(obj.Bucket).Object(obj.Name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS reader for gs://%s/%s: %w", obj.Bucket, obj.Name, err)
	}
	return reader, nil
}

// Location returns the gs:// URI of the object.
func (s *GCSStore) Location(objectPath string) string {
	return s.resolve(objectPath).URI()
}

func (s *GCSStore) resolve(objectPath string) *cloud.GCSObject {
	if obj, ok := cloud.ParseGCSURI(objectPath); ok {
		return obj
	}
	return &cloud.GCSObject{Bucket: s.bucket, Name: objectPath}
}
