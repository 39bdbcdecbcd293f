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

package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"github.com/h2non/filetype"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

const (
	FileField    = "file"
	VideoIDField = "video_id"

	defaultContentType = "application/octet-stream"
	sniffLength        = 261 // bytes filetype needs to match every known kind
)

// HTTPDispatcher posts the media file as multipart/form-data with the parts
// `file` (named after the final title) and `video_id`.
type HTTPDispatcher struct {
	endpoint string
	client   *http.Client
}

// NewHTTPDispatcher returns a dispatcher posting to endpoint.
//
// Inputs:
//   - endpoint: The worker URL receiving the multipart upload.
//   - timeout: Upper bound for one request, including the media upload.
//
// Outputs:
//   - *HTTPDispatcher: The ready dispatcher.
func NewHTTPDispatcher(endpoint string, timeout time.Duration) *HTTPDispatcher {
	return &HTTPDispatcher{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

// Dispatch streams job.LocalPath to the worker as the `file` part together
// with the `video_id` field. Any non 2xx answer is returned as an error.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, job *model.AnalysisJob) error {
	if job.LocalPath == "" {
		return errors.New("http dispatch needs a local copy of the media")
	}
	file, err := os.Open(job.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open media %s: %w", job.LocalPath, err)
	}
	defer file.Close()

	contentType, err := SniffContentType(file)
	if err != nil {
		return err
	}

	// Stream the body so large media never sits in memory.
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeJobForm(writer, job, file, contentType))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, pr)
	if err != nil {
		_ = pr.Close()
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		_ = pr.CloseWithError(err)
		return fmt.Errorf("worker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("worker responded %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	slog.InfoContext(ctx, "dispatched media to worker", "video_id", job.VideoID, "title", job.Title, "content_type", contentType)
	return nil
}

func writeJobForm(writer *multipart.Writer, job *model.AnalysisJob, file io.Reader, contentType string) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FileField, job.Title))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if err := writer.WriteField(VideoIDField, job.VideoID); err != nil {
		return err
	}
	return writer.Close()
}

// SniffContentType detects the MIME type from the file header and rewinds the
// file. Unknown content is reported as application/octet-stream.
func SniffContentType(file io.ReadSeeker) (string, error) {
	head := make([]byte, sniffLength)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read media header: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind media: %w", err)
	}
	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return defaultContentType, nil
	}
	return kind.MIME.Value, nil
}
