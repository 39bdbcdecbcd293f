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

package analysis_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheSuspect9702/emotion-flow-api/internal/analysis"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// mp4Header is the start of an ISO base media file.
var mp4Header = []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00, 'm', 'p', '4', '2', 'i', 's', 'o', 'm'}

func writeMedia(t *testing.T, content []byte) string {
	path := filepath.Join(t.TempDir(), "media.bin")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

type received struct {
	filename    string
	contentType string
	body        []byte
	videoID     string
}

func newWorker(t *testing.T, status int, got chan<- received) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile(analysis.FileField)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		got <- received{
			filename:    header.Filename,
			contentType: header.Header.Get("Content-Type"),
			body:        body,
			videoID:     r.FormValue(analysis.VideoIDField),
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestHTTPDispatcherPostsMultipart(t *testing.T) {
	got := make(chan received, 1)
	worker := newWorker(t, http.StatusOK, got)
	content := append(append([]byte{}, mp4Header...), []byte("rest of the movie")...)

	d := analysis.NewHTTPDispatcher(worker.URL, 5*time.Second)
	err := d.Dispatch(context.Background(), &model.AnalysisJob{
		VideoID:   "vid-1",
		Title:     "clip_v2.mp4",
		LocalPath: writeMedia(t, content),
	})
	require.NoError(t, err)

	r := <-got
	assert.Equal(t, "clip_v2.mp4", r.filename)
	assert.Equal(t, "vid-1", r.videoID)
	assert.Equal(t, "video/mp4", r.contentType)
	assert.Equal(t, content, r.body)
}

func TestHTTPDispatcherUnknownContent(t *testing.T) {
	got := make(chan received, 1)
	worker := newWorker(t, http.StatusAccepted, got)

	d := analysis.NewHTTPDispatcher(worker.URL, 5*time.Second)
	err := d.Dispatch(context.Background(), &model.AnalysisJob{
		VideoID:   "vid-1",
		Title:     "notes",
		LocalPath: writeMedia(t, []byte("plain")),
	})
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", (<-got).contentType)
}

func TestHTTPDispatcherWorkerError(t *testing.T) {
	got := make(chan received, 1)
	worker := newWorker(t, http.StatusBadGateway, got)

	d := analysis.NewHTTPDispatcher(worker.URL, 5*time.Second)
	err := d.Dispatch(context.Background(), &model.AnalysisJob{
		VideoID:   "vid-1",
		Title:     "clip.mp4",
		LocalPath: writeMedia(t, mp4Header),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPDispatcherNeedsLocalCopy(t *testing.T) {
	d := analysis.NewHTTPDispatcher("http://127.0.0.1:1", time.Second)
	assert.Error(t, d.Dispatch(context.Background(), &model.AnalysisJob{VideoID: "vid-1"}))
}
