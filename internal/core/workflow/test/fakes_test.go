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

package workflow_test

import (
	"context"
	"strings"
	"sync"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// recorder keeps the order in which backends were called.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeCache struct {
	rec    *recorder
	err    error
	frames map[string][]*model.Frame
}

func (c *fakeCache) WriteFrames(_ context.Context, videoID string, frames []*model.Frame) error {
	c.rec.record("cache")
	if c.err != nil {
		return c.err
	}
	if c.frames == nil {
		c.frames = make(map[string][]*model.Frame)
	}
	c.frames[videoID] = append(c.frames[videoID], frames...)
	return nil
}

// fakeStore is an in-memory VideoStore and FrameStore.
type fakeStore struct {
	rec *recorder

	insertErr error
	ensureErr error
	createErr error
	titlesErr error

	videos []*model.Video
	frames []*model.Frame
}

func (s *fakeStore) CreateVideo(_ context.Context, video *model.Video) error {
	s.rec.record("create-video")
	if s.createErr != nil {
		return s.createErr
	}
	s.videos = append(s.videos, video)
	return nil
}

func (s *fakeStore) EnsureVideo(_ context.Context, id string) error {
	s.rec.record("video")
	if s.ensureErr != nil {
		return s.ensureErr
	}
	for _, v := range s.videos {
		if v.ID == id {
			return nil
		}
	}
	s.videos = append(s.videos, &model.Video{ID: id})
	return nil
}

func (s *fakeStore) FindTitlesByPrefix(_ context.Context, prefix string) ([]string, error) {
	s.rec.record("titles")
	if s.titlesErr != nil {
		return nil, s.titlesErr
	}
	var out []string
	for _, v := range s.videos {
		if strings.HasPrefix(strings.ToLower(v.Title), strings.ToLower(prefix)) {
			out = append(out, v.Title)
		}
	}
	return out, nil
}

func (s *fakeStore) GetVideo(_ context.Context, id string) (*model.Video, error) {
	for _, v := range s.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, &model.NotFoundError{Resource: "video", ID: id}
}

func (s *fakeStore) ListVideos(context.Context) ([]*model.VideoSummary, error) {
	out := make([]*model.VideoSummary, 0, len(s.videos))
	for i := len(s.videos) - 1; i >= 0; i-- {
		out = append(out, &model.VideoSummary{ID: s.videos[i].ID, Title: s.videos[i].Title})
	}
	return out, nil
}

func (s *fakeStore) InsertFrames(_ context.Context, frames []*model.Frame) error {
	s.rec.record("store")
	if s.insertErr != nil {
		return s.insertErr
	}
	s.frames = append(s.frames, frames...)
	return nil
}

func (s *fakeStore) ListFrames(_ context.Context, videoID string, limit int) ([]*model.Frame, error) {
	var out []*model.Frame
	for _, f := range s.frames {
		if f.VideoID == videoID {
			out = append(out, f)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeDispatcher struct {
	rec  *recorder
	err  error
	jobs []*model.AnalysisJob
}

func (d *fakeDispatcher) Dispatch(_ context.Context, job *model.AnalysisJob) error {
	d.rec.record("dispatch")
	d.jobs = append(d.jobs, job)
	return d.err
}
