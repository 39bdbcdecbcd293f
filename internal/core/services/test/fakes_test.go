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

package services_test

import (
	"context"
	"errors"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/commands"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// scriptedWorkflow stands in for a workflow: it records the input it saw and
// either fails with err or writes outputs into the context.
type scriptedWorkflow struct {
	cor.BaseCommand
	err     error
	outputs map[string]any
	seen    map[string]any
	runs    int
}

func newScriptedWorkflow(inputParam string) *scriptedWorkflow {
	out := &scriptedWorkflow{BaseCommand: *cor.NewBaseCommand("scripted"), seen: make(map[string]any)}
	out.InputParamName = inputParam
	return out
}

func (w *scriptedWorkflow) Execute(context cor.Context) {
	w.runs++
	for _, key := range []string{cor.CtxIn, commands.ParamUpload} {
		if v := context.Get(key); v != nil {
			w.seen[key] = v
		}
	}
	if w.err != nil {
		context.AddError(w.GetName(), w.err)
		return
	}
	for k, v := range w.outputs {
		context.Add(k, v)
	}
}

// memoryStore is a store.Store over fixed data.
type memoryStore struct {
	videos     []*model.Video
	frames     []*model.Frame
	getErr     error
	listErr    error
	lastLimit  int
	frameCalls int
}

func (s *memoryStore) CreateVideo(context.Context, *model.Video) error { return nil }
func (s *memoryStore) EnsureVideo(context.Context, string) error      { return nil }
func (s *memoryStore) FindTitlesByPrefix(context.Context, string) ([]string, error) {
	return nil, nil
}

func (s *memoryStore) GetVideo(_ context.Context, id string) (*model.Video, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	for _, v := range s.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, &model.NotFoundError{Resource: "video", ID: id}
}

func (s *memoryStore) ListVideos(context.Context) ([]*model.VideoSummary, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if len(s.videos) == 0 {
		return nil, nil
	}
	out := make([]*model.VideoSummary, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, &model.VideoSummary{ID: v.ID, Title: v.Title})
	}
	return out, nil
}

func (s *memoryStore) InsertFrames(context.Context, []*model.Frame) error { return nil }

func (s *memoryStore) ListFrames(_ context.Context, videoID string, limit int) ([]*model.Frame, error) {
	s.frameCalls++
	s.lastLimit = limit
	if s.listErr != nil {
		return nil, s.listErr
	}
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

func (s *memoryStore) Close() error { return nil }

var errBackend = errors.New("backend unavailable")
