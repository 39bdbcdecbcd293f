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

package commands

import (
	"log/slog"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
	"github.com/TheSuspect9702/emotion-flow-api/internal/store"
)

// VideoInsert creates the video row for an upload under its resolved title.
type VideoInsert struct {
	cor.BaseCommand
	videos store.VideoStore
}

// NewVideoInsert builds the command.
//
// Inputs:
//   - name: The command name used for spans and counters.
//   - videos: The store the row is created in.
//
// Outputs:
//   - *VideoInsert: The command, ready to add to a chain.
func NewVideoInsert(name string, videos store.VideoStore) *VideoInsert {
	out := &VideoInsert{BaseCommand: *cor.NewBaseCommand(name), videos: videos}
	out.InputParamName = ParamFinalTitle
	return out
}

// Execute creates the video row under the upload's id with ParamFinalTitle.
func (c *VideoInsert) Execute(context cor.Context) {
	title, err := getTyped[string](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}
	upload, err := getTyped[*model.UploadRequest](context, ParamUpload)
	if err != nil {
		c.Fail(context, err)
		return
	}

	video := &model.Video{ID: upload.VideoID, Title: title}
	if err := c.videos.CreateVideo(context.GetContext(), video); err != nil {
		slog.ErrorContext(context.GetContext(), "video insert failed", "video_id", video.ID, "title", title, "error", err)
		c.Fail(context, &model.UpstreamWriteError{Stage: model.StageVideo, Err: err})
		return
	}
	c.Succeed(context)
	context.Add(ParamVideoID, video.ID)
}
