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

// VideoUpsert makes sure the parent video row exists. An existing row,
// including its title, is left untouched.
type VideoUpsert struct {
	cor.BaseCommand
	videos store.VideoStore
}

// NewVideoUpsert builds the command.
//
// Inputs:
//   - name: The command name used for spans and counters.
//   - videos: The store the row is ensured in.
//
// Outputs:
//   - *VideoUpsert: The command, ready to add to a chain.
func NewVideoUpsert(name string, videos store.VideoStore) *VideoUpsert {
	out := &VideoUpsert{BaseCommand: *cor.NewBaseCommand(name), videos: videos}
	out.InputParamName = ParamVideoID
	return out
}

// Execute creates an untitled row for ParamVideoID unless one exists.
func (c *VideoUpsert) Execute(context cor.Context) {
	videoID, err := getTyped[string](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}

	if err := c.videos.EnsureVideo(context.GetContext(), videoID); err != nil {
		slog.ErrorContext(context.GetContext(), "video upsert failed", "video_id", videoID, "error", err)
		c.Fail(context, &model.UpstreamWriteError{Stage: model.StageVideo, Err: err})
		return
	}
	c.Succeed(context)
}
