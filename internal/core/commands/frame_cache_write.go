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

	"github.com/TheSuspect9702/emotion-flow-api/internal/cache"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// FrameCacheWrite writes the batch to the frame cache in a single pipeline.
type FrameCacheWrite struct {
	cor.BaseCommand
	cache cache.FrameCache
}

// NewFrameCacheWrite builds the command.
//
// Inputs:
//   - name: The command name used for spans and counters.
//   - frameCache: The cache receiving the frames.
//
// Outputs:
//   - *FrameCacheWrite: The command, ready to add to a chain.
func NewFrameCacheWrite(name string, frameCache cache.FrameCache) *FrameCacheWrite {
	out := &FrameCacheWrite{BaseCommand: *cor.NewBaseCommand(name), cache: frameCache}
	out.InputParamName = ParamFrames
	return out
}

// Execute writes ParamFrames for ParamVideoID. A failure is reported as an
// upstream error with stage cache.
//
// Inputs:
//   - context: The chain context of the current execution.
func (c *FrameCacheWrite) Execute(context cor.Context) {
	frames, err := getTyped[[]*model.Frame](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}
	videoID, err := getTyped[string](context, ParamVideoID)
	if err != nil {
		c.Fail(context, err)
		return
	}

	if err := c.cache.WriteFrames(context.GetContext(), videoID, frames); err != nil {
		slog.ErrorContext(context.GetContext(), "frame cache write failed", "video_id", videoID, "frames", len(frames), "error", err)
		c.Fail(context, &model.UpstreamWriteError{Stage: model.StageCache, Err: err})
		return
	}
	c.Succeed(context)
}
