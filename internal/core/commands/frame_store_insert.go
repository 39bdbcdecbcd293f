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

// FrameStoreInsert bulk inserts the batch into the durable store and records
// the number of rows in ParamInsertedFrames. Cache writes already applied are
// left in place when it fails.
type FrameStoreInsert struct {
	cor.BaseCommand
	frames store.FrameStore
}

// NewFrameStoreInsert builds the command.
//
// Inputs:
//   - name: The command name used for spans and counters.
//   - frames: The durable frame store.
//
// Outputs:
//   - *FrameStoreInsert: The command, ready to add to a chain.
func NewFrameStoreInsert(name string, frames store.FrameStore) *FrameStoreInsert {
	out := &FrameStoreInsert{BaseCommand: *cor.NewBaseCommand(name), frames: frames}
	out.InputParamName = ParamFrames
	return out
}

// Execute inserts ParamFrames in one bulk write.
func (c *FrameStoreInsert) Execute(context cor.Context) {
	frames, err := getTyped[[]*model.Frame](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}

	if err := c.frames.InsertFrames(context.GetContext(), frames); err != nil {
		slog.ErrorContext(context.GetContext(), "frame store insert failed", "frames", len(frames), "error", err)
		c.Fail(context, &model.UpstreamWriteError{Stage: model.StageStore, Err: err})
		return
	}
	c.Succeed(context)
	context.Add(ParamInsertedFrames, len(frames))
}
