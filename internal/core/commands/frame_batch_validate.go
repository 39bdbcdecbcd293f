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
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// FrameBatchValidate checks a *model.FrameBatch and, when it is valid, places
// the video id and the storable frames in ParamVideoID and ParamFrames.
type FrameBatchValidate struct {
	cor.BaseCommand
}

// NewFrameBatchValidate builds the command.
//
// Inputs:
//   - name: The command name used for spans and counters.
//
// Outputs:
//   - *FrameBatchValidate: The command, ready to add to a chain.
func NewFrameBatchValidate(name string) *FrameBatchValidate {
	return &FrameBatchValidate{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute runs model.FrameBatch.Validate before any I/O happens.
func (c *FrameBatchValidate) Execute(context cor.Context) {
	batch, err := getTyped[*model.FrameBatch](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, &model.ValidationError{Field: "frames", Message: "request body is required"})
		return
	}
	if err := batch.Validate(); err != nil {
		c.Fail(context, err)
		return
	}

	c.Succeed(context)
	context.Add(ParamVideoID, batch.VideoID)
	context.Add(ParamFrames, batch.ToFrames())
	context.Add(c.GetOutputParam(), batch)
}
