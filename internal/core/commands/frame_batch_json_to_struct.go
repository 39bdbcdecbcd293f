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
	"encoding/json"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// FrameBatchJsonToStruct parses a Pub/Sub message body, in either the batch
// or the single frame shape, into a *model.FrameBatch on CtxOut.
type FrameBatchJsonToStruct struct {
	cor.BaseCommand
}

// NewFrameBatchJsonToStruct builds the command.
//
// Inputs:
//   - name: The command name used for spans and counters.
//
// Outputs:
//   - *FrameBatchJsonToStruct: The command, ready to add to a chain.
func NewFrameBatchJsonToStruct(name string) *FrameBatchJsonToStruct {
	return &FrameBatchJsonToStruct{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute reads the JSON string from the input param and writes the
// decoded *model.FrameBatch to the output param. Malformed JSON fails the
// command with a *model.ValidationError.
//
// Inputs:
//   - context: The chain context of the current execution.
func (c *FrameBatchJsonToStruct) Execute(context cor.Context) {
	in, err := getTyped[string](context, c.GetInputParam())
	if err != nil {
		c.Fail(context, err)
		return
	}

	req := &model.IngestRequest{}
	if err := json.Unmarshal([]byte(in), req); err != nil {
		c.Fail(context, &model.ValidationError{Field: "body", Message: "message body is not a valid frame batch"})
		return
	}
	batch, err := req.ToBatch()
	if err != nil {
		c.Fail(context, err)
		return
	}

	c.Succeed(context)
	context.Add(c.GetOutputParam(), batch)
}
