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

package workflow

import (
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/commands"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
)

// FrameResultsWorkflow handles frame batches the analysis worker publishes to
// Pub/Sub. The message body in cor.CtxIn is decoded and handed to the
// ingestion workflow.
type FrameResultsWorkflow struct {
	cor.BaseCommand
	ingestion *FrameIngestionWorkflow
	chain     cor.Chain
}

// NewFrameResultsWorkflow prefixes ingestion with a JSON decode step so a raw
// Pub/Sub payload can be fed in directly.
func NewFrameResultsWorkflow(ingestion *FrameIngestionWorkflow) *FrameResultsWorkflow {
	out := &FrameResultsWorkflow{
		BaseCommand: *cor.NewBaseCommand("frame-results-workflow"),
		ingestion:   ingestion,
	}
	chain := cor.NewBaseChain(out.GetName())
	chain.AddCommand(commands.NewFrameBatchJsonToStruct("decode-frame-batch"))
	chain.AddCommand(ingestion)
	out.chain = chain
	return out
}

// Execute decodes the payload and runs the ingestion chain.
func (w *FrameResultsWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}
