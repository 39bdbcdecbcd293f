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

// Package workflow assembles commands into the pipelines the services run.
package workflow

import (
	"github.com/TheSuspect9702/emotion-flow-api/internal/cache"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/commands"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/store"
)

// FrameIngestionWorkflow is the dual write of a frame batch. It expects a
// *model.FrameBatch in cor.CtxIn and runs, stopping at the first failure:
//
//  1. validation, before any I/O
//  2. the pipelined cache write
//  3. the bulk insert into the durable store
//  4. the video upsert
//
// On success commands.ParamInsertedFrames holds the number of stored frames.
type FrameIngestionWorkflow struct {
	cor.BaseCommand
	frames store.FrameStore
	videos store.VideoStore
	cache  cache.FrameCache
	chain  cor.Chain
}

// NewFrameIngestionWorkflow builds the dual write chain.
//
// Inputs:
//   - frames: The durable frame store.
//   - videos: The store holding parent video rows.
//   - frameCache: The low latency frame projection.
//
// Outputs:
//   - *FrameIngestionWorkflow: The workflow. Its input param is a
//     *model.FrameBatch.
func NewFrameIngestionWorkflow(frames store.FrameStore, videos store.VideoStore, frameCache cache.FrameCache) *FrameIngestionWorkflow {
	out := &FrameIngestionWorkflow{
		BaseCommand: *cor.NewBaseCommand("frame-ingestion-workflow"),
		frames:      frames,
		videos:      videos,
		cache:       frameCache,
	}
	out.initializeChain()
	return out
}

// Execute validates the batch, then writes the cache, the durable store and
// the video row in that order, stopping at the first failure.
func (w *FrameIngestionWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *FrameIngestionWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewFrameBatchValidate("validate-frame-batch"))
	out.AddCommand(commands.NewFrameCacheWrite("write-frames-to-cache", w.cache))
	out.AddCommand(commands.NewFrameStoreInsert("insert-frames-to-store", w.frames))
	out.AddCommand(commands.NewVideoUpsert("upsert-video", w.videos))
	w.chain = out
}
