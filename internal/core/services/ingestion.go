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

// Package services exposes the operations behind the HTTP API: frame
// ingestion, upload intake and the read side over videos and frames.
package services

import (
	"context"

	"github.com/TheSuspect9702/emotion-flow-api/internal/core/commands"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/cor"
	"github.com/TheSuspect9702/emotion-flow-api/internal/core/model"
)

// IngestionService runs the dual write workflow for frame batches.
type IngestionService struct {
	workflow cor.Command
}

// NewIngestionService wraps the workflow that performs the writes, normally a
// *workflow.FrameIngestionWorkflow.
func NewIngestionService(workflow cor.Command) *IngestionService {
	return &IngestionService{workflow: workflow}
}

// Ingest stores frames for videoID.
//
// Inputs:
//   - ctx: The request context.
//   - videoID: The video the frames belong to.
//   - frames: The frame payloads as received from the worker.
//
// Outputs:
//   - int: The number of frames written.
//   - error: A *model.ValidationError when the batch is rejected before any
//     I/O, or a *model.UpstreamWriteError naming the failed stage.
func (s *IngestionService) Ingest(ctx context.Context, videoID string, frames []*model.FramePayload) (int, error) {
	return s.IngestBatch(ctx, &model.FrameBatch{VideoID: videoID, Frames: frames})
}

// IngestRequest normalises a request in either accepted shape and ingests it.
func (s *IngestionService) IngestRequest(ctx context.Context, req *model.IngestRequest) (int, error) {
	if req == nil {
		return s.IngestBatch(ctx, nil)
	}
	batch, err := req.ToBatch()
	if err != nil {
		return 0, err
	}
	return s.IngestBatch(ctx, batch)
}

// IngestBatch runs the workflow for a batch and returns the inserted count.
func (s *IngestionService) IngestBatch(ctx context.Context, batch *model.FrameBatch) (int, error) {
	if batch == nil {
		return 0, batch.Validate()
	}

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, batch)

	s.workflow.Execute(chainCtx)
	if err := chainCtx.GetError(); err != nil {
		return 0, err
	}

	inserted, _ := chainCtx.Get(commands.ParamInsertedFrames).(int)
	return inserted, nil
}
